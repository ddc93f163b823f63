package mobilizer_test

import (
	"math"

	"github.com/golang/geo/r3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/mobikin/internal/digest"
	"github.com/san-kum/mobikin/internal/mobilizer"
	"github.com/san-kum/mobikin/internal/spatial"
)

type gimbalRig struct {
	g *mobilizer.Gimbal
	d *digest.Digest
}

func newGimbalRig() *gimbalRig {
	alloc := &mobilizer.SlotAllocator{}
	g := mobilizer.NewGimbal(alloc)
	return &gimbalRig{g: g, d: digest.New(alloc.Layout())}
}

func (r *gimbalRig) position(q0, q1, q2 float64) {
	r.d.SetQ([]float64{q0, q1, q2})
	r.g.ComputeTrigCache(r.d.Q(), r.d.UpdSin(), r.d.UpdCos(), r.d.UpdQNorm())
	r.d.SetTransform(r.g.Node(), r.g.ComputeAcrossJointTransform(r.d.Q()))
	r.d.Realize(digest.Position)
}

func (r *gimbalRig) velocity(u r3.Vector) {
	r.d.SetU([]float64{u.X, u.Y, u.Z})
	r.g.ComputeVelocityJacobian(r.d, r.d.UpdH())
	r.g.ComputeQDot(r.d, r.d.U(), r.d.UpdQDot())
	r.d.Realize(digest.Velocity)
}

func (r *gimbalRig) condition() float64 {
	return mat.Cond(mobilizer.NInvMatrix(r.g, r.d), 2)
}

var _ = Describe("Gimbal", func() {
	var rig *gimbalRig

	BeforeEach(func() {
		rig = newGimbalRig()
	})

	Context("at zero angles", func() {
		BeforeEach(func() {
			rig.position(0, 0, 0)
			rig.velocity(r3.Vector{X: 1, Y: 2, Z: 3})
		})

		It("has an identity across-joint transform", func() {
			Expect(rig.d.Transform(rig.g.Node()).AlmostEqual(spatial.IdentityTransform(), 1e-15)).To(BeTrue())
		})

		It("maps each speed to a unit rotation about a parent axis", func() {
			h := rig.d.H()
			Expect(h[0]).To(Equal(spatial.SpatialVec{W: r3.Vector{X: 1}}))
			Expect(h[1]).To(Equal(spatial.SpatialVec{W: r3.Vector{Y: 1}}))
			Expect(h[2]).To(Equal(spatial.SpatialVec{W: r3.Vector{Z: 1}}))
		})

		It("has a zero Jacobian rate", func() {
			hdot := make([]spatial.SpatialVec, 3)
			rig.g.ComputeVelocityJacobianDot(rig.d, hdot)
			for _, col := range hdot {
				Expect(col.IsZero()).To(BeTrue())
			}
		})

		It("passes the speeds straight through as angle rates", func() {
			Expect(rig.d.QDot()).To(HaveLen(3))
			Expect([]float64(rig.d.QDot())).To(Equal([]float64{1, 2, 3}))
		})

		It("ignores linear velocity and translation", func() {
			q := []float64{0.1, 0.2, 0.3}
			u := []float64{4, 5, 6}
			rig.g.SetQFromTranslation(r3.Vector{X: 9}, q)
			rig.g.SetUFromLinearVelocity(q, r3.Vector{Y: 9}, u)
			Expect(q).To(Equal([]float64{0.1, 0.2, 0.3}))
			Expect(u).To(Equal([]float64{4, 5, 6}))
		})
	})

	Context("after a quarter turn about x", func() {
		It("turns a parent z rotation into a middle angle rate", func() {
			rig.position(math.Pi/2, 0, 0)
			rig.velocity(r3.Vector{Z: 1})
			qdot := rig.d.QDot()
			Expect(qdot[0]).To(BeNumerically("~", 0, 1e-15))
			Expect(qdot[1]).To(BeNumerically("~", 1, 1e-15))
			Expect(qdot[2]).To(BeNumerically("~", 0, 1e-15))
		})
	})

	DescribeTable("recovers angles from the rotation they produce",
		func(q0, q1, q2 float64) {
			want := spatial.NewRotationBodyFixedXYZ(r3.Vector{X: q0, Y: q1, Z: q2})
			q := make([]float64, 3)
			rig.g.SetQFromRotation(want, q)
			Expect(q[0]).To(BeNumerically("~", q0, 1e-12))
			Expect(q[1]).To(BeNumerically("~", q1, 1e-12))
			Expect(q[2]).To(BeNumerically("~", q2, 1e-12))
			got := rig.g.ComputeAcrossJointTransform(q)
			Expect(got.R.AlmostEqual(want, 1e-12)).To(BeTrue())
		},
		Entry("small angles", 0.1, -0.2, 0.3),
		Entry("large first and third", 2.5, 0.4, -3.0),
		Entry("near lock", -1.0, 1.5, 0.7),
		Entry("negative middle", 0.0, -1.2, 0.0),
	)

	It("keeps the rotation at gimbal lock even though the angles are not unique", func() {
		want := spatial.NewRotationBodyFixedXYZ(r3.Vector{X: 0.3, Y: math.Pi / 2, Z: 0.4})
		q := make([]float64, 3)
		rig.g.SetQFromRotation(want, q)
		Expect(q[1]).To(BeNumerically("~", math.Pi/2, 1e-9))
		Expect(q[2]).To(Equal(0.0))
		Expect(rig.g.ComputeAcrossJointTransform(q).R.AlmostEqual(want, 1e-9)).To(BeTrue())
	})

	Describe("conditioning", func() {
		It("is perfect away from the singularity", func() {
			rig.position(0.4, 0, -0.8)
			Expect(rig.condition()).To(BeNumerically("~", 1, 1e-12))
		})

		It("worsens monotonically as the middle angle approaches a right angle", func() {
			prev := 0.0
			for _, deg := range []float64{0, 30, 60, 80, 89, 89.9, 89.99} {
				rig.position(0.2, deg*math.Pi/180, -0.1)
				c := rig.condition()
				Expect(c).To(BeNumerically(">=", prev), "at %v degrees", deg)
				prev = c
			}
		})

		It("is huge at the singularity", func() {
			rig.position(0, math.Pi/2, 0)
			Expect(rig.condition()).To(BeNumerically(">", 1e8))
		})
	})

	Describe("angle accelerations", func() {
		BeforeEach(func() {
			rig.position(0.3, -0.7, 1.1)
			rig.velocity(r3.Vector{X: 0.5, Y: -1.5, Z: 2})
		})

		It("agree between the local and global entry points", func() {
			udot := []float64{0.4, 0.9, -1.3}
			global := make([]float64, 3)
			rig.g.ComputeQDotDot(rig.d, udot, global)
			local := make([]float64, 3)
			rig.g.QDotDot(rig.d, udot, local)
			Expect(local).To(Equal(global))
		})

		It("equal NDot*u + N*udot", func() {
			udot := []float64{0.4, 0.9, -1.3}
			local := make([]float64, 3)
			rig.g.QDotDot(rig.d, udot, local)
			nDotU := make([]float64, 3)
			rig.g.MultiplyByNDot(rig.d, mobilizer.MatrixOnLeft, rig.d.U(), nDotU)
			nUDot := make([]float64, 3)
			rig.g.MultiplyByN(rig.d, mobilizer.MatrixOnLeft, udot, nUDot)
			for i := range local {
				Expect(local[i]).To(BeNumerically("~", nDotU[i]+nUDot[i], 1e-10))
			}
		})

		It("need velocity to be realized", func() {
			rig.position(0.3, -0.7, 1.1)
			Expect(func() {
				rig.g.QDotDot(rig.d, []float64{1, 2, 3}, make([]float64, 3))
			}).To(PanicWith(BeAssignableToTypeOf(&digest.StageError{})))
		})
	})

	It("refuses to compute angle rates before position is realized", func() {
		Expect(func() {
			rig.g.ComputeQDot(rig.d, rig.d.U(), rig.d.UpdQDot())
		}).To(PanicWith(BeAssignableToTypeOf(&digest.StageError{})))
	})
})
