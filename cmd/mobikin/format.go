package main

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/mobikin/internal/spatial"
)

func slots(start, n int) string {
	if n == 0 {
		return "-"
	}
	return fmt.Sprintf("[%d:%d]", start, start+n)
}

// hMatrix lays out joint velocity Jacobian columns as a 6 x nu matrix with
// the angular rows first.
func hMatrix(h []spatial.SpatialVec) *mat.Dense {
	m := mat.NewDense(6, len(h), nil)
	for j, c := range h {
		for i, v := range []float64{c.W.X, c.W.Y, c.W.Z, c.V.X, c.V.Y, c.V.Z} {
			m.Set(i, j, v)
		}
	}
	return m
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
