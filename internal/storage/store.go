// Package storage persists runs as a directory per run holding
// metadata.json and states.csv.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/san-kum/mobikin/internal/config"
	"github.com/san-kum/mobikin/internal/dynamo"
	"github.com/san-kum/mobikin/internal/tree"
)

const (
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

type Store struct {
	baseDir string
	now     func() time.Time
	create  func(name string) (io.WriteCloser, error)
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, now: time.Now, create: createFile}
}

func createFile(name string) (io.WriteCloser, error) { return os.Create(name) }

func (s *Store) Init() error {
	return errors.Wrap(os.MkdirAll(s.baseDir, 0755), "storage: init")
}

// BodyLayout records where a body's coordinates and speeds sit in a state row.
type BodyLayout struct {
	Name   string `json:"name"`
	Joint  string `json:"joint"`
	Parent string `json:"parent"`
	QIndex int    `json:"q_index"`
	NQ     int    `json:"nq"`
	UIndex int    `json:"u_index"`
	NU     int    `json:"nu"`
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Adaptive   bool               `json:"adaptive"`
	Integrator string             `json:"integrator"`
	Controller string             `json:"controller"`
	Steps      int                `json:"steps"`
	NQ         int                `json:"nq"`
	NU         int                `json:"nu"`
	Bodies     []BodyLayout       `json:"bodies"`
	Columns    []string           `json:"columns"`
	Metrics    map[string]float64 `json:"metrics"`
	Errors     []string           `json:"errors,omitempty"`
}

// Describe builds the metadata of a run without an ID or timestamp.
func Describe(cfg *config.Config, t *tree.Tree, result *dynamo.Result) RunMetadata {
	l := t.Layout()
	meta := RunMetadata{
		Model:      cfg.Model,
		Seed:       cfg.Seed,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Adaptive:   cfg.Adaptive,
		Integrator: cfg.Integrator,
		Controller: cfg.Controller,
		Steps:      result.StepsTaken,
		NQ:         l.NQ,
		NU:         l.NU,
		Metrics:    finiteMetrics(result.Metrics),
	}

	q := make([]string, l.NQ)
	u := make([]string, l.NU)
	udot := make([]string, l.NU)
	for _, b := range t.Bodies() {
		parent := tree.Ground
		if b.Parent != tree.GroundIndex {
			parent = t.Body(b.Parent).Name
		}
		m := b.Mob
		meta.Bodies = append(meta.Bodies, BodyLayout{
			Name: b.Name, Joint: m.Type(), Parent: parent,
			QIndex: m.QIndex(), NQ: m.NQ(), UIndex: m.UIndex(), NU: m.NU(),
		})
		for i := 0; i < m.NQ(); i++ {
			q[m.QIndex()+i] = fmt.Sprintf("%s.q%d", b.Name, i)
		}
		for i := 0; i < m.NU(); i++ {
			u[m.UIndex()+i] = fmt.Sprintf("%s.u%d", b.Name, i)
			udot[m.UIndex()+i] = fmt.Sprintf("%s.udot%d", b.Name, i)
		}
	}
	meta.Columns = append([]string{"time"}, q...)
	meta.Columns = append(meta.Columns, u...)
	meta.Columns = append(meta.Columns, udot...)

	for _, err := range result.Errors {
		meta.Errors = append(meta.Errors, err.Error())
	}
	return meta
}

// Save writes a run and returns its ID.
func (s *Store) Save(cfg *config.Config, t *tree.Tree, result *dynamo.Result) (string, error) {
	meta := Describe(cfg, t, result)
	meta.Timestamp = s.now()
	meta.ID = fmt.Sprintf("%s_%d", cfg.Model, meta.Timestamp.UnixNano())
	runDir := filepath.Join(s.baseDir, meta.ID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", errors.Wrap(err, "storage: create run directory")
	}

	err := s.writeFile(filepath.Join(runDir, metadataFile), func(w io.Writer) error {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(meta), "storage: encode metadata")
	})
	if err != nil {
		return "", err
	}
	err = s.writeFile(filepath.Join(runDir, statesFile), func(w io.Writer) error {
		return writeStates(w, meta, result)
	})
	if err != nil {
		return "", err
	}
	return meta.ID, nil
}

// writeFile creates path and runs write on it. A failed close is reported
// like a failed write.
func (s *Store) writeFile(path string, write func(io.Writer) error) (err error) {
	f, err := s.create(path)
	if err != nil {
		return errors.Wrapf(err, "storage: create %s", filepath.Base(path))
	}
	defer multierr.AppendInvoke(&err, multierr.Invoke(func() error {
		return errors.Wrapf(f.Close(), "storage: close %s", filepath.Base(path))
	}))
	return write(f)
}

// writeStates writes one row per recorded state. The control applied over
// the following step fills the udot columns; the last row has zeros there.
func writeStates(out io.Writer, meta RunMetadata, result *dynamo.Result) error {
	w := csv.NewWriter(out)
	if err := w.Write(meta.Columns); err != nil {
		return errors.Wrap(err, "storage: write header")
	}

	row := make([]string, 0, len(meta.Columns))
	for i, x := range result.States {
		row = append(row[:0], format(result.Times[i]))
		for _, v := range x {
			row = append(row, format(v))
		}
		for j := 0; j < meta.NU; j++ {
			v := 0.0
			if i < len(result.Controls) && j < len(result.Controls[i]) {
				v = result.Controls[i][j]
			}
			row = append(row, format(v))
		}
		if err := w.Write(row); err != nil {
			return errors.Wrapf(err, "storage: write row %d", i)
		}
	}
	w.Flush()
	return errors.Wrap(w.Error(), "storage: flush states")
}

// finiteMetrics clamps infinite values, which JSON cannot carry, and drops NaNs.
func finiteMetrics(in map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for k, v := range in {
		switch {
		case math.IsNaN(v):
		case math.IsInf(v, 1):
			out[k] = math.MaxFloat64
		case math.IsInf(v, -1):
			out[k] = -math.MaxFloat64
		default:
			out[k] = v
		}
	}
	return out
}

func format(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

// List returns the metadata of every stored run, oldest first. Directories
// without readable metadata are skipped.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, errors.Wrap(err, "storage: list")
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, errors.Wrapf(err, "storage: run %s", runID)
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, errors.Wrapf(err, "storage: run %s metadata", runID)
	}
	return &meta, nil
}

// LoadStates reads back the [q; u] rows and their times, dropping the udot
// columns.
func (s *Store) LoadStates(runID string) ([]dynamo.State, []float64, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	file, err := os.Open(filepath.Join(s.baseDir, runID, statesFile))
	if err != nil {
		return nil, nil, errors.Wrapf(err, "storage: run %s", runID)
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "storage: run %s states", runID)
	}
	if len(records) < 2 {
		return []dynamo.State{}, []float64{}, nil
	}

	n := meta.NQ + meta.NU
	times := make([]float64, 0, len(records)-1)
	states := make([]dynamo.State, 0, len(records)-1)
	for i, record := range records[1:] {
		if len(record) < n+1 {
			return nil, nil, errors.Errorf("storage: run %s row %d has %d fields, want at least %d", runID, i+1, len(record), n+1)
		}
		vals := make([]float64, n+1)
		for j := range vals {
			v, err := strconv.ParseFloat(record[j], 64)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "storage: run %s row %d", runID, i+1)
			}
			vals[j] = v
		}
		times = append(times, vals[0])
		states = append(states, dynamo.State(vals[1:]))
	}
	return states, times, nil
}

// ExportData is the single-document JSON form of a run.
type ExportData struct {
	RunMetadata
	Times    []float64   `json:"times"`
	States   [][]float64 `json:"states"`
	Controls [][]float64 `json:"controls"`
}

// ExportJSON writes a run as one indented JSON document.
func ExportJSON(w io.Writer, cfg *config.Config, t *tree.Tree, result *dynamo.Result) error {
	data := ExportData{
		RunMetadata: Describe(cfg, t, result),
		Times:       result.Times,
		States:      make([][]float64, len(result.States)),
		Controls:    make([][]float64, len(result.Controls)),
	}
	for i, s := range result.States {
		data.States[i] = s
	}
	for i, c := range result.Controls {
		data.Controls[i] = c
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return errors.Wrap(encoder.Encode(data), "storage: export")
}
