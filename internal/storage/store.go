package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/odesketch/internal/coords"
	"github.com/san-kum/odesketch/internal/dynamo"
	"github.com/san-kum/odesketch/internal/ode"
)

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Dir() string { return s.baseDir }

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type IntegratorMetadata struct {
	Tolerance     float64 `json:"tolerance"`
	SafetyFactor  float64 `json:"safety_factor"`
	MinStep       float64 `json:"min_step"`
	MaxStep       float64 `json:"max_step"`
	MaxIterations int     `json:"max_iterations"`
}

type RunMetadata struct {
	ID                string             `json:"id"`
	Timestamp         time.Time          `json:"timestamp"`
	Expression        string             `json:"expression"`
	Frame             string             `json:"frame"`
	Method            string             `json:"method"`
	InitialConditions []float64          `json:"initial_conditions"`
	IntegrationLength float64            `json:"integration_length"`
	InitialStep       float64            `json:"initial_step"`
	Span              [2]float64         `json:"span"`
	Integrator        IntegratorMetadata `json:"integrator"`
	Points            int                `json:"points"`
	Accepted          int                `json:"accepted"`
	Rejected          int                `json:"rejected"`
	Evaluations       int                `json:"evaluations"`
	Truncated         bool               `json:"truncated"`
	ElapsedMS         float64            `json:"elapsed_ms"`
}

// NewMetadata describes a solution produced from settings.
func NewMetadata(settings ode.Settings, sol *ode.Solution) RunMetadata {
	cfg := settings.Integrator
	tr := sol.Trajectory
	expression := ""
	if settings.Inputs.Len() > 0 {
		expression = settings.Inputs.Text(0)
	}
	return RunMetadata{
		Timestamp:         time.Now(),
		Expression:        expression,
		Frame:             sol.Frame.String(),
		Method:            sol.Method,
		InitialConditions: append([]float64(nil), settings.InitialConditions...),
		IntegrationLength: settings.IntegrationLength,
		InitialStep:       settings.InitialStep,
		Span:              [2]float64(sol.Span),
		Integrator: IntegratorMetadata{
			Tolerance:     cfg.Tolerance,
			SafetyFactor:  cfg.SafetyFactor,
			MinStep:       cfg.MinStep,
			MaxStep:       cfg.MaxStep,
			MaxIterations: cfg.MaxIterations,
		},
		Points:      tr.Len(),
		Accepted:    tr.Stats.Accepted,
		Rejected:    tr.Stats.Rejected,
		Evaluations: tr.Stats.Evaluations,
		Truncated:   tr.Truncated,
		ElapsedMS:   float64(sol.Elapsed) / float64(time.Millisecond),
	}
}

// Save writes a run directory holding metadata.json and trajectory.csv and
// returns the run ID.
func (s *Store) Save(settings ode.Settings, sol *ode.Solution) (string, error) {
	if sol == nil || sol.Trajectory == nil {
		return "", errors.New("storage: nothing to save")
	}
	meta := NewMetadata(settings, sol)

	runID, runDir, err := s.newRunDir(meta.Method, meta.Timestamp)
	if err != nil {
		return "", err
	}
	meta.ID = runID

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, trajectoryFile))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, sol.Trajectory, sol.Display); err != nil {
		return "", err
	}
	return runID, nil
}

func (s *Store) newRunDir(method string, ts time.Time) (string, string, error) {
	if err := s.Init(); err != nil {
		return "", "", err
	}
	base := fmt.Sprintf("%s_%s", method, ts.Format("20060102T150405"))
	for i := 0; ; i++ {
		id := base
		if i > 0 {
			id = fmt.Sprintf("%s_%d", base, i)
		}
		dir := filepath.Join(s.baseDir, id)
		err := os.Mkdir(dir, 0755)
		if err == nil {
			return id, dir, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", "", err
		}
	}
}

// WriteCSV writes one row per sample: t, the state components and the
// display point.
func WriteCSV(out io.Writer, tr *dynamo.Trajectory, display []coords.Point) error {
	w := csv.NewWriter(out)

	header := []string{"t"}
	dim := 0
	if tr.Len() > 0 {
		dim = len(tr.States[0])
	}
	for i := 0; i < dim; i++ {
		header = append(header, fmt.Sprintf("y%d", i))
	}
	header = append(header, "x", "y")
	if err := w.Write(header); err != nil {
		return err
	}

	for i, t := range tr.Times {
		row := []string{formatFloat(t)}
		for _, v := range tr.States[i] {
			row = append(row, formatFloat(v))
		}
		p := coords.Point{X: t, Y: tr.States[i][0]}
		if i < len(display) {
			p = display[i]
		}
		row = append(row, formatFloat(p.X), formatFloat(p.Y))
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
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

	sort.SliceStable(runs, func(i, j int) bool {
		if runs[i].Timestamp.Equal(runs[j].Timestamp) {
			return runs[i].ID < runs[j].ID
		}
		return runs[i].Timestamp.Before(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadTrajectory reads the samples of a run back.
func (s *Store) LoadTrajectory(runID string) (*dynamo.Trajectory, []coords.Point, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	tr := &dynamo.Trajectory{}
	if len(records) < 2 {
		return tr, nil, nil
	}

	cols := len(records[0])
	if cols < 4 {
		return nil, nil, fmt.Errorf("storage: %s has %d columns, want at least 4", trajectoryFile, cols)
	}
	dim := cols - 3
	display := make([]coords.Point, 0, len(records)-1)

	for i, record := range records[1:] {
		vals := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("storage: row %d column %d: %w", i+1, j, err)
			}
			vals[j] = v
		}
		tr.Times = append(tr.Times, vals[0])
		tr.States = append(tr.States, dynamo.State(vals[1:1+dim]))
		display = append(display, coords.Point{X: vals[1+dim], Y: vals[2+dim]})
	}
	return tr, display, nil
}
