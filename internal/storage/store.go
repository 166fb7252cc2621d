package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/parode/internal/adjoint"
	"github.com/san-kum/parode/internal/config"
)

const (
	metadataFile = "metadata.json"
	solutionFile = "solution.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Problem    string             `json:"problem"`
	Timestamp  time.Time          `json:"timestamp"`
	Method     string             `json:"method"`
	Controller string             `json:"controller"`
	Atol       float64            `json:"atol"`
	Rtol       float64            `json:"rtol"`
	BatchSize  int                `json:"batch_size"`
	Features   int                `json:"features"`
	Stats      []adjoint.Stats    `json:"stats"`
	Status     []string           `json:"status"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Save writes a solved run under a new run id.
func (s *Store) Save(cfg *config.Config, sol *adjoint.Solution, metrics map[string]float64) (string, error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%d", cfg.Problem, now.UnixNano())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Problem:    cfg.Problem,
		Timestamp:  now,
		Method:     cfg.Method,
		Controller: cfg.Controller.Kind,
		Atol:       cfg.Controller.Atol,
		Rtol:       cfg.Controller.Rtol,
		BatchSize:  sol.BatchSize(),
		Stats:      sol.Stats,
		Status:     make([]string, len(sol.Status)),
		Metrics:    metrics,
	}
	for i, st := range sol.Status {
		meta.Status[i] = st.String()
	}
	if sol.BatchSize() > 0 && len(sol.Ys[0]) > 0 {
		meta.Features = len(sol.Ys[0][0])
	}

	if err := writeJSON(filepath.Join(runDir, metadataFile), meta); err != nil {
		return "", err
	}
	if err := writeSolution(filepath.Join(runDir, solutionFile), meta.Features, sol); err != nil {
		return "", err
	}
	return runID, nil
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeSolution(path string, features int, sol *adjoint.Solution) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"element", "t"}
	for i := 0; i < features; i++ {
		header = append(header, fmt.Sprintf("y%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range sol.Ts {
		for k, t := range sol.Ts[i] {
			row := []string{strconv.Itoa(i), strconv.FormatFloat(t, 'g', -1, 64)}
			for _, val := range sol.Ys[i][k] {
				row = append(row, strconv.FormatFloat(val, 'g', -1, 64))
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}

// List returns the metadata of every stored run, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
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

// LoadSolution reads the accepted times and states of a run, grouped by
// batch element.
func (s *Store) LoadSolution(runID string) ([][]float64, [][][]float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, solutionFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}

	var (
		ts [][]float64
		ys [][][]float64
	)
	for n, record := range records {
		if n == 0 {
			continue
		}
		if len(record) < 2 {
			return nil, nil, fmt.Errorf("%s line %d: too few fields", solutionFile, n+1)
		}
		i, err := strconv.Atoi(record[0])
		if err != nil || i < 0 {
			return nil, nil, fmt.Errorf("%s line %d: bad element %q", solutionFile, n+1, record[0])
		}
		values := make([]float64, len(record)-1)
		for j, field := range record[1:] {
			values[j], err = strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%s line %d: %w", solutionFile, n+1, err)
			}
		}
		for len(ts) <= i {
			ts = append(ts, nil)
			ys = append(ys, nil)
		}
		ts[i] = append(ts[i], values[0])
		ys[i] = append(ys[i], values[1:])
	}
	return ts, ys, nil
}

type ExportData struct {
	RunMetadata
	Ts [][]float64   `json:"ts"`
	Ys [][][]float64 `json:"ys"`
}

// ExportJSON writes the metadata and solution of a run as one JSON document.
func (s *Store) ExportJSON(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	ts, ys, err := s.LoadSolution(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{RunMetadata: *meta, Ts: ts, Ys: ys})
}
