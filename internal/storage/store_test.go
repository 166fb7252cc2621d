package storage

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/parode/internal/adjoint"
	"github.com/san-kum/parode/internal/config"
	"github.com/san-kum/parode/internal/problems"
)

func solveScenario(t *testing.T) (*config.Config, *adjoint.Solution) {
	t.Helper()
	cfg := config.GetPreset("sine", "scenario")
	_, f, p, err := problems.Get(cfg.Problem, cfg.TEval)
	if err != nil {
		t.Fatalf("problem: %v", err)
	}
	solver, dt0, err := cfg.BuildSolver(f)
	if err != nil {
		t.Fatalf("solver: %v", err)
	}
	sol, err := solver.Solve(p, nil, dt0)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	return cfg, sol
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	cfg, sol := solveScenario(t)
	runID, err := st.Save(cfg, sol, map[string]float64{"global_error": 1e-4})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Problem != "sine" || meta.Method != "dopri5" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.BatchSize != 2 || meta.Features != 2 {
		t.Errorf("expected 2x2 batch, got %dx%d", meta.BatchSize, meta.Features)
	}
	if meta.Stats[1] != sol.Stats[1] {
		t.Errorf("expected stats %+v, got %+v", sol.Stats[1], meta.Stats[1])
	}
	if meta.Metrics["global_error"] != 1e-4 {
		t.Errorf("expected global_error 1e-4, got %g", meta.Metrics["global_error"])
	}
	if meta.Status[0] != "success" {
		t.Errorf("expected status success, got %s", meta.Status[0])
	}

	ts, ys, err := st.LoadSolution(runID)
	if err != nil {
		t.Fatalf("load solution failed: %v", err)
	}
	if len(ts) != 2 || len(ys) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(ts))
	}
	for i := range ts {
		if len(ts[i]) != len(sol.Ts[i]) {
			t.Fatalf("element %d: expected %d points, got %d", i, len(sol.Ts[i]), len(ts[i]))
		}
		for k := range ts[i] {
			if ts[i][k] != sol.Ts[i][k] {
				t.Errorf("element %d point %d: time %g, want %g", i, k, ts[i][k], sol.Ts[i][k])
			}
			for j := range ys[i][k] {
				if ys[i][k][j] != sol.Ys[i][k][j] {
					t.Errorf("element %d point %d: y%d %g, want %g", i, k, j, ys[i][k][j], sol.Ys[i][k][j])
				}
			}
		}
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	cfg, sol := solveScenario(t)
	if _, err := st.Save(cfg, sol, nil); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreListMissingDir(t *testing.T) {
	runs, err := New(filepath.Join(t.TempDir(), "nope")).List()
	if err != nil || len(runs) != 0 {
		t.Errorf("expected no runs and no error, got %d, %v", len(runs), err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	cfg, sol := solveScenario(t)
	runID, err := st.Save(cfg, sol, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{metadataFile, solutionFile} {
		if _, err := os.Stat(filepath.Join(tmpDir, runID, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestExportJSON(t *testing.T) {
	st := New(t.TempDir())
	cfg, sol := solveScenario(t)
	runID, err := st.Save(cfg, sol, nil)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(&buf, runID); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.ID != runID {
		t.Errorf("expected id %s, got %s", runID, data.ID)
	}
	if last := data.Ts[1][len(data.Ts[1])-1]; last != 2.0 {
		t.Errorf("expected element 1 to end at 2, got %g", last)
	}

	if err := st.ExportJSON(&buf, "missing"); err == nil {
		t.Error("expected error for missing run")
	}
}
