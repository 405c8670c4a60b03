package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/san-kum/odesketch/internal/coords"
	"github.com/san-kum/odesketch/internal/ode"
)

func solveDefault(t *testing.T, frame coords.Frame, text string) (ode.Settings, *ode.Solution) {
	t.Helper()
	s := ode.DefaultSettings()
	s.Frame = frame
	s.Inputs = ode.NewInputs(text)
	s.IntegrationLength = 1
	sol, err := ode.NewSolver().Solve(s)
	if err != nil {
		t.Fatal(err)
	}
	return s, sol
}

func TestStore_SaveLoad(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "runs"))
	settings, sol := solveDefault(t, coords.Polar, "sin(theta)/r")

	id, err := store.Save(settings, sol)
	if err != nil {
		t.Fatal(err)
	}

	meta, err := store.Load(id)
	if err != nil {
		t.Fatal(err)
	}
	if meta.ID != id || meta.Expression != "sin(theta)/r" || meta.Frame != "polar" || meta.Method != "rkf45" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Points != sol.Trajectory.Len() || meta.Accepted != sol.Trajectory.Stats.Accepted {
		t.Errorf("stats not recorded: %+v", meta)
	}

	tr, display, err := store.LoadTrajectory(id)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(sol.Trajectory.Times, tr.Times); diff != "" {
		t.Errorf("times differ (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(sol.Display, display); diff != "" {
		t.Errorf("display differs (-want +got):\n%s", diff)
	}
	for i := range tr.States {
		if tr.States[i][0] != sol.Trajectory.States[i][0] {
			t.Fatalf("state %d differs: %v vs %v", i, tr.States[i], sol.Trajectory.States[i])
		}
	}
}

func TestStore_List(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "runs"))

	runs, err := store.List()
	if err != nil || len(runs) != 0 {
		t.Fatalf("missing dir should list nothing: %v, %v", runs, err)
	}

	settings, sol := solveDefault(t, coords.Cartesian, "-y")
	ids := map[string]bool{}
	for i := 0; i < 3; i++ {
		id, err := store.Save(settings, sol)
		if err != nil {
			t.Fatal(err)
		}
		if ids[id] {
			t.Fatalf("duplicate run id %s", id)
		}
		ids[id] = true
	}
	if err := os.Mkdir(filepath.Join(store.Dir(), "stray"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 3 {
		t.Errorf("expected 3 runs, got %d", len(runs))
	}
	for _, r := range runs {
		if !ids[r.ID] {
			t.Errorf("unexpected run %s", r.ID)
		}
	}
}

func TestStore_Errors(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Load("nope"); err == nil {
		t.Error("loading a missing run should fail")
	}
	if _, _, err := store.LoadTrajectory("nope"); err == nil {
		t.Error("loading a missing trajectory should fail")
	}
	if _, err := store.Save(ode.DefaultSettings(), nil); err == nil {
		t.Error("saving nil should fail")
	}
}
