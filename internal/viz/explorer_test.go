package viz

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/odesketch/internal/config"
	"github.com/san-kum/odesketch/internal/coords"
	"github.com/san-kum/odesketch/internal/expr"
	"github.com/san-kum/odesketch/internal/logging"
	"github.com/san-kum/odesketch/internal/ode"
)

func newExplorer(t *testing.T) Explorer {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Expression = "-y"
	cfg.IntegrationLength = 2
	session := ode.NewSession(ode.NewSolver(ode.WithLogger(logging.Discard())))
	m, err := NewExplorer(cfg, session)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func press(t *testing.T, m Explorer, keys ...tea.KeyMsg) Explorer {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(Explorer)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestExplorer_InitialSolve(t *testing.T) {
	m := newExplorer(t)
	if m.Err() != nil {
		t.Fatalf("unexpected error: %v", m.Err())
	}
	if m.Solution() == nil || m.Solution().Trajectory.Len() < 2 {
		t.Fatal("expected an initial solution")
	}
	if !strings.Contains(m.View(), "dy/dx = -y") {
		t.Error("view does not show the equation")
	}
}

func TestExplorer_MoveAndToggle(t *testing.T) {
	m := newExplorer(t)
	start := m.Settings().Point()

	m = press(t, m, tea.KeyMsg{Type: tea.KeyRight}, tea.KeyMsg{Type: tea.KeyUp})
	p := m.Settings().Point()
	if p.X <= start.X || p.Y <= start.Y {
		t.Errorf("point did not move: %v -> %v", start, p)
	}
	if m.Solution().Span.Start() != p.X {
		t.Errorf("solution not recomputed for the new point")
	}

	m = press(t, m, runes("f"))
	if m.Settings().Frame != coords.Polar {
		t.Fatal("frame did not toggle")
	}
	// -y is not a polar expression
	if !errors.Is(m.Err(), expr.ErrBuild) {
		t.Errorf("expected a build error, got %v", m.Err())
	}
	if m.Solution() == nil || m.Solution().Frame != coords.Cartesian {
		t.Error("the previous curve should be kept")
	}
	if !strings.Contains(m.View(), "available") {
		t.Error("error not shown")
	}
}

func TestExplorer_EditExpression(t *testing.T) {
	m := newExplorer(t)
	m = press(t, m, runes("f"), runes("e"))
	// clear the buffer
	for i := 0; i < 10; i++ {
		m = press(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	}
	m = press(t, m, runes("sin(θ)"), tea.KeyMsg{Type: tea.KeySpace}, runes("/r"), tea.KeyMsg{Type: tea.KeyEnter})

	if m.Err() != nil {
		t.Fatalf("unexpected error: %v", m.Err())
	}
	if got := m.Settings().Inputs.Text(0); got != "sin(θ) /r" {
		t.Errorf("expression %q", got)
	}
	view := m.View()
	if !strings.Contains(view, "dθ/dr = sin(θ) / r") {
		t.Errorf("view does not show the polar equation:\n%s", view)
	}

	m = press(t, m, runes("e"), runes("+"), tea.KeyMsg{Type: tea.KeyEnter})
	if !errors.Is(m.Err(), expr.ErrParse) {
		t.Errorf("expected a parse error, got %v", m.Err())
	}
	if m.Solution().Frame != coords.Polar {
		t.Error("previous polar curve should be kept")
	}
}

func TestExplorer_EditCancel(t *testing.T) {
	m := newExplorer(t)
	m = press(t, m, runes("e"), runes("zzz"), tea.KeyMsg{Type: tea.KeyEsc})
	if got := m.Settings().Inputs.Text(0); got != "-y" {
		t.Errorf("cancelled edit changed the expression to %q", got)
	}
}

func TestExplorer_LengthMethodReset(t *testing.T) {
	m := newExplorer(t)
	length := m.Settings().IntegrationLength

	m = press(t, m, runes("+"), runes("m"))
	if m.Settings().IntegrationLength <= length {
		t.Error("length did not grow")
	}
	if m.Settings().Method == "rkf45" {
		t.Error("method did not change")
	}
	if m.Solution().Method != m.Settings().Method {
		t.Error("solution not recomputed with the new method")
	}

	m = press(t, m, tea.KeyMsg{Type: tea.KeyLeft}, runes("r"))
	if m.Settings().IntegrationLength != length || m.Settings().Method != "rkf45" {
		t.Error("reset did not restore the configuration")
	}
	if p := m.Settings().Point(); p.X != 1 || p.Y != 1 {
		t.Errorf("reset did not restore the point: %v", p)
	}
}

func TestExplorer_ThemeAndQuit(t *testing.T) {
	m := newExplorer(t)
	m = press(t, m, runes("t"))
	if m.theme.Name != Themes[1].Name {
		t.Errorf("theme %s", m.theme.Name)
	}

	_, cmd := m.Update(runes("q"))
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestExplorer_Resize(t *testing.T) {
	m := newExplorer(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 160, Height: 50})
	m = next.(Explorer)
	if m.plotCanvas().Width != 160-panelWidth-6 {
		t.Errorf("canvas width %d", m.plotCanvas().Width)
	}
}

func TestNewExplorer_BadWindow(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Plot.XMax = cfg.Plot.XMin
	if _, err := NewExplorer(cfg, nil); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestWrap(t *testing.T) {
	got := wrap("compile: unknown symbol z in z + 1", 12)
	for _, line := range strings.Split(got, "\n") {
		if len(line) > 12 && !strings.Contains(line, " ") {
			continue
		}
		if len(line) > 12 {
			t.Errorf("line too long: %q", line)
		}
	}
}
