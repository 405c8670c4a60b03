package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/odesketch/internal/config"
	"github.com/san-kum/odesketch/internal/ode"
)

const (
	panelWidth  = 36
	minPlotCols = 20
	minPlotRows = 8
	// ics move this many canvas dots per arrow press
	nudgeDots = 4
)

// Explorer is the interactive host: every edit re-solves through an
// ode.Session and redraws. A failed solve is reported under the plot while
// the last good curve stays on screen.
type Explorer struct {
	base     *config.Config
	session  *ode.Session
	settings ode.Settings
	window   Window
	methods  []string

	theme  Theme
	styles Styles

	editing bool
	buf     []rune

	width, height int
	err           error
}

func NewExplorer(cfg *config.Config, session *ode.Session) (Explorer, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if session == nil {
		session = ode.NewSession(nil)
	}
	settings, err := cfg.Settings()
	if err != nil {
		return Explorer{}, err
	}
	window := WindowFromPlot(cfg.Plot)
	if !window.Valid() {
		return Explorer{}, fmt.Errorf("%w: empty plot window %+v", config.ErrInvalid, cfg.Plot)
	}

	m := Explorer{
		base:     cfg.Clone(),
		session:  session,
		settings: settings,
		window:   window,
		methods:  session.Solver().Registry().Names(),
		theme:    Themes[0],
		styles:   NewStyles(Themes[0]),
		width:    100,
		height:   30,
	}
	m.resolve()
	return m, nil
}

func (m Explorer) Init() tea.Cmd { return nil }

func (m Explorer) Settings() ode.Settings { return m.settings }

func (m Explorer) Err() error { return m.err }

func (m Explorer) Solution() *ode.Solution { return m.session.Last() }

func (m *Explorer) resolve() {
	_, m.err = m.session.Solve(m.settings)
}

func (m Explorer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.editing {
			return m.editKey(msg)
		}
		return m.key(msg)
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}
	return m, nil
}

func (m Explorer) key(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	step := m.window.Step(m.plotCanvas()) * nudgeDots
	p := m.settings.Point()

	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "e", "enter":
		m.editing = true
		m.buf = []rune(m.settings.Inputs.Text(0))
		return m, nil
	case "up", "k":
		p.Y += step
	case "down", "j":
		p.Y -= step
	case "left", "h":
		p.X -= step
	case "right", "l":
		p.X += step
	case "f":
		m.settings.Frame = m.settings.Frame.Toggle()
	case "+", "=":
		m.settings.IntegrationLength *= 1.25
	case "-", "_":
		m.settings.IntegrationLength *= 0.8
	case "m":
		m.settings.Method = m.nextMethod()
	case "t":
		m.theme = NextTheme(m.theme.Name)
		m.styles = NewStyles(m.theme)
		return m, nil
	case "r":
		if s, err := m.base.Settings(); err == nil {
			m.settings = s
			m.resolve()
		}
		return m, nil
	default:
		return m, nil
	}
	m.settings = m.settings.WithPoint(p)
	m.resolve()
	return m, nil
}

func (m Explorer) editKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEnter:
		m.editing = false
		m.settings.Inputs.Set(0, string(m.buf))
		m.resolve()
	case tea.KeyEsc:
		m.editing = false
	case tea.KeyBackspace:
		if len(m.buf) > 0 {
			m.buf = m.buf[:len(m.buf)-1]
		}
	case tea.KeySpace:
		m.buf = append(m.buf, ' ')
	case tea.KeyRunes:
		m.buf = append(m.buf, msg.Runes...)
	}
	return m, nil
}

func (m Explorer) nextMethod() string {
	for i, name := range m.methods {
		if name == m.settings.Method {
			return m.methods[(i+1)%len(m.methods)]
		}
	}
	return m.methods[0]
}

func (m Explorer) plotCanvas() *Canvas {
	cols := max(m.width-panelWidth-6, minPlotCols)
	rows := max(m.height-4, minPlotRows)
	return NewCanvas(cols, rows)
}

func (m Explorer) View() string {
	c := m.plotCanvas()
	c.DrawAxes(m.window)
	if sol := m.session.Last(); sol != nil {
		c.DrawCurve(m.window, sol.Display)
	}
	c.Mark(m.window, m.settings.Point())

	plot := m.styles.Plot.Render(m.styles.Curve.Render(c.String()))
	return lipgloss.JoinHorizontal(lipgloss.Top, plot, m.viewPanel())
}

func (m Explorer) viewPanel() string {
	s := m.styles
	vars := m.settings.Frame.Vars()
	p := m.settings.Point()

	var b strings.Builder
	b.WriteString(s.Title.Render("ODESKETCH") + "\n")
	b.WriteString(s.Separator(panelWidth-4) + "\n\n")

	lhs := fmt.Sprintf("d%s/d%s = ", prettyIdent(vars[1]), prettyIdent(vars[0]))
	if m.editing {
		b.WriteString(s.Active.Render(lhs+string(m.buf)+"_") + "\n\n")
	} else {
		b.WriteString(s.Value.Render(lhs+m.expression()) + "\n\n")
	}

	row := func(label, value string) {
		b.WriteString(s.Label.Render(label) + s.Value.Render(value) + "\n")
	}
	row("frame", m.settings.Frame.String())
	row("start", fmt.Sprintf("(%.3g, %.3g)", p.X, p.Y))
	row("length", fmt.Sprintf("%.3g", m.settings.IntegrationLength))
	row("method", m.settings.Method)
	row("theme", m.theme.Name)

	if sol := m.session.Last(); sol != nil {
		tr := sol.Trajectory
		b.WriteString("\n")
		row("points", fmt.Sprintf("%d", tr.Len()))
		row("steps", fmt.Sprintf("%d/%d", tr.Stats.Accepted, tr.Stats.Rejected))
		row("evals", fmt.Sprintf("%d", tr.Stats.Evaluations))
		row("elapsed", sol.Elapsed.Round(time.Microsecond).String())
		if tr.Truncated {
			b.WriteString(s.Warn.Render("truncated before the end of the span") + "\n")
		}
		if sizes := stepSizes(tr.Times); len(sizes) > 0 {
			b.WriteString("\n" + s.Label.Render("step h") + s.Sparkline(sizes, panelWidth-14) + "\n")
		}
	}

	if m.err != nil {
		b.WriteString("\n" + s.Error.Render(wrap(m.err.Error(), panelWidth-4)) + "\n")
	} else {
		b.WriteString("\n" + s.Ok.Render("ok") + "\n")
	}

	b.WriteString("\n" + s.KeyHelp("e", "edit", "arrows", "move", "f", "frame") + "\n")
	b.WriteString(s.KeyHelp("+/-", "length", "m", "method", "t", "theme") + "\n")
	b.WriteString(s.KeyHelp("r", "reset", "q", "quit") + "\n")
	return s.Panel.Width(panelWidth).Render(b.String())
}

func prettyIdent(name string) string {
	if name == "theta" {
		return "θ"
	}
	return name
}

// expression shows the canonical form with theta as θ, or the raw text
// while it does not parse.
func (m Explorer) expression() string {
	parsed := m.settings.Inputs.Parsed()[0]
	if parsed.Err() != nil {
		return parsed.Text()
	}
	return strings.ReplaceAll(parsed.String(), "theta", "θ")
}

func stepSizes(times []float64) []float64 {
	if len(times) < 2 {
		return nil
	}
	out := make([]float64, 0, len(times)-1)
	for i := 1; i < len(times); i++ {
		out = append(out, math.Abs(times[i]-times[i-1]))
	}
	return out
}

func wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	var lines []string
	line := ""
	for _, word := range strings.Fields(text) {
		if line != "" && len(line)+1+len(word) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		if line != "" {
			line += " "
		}
		line += word
	}
	if line != "" {
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// Run starts the explorer in the alternate screen.
func Run(cfg *config.Config, session *ode.Session) error {
	m, err := NewExplorer(cfg, session)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

var _ tea.Model = Explorer{}
