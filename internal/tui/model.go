// Package tui is the terminal front end: a rating form beside a braille
// radar chart, plus a scrollable report.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/soaringjerry/tuneup/internal/catalog"
	"github.com/soaringjerry/tuneup/internal/radar"
	"github.com/soaringjerry/tuneup/internal/services"
)

// frameInterval paces animation ticks at roughly 60 frames per second.
const frameInterval = 16 * time.Millisecond

type mode int

const (
	modeAssess mode = iota
	modeReport
)

// Options configures the terminal app.
type Options struct {
	Radar     radar.Options
	Animation time.Duration
	// MarkdownStyle names a glamour style; empty picks one from the terminal.
	MarkdownStyle string
	Now           func() time.Time
}

// frameMsg carries the timestamp of one animation tick.
type frameMsg time.Time

// Model is the bubbletea model of the assessment.
type Model struct {
	svc  *services.AssessmentService
	opts Options

	animator *radar.Animator
	series   []radar.Series

	mode        mode
	perspective services.Perspective
	category    int
	question    int

	width  int
	height int

	bar      progress.Model
	report   viewport.Model
	renderer *glamour.TermRenderer
	status   string
}

// New builds the model on the welcome screen.
func New(svc *services.AssessmentService, opts Options) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Radar.Size <= 0 {
		opts.Radar.Size = radar.DefaultSize
	}
	m := Model{
		svc:         svc,
		opts:        opts,
		animator:    radar.NewAnimator(opts.Animation),
		perspective: services.Individual,
		width:       100,
		height:      30,
		bar:         progress.New(progress.WithSolidFill(string(accentColor)), progress.WithoutPercentage(), progress.WithWidth(16)),
		report:      viewport.New(96, 24),
	}
	m.series = svc.RadarSeries("")
	m.animator.SetTarget(radar.Targets(m.series, opts.Radar.Size), opts.Now())
	return m
}

func (m Model) Init() tea.Cmd { return nil }

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.report.Width = max(msg.Width-4, 20)
		m.report.Height = max(msg.Height-4, 5)
		m.renderer = nil
		if m.mode == modeReport {
			m.loadReport()
		}
		return m, nil

	case frameMsg:
		if _, done := m.animator.Frame(time.Time(msg)); !done {
			return m, tick()
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode == modeReport {
			return m.handleReportKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleReportKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc", "r":
		m.mode = modeAssess
		return m, nil
	}
	var cmd tea.Cmd
	m.report, cmd = m.report.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := m.svc.State()
	if st.Step == services.StepWelcome {
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "enter", " ":
			m.svc.Dispatch(services.SetStep{Step: services.StepAssessment})
		}
		return m, nil
	}

	cats := st.OrderedCategories(m.svc.Catalog())
	switch key := msg.String(); key {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "up", "k":
		m.question = max(m.question-1, 0)
	case "down", "j":
		if len(cats) > 0 {
			m.question = min(m.question+1, len(cats[m.category].Questions)-1)
		}
	case "tab":
		m.moveCategory(1, len(cats))
	case "shift+tab":
		m.moveCategory(-1, len(cats))
	case "left", "h":
		return m.rate(cats, func(v int) int { return v - 1 })
	case "right", "l":
		return m.rate(cats, func(v int) int { return v + 1 })
	case "0", "1", "2", "3", "4", "5":
		n := int(key[0] - '0')
		return m.rate(cats, func(int) int { return n })
	case "p":
		if m.perspective == services.Individual {
			m.perspective = services.Manager
		} else {
			m.perspective = services.Individual
		}
		m.status = "editing " + string(m.perspective) + " ratings"
	case "v":
		m.svc.Dispatch(services.SetView{View: nextView(st.View)})
		return m, m.retarget()
	case "x":
		m.svc.Dispatch(services.ResetScores{})
		m.status = "scores reset"
		return m, m.retarget()
	case "s":
		link, err := m.svc.Share()
		if err != nil {
			m.status = "share failed: " + err.Error()
		} else {
			m.status = link.URL
		}
	case "r":
		m.mode = modeReport
		m.loadReport()
	}
	return m, nil
}

func (m *Model) moveCategory(delta, n int) {
	if n == 0 {
		return
	}
	m.category = (m.category + delta + n) % n
	m.question = 0
}

func (m Model) rate(cats []catalog.Category, next func(int) int) (tea.Model, tea.Cmd) {
	q, ok := m.current(cats)
	if !ok {
		return m, nil
	}
	value := next(m.rating(q))
	m.svc.Dispatch(services.SetRating{Perspective: m.perspective, QuestionID: q.ID, Value: value})
	return m, m.retarget()
}

func (m Model) current(cats []catalog.Category) (catalog.Question, bool) {
	if m.category >= len(cats) || m.question >= len(cats[m.category].Questions) {
		return catalog.Question{}, false
	}
	return cats[m.category].Questions[m.question], true
}

// rating is the resolved value of q in the perspective being edited.
func (m Model) rating(q catalog.Question) int {
	st := m.svc.State()
	return services.Resolve(st.Scores.Get(m.perspective), m.svc.Defaults())[q.ID]
}

// retarget points the animator at the latest scores and starts ticking when needed.
func (m *Model) retarget() tea.Cmd {
	m.series = m.svc.RadarSeries("")
	m.animator.SetTarget(radar.Targets(m.series, m.opts.Radar.Size), m.opts.Now())
	if m.animator.Active() {
		return tick()
	}
	return nil
}

func nextView(v services.View) services.View {
	switch v {
	case services.ViewIndividual:
		return services.ViewManager
	case services.ViewManager:
		return services.ViewCombined
	default:
		return services.ViewIndividual
	}
}

func (m *Model) loadReport() {
	md := services.RenderMarkdown(m.svc.Report("", m.opts.Radar, m.opts.Now()))
	if m.renderer == nil {
		style := glamour.WithAutoStyle()
		if m.opts.MarkdownStyle != "" {
			style = glamour.WithStandardStyle(m.opts.MarkdownStyle)
		}
		r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(max(m.report.Width-4, 20)))
		if err == nil {
			m.renderer = r
		}
	}
	content := md
	if m.renderer != nil {
		if out, err := m.renderer.Render(md); err == nil {
			content = out
		}
	}
	m.report.SetContent(content)
	m.report.GotoTop()
}

func (m Model) View() string {
	if m.mode == modeReport {
		return m.report.View() + "\n" + helpStyle.Render("↑/↓ scroll • r/esc back • q quit")
	}
	st := m.svc.State()
	if st.Step == services.StepWelcome {
		return m.welcomeView(st)
	}
	snap := m.svc.Snapshot("")
	left := lipgloss.JoinVertical(lipgloss.Left, m.formView(st), "", m.scoresView(snap))
	right := m.chartView()
	body := lipgloss.JoinHorizontal(lipgloss.Top, panelStyle.Render(left), " ", panelStyle.Render(right))

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.svc.Catalog().Title))
	if name := st.Founder.Name; name != "" {
		b.WriteString(headerStyle.Render(" · " + name))
	}
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("editing %s · viewing %s · overall %d%%", m.perspective, snap.View, snap.Summary.Overall)))
	b.WriteString("\n")
	b.WriteString(body)
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(accentStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("↑/↓ question • tab category • ←/→ or 0-5 rate • p perspective • v view • s share • r report • x reset • q quit"))
	return b.String()
}

func (m Model) welcomeView(st services.State) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.svc.Catalog().Title))
	b.WriteString("\n\n")
	for _, c := range st.OrderedCategories(m.svc.Catalog()) {
		fmt.Fprintf(&b, "  • %s\n", st.CategoryTitle(m.svc.Catalog(), c))
	}
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("enter start • q quit"))
	return b.String()
}

func (m Model) formView(st services.State) string {
	cat := m.svc.Catalog()
	cats := st.OrderedCategories(cat)
	if len(cats) == 0 {
		return ""
	}
	c := cats[min(m.category, len(cats)-1)]
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %s\n", selectedStyle.Render(st.CategoryTitle(cat, c)), headerStyle.Render(fmt.Sprintf("%d/%d", m.category+1, len(cats))))
	ratings := services.Resolve(st.Scores.Get(m.perspective), m.svc.Defaults())
	for i, q := range c.Questions {
		style, cursor := normalStyle, "  "
		if i == m.question {
			style, cursor = selectedStyle, "> "
		}
		fmt.Fprintf(&b, "%s%s %s\n", cursor, dots(ratings[q.ID]), style.Render(st.QuestionLabel(q)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func dots(v int) string {
	v = min(max(v, 0), catalog.MaxRating)
	return accentStyle.Render(strings.Repeat("●", v)) + headerStyle.Render(strings.Repeat("○", catalog.MaxRating-v))
}

func (m Model) scoresView(snap services.Snapshot) string {
	var b strings.Builder
	for _, cs := range snap.Summary.CategoryScores {
		name := cs.Name
		if snap.Tones[cs.ID] == services.ToneDanger {
			name = dangerStyle.Render(name)
		}
		fmt.Fprintf(&b, "%-28s %s %3d%%\n", name, m.bar.ViewAs(float64(cs.Score)/100), cs.Score)
	}
	for _, g := range snap.Gaps {
		if g.Flagged {
			fmt.Fprintf(&b, "%s\n", dangerStyle.Render(fmt.Sprintf("gap %s: %+d (%s leads)", g.Name, g.Delta, g.Leader)))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// chartView paints the current animation frame.
func (m Model) chartView() string {
	rows := min(max(m.height-10, 8), 18)
	scene := radar.BuildFrame(m.series, m.animator.Current(), m.opts.Radar)
	chart := Paint(scene, rows*2, rows).Render(layerStyles)
	var legend []string
	for _, l := range scene.Labels {
		legend = append(legend, fmt.Sprintf("%d %s", l.Index+1, l.Text))
	}
	return chart + "\n" + headerStyle.Render(strings.Join(legend, "  "))
}
