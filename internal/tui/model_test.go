package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soaringjerry/tuneup/internal/catalog"
	"github.com/soaringjerry/tuneup/internal/radar"
	"github.com/soaringjerry/tuneup/internal/services"
)

type memStore struct {
	mu   sync.Mutex
	data []byte
}

func (s *memStore) Load(context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data, nil
}

func (s *memStore) Save(_ context.Context, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
	return nil
}

func (s *memStore) Clear(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}

var t0 = time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

func newModel(t *testing.T) (Model, *services.AssessmentService) {
	t.Helper()
	svc := services.NewAssessmentService(catalog.Default(), &memStore{}, services.AssessmentOptions{SaveDelay: time.Hour})
	t.Cleanup(svc.Close)
	m := New(svc, Options{
		Animation:     150 * time.Millisecond,
		MarkdownStyle: "notty",
		Now:           func() time.Time { return t0 },
	})
	return m, svc
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, keys ...string) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		var next tea.Model
		next, cmd = m.Update(key(k))
		m = next.(Model)
	}
	return m, cmd
}

func TestWelcomeThenRate(t *testing.T) {
	m, svc := newModel(t)
	assert.Contains(t, m.View(), "enter start")

	m, _ = press(m, "enter")
	require.Equal(t, services.StepAssessment, svc.State().Step)

	m, _ = press(m, "right")
	assert.Equal(t, 4, svc.State().Scores.Individual["product-vision"])

	m, _ = press(m, "j", "0")
	assert.Equal(t, 0, svc.State().Scores.Individual["product-discovery"])

	m, _ = press(m, "p", "5")
	st := svc.State()
	assert.Equal(t, 5, st.Scores.Manager["product-discovery"])
	assert.Equal(t, 0, st.Scores.Individual["product-discovery"])
	assert.Contains(t, m.View(), "editing manager")
}

func TestNavigationWrapsCategories(t *testing.T) {
	m, _ := newModel(t)
	m, _ = press(m, "enter", "j", "j", "j", "j", "j", "j", "j")
	assert.Equal(t, 4, m.question)

	m, _ = press(m, "shift+tab")
	assert.Equal(t, 4, m.category)
	assert.Equal(t, 0, m.question)

	m, _ = press(m, "tab")
	assert.Equal(t, 0, m.category)
}

func TestRatingAnimatesUntilSettled(t *testing.T) {
	m, _ := newModel(t)
	before := m.animator.Current()[0][0]

	m, cmd := press(m, "enter", "5")
	require.NotNil(t, cmd)
	require.True(t, m.animator.Active())

	next, cmd := m.Update(frameMsg(t0.Add(50 * time.Millisecond)))
	m = next.(Model)
	assert.NotNil(t, cmd)
	mid := m.animator.Current()[0][0]
	assert.Less(t, mid.Y, before.Y)

	next, cmd = m.Update(frameMsg(t0.Add(time.Second)))
	m = next.(Model)
	assert.Nil(t, cmd)
	assert.False(t, m.animator.Active())
	assert.Equal(t, radar.Targets(m.series, m.opts.Radar.Size), m.animator.Current())
}

func TestViewCycleAndReset(t *testing.T) {
	m, svc := newModel(t)
	m, _ = press(m, "enter", "v")
	assert.Equal(t, services.ViewManager, svc.State().View)
	assert.Len(t, m.series, 1)

	m, cmd := press(m, "v")
	assert.Equal(t, services.ViewCombined, svc.State().View)
	assert.Len(t, m.series, 2)
	assert.Nil(t, cmd, "a new series count is applied without animating")

	m, _ = press(m, "0", "x")
	assert.Equal(t, 3, svc.State().Scores.Individual["product-vision"])
	assert.Equal(t, "scores reset", m.status)
}

func TestShareShowsLink(t *testing.T) {
	m, _ := newModel(t)
	m, _ = press(m, "enter", "s")
	assert.True(t, strings.HasPrefix(m.status, "/?s="), m.status)
	assert.Contains(t, m.View(), "/?s=")
}

func TestReportMode(t *testing.T) {
	m, _ := newModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	m, _ = press(m, "enter", "r")
	require.Equal(t, modeReport, m.mode)
	out := m.View()
	assert.Contains(t, out, "Top Talent Tune-up")
	assert.Contains(t, out, "2026-01-02")

	m, _ = press(m, "esc")
	assert.Equal(t, modeAssess, m.mode)
}

func TestQuit(t *testing.T) {
	m, _ := newModel(t)
	for _, k := range []string{"q", "ctrl+c"} {
		var cmd tea.Cmd
		if k == "ctrl+c" {
			_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		} else {
			_, cmd = press(m, k)
		}
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	}
}

func TestCanvasDots(t *testing.T) {
	c := NewCanvas(1, 1)
	c.Set(0, 0, layerGrid)
	assert.Equal(t, "⠁", c.Render(nil))

	for x := 0; x < 2; x++ {
		for y := 0; y < 4; y++ {
			c.Set(x, y, layerGrid)
		}
	}
	c.Set(5, 5, layerGrid)
	assert.Equal(t, "⣿", c.Render(nil))
}

func TestCanvasDashedLine(t *testing.T) {
	c := NewCanvas(4, 1)
	c.Line(0, 0, 7, 0, layerGrid, 2)
	// dots 0,1 on; 2,3 off; 4,5 on; 6,7 off
	assert.Equal(t, "⠉⠀⠉⠀", c.Render(nil))
}

func TestPaintLayers(t *testing.T) {
	scores := func(v int) []radar.Score {
		return []radar.Score{{ID: "a", Value: v}, {ID: "b", Value: 90}, {ID: "c", Value: 90}}
	}
	series := []radar.Series{
		{ID: "individual", Role: radar.RoleIndividual, Scores: scores(20)},
		{ID: "manager", Role: radar.RoleManager, Scores: scores(90)},
	}
	c := Paint(radar.Build(series, radar.Options{}), 24, 12)
	seen := map[layer]bool{}
	for _, l := range c.layers {
		seen[l] = true
	}
	assert.True(t, seen[layerGrid])
	assert.True(t, seen[layerIndividual])
	assert.True(t, seen[layerGapManager], "manager leads on a")

	single := Paint(radar.Build(series[:1], radar.Options{}), 24, 12)
	seen = map[layer]bool{}
	for _, l := range single.layers {
		seen[l] = true
	}
	assert.True(t, seen[layerDanger])
	assert.False(t, seen[layerIndividual])
}
