package radar

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(id string, role Role, values ...int) Series {
	s := Series{ID: id, Role: role}
	names := []string{"Product", "Engineering", "Leadership", "Go-to-Market", "Finance"}
	for i, v := range values {
		s.Scores = append(s.Scores, Score{ID: names[i%len(names)], Name: names[i%len(names)], Value: v})
	}
	return s
}

func TestRadius(t *testing.T) {
	cases := []struct{ size, want float64 }{
		{320, 160 - 28},
		{400, 200 - 32},
		{100, 50 - 28},
	}
	for _, c := range cases {
		if got := Radius(c.size); math.Abs(got-c.want) > 1e-9 {
			t.Fatalf("Radius(%v)=%v, want %v", c.size, got, c.want)
		}
	}
}

func TestPointsOriginAndRim(t *testing.T) {
	radius := Radius(DefaultSize)
	pts := Points([]int{0, 100, 0, 100, 50}, radius)
	require.Len(t, pts, 5)
	assert.Equal(t, 0.0, pts[0].X)
	assert.Equal(t, 0.0, pts[0].Y)
	assert.InDelta(t, radius, pts[1].Len(), 1e-9)
	assert.InDelta(t, radius, pts[3].Len(), 1e-9)
	assert.InDelta(t, radius/2, pts[4].Len(), 1e-9)
}

func TestFirstCategoryPointsUp(t *testing.T) {
	p := Polar(0, 5, 10)
	assert.InDelta(t, 0, p.X, 1e-9)
	assert.InDelta(t, -10, p.Y, 1e-9)
	// clockwise on screen: the second spoke is to the right of the first
	assert.Greater(t, Polar(1, 5, 10).X, 0.0)
}

func TestGrid(t *testing.T) {
	radius := Radius(DefaultSize)
	rings := Rings(5, radius)
	require.Len(t, rings, len(RingLevels))
	for i, ring := range rings {
		require.Len(t, ring, 5)
		assert.InDelta(t, radius*float64(RingLevels[i])/100, ring[0].Len(), 1e-9)
	}
	assert.Nil(t, Rings(0, radius))
	assert.Len(t, Spokes(3, radius), 3)
}

func TestSplitLabel(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"Finance", []string{"Finance"}},
		{"Go-to-Market", []string{"Go-to-Market"}},
		{"Go-to-Market-Plan", []string{"Go-to", "Market-Plan"}},
		{"Customer-Success", []string{"Customer-Success"}},
		{"Operational Excellence", []string{"Operational", "Excellence"}},
		{"People and Culture", []string{"People and", "Culture"}},
		{"Supercalifragilistic", []string{"Supercalifragilistic"}},
	}
	for _, c := range cases {
		if diff := cmp.Diff(c.want, SplitLabel(c.in)); diff != "" {
			t.Fatalf("SplitLabel(%q) (-want +got):\n%s", c.in, diff)
		}
	}
}

func TestWithAlpha(t *testing.T) {
	cases := []struct {
		color string
		alpha float64
		want  string
	}{
		{"#ed0f94", 0.25, "rgba(237, 15, 148, 0.25)"},
		{"rgb(1, 2, 3)", 0.5, "rgba(1, 2, 3, 0.5)"},
		{"rgba(1, 2, 3, 0.9)", 0, "rgba(1, 2, 3, 0)"},
		{"tomato", 0.1, "rgba(255, 227, 162, 0.1)"},
	}
	for _, c := range cases {
		if got := WithAlpha(c.color, c.alpha); got != c.want {
			t.Fatalf("WithAlpha(%q,%v)=%q, want %q", c.color, c.alpha, got, c.want)
		}
	}
}

func TestBuildSingleSeries(t *testing.T) {
	scene := Build([]Series{series("primary", RoleIndividual, 80, 60, 75, 76, 100)}, Options{})
	require.Len(t, scene.Series, 1)
	s := scene.Series[0]
	assert.False(t, scene.Multi)
	assert.Equal(t, 2.0, s.Width)
	require.Len(t, s.Edges, 5)
	// 60 and 75 are at or below the weak threshold
	require.Len(t, s.Wedges, 2)
	assert.Equal(t, 1, s.Wedges[0].Index)
	assert.Equal(t, 2, s.Wedges[1].Index)
	assert.Equal(t, Point{}, s.Wedges[0].Polygon[0])
	assert.Equal(t, DefaultPalette.Accent, s.Edges[0].FromColor)
	assert.Equal(t, DefaultPalette.Danger, s.Edges[0].ToColor)
	assert.Equal(t, DefaultPalette.Accent, s.Edges[4].ToColor)
	assert.Empty(t, scene.Gaps)
	require.Len(t, scene.Labels, 5)
	assert.Equal(t, AnchorMiddle, scene.Labels[0].Anchor)
	assert.Equal(t, AnchorStart, scene.Labels[1].Anchor)
	assert.Equal(t, AnchorEnd, scene.Labels[4].Anchor)
	assert.InDelta(t, scene.Radius+LabelOffset, scene.Labels[2].Position.Len(), 1e-9)
}

func TestBuildCombinedGapIndicators(t *testing.T) {
	ind := series("individual", RoleIndividual, 100, 100, 100, 100, 100)
	man := series("manager", RoleManager, 0, 0, 0, 0, 0)
	scene := Build([]Series{ind, man}, Options{})
	assert.True(t, scene.Multi)
	for _, s := range scene.Series {
		assert.Equal(t, 1.0, s.Width)
		assert.Empty(t, s.Edges)
		assert.Empty(t, s.Wedges)
	}
	require.Len(t, scene.Gaps, 5)
	for _, g := range scene.Gaps {
		assert.Equal(t, RoleIndividual, g.Leader)
		assert.Equal(t, -100, g.Delta)
		assert.InDelta(t, scene.Radius, g.Dot.Len(), 1e-9)
		assert.Len(t, g.Polygon, 2*(arcSteps+1))
	}
}

func TestGapThreshold(t *testing.T) {
	ind := series("individual", RoleIndividual, 50, 50, 50)
	man := series("manager", RoleManager, 57, 58, 42)
	scene := Build([]Series{ind, man}, Options{})
	require.Len(t, scene.Gaps, 2)
	assert.Equal(t, 1, scene.Gaps[0].Index)
	assert.Equal(t, RoleManager, scene.Gaps[0].Leader)
	assert.Equal(t, DefaultPalette.Accent, scene.Gaps[0].Color)
	assert.Equal(t, 2, scene.Gaps[1].Index)
	assert.Equal(t, RoleIndividual, scene.Gaps[1].Leader)
}

func TestBuildDegenerate(t *testing.T) {
	empty := Build([]Series{{ID: "primary"}}, Options{})
	assert.Empty(t, empty.Series[0].Points)
	assert.Empty(t, empty.Labels)
	assert.Empty(t, empty.Rings)

	one := Build([]Series{series("primary", RoleIndividual, 40)}, Options{})
	require.Len(t, one.Series[0].Points, 1)
	require.Len(t, one.Series[0].Edges, 1)
	require.Len(t, one.Series[0].Wedges, 1)
	assert.NotPanics(t, func() { RenderSVG(one) })

	none := Build(nil, Options{})
	assert.Empty(t, none.Series)
}

func TestAnimatorEasesAndRestartsFromLiveState(t *testing.T) {
	start := time.Unix(0, 0)
	a := NewAnimator(100 * time.Millisecond)
	a.SetTarget([][]Point{{{X: 0, Y: 0}}}, start)
	pts, done := a.Frame(start)
	require.True(t, done)
	assert.Equal(t, Point{}, pts[0][0])

	a.SetTarget([][]Point{{{X: 100, Y: 0}}}, start)
	pts, done = a.Frame(start.Add(50 * time.Millisecond))
	require.False(t, done)
	assert.InDelta(t, 75, pts[0][0].X, 1e-9) // EaseOut(0.5) = 0.75

	// retarget mid-flight: the new animation starts where the old one is at that instant
	retarget := start.Add(50 * time.Millisecond)
	a.SetTarget([][]Point{{{X: 0, Y: 0}}}, retarget)
	pts, _ = a.Frame(retarget)
	assert.InDelta(t, 75, pts[0][0].X, 1e-9)
	pts, done = a.Frame(retarget.Add(100 * time.Millisecond))
	require.True(t, done)
	assert.Equal(t, 0.0, pts[0][0].X)
}

func TestAnimatorJumpsWhenSeriesCountChanges(t *testing.T) {
	now := time.Unix(0, 0)
	a := NewAnimator(DefaultDuration)
	a.SetTarget([][]Point{{{X: 1}}}, now)
	a.SetTarget([][]Point{{{X: 5}}, {{X: 7}}}, now)
	assert.False(t, a.Active())
	pts, done := a.Frame(now)
	require.True(t, done)
	assert.Equal(t, 5.0, pts[0][0].X)
	assert.Equal(t, 7.0, pts[1][0].X)
}

func TestAnimatorNewPointsStartAtTarget(t *testing.T) {
	now := time.Unix(0, 0)
	a := NewAnimator(DefaultDuration)
	a.SetTarget([][]Point{{{X: 1}}}, now)
	a.SetTarget([][]Point{{{X: 3}, {X: 9}}}, now)
	pts, _ := a.Frame(now.Add(DefaultDuration / 2))
	assert.Equal(t, 9.0, pts[0][1].X)
}

func TestBuildFrameUsesInterpolatedPoints(t *testing.T) {
	s := []Series{series("primary", RoleIndividual, 100, 100, 100)}
	frame := [][]Point{{{X: 1, Y: 1}, {X: 2, Y: 2}, {X: 3, Y: 3}}}
	scene := BuildFrame(s, frame, Options{})
	assert.Equal(t, frame[0], scene.Series[0].Points)
	// mismatched frames fall back to the resting geometry
	scene = BuildFrame(s, [][]Point{{{X: 1}}}, Options{})
	assert.Equal(t, Targets(s, DefaultSize)[0], scene.Series[0].Points)
}

func TestRenderSVG(t *testing.T) {
	s := series("primary", RoleIndividual, 90, 40, 60, 80, 100)
	s.Scores[0].Icon = "product"
	s.Scores[1].Name = "R&D <core>"
	scene := Build([]Series{s}, Options{IconHref: func(ref string) string { return "/icons/" + ref + ".svg" }})
	out := string(RenderSVG(scene))
	assert.True(t, strings.HasPrefix(out, `<svg xmlns="http://www.w3.org/2000/svg" width="320"`))
	assert.Contains(t, out, `href="/icons/product.svg"`)
	assert.Contains(t, out, "R&amp;D &lt;core&gt;")
	assert.Contains(t, out, `url(#weak-0-0)`)
	assert.Contains(t, out, `url(#edge-0-4)`)
	assert.Equal(t, len(RingLevels), strings.Count(out, `stroke="rgba(255, 255, 255, 0.1)"`))
	assert.True(t, strings.HasSuffix(out, "</g></svg>"))
}

func TestRenderSVGCombined(t *testing.T) {
	scene := Build([]Series{
		series("individual", RoleIndividual, 100, 20, 50),
		series("manager", RoleManager, 0, 20, 55),
	}, Options{})
	out := string(RenderSVG(scene))
	assert.Contains(t, out, `stroke-dasharray="4 3"`)
	assert.Equal(t, 1, strings.Count(out, "<circle"))
}
