package radar

import "math"

// Score is one category value on the chart.
type Score struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Value int    `json:"value"`
	Icon  string `json:"icon,omitempty"`
}

// Role tells which perspective a series draws.
type Role string

const (
	RoleIndividual Role = "individual"
	RoleManager    Role = "manager"
)

// Series is a named score sequence; all series share the category order.
type Series struct {
	ID     string  `json:"id"`
	Role   Role    `json:"role"`
	Scores []Score `json:"scores"`
}

func (s Series) values() []int {
	out := make([]int, len(s.Scores))
	for i, sc := range s.Scores {
		out[i] = sc.Value
	}
	return out
}

// Options sizes and styles a scene. Zero values take defaults.
type Options struct {
	Size          float64
	WeakThreshold int
	GapThreshold  int
	// GapSpan is the half-width of a gap wedge as a fraction of the angle between spokes.
	GapSpan float64
	Palette Palette
	// IconHref resolves an icon reference for painters; labels without a
	// resolvable icon fall back to text.
	IconHref func(ref string) string
}

func (o Options) withDefaults() Options {
	if o.Size <= 0 {
		o.Size = DefaultSize
	}
	if o.WeakThreshold == 0 {
		o.WeakThreshold = WeakThreshold
	}
	if o.GapThreshold == 0 {
		o.GapThreshold = GapThreshold
	}
	if o.GapSpan <= 0 {
		o.GapSpan = 0.08
	}
	o.Palette = o.Palette.withDefaults()
	return o
}

// Edge is one polygon side stroked with a two-stop gradient.
type Edge struct {
	From      Point  `json:"from"`
	To        Point  `json:"to"`
	FromColor string `json:"fromColor"`
	ToColor   string `json:"toColor"`
}

// Wedge shades the sector behind a weak vertex with a radial gradient from
// the centre (Inner color) to the chart radius (Outer color).
type Wedge struct {
	Index   int     `json:"index"`
	Polygon []Point `json:"polygon"`
	Inner   string  `json:"inner"`
	Outer   string  `json:"outer"`
}

// SeriesShape is one series resolved to points and stroke styling.
type SeriesShape struct {
	ID     string  `json:"id"`
	Role   Role    `json:"role"`
	Points []Point `json:"points"`
	Fill   string  `json:"fill"`
	Stroke string  `json:"stroke,omitempty"`
	Width  float64 `json:"width"`
	Dashed bool    `json:"dashed,omitempty"`
	Edges  []Edge  `json:"edges,omitempty"`
	Wedges []Wedge `json:"wedges,omitempty"`
}

// GapMarker flags a category where manager and individual disagree.
type GapMarker struct {
	Index   int     `json:"index"`
	ID      string  `json:"id"`
	Delta   int     `json:"delta"`
	Leader  Role    `json:"leader"`
	Color   string  `json:"color"`
	Polygon []Point `json:"polygon"`
	Dot     Point   `json:"dot"`
}

// Label is a category name placed outside the outer ring.
type Label struct {
	Index    int      `json:"index"`
	Text     string   `json:"text"`
	Lines    []string `json:"lines"`
	Position Point    `json:"position"`
	Anchor   Anchor   `json:"anchor"`
	Icon     string   `json:"icon,omitempty"`
	IconHref string   `json:"iconHref,omitempty"`
}

// Scene is everything a painter needs for one frame.
type Scene struct {
	Size    float64       `json:"size"`
	Radius  float64       `json:"radius"`
	Multi   bool          `json:"multi"`
	Rings   [][]Point     `json:"rings"`
	Spokes  []Point       `json:"spokes"`
	Series  []SeriesShape `json:"series"`
	Gaps    []GapMarker   `json:"gaps"`
	Labels  []Label       `json:"labels"`
	Palette Palette       `json:"palette"`
}

// Targets returns the resting points of every series.
func Targets(series []Series, size float64) [][]Point {
	if size <= 0 {
		size = DefaultSize
	}
	radius := Radius(size)
	out := make([][]Point, len(series))
	for i, s := range series {
		out[i] = Points(s.values(), radius)
	}
	return out
}

// Build lays out the resting scene.
func Build(series []Series, opts Options) Scene {
	opts = opts.withDefaults()
	return BuildFrame(series, Targets(series, opts.Size), opts)
}

// BuildFrame lays out a scene using the given (possibly interpolated) points.
// Styling decisions always follow the scores, not the points.
func BuildFrame(series []Series, points [][]Point, opts Options) Scene {
	opts = opts.withDefaults()
	radius := Radius(opts.Size)
	var axis []Score
	if len(series) > 0 {
		axis = series[0].Scores
	}
	n := len(axis)
	scene := Scene{
		Size:    opts.Size,
		Radius:  radius,
		Multi:   len(series) > 1,
		Rings:   Rings(n, radius),
		Spokes:  Spokes(n, radius),
		Series:  make([]SeriesShape, 0, len(series)),
		Palette: opts.Palette,
	}
	for i, s := range series {
		var pts []Point
		if i < len(points) {
			pts = points[i]
		}
		if len(pts) != len(s.Scores) {
			pts = Points(s.values(), radius)
		}
		scene.Series = append(scene.Series, shapeSeries(s, pts, scene.Multi, opts))
	}
	if scene.Multi {
		scene.Gaps = gapMarkers(series, scene.Series, opts)
	}
	scene.Labels = labels(axis, radius, opts)
	return scene
}

func shapeSeries(s Series, pts []Point, multi bool, opts Options) SeriesShape {
	p := opts.Palette
	shape := SeriesShape{ID: s.ID, Role: s.Role, Points: pts}
	if multi {
		shape.Fill = WithAlpha(p.Muted, 0.08)
		shape.Stroke = WithAlpha(p.Muted, 0.85)
		shape.Width = 1
		shape.Dashed = s.Role == RoleManager
		return shape
	}
	shape.Fill = WithAlpha(p.Accent, 0.22)
	shape.Width = 2
	n := len(pts)
	toneOf := func(i int) string {
		if s.Scores[i].Value > opts.WeakThreshold {
			return p.Accent
		}
		return p.Danger
	}
	for i := range pts {
		next := (i + 1) % n
		shape.Edges = append(shape.Edges, Edge{From: pts[i], To: pts[next], FromColor: toneOf(i), ToColor: toneOf(next)})
		if s.Scores[i].Value > opts.WeakThreshold {
			continue
		}
		prev := (i - 1 + n) % n
		shape.Wedges = append(shape.Wedges, Wedge{
			Index:   i,
			Polygon: []Point{{}, mid(pts[prev], pts[i]), pts[i], mid(pts[next], pts[i])},
			Inner:   WithAlpha(p.Danger, 0),
			Outer:   WithAlpha(p.Danger, 0.25),
		})
	}
	return shape
}

func findRole(series []Series, role Role) int {
	for i, s := range series {
		if s.Role == role {
			return i
		}
	}
	return -1
}

// gapMarkers draws an annular wedge between the individual and manager radii
// of every category whose scores differ by at least the gap threshold.
func gapMarkers(series []Series, shapes []SeriesShape, opts Options) []GapMarker {
	ind, man := findRole(series, RoleIndividual), findRole(series, RoleManager)
	if ind < 0 || man < 0 {
		return nil
	}
	a, b := series[ind].Scores, series[man].Scores
	n := min(len(a), len(b))
	span := 2 * math.Pi / float64(max(n, 1)) * opts.GapSpan
	var out []GapMarker
	for i := 0; i < n; i++ {
		delta := b[i].Value - a[i].Value
		if abs(delta) < opts.GapThreshold {
			continue
		}
		r1, r2 := shapes[ind].Points[i].Len(), shapes[man].Points[i].Len()
		inner, outer := math.Min(r1, r2), math.Max(r1, r2)
		marker := GapMarker{Index: i, ID: a[i].ID, Delta: delta, Leader: RoleIndividual, Color: opts.Palette.Danger}
		if delta > 0 {
			marker.Leader = RoleManager
			marker.Color = opts.Palette.Accent
		}
		angle := Angle(i, n)
		marker.Polygon = annulus(angle-span, angle+span, inner, outer)
		marker.Dot = Point{X: math.Cos(angle) * outer, Y: math.Sin(angle) * outer}
		out = append(out, marker)
	}
	return out
}

const arcSteps = 6

func annulus(from, to, inner, outer float64) []Point {
	pts := make([]Point, 0, 2*(arcSteps+1))
	for k := 0; k <= arcSteps; k++ {
		a := from + (to-from)*float64(k)/arcSteps
		pts = append(pts, Point{X: math.Cos(a) * outer, Y: math.Sin(a) * outer})
	}
	for k := arcSteps; k >= 0; k-- {
		a := from + (to-from)*float64(k)/arcSteps
		pts = append(pts, Point{X: math.Cos(a) * inner, Y: math.Sin(a) * inner})
	}
	return pts
}

func labels(axis []Score, radius float64, opts Options) []Label {
	out := make([]Label, 0, len(axis))
	for i, sc := range axis {
		pos := Polar(i, len(axis), radius+LabelOffset)
		l := Label{Index: i, Text: sc.Name, Lines: SplitLabel(sc.Name), Position: pos, Anchor: anchorFor(pos.X), Icon: sc.Icon}
		if sc.Icon != "" && opts.IconHref != nil {
			l.IconHref = opts.IconHref(sc.Icon)
		}
		out = append(out, l)
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
