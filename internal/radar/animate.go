package radar

import "time"

// DefaultDuration is the length of one transition.
const DefaultDuration = 150 * time.Millisecond

// EaseOut is the quadratic ease-out curve t(2-t).
func EaseOut(t float64) float64 { return t * (2 - t) }

// Animator interpolates series points towards a target. It is not safe for
// concurrent use; one host owns it and drives it with explicit timestamps.
type Animator struct {
	duration time.Duration
	from     [][]Point
	to       [][]Point
	start    time.Time
	current  [][]Point
	active   bool
}

// NewAnimator eases transitions over d. A zero duration jumps straight to targets.
func NewAnimator(d time.Duration) *Animator {
	if d < 0 {
		d = 0
	}
	return &Animator{duration: d}
}

// SetTarget starts a new animation at now from the live interpolated points.
// The first target, or one with a different series count, is applied at once.
func (a *Animator) SetTarget(target [][]Point, now time.Time) {
	if a.current == nil || len(a.current) != len(target) {
		a.current = clonePoints(target)
		a.to = a.current
		a.active = false
		return
	}
	if a.active {
		a.current = a.at(now)
	}
	a.from = a.current
	a.to = clonePoints(target)
	a.start = now
	a.active = true
}

// Frame advances to now and reports whether the animation has settled.
func (a *Animator) Frame(now time.Time) ([][]Point, bool) {
	if !a.active {
		return a.current, true
	}
	if a.progress(now) >= 1 {
		a.current = a.to
		a.active = false
		return a.current, true
	}
	a.current = a.at(now)
	return a.current, false
}

func (a *Animator) Current() [][]Point { return a.current }

func (a *Animator) Active() bool { return a.active }

func (a *Animator) progress(now time.Time) float64 {
	if a.duration <= 0 {
		return 1
	}
	p := float64(now.Sub(a.start)) / float64(a.duration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

func (a *Animator) at(now time.Time) [][]Point {
	return interpolate(a.from, a.to, EaseOut(a.progress(now)))
}

// interpolate blends each target point with its start; missing starts use the target.
func interpolate(from, to [][]Point, t float64) [][]Point {
	out := make([][]Point, len(to))
	for si, series := range to {
		var start []Point
		if si < len(from) {
			start = from[si]
		}
		out[si] = make([]Point, len(series))
		for pi, p := range series {
			s := p
			if pi < len(start) {
				s = start[pi]
			}
			out[si][pi] = Point{X: s.X + (p.X-s.X)*t, Y: s.Y + (p.Y-s.Y)*t}
		}
	}
	return out
}

func clonePoints(in [][]Point) [][]Point {
	out := make([][]Point, len(in))
	for i, s := range in {
		out[i] = append([]Point(nil), s...)
	}
	return out
}
