package services

import "github.com/soaringjerry/tuneup/internal/catalog"

// PerspectiveGap compares the two perspectives on one category.
type PerspectiveGap struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Individual int         `json:"individual"`
	Manager    int         `json:"manager"`
	Delta      int         `json:"delta"`
	Leader     Perspective `json:"leader,omitempty"`
	Flagged    bool        `json:"flagged"`
}

// ComparePerspectives pairs category scores by id. Delta is manager minus
// individual; a gap is flagged when its magnitude reaches threshold.
func ComparePerspectives(individual, manager []CategoryScore, threshold int) []PerspectiveGap {
	byID := make(map[string]int, len(manager))
	for _, cs := range manager {
		byID[cs.ID] = cs.Score
	}
	out := make([]PerspectiveGap, 0, len(individual))
	for _, cs := range individual {
		m, ok := byID[cs.ID]
		if !ok {
			continue
		}
		g := PerspectiveGap{ID: cs.ID, Name: cs.Name, Individual: cs.Score, Manager: m, Delta: m - cs.Score}
		switch {
		case g.Delta > 0:
			g.Leader = Manager
		case g.Delta < 0:
			g.Leader = Individual
		}
		g.Flagged = g.Delta >= threshold || -g.Delta >= threshold
		out = append(out, g)
	}
	return out
}

// CategoryHistogram counts resolved ratings per value for one category.
type CategoryHistogram struct {
	ID        string `json:"id"`
	Histogram []int  `json:"histogram"`
	Total     int    `json:"total"`
}

// Distribution builds a 0..5 histogram per category.
func Distribution(categories []catalog.Category, ratings Ratings) []CategoryHistogram {
	out := make([]CategoryHistogram, 0, len(categories))
	for _, c := range categories {
		h := CategoryHistogram{ID: c.ID, Histogram: make([]int, catalog.MaxRating-catalog.MinRating+1)}
		for _, q := range c.Questions {
			v, ok := ratings[q.ID]
			if !ok {
				continue
			}
			h.Histogram[Clamp(v)-catalog.MinRating]++
			h.Total++
		}
		out = append(out, h)
	}
	return out
}

// Agreement is the share of questions, in percent, where the two resolved
// ratings differ by at most one point.
func Agreement(individual, manager, defaults Ratings) int {
	if len(defaults) == 0 {
		return 100
	}
	a, b := Resolve(individual, defaults), Resolve(manager, defaults)
	near := 0
	for id := range defaults {
		d := a[id] - b[id]
		if d >= -1 && d <= 1 {
			near++
		}
	}
	return percent(near, len(defaults))
}

// Insights gathers the comparison views shown next to the chart.
type Insights struct {
	Strengths    []CategoryScore     `json:"strengths"`
	Gaps         []CategoryScore     `json:"gaps"`
	Perspectives []PerspectiveGap    `json:"perspectives"`
	Agreement    int                 `json:"agreement"`
	Individual   []CategoryHistogram `json:"individualDistribution"`
	Manager      []CategoryHistogram `json:"managerDistribution"`
}

// Insights derives distributions, agreement and perspective gaps for view.
func (s *AssessmentService) Insights(view View) Insights {
	snap := s.Snapshot(view)
	st := snap.State
	cats := s.catalog.Categories
	return Insights{
		Strengths:    snap.Summary.Strengths,
		Gaps:         snap.Summary.Gaps,
		Perspectives: snap.Gaps,
		Agreement:    Agreement(st.Scores.Individual, st.Scores.Manager, s.defaults),
		Individual:   Distribution(cats, Resolve(st.Scores.Individual, s.defaults)),
		Manager:      Distribution(cats, Resolve(st.Scores.Manager, s.defaults)),
	}
}
