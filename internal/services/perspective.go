package services

import "github.com/soaringjerry/tuneup/internal/catalog"

// Ratings maps question id to a rating; a missing key means unanswered.
type Ratings map[string]int

// Clone returns an independent copy.
func (r Ratings) Clone() Ratings {
	out := make(Ratings, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Perspective names who gave a rating set.
type Perspective string

const (
	Individual Perspective = "individual"
	Manager    Perspective = "manager"
)

// ParsePerspective accepts "individual" or "manager".
func ParsePerspective(s string) (Perspective, bool) {
	switch Perspective(s) {
	case Individual, Manager:
		return Perspective(s), true
	}
	return "", false
}

// View selects which rating set feeds the score model and chart.
type View string

const (
	ViewIndividual View = "individual"
	ViewManager    View = "manager"
	ViewCombined   View = "combined"
)

// ParseView accepts "individual", "manager" or "combined".
func ParseView(s string) (View, bool) {
	switch View(s) {
	case ViewIndividual, ViewManager, ViewCombined:
		return View(s), true
	}
	return "", false
}

// DualScores holds the two independent rating sets of one assessment.
type DualScores struct {
	Individual Ratings `json:"individual"`
	Manager    Ratings `json:"manager"`
}

// Clone copies both rating sets.
func (d DualScores) Clone() DualScores {
	return DualScores{Individual: d.Individual.Clone(), Manager: d.Manager.Clone()}
}

// Get returns the ratings of p; anything but Manager means Individual.
func (d DualScores) Get(p Perspective) Ratings {
	if p == Manager {
		return d.Manager
	}
	return d.Individual
}

// BuildDefaults maps every catalog question to its default rating.
func BuildDefaults(categories []catalog.Category) Ratings {
	out := Ratings{}
	for _, cat := range categories {
		for _, q := range cat.Questions {
			out[q.ID] = q.DefaultValue
		}
	}
	return out
}

// NewDualScores starts both perspectives at defaults, as separate copies.
func NewDualScores(categories []catalog.Category) DualScores {
	defaults := BuildDefaults(categories)
	return DualScores{Individual: defaults, Manager: defaults.Clone()}
}

// Resolve fills every defaults key with the rating when present, else the default.
func Resolve(ratings, defaults Ratings) Ratings {
	out := make(Ratings, len(defaults))
	for id, def := range defaults {
		if v, ok := ratings[id]; ok {
			out[id] = v
		} else {
			out[id] = def
		}
	}
	return out
}

// edited reports whether the resolved value of id differs from its default.
// A question missing from defaults always counts as edited.
func edited(id string, ratings, defaults Ratings) bool {
	def, hasDefault := defaults[id]
	v, ok := ratings[id]
	if !ok {
		v = def
	}
	return !hasDefault || v != def
}

// HasAnyEdits reports whether any question resolves to a non-default value.
func HasAnyEdits(categories []catalog.Category, ratings, defaults Ratings) bool {
	for _, cat := range categories {
		for _, q := range cat.Questions {
			if edited(q.ID, ratings, defaults) {
				return true
			}
		}
	}
	return false
}

// IsPerspectiveComplete reports whether every category has at least one edited question.
func IsPerspectiveComplete(categories []catalog.Category, ratings, defaults Ratings) bool {
	for _, cat := range categories {
		touched := false
		for _, q := range cat.Questions {
			if edited(q.ID, ratings, defaults) {
				touched = true
				break
			}
		}
		if !touched {
			return false
		}
	}
	return true
}

// Combine averages the resolved individual and manager ratings, rounding half up.
func Combine(individual, manager, defaults Ratings) Ratings {
	a := Resolve(individual, defaults)
	b := Resolve(manager, defaults)
	out := make(Ratings, len(defaults))
	for id := range defaults {
		out[id] = roundHalfUp(float64(a[id]+b[id]) / 2)
	}
	return out
}

// PerspectiveStatus is the edit progress of one perspective.
type PerspectiveStatus struct {
	Edited   bool `json:"edited"`
	Complete bool `json:"complete"`
}

// StatusOf reports whether ratings were edited and whether every category was touched.
func StatusOf(categories []catalog.Category, ratings, defaults Ratings) PerspectiveStatus {
	return PerspectiveStatus{
		Edited:   HasAnyEdits(categories, ratings, defaults),
		Complete: IsPerspectiveComplete(categories, ratings, defaults),
	}
}

// RatingsFor resolves the rating set behind a view.
func RatingsFor(view View, scores DualScores, defaults Ratings) Ratings {
	switch view {
	case ViewManager:
		return Resolve(scores.Manager, defaults)
	case ViewCombined:
		return Combine(scores.Individual, scores.Manager, defaults)
	default:
		return Resolve(scores.Individual, defaults)
	}
}

// CombineSummaries averages two perspectives category by category, rounding half up.
// Categories missing from b keep their score from a.
func CombineSummaries(a, b ScoreSummary) ScoreSummary {
	other := make(map[string]int, len(b.CategoryScores))
	for _, cs := range b.CategoryScores {
		other[cs.ID] = cs.Score
	}
	out := ScoreSummary{
		Overall:         roundHalfUp(float64(a.Overall+b.Overall) / 2),
		CategoryScores:  make([]CategoryScore, 0, len(a.CategoryScores)),
		Interpretations: make(map[string]string, len(a.CategoryScores)),
	}
	for _, cs := range a.CategoryScores {
		if v, ok := other[cs.ID]; ok {
			cs.Score = roundHalfUp(float64(cs.Score+v) / 2)
		}
		out.CategoryScores = append(out.CategoryScores, cs)
		out.Interpretations[cs.ID] = Interpret(cs.Score)
	}
	out.Strengths, out.Gaps = rankExtremes(out.CategoryScores)
	return out
}

// SummaryFor scores the rating set behind a view. The combined view averages the
// two perspective summaries rather than scoring averaged ratings.
func SummaryFor(view View, categories []catalog.Category, scores DualScores, defaults Ratings) ScoreSummary {
	if view == ViewCombined {
		ind := ComputeScores(categories, Resolve(scores.Individual, defaults))
		man := ComputeScores(categories, Resolve(scores.Manager, defaults))
		return CombineSummaries(ind, man)
	}
	return ComputeScores(categories, RatingsFor(view, scores, defaults))
}
