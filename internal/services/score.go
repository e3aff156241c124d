package services

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/soaringjerry/tuneup/internal/catalog"
)

// Clamp bounds a raw rating to the [0,5] scale.
func Clamp(raw int) int {
	if raw < catalog.MinRating {
		return catalog.MinRating
	}
	if raw > catalog.MaxRating {
		return catalog.MaxRating
	}
	return raw
}

// roundHalfUp rounds .5 towards positive infinity.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

// percent returns round(achieved/possible*100), 0 when nothing is possible.
func percent(achieved, possible int) int {
	if possible <= 0 {
		return 0
	}
	return roundHalfUp(float64(achieved) / float64(possible) * 100)
}

// CategoryScore is a derived per-category percentage.
type CategoryScore struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
	Icon  string `json:"icon,omitempty"`
}

// ScoreSummary is the output of the score model.
type ScoreSummary struct {
	Overall         int               `json:"overall"`
	CategoryScores  []CategoryScore   `json:"categoryScores"`
	Strengths       []CategoryScore   `json:"strengths"`
	Gaps            []CategoryScore   `json:"gaps"`
	Interpretations map[string]string `json:"interpretations"`
}

// ComputeScores turns ratings into category percentages, an overall percentage,
// strengths, gaps and interpretations. An absent rating counts as zero.
func ComputeScores(categories []catalog.Category, ratings Ratings) ScoreSummary {
	summary := ScoreSummary{
		CategoryScores:  make([]CategoryScore, 0, len(categories)),
		Interpretations: make(map[string]string, len(categories)),
	}
	totalAchieved, totalPossible := 0, 0
	for _, cat := range categories {
		achieved := 0
		for _, q := range cat.Questions {
			if v, ok := ratings[q.ID]; ok {
				achieved += Clamp(v)
			}
		}
		possible := len(cat.Questions) * catalog.MaxRating
		totalAchieved += achieved
		totalPossible += possible
		score := percent(achieved, possible)
		summary.CategoryScores = append(summary.CategoryScores, CategoryScore{ID: cat.ID, Name: cat.Name, Score: score})
		summary.Interpretations[cat.ID] = Interpret(score)
	}
	summary.Overall = percent(totalAchieved, totalPossible)
	summary.Strengths, summary.Gaps = rankExtremes(summary.CategoryScores)
	return summary
}

// rankExtremes takes the first two of a stable descending sort as strengths and
// the first two of that sequence reversed as gaps.
func rankExtremes(scores []CategoryScore) (strengths, gaps []CategoryScore) {
	sorted := append([]CategoryScore(nil), scores...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
	n := min(2, len(sorted))
	strengths = append(make([]CategoryScore, 0, n), sorted[:n]...)
	gaps = make([]CategoryScore, 0, n)
	for i := len(sorted) - 1; i >= len(sorted)-n; i-- {
		gaps = append(gaps, sorted[i])
	}
	return strengths, gaps
}

// Band is an interpretation range of a percentage score.
type Band string

const (
	BandFoundational Band = "foundational"
	BandTraction     Band = "traction"
	BandMomentum     Band = "momentum"
	BandExceptional  Band = "exceptional"
)

var bandText = map[Band]string{
	BandFoundational: "Foundational work needed. Prioritize quick wins and clarity.",
	BandTraction:     "Some traction, but inconsistent. Tighten systems and repeatability.",
	BandMomentum:     "Strong momentum. Focus on scale and operational excellence.",
	BandExceptional:  "Exceptional strength. Maintain edge and invest for compounding gains.",
}

// BandFor maps a percentage to its interpretation band (upper bounds inclusive).
func BandFor(score int) Band {
	switch {
	case score <= 39:
		return BandFoundational
	case score <= 59:
		return BandTraction
	case score <= 79:
		return BandMomentum
	default:
		return BandExceptional
	}
}

// Interpret returns the advice sentence for a percentage.
func Interpret(score int) string {
	return bandText[BandFor(score)]
}

// Tone marks a score as on track (accent) or below threshold (danger).
type Tone string

const (
	ToneAccent Tone = "accent"
	ToneDanger Tone = "danger"
)

// DefaultToneThreshold is the score below which a category is shown in the danger tone.
const DefaultToneThreshold = 80

// ToneFor returns the display tone of a score.
func ToneFor(score, threshold int) Tone {
	if score < threshold {
		return ToneDanger
	}
	return ToneAccent
}

// SummaryText renders the plain-text digest used for copy/export.
func SummaryText(s ScoreSummary) string {
	var b strings.Builder
	b.WriteString("Overall Score: ")
	b.WriteString(strconv.Itoa(s.Overall))
	for _, cs := range s.CategoryScores {
		b.WriteString("\n")
		b.WriteString(cs.Name)
		b.WriteString(": ")
		b.WriteString(strconv.Itoa(cs.Score))
	}
	b.WriteString("\nStrengths: ")
	b.WriteString(joinNames(s.Strengths))
	b.WriteString("\nGaps: ")
	b.WriteString(joinNames(s.Gaps))
	return b.String()
}

func joinNames(scores []CategoryScore) string {
	names := make([]string, 0, len(scores))
	for _, cs := range scores {
		names = append(names, cs.Name)
	}
	return strings.Join(names, ", ")
}
