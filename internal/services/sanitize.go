package services

import (
	"encoding/json"
	"errors"
	"math"

	"github.com/soaringjerry/tuneup/internal/catalog"
)

// looseState mirrors State with every field left undecoded so that one
// wrong-typed field cannot reject the whole document.
type looseState struct {
	Step                 json.RawMessage `json:"step"`
	Founder              json.RawMessage `json:"founder"`
	Scores               json.RawMessage `json:"scores"`
	Answers              json.RawMessage `json:"answers"`
	Labels               json.RawMessage `json:"labels"`
	CategoryLabels       json.RawMessage `json:"categoryLabels"`
	CategoryDescriptions json.RawMessage `json:"categoryDescriptions"`
	CategoryOrder        json.RawMessage `json:"categoryOrder"`
	View                 json.RawMessage `json:"view"`
	EditMode             json.RawMessage `json:"editMode"`
}

var errNotObject = errors.New("state document is not a JSON object")

func decodeLoose(data []byte) (looseState, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil || probe == nil {
		if err == nil {
			err = errNotObject
		}
		return looseState{}, err
	}
	var ls looseState
	if err := json.Unmarshal(data, &ls); err != nil {
		return looseState{}, err
	}
	return ls, nil
}

// SanitizeShared coerces a share payload into a state. Ratings are clamped,
// unknown keys dropped, the step forced to assessment and edit mode cleared.
func SanitizeShared(data []byte, cat *catalog.Catalog) (State, error) {
	ls, err := decodeLoose(data)
	if err != nil {
		return State{}, err
	}
	s := sanitizeCommon(ls, cat)
	s.Step = StepAssessment
	s.EditMode = false
	return s, nil
}

// SanitizeStored coerces a persisted document into a state. Unlike shared
// payloads it keeps step, view, order and edit mode.
func SanitizeStored(data []byte, cat *catalog.Catalog) (State, error) {
	ls, err := decodeLoose(data)
	if err != nil {
		return State{}, err
	}
	s := sanitizeCommon(ls, cat)
	var step string
	if json.Unmarshal(ls.Step, &step) == nil && (Step(step) == StepWelcome || Step(step) == StepAssessment) {
		s.Step = Step(step)
	}
	var view string
	if json.Unmarshal(ls.View, &view) == nil {
		if v, ok := ParseView(view); ok {
			s.View = v
		}
	}
	var edit bool
	if json.Unmarshal(ls.EditMode, &edit) == nil {
		s.EditMode = edit
	}
	var order []string
	if json.Unmarshal(ls.CategoryOrder, &order) == nil && len(order) > 0 {
		s.CategoryOrder = idsOf(orderCategories(cat, order))
	}
	return s, nil
}

func sanitizeCommon(ls looseState, cat *catalog.Catalog) State {
	s := InitialState(cat)
	defaults := BuildDefaults(cat.Categories)

	var scores map[string]json.RawMessage
	if json.Unmarshal(ls.Scores, &scores) == nil && scores != nil {
		s.Scores.Individual = sanitizeRatings(scores[string(Individual)], defaults)
		s.Scores.Manager = sanitizeRatings(scores[string(Manager)], defaults)
	} else if len(ls.Answers) > 0 {
		s.Scores.Individual = sanitizeRatings(ls.Answers, defaults)
	}

	s.Founder = sanitizeFounder(ls.Founder)
	s.Labels = sanitizeStrings(ls.Labels, cat.HasQuestion)
	s.CategoryLabels = sanitizeStrings(ls.CategoryLabels, cat.HasCategory)
	s.CategoryDescriptions = sanitizeStrings(ls.CategoryDescriptions, cat.HasCategory)
	return s
}

// sanitizeRatings starts from defaults and takes every numeric value for a
// known question, rounded half up and clamped.
func sanitizeRatings(raw json.RawMessage, defaults Ratings) Ratings {
	out := defaults.Clone()
	var in map[string]any
	if json.Unmarshal(raw, &in) != nil {
		return out
	}
	for id := range defaults {
		if f, ok := in[id].(float64); ok {
			out[id] = clampFloat(f)
		}
	}
	return out
}

func clampFloat(f float64) int {
	f = math.Max(catalog.MinRating, math.Min(catalog.MaxRating, f))
	return roundHalfUp(f)
}

func sanitizeStrings(raw json.RawMessage, known func(string) bool) map[string]string {
	out := map[string]string{}
	var in map[string]any
	if json.Unmarshal(raw, &in) != nil {
		return out
	}
	for k, v := range in {
		if str, ok := v.(string); ok && known(k) {
			out[k] = str
		}
	}
	return out
}

func sanitizeFounder(raw json.RawMessage) Founder {
	var in map[string]any
	if json.Unmarshal(raw, &in) != nil {
		return Founder{}
	}
	str := func(k string) string {
		v, _ := in[k].(string)
		return v
	}
	return Founder{Name: str("name"), Company: str("company"), AssessmentName: str("assessmentName")}
}

func idsOf(categories []catalog.Category) []string {
	out := make([]string, 0, len(categories))
	for _, c := range categories {
		out = append(out, c.ID)
	}
	return out
}
