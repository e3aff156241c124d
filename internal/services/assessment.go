package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/soaringjerry/tuneup/internal/catalog"
)

// Step is the screen the founder is on.
type Step string

const (
	StepWelcome    Step = "welcome"
	StepAssessment Step = "assessment"
)

// Founder is the profile shown on reports and share links.
type Founder struct {
	Name           string `json:"name"`
	Company        string `json:"company"`
	AssessmentName string `json:"assessmentName"`
}

// State is the whole assessment document. It is changed only through Reduce.
type State struct {
	Step                 Step              `json:"step"`
	Founder              Founder           `json:"founder"`
	Scores               DualScores        `json:"scores"`
	Labels               map[string]string `json:"labels"`
	CategoryLabels       map[string]string `json:"categoryLabels"`
	CategoryDescriptions map[string]string `json:"categoryDescriptions"`
	CategoryOrder        []string          `json:"categoryOrder"`
	View                 View              `json:"view"`
	EditMode             bool              `json:"editMode"`
}

// InitialState is a fresh document on the welcome step with default ratings.
func InitialState(cat *catalog.Catalog) State {
	return State{
		Step:                 StepWelcome,
		Scores:               NewDualScores(cat.Categories),
		Labels:               map[string]string{},
		CategoryLabels:       map[string]string{},
		CategoryDescriptions: map[string]string{},
		CategoryOrder:        cat.CategoryIDs(),
		View:                 ViewIndividual,
	}
}

// Clone deep-copies the maps and slices of s.
func (s State) Clone() State {
	out := s
	out.Scores = s.Scores.Clone()
	out.Labels = cloneStrings(s.Labels)
	out.CategoryLabels = cloneStrings(s.CategoryLabels)
	out.CategoryDescriptions = cloneStrings(s.CategoryDescriptions)
	out.CategoryOrder = append([]string(nil), s.CategoryOrder...)
	return out
}

func cloneStrings(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// QuestionLabel returns the label override when it is not blank.
func (s State) QuestionLabel(q catalog.Question) string {
	if v := s.Labels[q.ID]; strings.TrimSpace(v) != "" {
		return v
	}
	return q.Label
}

// CategoryTitle returns the title override when it names a selectable title.
func (s State) CategoryTitle(cat *catalog.Catalog, c catalog.Category) string {
	v := s.CategoryLabels[c.ID]
	if strings.TrimSpace(v) == "" || !cat.HasTitle(v) {
		return c.Name
	}
	return v
}

// CategoryDescription returns the description override when it is not blank.
func (s State) CategoryDescription(c catalog.Category) string {
	if v := s.CategoryDescriptions[c.ID]; strings.TrimSpace(v) != "" {
		return v
	}
	return c.Description
}

// OrderedCategories lists categories in display order. Ids unknown to the
// catalog are skipped and categories missing from the order are appended.
func (s State) OrderedCategories(cat *catalog.Catalog) []catalog.Category {
	return orderCategories(cat, s.CategoryOrder)
}

func orderCategories(cat *catalog.Catalog, order []string) []catalog.Category {
	out := make([]catalog.Category, 0, len(cat.Categories))
	seen := map[string]bool{}
	for _, id := range order {
		if c, ok := cat.Category(id); ok && !seen[id] {
			out = append(out, c)
			seen[id] = true
		}
	}
	for _, c := range cat.Categories {
		if !seen[c.ID] {
			out = append(out, c)
		}
	}
	return out
}

// UsedTitles lists the resolved titles of every category except exclude.
func (s State) UsedTitles(cat *catalog.Catalog, exclude string) []string {
	var out []string
	for _, c := range cat.Categories {
		if c.ID != exclude {
			out = append(out, s.CategoryTitle(cat, c))
		}
	}
	return out
}

// Action is one named state transition.
type Action interface {
	Type() string
	apply(s State, cat *catalog.Catalog) State
}

// Reduce applies a to a copy of s.
func Reduce(s State, a Action, cat *catalog.Catalog) State {
	return a.apply(s.Clone(), cat)
}

// SetFounder updates the profile fields that are set.
type SetFounder struct {
	Name           *string `json:"name,omitempty"`
	Company        *string `json:"company,omitempty"`
	AssessmentName *string `json:"assessmentName,omitempty"`
}

func (SetFounder) Type() string { return "SET_FOUNDER" }
func (a SetFounder) apply(s State, _ *catalog.Catalog) State {
	if a.Name != nil {
		s.Founder.Name = *a.Name
	}
	if a.Company != nil {
		s.Founder.Company = *a.Company
	}
	if a.AssessmentName != nil {
		s.Founder.AssessmentName = *a.AssessmentName
	}
	return s
}

// SetStep moves between the welcome and assessment screens.
type SetStep struct {
	Step Step `json:"step"`
}

func (SetStep) Type() string { return "SET_STEP" }
func (a SetStep) apply(s State, _ *catalog.Catalog) State {
	if a.Step == StepWelcome || a.Step == StepAssessment {
		s.Step = a.Step
	}
	return s
}

// SetRating records one clamped rating for one perspective.
type SetRating struct {
	Perspective Perspective `json:"perspective"`
	QuestionID  string      `json:"questionId"`
	Value       int         `json:"value"`
}

func (SetRating) Type() string { return "SET_ANSWER" }
func (a SetRating) apply(s State, cat *catalog.Catalog) State {
	if !cat.HasQuestion(a.QuestionID) {
		return s
	}
	switch a.Perspective {
	case Manager:
		s.Scores.Manager[a.QuestionID] = Clamp(a.Value)
	default:
		s.Scores.Individual[a.QuestionID] = Clamp(a.Value)
	}
	return s
}

// SetLabel overrides a question label. A blank value restores the default.
type SetLabel struct {
	QuestionID string `json:"questionId"`
	Value      string `json:"value"`
}

func (SetLabel) Type() string { return "SET_LABEL" }
func (a SetLabel) apply(s State, cat *catalog.Catalog) State {
	if cat.HasQuestion(a.QuestionID) {
		s.Labels[a.QuestionID] = a.Value
	}
	return s
}

// SetCategoryLabel picks a category title from the title options.
type SetCategoryLabel struct {
	CategoryID string `json:"categoryId"`
	Value      string `json:"value"`
}

func (SetCategoryLabel) Type() string { return "SET_CATEGORY_LABEL" }
func (a SetCategoryLabel) apply(s State, cat *catalog.Catalog) State {
	if cat.HasCategory(a.CategoryID) {
		s.CategoryLabels[a.CategoryID] = a.Value
	}
	return s
}

// SetCategoryDescription overrides a category description.
type SetCategoryDescription struct {
	CategoryID string `json:"categoryId"`
	Value      string `json:"value"`
}

func (SetCategoryDescription) Type() string { return "SET_CATEGORY_DESCRIPTION" }
func (a SetCategoryDescription) apply(s State, cat *catalog.Catalog) State {
	if cat.HasCategory(a.CategoryID) {
		s.CategoryDescriptions[a.CategoryID] = a.Value
	}
	return s
}

// ToggleEdit flips edit mode.
type ToggleEdit struct{}

func (ToggleEdit) Type() string { return "TOGGLE_EDIT" }
func (ToggleEdit) apply(s State, _ *catalog.Catalog) State {
	s.EditMode = !s.EditMode
	return s
}

// SetView selects the perspective shown.
type SetView struct {
	View View `json:"view"`
}

func (SetView) Type() string { return "SET_VIEW" }
func (a SetView) apply(s State, _ *catalog.Catalog) State {
	if _, ok := ParseView(string(a.View)); ok {
		s.View = a.View
	}
	return s
}

// ReorderCategory moves a category to the position of another. Only honoured in edit mode.
type ReorderCategory struct {
	CategoryID string `json:"categoryId"`
	TargetID   string `json:"targetId"`
}

func (ReorderCategory) Type() string { return "REORDER_CATEGORY" }
func (a ReorderCategory) apply(s State, cat *catalog.Catalog) State {
	if !s.EditMode || a.CategoryID == a.TargetID {
		return s
	}
	order := idsOf(s.OrderedCategories(cat))
	from, to := indexOf(order, a.CategoryID), indexOf(order, a.TargetID)
	if from < 0 || to < 0 {
		return s
	}
	moved := order[from]
	order = append(order[:from], order[from+1:]...)
	order = append(order[:to], append([]string{moved}, order[to:]...)...)
	s.CategoryOrder = order
	return s
}

func indexOf(ids []string, id string) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

// ResetScores restores default ratings for both perspectives.
type ResetScores struct{}

func (ResetScores) Type() string { return "RESET_SCORES" }
func (ResetScores) apply(s State, cat *catalog.Catalog) State {
	s.Scores = NewDualScores(cat.Categories)
	s.EditMode = false
	return s
}

// ResetText drops every label and description override.
type ResetText struct{}

func (ResetText) Type() string { return "RESET_TEXT" }
func (ResetText) apply(s State, _ *catalog.Catalog) State {
	s.Labels = map[string]string{}
	s.CategoryLabels = map[string]string{}
	s.CategoryDescriptions = map[string]string{}
	s.EditMode = false
	return s
}

// ResetAll returns to a fresh document.
type ResetAll struct{}

func (ResetAll) Type() string { return "RESET_ALL" }
func (ResetAll) apply(s State, cat *catalog.Catalog) State {
	fresh := InitialState(cat)
	fresh.Step = s.Step
	fresh.Founder = s.Founder
	fresh.View = s.View
	fresh.CategoryOrder = s.CategoryOrder
	return fresh
}

// Hydrate replaces the document with an already sanitized one.
type Hydrate struct {
	State State
}

func (Hydrate) Type() string { return "HYDRATE" }
func (a Hydrate) apply(_ State, _ *catalog.Catalog) State {
	return a.State.Clone()
}

// IsReset reports whether a clears persisted state before the next write.
func IsReset(a Action) bool {
	switch a.(type) {
	case ResetScores, ResetText, ResetAll:
		return true
	}
	return false
}

// ActionEnvelope is the wire form of an action.
type ActionEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// DecodeAction turns an envelope into an action. HYDRATE is not accepted from the wire.
func DecodeAction(env ActionEnvelope) (Action, error) {
	var a Action
	switch env.Type {
	case "SET_FOUNDER":
		a = &SetFounder{}
	case "SET_STEP":
		a = &SetStep{}
	case "SET_ANSWER":
		a = &SetRating{}
	case "SET_LABEL":
		a = &SetLabel{}
	case "SET_CATEGORY_LABEL":
		a = &SetCategoryLabel{}
	case "SET_CATEGORY_DESCRIPTION":
		a = &SetCategoryDescription{}
	case "SET_VIEW":
		a = &SetView{}
	case "REORDER_CATEGORY":
		a = &ReorderCategory{}
	case "TOGGLE_EDIT":
		return ToggleEdit{}, nil
	case "RESET_SCORES":
		return ResetScores{}, nil
	case "RESET_TEXT":
		return ResetText{}, nil
	case "RESET_ALL":
		return ResetAll{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, env.Type)
	}
	if len(env.Payload) > 0 && string(env.Payload) != "null" {
		if err := json.Unmarshal(env.Payload, a); err != nil {
			return nil, NewInvalidError(fmt.Sprintf("invalid %s payload: %v", env.Type, err))
		}
	}
	return deref(a), nil
}

func deref(a Action) Action {
	switch v := a.(type) {
	case *SetFounder:
		return *v
	case *SetStep:
		return *v
	case *SetRating:
		return *v
	case *SetLabel:
		return *v
	case *SetCategoryLabel:
		return *v
	case *SetCategoryDescription:
		return *v
	case *SetView:
		return *v
	case *ReorderCategory:
		return *v
	}
	return a
}
