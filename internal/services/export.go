package services

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/soaringjerry/tuneup/internal/catalog"
)

// ExportRatingsCSV renders one row per question with both resolved ratings.
func ExportRatingsCSV(cat *catalog.Catalog, st State, defaults Ratings) ([]byte, error) {
	ind := Resolve(st.Scores.Individual, defaults)
	man := Resolve(st.Scores.Manager, defaults)
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"category_id", "category", "question_id", "question", "individual", "manager", "default"})
	for _, c := range st.OrderedCategories(cat) {
		title := st.CategoryTitle(cat, c)
		for _, q := range c.Questions {
			rec := []string{
				c.ID,
				title,
				q.ID,
				st.QuestionLabel(q),
				strconv.Itoa(ind[q.ID]),
				strconv.Itoa(man[q.ID]),
				strconv.Itoa(q.DefaultValue),
			}
			if err := w.Write(rec); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportScoresCSV renders category percentages for every view.
func ExportScoresCSV(snapshots map[View]Snapshot) ([]byte, error) {
	views := []View{ViewIndividual, ViewManager, ViewCombined}
	buf := &bytes.Buffer{}
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"category_id", "category", "individual", "manager", "combined"})
	base, ok := snapshots[ViewIndividual]
	if !ok {
		w.Flush()
		return buf.Bytes(), w.Error()
	}
	scoreOf := func(v View, id string) string {
		snap, ok := snapshots[v]
		if !ok {
			return ""
		}
		for _, cs := range snap.Summary.CategoryScores {
			if cs.ID == id {
				return strconv.Itoa(cs.Score)
			}
		}
		return ""
	}
	for _, cs := range base.Summary.CategoryScores {
		rec := []string{cs.ID, cs.Name}
		for _, v := range views {
			rec = append(rec, scoreOf(v, cs.ID))
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	overall := []string{"overall", "Overall"}
	for _, v := range views {
		if snap, ok := snapshots[v]; ok {
			overall = append(overall, strconv.Itoa(snap.Summary.Overall))
		} else {
			overall = append(overall, "")
		}
	}
	if err := w.Write(overall); err != nil {
		return nil, err
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// ExportRatings is ExportRatingsCSV for the current document.
func (s *AssessmentService) ExportRatings() ([]byte, error) {
	return ExportRatingsCSV(s.catalog, s.State(), s.defaults)
}

// ExportScores is ExportScoresCSV over all three views of the current document.
func (s *AssessmentService) ExportScores() ([]byte, error) {
	st := s.State()
	snaps := map[View]Snapshot{}
	for _, v := range []View{ViewIndividual, ViewManager, ViewCombined} {
		snaps[v] = s.snapshotOf(st, v)
	}
	return ExportScoresCSV(snaps)
}
