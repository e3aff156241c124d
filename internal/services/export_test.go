package services

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/soaringjerry/tuneup/internal/catalog"
)

func readCSV(b []byte) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(string(b)))
	return r.ReadAll()
}

func TestExportRatingsCSV(t *testing.T) {
	cat := catalog.Default()
	st := InitialState(cat)
	st.Scores.Individual = Ratings{"fin-runway": 5}
	st.Labels["fin-runway"] = "Cash runway, in months"
	st.CategoryOrder = []string{"finance", "product", "engineering", "leadership", "go-to-market"}

	b, err := ExportRatingsCSV(cat, st, BuildDefaults(cat.Categories))
	if err != nil {
		t.Fatalf("export ratings: %v", err)
	}
	recs, err := readCSV(b)
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(recs) != 1+25 {
		t.Fatalf("want 26 rows, got %d", len(recs))
	}
	if got := strings.Join(recs[0], ","); got != "category_id,category,question_id,question,individual,manager,default" {
		t.Fatalf("bad header: %s", got)
	}
	want := []string{"finance", "Finance", "fin-runway", "Cash runway, in months", "5", "3", "3"}
	if strings.Join(recs[1], "|") != strings.Join(want, "|") {
		t.Fatalf("first row = %v, want %v", recs[1], want)
	}
	if recs[6][0] != "product" {
		t.Fatalf("rows must follow the display order, row 6 = %v", recs[6])
	}
}

func TestExportScoresCSV(t *testing.T) {
	snaps := map[View]Snapshot{
		ViewIndividual: {Summary: ScoreSummary{Overall: 60, CategoryScores: []CategoryScore{{ID: "a", Name: "Alpha", Score: 40}}}},
		ViewCombined:   {Summary: ScoreSummary{Overall: 50, CategoryScores: []CategoryScore{{ID: "a", Name: "Alpha", Score: 45}}}},
	}
	b, err := ExportScoresCSV(snaps)
	if err != nil {
		t.Fatalf("export scores: %v", err)
	}
	recs, err := readCSV(b)
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	cases := []string{
		"category_id,category,individual,manager,combined",
		"a,Alpha,40,,45",
		"overall,Overall,60,,50",
	}
	if len(recs) != len(cases) {
		t.Fatalf("rows mismatch: %d", len(recs))
	}
	for i, want := range cases {
		if got := strings.Join(recs[i], ","); got != want {
			t.Fatalf("row %d = %q, want %q", i, got, want)
		}
	}

	// Without the individual view there is nothing to key rows on.
	b, err = ExportScoresCSV(map[View]Snapshot{ViewManager: {}})
	if err != nil {
		t.Fatalf("export scores: %v", err)
	}
	if recs, _ := readCSV(b); len(recs) != 1 {
		t.Fatalf("want header only, got %v", recs)
	}
}
