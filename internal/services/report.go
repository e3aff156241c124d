package services

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/soaringjerry/tuneup/internal/catalog"
	"github.com/soaringjerry/tuneup/internal/radar"
)

//go:embed templates/print.html.tmpl
var templateFS embed.FS

var printTemplate = template.Must(template.New("print.html.tmpl").Funcs(template.FuncMap{
	"names": joinNames,
}).ParseFS(templateFS, "templates/print.html.tmpl"))

// ReportQuestion is one listed question. Value is the rating of a
// single-perspective view; the combined view fills Individual and Manager.
type ReportQuestion struct {
	ID         string
	Label      string
	Helper     string
	Value      int
	Individual int
	Manager    int
}

// Display is the rating text shown next to the question.
func (q ReportQuestion) Display(combined bool) string {
	if combined {
		return fmt.Sprintf("%d / %d", q.Individual, q.Manager)
	}
	return strconv.Itoa(q.Value)
}

// ReportSection is one category block of the print view.
type ReportSection struct {
	ID          string
	Title       string
	Description string
	Score       int
	Tone        Tone
	Questions   []ReportQuestion
}

// Report is the print/export rendering of one view of the document.
type Report struct {
	Title    string
	Founder  Founder
	Date     string
	View     View
	Combined bool
	Summary  ScoreSummary
	Sections []ReportSection
	Gaps     []PerspectiveGap
	RadarSVG template.HTML
}

// Report assembles the print view. Sections follow the display order.
func (s *AssessmentService) Report(view View, opts radar.Options, now time.Time) Report {
	snap := s.Snapshot(view)
	st := snap.State
	scoreByID := map[string]int{}
	for _, cs := range snap.Summary.CategoryScores {
		scoreByID[cs.ID] = cs.Score
	}
	r := Report{
		Title:    s.catalog.Title,
		Founder:  st.Founder,
		Date:     now.Format("2006-01-02"),
		View:     snap.View,
		Combined: snap.View == ViewCombined,
		Summary:  snap.Summary,
	}
	for _, c := range st.OrderedCategories(s.catalog) {
		sec := ReportSection{
			ID:          c.ID,
			Title:       st.CategoryTitle(s.catalog, c),
			Description: st.CategoryDescription(c),
			Score:       scoreByID[c.ID],
			Tone:        snap.Tones[c.ID],
		}
		for _, q := range c.Questions {
			sec.Questions = append(sec.Questions, ReportQuestion{
				ID:         q.ID,
				Label:      st.QuestionLabel(q),
				Helper:     q.Helper,
				Value:      snap.Ratings[q.ID],
				Individual: snap.Resolved[Individual][q.ID],
				Manager:    snap.Resolved[Manager][q.ID],
			})
		}
		r.Sections = append(r.Sections, sec)
	}
	for _, g := range snap.Gaps {
		if g.Flagged {
			r.Gaps = append(r.Gaps, g)
		}
	}
	if opts.IconHref == nil {
		opts.IconHref = catalog.IconDataURI
	}
	scene := radar.Build(s.radarSeriesOf(st, snap.View), opts)
	// RenderSVG escapes every text and attribute value it writes.
	r.RadarSVG = template.HTML(radar.RenderSVG(scene))
	return r
}

// RenderHTML renders the standalone print page.
func RenderHTML(r Report) ([]byte, error) {
	var buf bytes.Buffer
	if err := printTemplate.Execute(&buf, r); err != nil {
		return nil, fmt.Errorf("render print view: %w", err)
	}
	return buf.Bytes(), nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

// RenderMarkdown renders the report for terminals and plain-text sharing.
func RenderMarkdown(r Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	fmt.Fprintf(&b, "- Name: %s\n- Company: %s\n- Assessment: %s\n- Perspective: %s\n- Date: %s\n\n",
		orDash(r.Founder.Name), orDash(r.Founder.Company), orDash(r.Founder.AssessmentName), r.View, r.Date)
	fmt.Fprintf(&b, "## Overall score: %d\n\n", r.Summary.Overall)
	b.WriteString("| Category | Score | Reading |\n|---|---:|---|\n")
	for _, sec := range r.Sections {
		fmt.Fprintf(&b, "| %s | %d | %s |\n", sec.Title, sec.Score, Interpret(sec.Score))
	}
	fmt.Fprintf(&b, "\n**Strengths:** %s  \n**Gaps:** %s\n", joinNames(r.Summary.Strengths), joinNames(r.Summary.Gaps))
	if len(r.Gaps) > 0 {
		b.WriteString("\n## Perspective gaps\n\n")
		for _, g := range r.Gaps {
			fmt.Fprintf(&b, "- %s: individual %d, manager %d (%+d)\n", g.Name, g.Individual, g.Manager, g.Delta)
		}
	}
	if r.Combined {
		b.WriteString("\nQuestion values are listed as individual / manager.\n")
	}
	for _, sec := range r.Sections {
		fmt.Fprintf(&b, "\n## %s (%d)\n\n", sec.Title, sec.Score)
		if sec.Description != "" {
			fmt.Fprintf(&b, "_%s_\n\n", sec.Description)
		}
		for _, q := range sec.Questions {
			fmt.Fprintf(&b, "- **%s** %s\n", q.Display(r.Combined), q.Label)
		}
	}
	return b.String()
}

// SummaryDigest is SummaryText for a view of the current document.
func (s *AssessmentService) SummaryDigest(view View) string {
	return SummaryText(s.Snapshot(view).Summary)
}
