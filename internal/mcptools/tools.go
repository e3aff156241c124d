// Package mcptools exposes the assessment over the Model Context Protocol.
//
// Each tool is a struct holding the shared AssessmentService with a
// Definition returning the mcp.Tool schema and a Handle processing calls.
package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/soaringjerry/tuneup/internal/radar"
	"github.com/soaringjerry/tuneup/internal/services"
)

// intArg extracts an integer argument; JSON numbers arrive as float64.
func intArg(req mcp.CallToolRequest, key string) (int, bool) {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return 0, false
	}
	return int(v), true
}

func viewArg(req mcp.CallToolRequest) (services.View, error) {
	raw := req.GetString("view", "")
	if raw == "" {
		return "", nil
	}
	v, ok := services.ParseView(raw)
	if !ok {
		return "", fmt.Errorf("unknown view %q", raw)
	}
	return v, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func withView() mcp.ToolOption {
	return mcp.WithString("view",
		mcp.Enum(string(services.ViewIndividual), string(services.ViewManager), string(services.ViewCombined)),
		mcp.Description("Perspective to score (default: the current view)"),
	)
}

// SummaryTool handles tuneup_summary.
type SummaryTool struct {
	svc *services.AssessmentService
}

func NewSummaryTool(svc *services.AssessmentService) *SummaryTool {
	return &SummaryTool{svc: svc}
}

func (t *SummaryTool) Definition() mcp.Tool {
	return mcp.NewTool("tuneup_summary",
		mcp.WithDescription("Score the current assessment: overall and per-category percentages, strengths, gaps and perspective disagreements."),
		withView(),
	)
}

type summaryResult struct {
	View     services.View             `json:"view"`
	Summary  services.ScoreSummary     `json:"summary"`
	Gaps     []services.PerspectiveGap `json:"perspectiveGaps"`
	Complete bool                      `json:"complete"`
}

func (t *SummaryTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := viewArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap := t.svc.Snapshot(view)
	return jsonResult(summaryResult{View: snap.View, Summary: snap.Summary, Gaps: snap.Gaps, Complete: snap.Complete})
}

// RateTool handles tuneup_rate.
type RateTool struct {
	svc *services.AssessmentService
}

func NewRateTool(svc *services.AssessmentService) *RateTool {
	return &RateTool{svc: svc}
}

func (t *RateTool) Definition() mcp.Tool {
	return mcp.NewTool("tuneup_rate",
		mcp.WithDescription("Set one question's rating (0-5) for the individual or manager perspective."),
		mcp.WithString("perspective",
			mcp.Required(),
			mcp.Enum(string(services.Individual), string(services.Manager)),
		),
		mcp.WithString("question_id",
			mcp.Required(),
			mcp.Description("Question id from the tuneup://catalog resource, e.g. fin-runway"),
		),
		mcp.WithNumber("value",
			mcp.Required(),
			mcp.Description("Rating; values outside 0-5 are clamped"),
		),
	)
}

func (t *RateTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	p, ok := services.ParsePerspective(req.GetString("perspective", ""))
	if !ok {
		return mcp.NewToolResultError("'perspective' must be individual or manager"), nil
	}
	id := req.GetString("question_id", "")
	if !t.svc.Catalog().HasQuestion(id) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown question %q", id)), nil
	}
	value, ok := intArg(req, "value")
	if !ok {
		return mcp.NewToolResultError("'value' is required"), nil
	}
	st := t.svc.Dispatch(services.SetRating{Perspective: p, QuestionID: id, Value: value})
	return mcp.NewToolResultText(fmt.Sprintf("%s %s = %d", p, id, st.Scores.Get(p)[id])), nil
}

// ShareLinkTool handles tuneup_share_link.
type ShareLinkTool struct {
	svc *services.AssessmentService
}

func NewShareLinkTool(svc *services.AssessmentService) *ShareLinkTool {
	return &ShareLinkTool{svc: svc}
}

func (t *ShareLinkTool) Definition() mcp.Tool {
	return mcp.NewTool("tuneup_share_link",
		mcp.WithDescription("Encode the current assessment into a share link."),
	)
}

func (t *ShareLinkTool) Handle(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	link, err := t.svc.Share()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode share link: %v", err)), nil
	}
	return jsonResult(link)
}

// PreviewShareTool handles tuneup_preview_share. It scores a shared
// assessment without replacing the current one.
type PreviewShareTool struct {
	svc *services.AssessmentService
}

func NewPreviewShareTool(svc *services.AssessmentService) *PreviewShareTool {
	return &PreviewShareTool{svc: svc}
}

func (t *PreviewShareTool) Definition() mcp.Tool {
	return mcp.NewTool("tuneup_preview_share",
		mcp.WithDescription("Decode a share token and score it without touching the current assessment."),
		mcp.WithString("token", mcp.Required(), mcp.Description("Value of the s query parameter")),
		mcp.WithString("sig", mcp.Description("Value of the sig query parameter, if any")),
		withView(),
	)
}

func (t *PreviewShareTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := viewArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	snap, err := t.svc.Preview(req.GetString("token", ""), req.GetString("sig", ""), view)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(summaryResult{View: snap.View, Summary: snap.Summary, Gaps: snap.Gaps, Complete: snap.Complete})
}

// ReportTool handles tuneup_report.
type ReportTool struct {
	svc   *services.AssessmentService
	radar radar.Options
	now   func() time.Time
}

func NewReportTool(svc *services.AssessmentService, opts radar.Options, now func() time.Time) *ReportTool {
	if now == nil {
		now = time.Now
	}
	return &ReportTool{svc: svc, radar: opts, now: now}
}

func (t *ReportTool) Definition() mcp.Tool {
	return mcp.NewTool("tuneup_report",
		mcp.WithDescription("Render the assessment report as Markdown."),
		withView(),
	)
}

func (t *ReportTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view, err := viewArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(services.RenderMarkdown(t.svc.Report(view, t.radar, t.now()))), nil
}
