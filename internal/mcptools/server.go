package mcptools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/soaringjerry/tuneup/internal/radar"
	"github.com/soaringjerry/tuneup/internal/services"
)

const (
	CatalogURI = "tuneup://catalog"
	StateURI   = "tuneup://state"
)

// Options configures the MCP server.
type Options struct {
	Version string
	Radar   radar.Options
	Now     func() time.Time
}

// New registers every tool and resource against svc.
func New(svc *services.AssessmentService, opts Options) *server.MCPServer {
	if opts.Version == "" {
		opts.Version = "dev"
	}
	s := server.NewMCPServer(
		"tuneup",
		opts.Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithRecovery(),
		server.WithInstructions("Rate the five assessment categories 0-5 per question for an individual and a manager, then read scores, gaps and a Markdown report. Question ids are listed in "+CatalogURI+"."),
	)

	summary := NewSummaryTool(svc)
	s.AddTool(summary.Definition(), summary.Handle)
	rate := NewRateTool(svc)
	s.AddTool(rate.Definition(), rate.Handle)
	share := NewShareLinkTool(svc)
	s.AddTool(share.Definition(), share.Handle)
	preview := NewPreviewShareTool(svc)
	s.AddTool(preview.Definition(), preview.Handle)
	report := NewReportTool(svc, opts.Radar, opts.Now)
	s.AddTool(report.Definition(), report.Handle)

	res := &resources{svc: svc}
	s.AddResource(mcp.NewResource(CatalogURI, "Assessment catalog",
		mcp.WithResourceDescription("Categories and questions with their ids and defaults"),
		mcp.WithMIMEType("application/json"),
	), res.catalog)
	s.AddResource(mcp.NewResource(StateURI, "Assessment state",
		mcp.WithResourceDescription("Current founder details, ratings and labels"),
		mcp.WithMIMEType("application/json"),
	), res.state)
	return s
}

type resources struct {
	svc *services.AssessmentService
}

func (r *resources) catalog(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(req.Params.URI, r.svc.Catalog())
}

func (r *resources) state(_ context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return jsonResource(req.Params.URI, r.svc.State())
}

func jsonResource(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", uri, err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{URI: uri, MIMEType: "application/json", Text: string(data)},
	}, nil
}
