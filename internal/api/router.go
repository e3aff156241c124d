package api

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/soaringjerry/tuneup/internal/catalog"
	"github.com/soaringjerry/tuneup/internal/radar"
	"github.com/soaringjerry/tuneup/internal/services"
)

const (
	defaultSVGCacheSize = 128
	maxBodyBytes        = 1 << 20
	minChartSize        = 120
	maxChartSize        = 2048
)

// RadarRecorder counts SVG renders.
type RadarRecorder interface {
	RadarRender(cached bool)
}

// RouterOptions configures chart rendering and the SVG cache.
type RouterOptions struct {
	Radar        radar.Options
	SVGCacheSize int
	Recorder     RadarRecorder
	Logger       *zap.Logger
	Now          func() time.Time
}

// Router serves the assessment HTTP API.
type Router struct {
	svc      *services.AssessmentService
	opts     RouterOptions
	svgCache *lru.Cache[string, []byte]
	logger   *zap.Logger
}

// NewRouter builds a Router over svc.
func NewRouter(svc *services.AssessmentService, opts RouterOptions) *Router {
	if opts.SVGCacheSize <= 0 {
		opts.SVGCacheSize = defaultSVGCacheSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Radar.IconHref == nil {
		opts.Radar.IconHref = catalog.IconDataURI
	}
	// lru.New only fails for a non-positive size.
	cache, _ := lru.New[string, []byte](opts.SVGCacheSize)
	return &Router{svc: svc, opts: opts, svgCache: cache, logger: opts.Logger}
}

// Register mounts the API routes on mux.
func (rt *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/catalog", rt.handleCatalog)      // GET
	mux.HandleFunc("/api/state", rt.handleState)          // GET
	mux.HandleFunc("/api/actions", rt.handleActions)      // POST
	mux.HandleFunc("/api/summary", rt.handleSummary)      // GET
	mux.HandleFunc("/api/insights", rt.handleInsights)    // GET
	mux.HandleFunc("/api/radar", rt.handleRadar)          // GET
	mux.HandleFunc("/api/radar.svg", rt.handleRadarSVG)   // GET
	mux.HandleFunc("/api/share", rt.handleShare)          // POST
	mux.HandleFunc("/api/share/open", rt.handleShareOpen) // POST
	mux.HandleFunc("/api/export", rt.handleExport)        // GET
	mux.HandleFunc("/print", rt.handlePrint)              // GET
}

// HydrateShareLinks opens the document from ?s=&sig= on page loads before
// handing the request to the frontend. Invalid links leave state untouched.
func (rt *Router) HydrateShareLinks(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			if token := r.URL.Query().Get(services.ShareParam); token != "" {
				rt.svc.OpenShare(token, r.URL.Query().Get(services.SigParam))
			}
		}
		next.ServeHTTP(w, r)
	})
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method != method {
		w.Header().Set("Allow", method)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (rt *Router) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if se, ok := services.AsServiceError(err); ok {
		switch se.Code {
		case services.ErrorInvalid:
			status = http.StatusBadRequest
		case services.ErrorNotFound:
			status = http.StatusNotFound
		}
	} else if errors.Is(err, services.ErrUnknownAction) || errors.Is(err, services.ErrShareTokenInvalid) {
		status = http.StatusBadRequest
	}
	if status == http.StatusInternalServerError {
		rt.logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return services.NewInvalidError("invalid request body: " + err.Error())
	}
	return nil
}

// viewParam reads ?view=. Empty selects the document's current view.
func viewParam(r *http.Request) (services.View, error) {
	raw := r.URL.Query().Get("view")
	if raw == "" {
		return "", nil
	}
	v, ok := services.ParseView(raw)
	if !ok {
		return "", services.NewInvalidError(fmt.Sprintf("unknown view %q", raw))
	}
	return v, nil
}

func sizeParam(r *http.Request, fallback float64) (float64, error) {
	raw := r.URL.Query().Get("size")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < minChartSize || n > maxChartSize {
		return 0, services.NewInvalidError(fmt.Sprintf("size must be an integer in [%d,%d]", minChartSize, maxChartSize))
	}
	return float64(n), nil
}

// GET /api/catalog
func (rt *Router) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, rt.svc.Catalog())
}

// GET /api/state
func (rt *Router) handleState(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	view, err := viewParam(r)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.svc.Snapshot(view))
}

// POST /api/actions {type, payload}
func (rt *Router) handleActions(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var env services.ActionEnvelope
	if err := decodeBody(w, r, &env); err != nil {
		rt.writeError(w, err)
		return
	}
	action, err := services.DecodeAction(env)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	rt.svc.Dispatch(action)
	writeJSON(w, http.StatusOK, rt.svc.Snapshot(""))
}

// GET /api/summary?view=
func (rt *Router) handleSummary(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	view, err := viewParam(r)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	snap := rt.svc.Snapshot(view)
	writeJSON(w, http.StatusOK, map[string]any{
		"view":    snap.View,
		"summary": snap.Summary,
		"tones":   snap.Tones,
		"text":    services.SummaryText(snap.Summary),
	})
}

// GET /api/insights?view=
func (rt *Router) handleInsights(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	view, err := viewParam(r)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rt.svc.Insights(view))
}

func (rt *Router) radarInput(r *http.Request) ([]radar.Series, radar.Options, error) {
	view, err := viewParam(r)
	if err != nil {
		return nil, radar.Options{}, err
	}
	opts := rt.opts.Radar
	if opts.Size, err = sizeParam(r, opts.Size); err != nil {
		return nil, radar.Options{}, err
	}
	return rt.svc.RadarSeries(view), opts, nil
}

// GET /api/radar?view=&size=
func (rt *Router) handleRadar(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	series, opts, err := rt.radarInput(r)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, radar.Build(series, opts))
}

// GET /api/radar.svg?view=&size=
func (rt *Router) handleRadarSVG(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	series, opts, err := rt.radarInput(r)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	key, err := sceneKey(series, opts.Size)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	svg, cached := rt.svgCache.Get(key)
	if !cached {
		svg = radar.RenderSVG(radar.Build(series, opts))
		rt.svgCache.Add(key, svg)
	}
	if rt.opts.Recorder != nil {
		rt.opts.Recorder.RadarRender(cached)
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

// sceneKey identifies a chart by everything that changes its pixels.
func sceneKey(series []radar.Series, size float64) (string, error) {
	raw, err := json.Marshal(series)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(append(raw, strconv.FormatFloat(size, 'f', -1, 64)...))
	return hex.EncodeToString(sum[:]), nil
}

// POST /api/share
func (rt *Router) handleShare(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	link, err := rt.svc.Share()
	if err != nil {
		rt.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

// POST /api/share/open {token, sig?}
func (rt *Router) handleShareOpen(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req struct {
		Token string `json:"token"`
		Sig   string `json:"sig"`
	}
	if err := decodeBody(w, r, &req); err != nil {
		rt.writeError(w, err)
		return
	}
	opened := rt.svc.OpenShare(req.Token, req.Sig)
	writeJSON(w, http.StatusOK, map[string]any{
		"opened":   opened,
		"snapshot": rt.svc.Snapshot(""),
	})
}

// GET /api/export?format=ratings|scores|summary&view=
func (rt *Router) handleExport(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "ratings"
	}
	var (
		body []byte
		err  error
		name string
		ct   = "text/csv"
	)
	switch format {
	case "ratings":
		body, err = rt.svc.ExportRatings()
		name = "ratings.csv"
	case "scores":
		body, err = rt.svc.ExportScores()
		name = "scores.csv"
	case "summary":
		var view services.View
		if view, err = viewParam(r); err == nil {
			body = []byte(rt.svc.SummaryDigest(view) + "\n")
		}
		name = "summary.txt"
		ct = "text/plain; charset=utf-8"
	default:
		err = services.NewInvalidError(fmt.Sprintf("unsupported format %q", format))
	}
	if err != nil {
		rt.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", "attachment; filename="+name)
	_, _ = w.Write(body)
}

// GET /print?view=&format=html|markdown
func (rt *Router) handlePrint(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	view, err := viewParam(r)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	report := rt.svc.Report(view, rt.opts.Radar, rt.opts.Now())
	if r.URL.Query().Get("format") == "markdown" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		_, _ = w.Write([]byte(services.RenderMarkdown(report)))
		return
	}
	page, err := services.RenderHTML(report)
	if err != nil {
		rt.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}
