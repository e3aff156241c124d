package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/soaringjerry/tuneup/internal/catalog"
	"github.com/soaringjerry/tuneup/internal/radar"
)

// StateStore persists the single assessment document.
type StateStore interface {
	// Load returns nil data when nothing is stored.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, data []byte) error
	Clear(ctx context.Context) error
}

// Recorder receives operational counters. Implementations must be safe for concurrent use.
type Recorder interface {
	StateWrite(result string)
	ShareDecode(result string)
}

type nopRecorder struct{}

func (nopRecorder) StateWrite(string)  {}
func (nopRecorder) ShareDecode(string) {}

// AssessmentOptions configures an AssessmentService. Zero values take defaults.
type AssessmentOptions struct {
	SaveDelay     time.Duration
	ToneThreshold int
	GapThreshold  int
	ShareBaseURL  string
	Signer        *ShareSigner
	Recorder      Recorder
	Logger        *zap.Logger
}

// Source tells where the document came from when the service opened.
type Source string

const (
	SourceFresh  Source = "fresh"
	SourceStored Source = "stored"
	SourceShared Source = "shared"
)

// AssessmentService owns the assessment document. Every transition goes
// through Dispatch and schedules a debounced write of the result.
type AssessmentService struct {
	mu       sync.Mutex
	catalog  *catalog.Catalog
	defaults Ratings
	store    StateStore
	state    State
	saver    *Debouncer[State]
	opts     AssessmentOptions
	logger   *zap.Logger
	recorder Recorder
}

// NewAssessmentService starts from a fresh document; call Open to load one.
func NewAssessmentService(cat *catalog.Catalog, store StateStore, opts AssessmentOptions) *AssessmentService {
	if opts.SaveDelay <= 0 {
		opts.SaveDelay = 250 * time.Millisecond
	}
	if opts.ToneThreshold == 0 {
		opts.ToneThreshold = DefaultToneThreshold
	}
	if opts.GapThreshold == 0 {
		opts.GapThreshold = radar.GapThreshold
	}
	s := &AssessmentService{
		catalog:  cat,
		defaults: BuildDefaults(cat.Categories),
		store:    store,
		state:    InitialState(cat),
		opts:     opts,
		logger:   opts.Logger,
		recorder: opts.Recorder,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.recorder == nil {
		s.recorder = nopRecorder{}
	}
	s.saver = NewDebouncer(opts.SaveDelay, s.persist)
	return s
}

// Catalog returns the question catalog.
func (s *AssessmentService) Catalog() *catalog.Catalog { return s.catalog }

// Defaults returns a copy of the default ratings.
func (s *AssessmentService) Defaults() Ratings { return s.defaults.Clone() }

// Open hydrates from a share token when one decodes, else from the store.
// Failures are logged and fall through to the next source.
func (s *AssessmentService) Open(ctx context.Context, token, sig string) Source {
	if token != "" {
		if shared, ok := s.decodeShare(token, sig); ok {
			s.apply(Hydrate{State: shared})
			return SourceShared
		}
	}
	if s.store == nil {
		return SourceFresh
	}
	data, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("load stored assessment", zap.Error(err))
		return SourceFresh
	}
	if len(data) == 0 {
		return SourceFresh
	}
	stored, err := SanitizeStored(data, s.catalog)
	if err != nil {
		s.logger.Warn("discard malformed stored assessment", zap.Error(err))
		return SourceFresh
	}
	s.mu.Lock()
	s.state = stored
	s.mu.Unlock()
	return SourceStored
}

// OpenShare hydrates from a share link. It reports false and leaves the
// document untouched when the token or signature is invalid.
func (s *AssessmentService) OpenShare(token, sig string) bool {
	shared, ok := s.decodeShare(token, sig)
	if !ok {
		return false
	}
	s.apply(Hydrate{State: shared})
	return true
}

func (s *AssessmentService) decodeShare(token, sig string) (State, bool) {
	if s.opts.Signer != nil && sig != "" {
		if err := s.opts.Signer.Verify(token, sig); err != nil {
			s.logger.Warn("reject share link signature", zap.Error(err))
			s.recorder.ShareDecode("bad_signature")
			return State{}, false
		}
	}
	shared, err := DecodeShareToken(token, s.catalog)
	if err != nil {
		s.logger.Warn("decode share link", zap.Error(err))
		s.recorder.ShareDecode("invalid")
		return State{}, false
	}
	s.recorder.ShareDecode("ok")
	return shared, true
}

// Dispatch applies a transition and returns the new document.
func (s *AssessmentService) Dispatch(a Action) State {
	return s.apply(a)
}

func (s *AssessmentService) apply(a Action) State {
	// Scheduling under mu keeps the saved order equal to the reduce order.
	s.mu.Lock()
	s.state = Reduce(s.state, a, s.catalog)
	next := s.state.Clone()
	if IsReset(a) {
		s.saver.Cancel()
		s.clearStore()
	}
	s.saver.Schedule(next)
	s.mu.Unlock()

	s.logger.Debug("assessment transition", zap.String("action", a.Type()))
	return next.Clone()
}

func (s *AssessmentService) clearStore() {
	if s.store == nil {
		return
	}
	if err := s.store.Clear(context.Background()); err != nil {
		s.logger.Warn("clear stored assessment", zap.Error(err))
		s.recorder.StateWrite("clear_error")
		return
	}
	s.recorder.StateWrite("cleared")
}

func (s *AssessmentService) persist(st State) {
	if s.store == nil {
		return
	}
	data, err := json.Marshal(st)
	if err != nil {
		s.logger.Warn("encode assessment", zap.Error(err))
		s.recorder.StateWrite("encode_error")
		return
	}
	if err := s.store.Save(context.Background(), data); err != nil {
		s.logger.Warn("save assessment", zap.Error(err))
		s.recorder.StateWrite("error")
		return
	}
	s.recorder.StateWrite("ok")
}

// Flush writes any pending change immediately.
func (s *AssessmentService) Flush() { s.saver.Flush() }

// Close flushes and stops scheduling writes.
func (s *AssessmentService) Close() { s.saver.Stop() }

// State returns a copy of the current document.
func (s *AssessmentService) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Snapshot is the document plus everything derived from it for one view.
type Snapshot struct {
	State   State                             `json:"state"`
	View    View                              `json:"view"`
	Summary ScoreSummary                      `json:"summary"`
	Tones   map[string]Tone                   `json:"tones"`
	Status  map[Perspective]PerspectiveStatus `json:"status"`
	Gaps    []PerspectiveGap                  `json:"gaps"`
	// Ratings holds the resolved values of a single-perspective view. The
	// combined view is scored per category, so it lists Resolved instead.
	Ratings  Ratings                 `json:"ratings,omitempty"`
	Resolved map[Perspective]Ratings `json:"resolved"`
	Complete bool                    `json:"complete"`
}

// Snapshot derives scores for view, or for the document's current view when empty.
func (s *AssessmentService) Snapshot(view View) Snapshot {
	st := s.State()
	if view == "" {
		view = st.View
	}
	return s.snapshotOf(st, view)
}

func (s *AssessmentService) snapshotOf(st State, view View) Snapshot {
	cats := s.catalog.Categories
	summary := s.decorate(st, SummaryFor(view, cats, st.Scores, s.defaults))
	tones := make(map[string]Tone, len(summary.CategoryScores))
	for _, cs := range summary.CategoryScores {
		tones[cs.ID] = ToneFor(cs.Score, s.opts.ToneThreshold)
	}
	status := map[Perspective]PerspectiveStatus{
		Individual: StatusOf(cats, st.Scores.Individual, s.defaults),
		Manager:    StatusOf(cats, st.Scores.Manager, s.defaults),
	}
	resolved := map[Perspective]Ratings{
		Individual: Resolve(st.Scores.Individual, s.defaults),
		Manager:    Resolve(st.Scores.Manager, s.defaults),
	}
	ind := s.decorate(st, ComputeScores(cats, resolved[Individual]))
	man := s.decorate(st, ComputeScores(cats, resolved[Manager]))
	var ratings Ratings
	if view != ViewCombined {
		ratings = RatingsFor(view, st.Scores, s.defaults)
	}
	return Snapshot{
		State:    st,
		View:     view,
		Summary:  summary,
		Tones:    tones,
		Status:   status,
		Gaps:     ComparePerspectives(ind.CategoryScores, man.CategoryScores, s.opts.GapThreshold),
		Ratings:  ratings,
		Resolved: resolved,
		Complete: status[Individual].Complete && status[Manager].Complete,
	}
}

// decorate swaps catalog names for resolved titles and attaches icons.
func (s *AssessmentService) decorate(st State, summary ScoreSummary) ScoreSummary {
	titles := map[string]string{}
	for _, c := range s.catalog.Categories {
		titles[c.ID] = st.CategoryTitle(s.catalog, c)
	}
	rename := func(in []CategoryScore) []CategoryScore {
		out := make([]CategoryScore, len(in))
		for i, cs := range in {
			if t, ok := titles[cs.ID]; ok {
				cs.Name = t
			}
			cs.Icon = s.catalog.IconFor(cs.Name)
			out[i] = cs
		}
		return out
	}
	summary.CategoryScores = rename(summary.CategoryScores)
	summary.Strengths = rename(summary.Strengths)
	summary.Gaps = rename(summary.Gaps)
	return summary
}

// RadarSeries builds chart input for a view: one series for a single
// perspective, individual plus manager for the combined view.
func (s *AssessmentService) RadarSeries(view View) []radar.Series {
	st := s.State()
	if view == "" {
		view = st.View
	}
	return s.radarSeriesOf(st, view)
}

func (s *AssessmentService) radarSeriesOf(st State, view View) []radar.Series {
	cats := s.catalog.Categories
	build := func(id string, role radar.Role, ratings Ratings) radar.Series {
		summary := s.decorate(st, ComputeScores(cats, Resolve(ratings, s.defaults)))
		out := radar.Series{ID: id, Role: role, Scores: make([]radar.Score, 0, len(summary.CategoryScores))}
		for _, cs := range summary.CategoryScores {
			out.Scores = append(out.Scores, radar.Score{ID: cs.ID, Name: cs.Name, Value: cs.Score, Icon: cs.Icon})
		}
		return out
	}
	switch view {
	case ViewCombined:
		return []radar.Series{
			build(string(Individual), radar.RoleIndividual, st.Scores.Individual),
			build(string(Manager), radar.RoleManager, st.Scores.Manager),
		}
	case ViewManager:
		return []radar.Series{build(string(Manager), radar.RoleManager, st.Scores.Manager)}
	default:
		return []radar.Series{build(string(Individual), radar.RoleIndividual, st.Scores.Individual)}
	}
}

// ShareLink is a shareable encoding of the current document.
type ShareLink struct {
	Token string `json:"token"`
	Sig   string `json:"sig,omitempty"`
	URL   string `json:"url"`
}

// Share encodes the current document into a share link.
func (s *AssessmentService) Share() (ShareLink, error) {
	token, err := EncodeShareToken(s.State())
	if err != nil {
		return ShareLink{}, err
	}
	link := ShareLink{Token: token}
	if s.opts.Signer != nil {
		sig, err := s.opts.Signer.Sign(token)
		if err != nil {
			return ShareLink{}, err
		}
		link.Sig = sig
	}
	link.URL = ShareURL(s.opts.ShareBaseURL, link.Token, link.Sig)
	return link, nil
}

// Preview decodes a share token without touching the document.
func (s *AssessmentService) Preview(token, sig string, view View) (Snapshot, error) {
	shared, ok := s.decodeShare(token, sig)
	if !ok {
		return Snapshot{}, ErrShareTokenInvalid
	}
	if view == "" {
		view = ViewIndividual
	}
	return s.snapshotOf(shared, view), nil
}

// errNoStore is returned by operations that need a backing store.
var errNoStore = errors.New("no state store configured")

// Import replaces the stored document with data after sanitizing it.
func (s *AssessmentService) Import(ctx context.Context, data []byte) (State, error) {
	st, err := SanitizeStored(data, s.catalog)
	if err != nil {
		return State{}, NewInvalidError("malformed assessment document: " + err.Error())
	}
	if s.store == nil {
		return State{}, errNoStore
	}
	encoded, err := json.Marshal(st)
	if err != nil {
		return State{}, err
	}
	if err := s.store.Save(ctx, encoded); err != nil {
		return State{}, err
	}
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
	return st.Clone(), nil
}
