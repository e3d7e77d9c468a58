package report

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"bizverify/internal/dataset"
	"bizverify/internal/dedup"
	"bizverify/internal/normalize"
	"bizverify/internal/report/metrics"
	runmodels "bizverify/internal/runs/models"
	"bizverify/internal/submission/models"
	id "bizverify/pkg/domain"
	dErrors "bizverify/pkg/domain-errors"
	"bizverify/pkg/requestcontext"
)

var tracer = otel.Tracer("bizverify/internal/report")

const (
	defaultStaleAfter = 5 * time.Minute
	runSideEffectWait = 5 * time.Second
)

// Loader supplies the decoded export.
type Loader interface {
	Load(ctx context.Context) (*dataset.Load, error)
	Invalidate(ctx context.Context) error
	Source() string
}

// RunStore keeps the history of refreshes.
type RunStore interface {
	Save(ctx context.Context, run runmodels.RunSummary) error
	ListRecent(ctx context.Context, limit int) ([]runmodels.RunSummary, error)
}

// RunPublisher announces completed refreshes.
type RunPublisher interface {
	Publish(ctx context.Context, run runmodels.RunSummary) error
}

// Snapshot is one fully annotated export. It is never mutated after
// creation; readers share it freely.
type Snapshot struct {
	RunID       id.RunID
	Source      string
	LoadedAt    time.Time
	CacheHit    bool
	Export      *dataset.Export
	Submissions []models.Submission
}

// Service runs the normalize and dedup pipeline over the export and answers
// reporting queries from the latest snapshot.
type Service struct {
	loader     Loader
	normalizer *normalize.Normalizer
	dedupOpts  []dedup.Option
	runs       RunStore
	publisher  RunPublisher
	logger     *slog.Logger
	metrics    *metrics.Metrics
	staleAfter time.Duration

	mu       sync.RWMutex
	snapshot *Snapshot
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithRunStore(store RunStore) Option {
	return func(s *Service) {
		s.runs = store
	}
}

func WithPublisher(publisher RunPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

func WithNormalizer(n *normalize.Normalizer) Option {
	return func(s *Service) {
		s.normalizer = n
	}
}

// WithRequireIdentity keeps submissions with neither an ID nor a phone out
// of duplicate matching.
func WithRequireIdentity(enabled bool) Option {
	return func(s *Service) {
		if enabled {
			s.dedupOpts = append(s.dedupOpts, dedup.RequireIdentity())
		}
	}
}

// WithStaleAfter sets how long a snapshot answers queries before the next
// query triggers a refresh.
func WithStaleAfter(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.staleAfter = d
		}
	}
}

// New constructs a Service.
func New(loader Loader, opts ...Option) *Service {
	s := &Service{
		loader:     loader,
		normalizer: normalize.New(),
		logger:     slog.New(slog.DiscardHandler),
		staleAfter: defaultStaleAfter,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh loads the export (from cache when fresh), annotates every
// submission and makes the result the current snapshot. Duplicate flags are
// computed over the whole export before any filter applies.
func (s *Service) Refresh(ctx context.Context) (*Snapshot, error) {
	ctx, span := tracer.Start(ctx, "report.refresh")
	defer span.End()

	start := time.Now()
	run := runmodels.RunSummary{
		RunID:     id.NewRunID(),
		Source:    s.loader.Source(),
		StartedAt: requestcontext.Now(ctx),
	}
	span.SetAttributes(attribute.String("run_id", run.RunID.String()))

	load, err := s.loader.Load(ctx)
	if err != nil {
		run.Duration = time.Since(start)
		run.Status = runmodels.StatusFailed
		run.Error = err.Error()
		s.recordRun(ctx, run)

		category := dataset.GetCategory(err)
		s.metrics.IncrementSourceError(string(category))
		s.metrics.IncrementRefresh(string(runmodels.StatusFailed), false)
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		s.logger.ErrorContext(ctx, "refresh failed",
			"request_id", requestcontext.RequestID(ctx),
			"run_id", run.RunID,
			"source", run.Source,
			"category", category,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, describeSourceError(err))
	}

	subs := s.normalizer.NormalizeAll(load.Export.Records)
	subs = dedup.Annotate(subs, s.dedupOpts...)

	snap := &Snapshot{
		RunID:       run.RunID,
		Source:      run.Source,
		LoadedAt:    run.StartedAt,
		CacheHit:    load.CacheHit,
		Export:      load.Export,
		Submissions: subs,
	}
	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	run.Duration = time.Since(start)
	run.Status = runmodels.StatusSucceeded
	run.CacheHit = load.CacheHit
	run.Total = len(subs)
	for _, sub := range subs {
		if sub.DuplicateRaw {
			run.DuplicatesRaw++
		}
		if sub.DuplicateStrict {
			run.DuplicatesStrict++
		}
	}
	run.KeptRaw = run.Total - run.DuplicatesRaw
	run.KeptStrict = run.Total - run.DuplicatesStrict
	s.recordRun(ctx, run)

	s.metrics.IncrementRefresh(string(runmodels.StatusSucceeded), load.CacheHit)
	s.metrics.ObserveRefreshLatency(run.Duration)
	s.metrics.SetSnapshotSize(run.Total, run.KeptRaw, run.KeptStrict)
	span.SetAttributes(
		attribute.Int("submissions", run.Total),
		attribute.Int("kept_strict", run.KeptStrict),
		attribute.Bool("cache_hit", load.CacheHit),
	)
	s.logger.InfoContext(ctx, "refresh completed",
		"request_id", requestcontext.RequestID(ctx),
		"run_id", run.RunID,
		"submissions", run.Total,
		"kept_raw", run.KeptRaw,
		"kept_strict", run.KeptStrict,
		"cache_hit", load.CacheHit,
		"duration_ms", run.Duration.Milliseconds(),
	)
	return snap, nil
}

// Reload drops the cached export and refreshes from the source.
func (s *Service) Reload(ctx context.Context) (*Snapshot, error) {
	if err := s.loader.Invalidate(ctx); err != nil {
		s.logger.WarnContext(ctx, "cache invalidation failed", "source", s.loader.Source(), "error", err)
	}
	return s.Refresh(ctx)
}

// Current returns the latest snapshot, refreshing first when there is none
// or it is older than the stale-after window.
func (s *Service) Current(ctx context.Context) (*Snapshot, error) {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()
	if snap != nil && requestcontext.Now(ctx).Sub(snap.LoadedAt) < s.staleAfter {
		return snap, nil
	}
	return s.Refresh(ctx)
}

// Location is the zone used for date filters and daily buckets.
func (s *Service) Location() *time.Location {
	return s.normalizer.Location()
}

// Summary aggregates the filtered view of the current snapshot.
func (s *Service) Summary(ctx context.Context, f Filter) (*Summary, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	summary := summarize(s.filter(snap, f, ViewAll), snap.Export, s.Location())
	summary.RunID = snap.RunID
	summary.LoadedAt = snap.LoadedAt
	summary.CacheHit = snap.CacheHit
	summary.Filter = echo(f)
	return &summary, nil
}

// RecordSet is a filtered listing tied to the snapshot it came from.
type RecordSet struct {
	RunID       id.RunID
	LoadedAt    time.Time
	View        View
	Submissions []models.Submission
}

// Records lists the filtered submissions in export order.
func (s *Service) Records(ctx context.Context, f Filter, view View) (*RecordSet, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return &RecordSet{
		RunID:       snap.RunID,
		LoadedAt:    snap.LoadedAt,
		View:        view,
		Submissions: s.filter(snap, f, view),
	}, nil
}

// MapPoint is a submission with a usable location.
type MapPoint struct {
	RecordID  id.RecordID `json:"record_id"`
	County    string      `json:"county"`
	Lat       float64     `json:"lat"`
	Lon       float64     `json:"lon"`
	Duplicate bool        `json:"duplicate"`
}

// MapPoints returns the filtered submissions whose coordinates decoded
// inside the operating region.
func (s *Service) MapPoints(ctx context.Context, f Filter) ([]MapPoint, error) {
	snap, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	points := []MapPoint{}
	for _, sub := range s.filter(snap, f, ViewAll) {
		if sub.Coordinate == nil {
			continue
		}
		points = append(points, MapPoint{
			RecordID:  sub.Record.ID,
			County:    sub.County.Name,
			Lat:       sub.Coordinate.Lat,
			Lon:       sub.Coordinate.Lon,
			Duplicate: sub.DuplicateStrict,
		})
	}
	return points, nil
}

// Runs returns recent refreshes, most recent first. Without a run store
// there is no history.
func (s *Service) Runs(ctx context.Context, limit int) ([]runmodels.RunSummary, error) {
	if s.runs == nil {
		return []runmodels.RunSummary{}, nil
	}
	runs, err := s.runs.ListRecent(ctx, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list runs")
	}
	if runs == nil {
		runs = []runmodels.RunSummary{}
	}
	return runs, nil
}

func (s *Service) filter(snap *Snapshot, f Filter, view View) []models.Submission {
	loc := s.Location()
	out := []models.Submission{}
	for _, sub := range snap.Submissions {
		if view.Includes(sub) && f.Matches(sub, loc) {
			out = append(out, sub)
		}
	}
	return out
}

// recordRun saves and publishes the run. Neither failure affects the
// refresh result.
func (s *Service) recordRun(ctx context.Context, run runmodels.RunSummary) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), runSideEffectWait)
	defer cancel()

	if s.runs != nil {
		if err := s.runs.Save(ctx, run); err != nil {
			s.logger.WarnContext(ctx, "failed to save run summary", "run_id", run.RunID, "error", err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, run); err != nil {
			s.logger.WarnContext(ctx, "failed to publish run event", "run_id", run.RunID, "error", err)
		}
	}
}

// describeSourceError is the user-facing reason a refresh failed.
func describeSourceError(err error) string {
	switch dataset.GetCategory(err) {
	case dataset.ErrorTimeout:
		return "the submissions export did not respond in time; try again shortly"
	case dataset.ErrorUnavailable:
		return "the submissions export could not be reached"
	case dataset.ErrorBadStatus:
		return "the submissions export refused the request; check that the link is shared for viewing"
	case dataset.ErrorBadData:
		return "the submissions export is not a readable CSV file"
	case dataset.ErrorMissingColumn:
		var se *dataset.SourceError
		if errors.As(err, &se) {
			return "the submissions export has " + se.Message
		}
	}
	return "the submissions export could not be loaded"
}
