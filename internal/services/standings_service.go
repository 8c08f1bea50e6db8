package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/kairadc/poker-standings/internal/infrastructure"
	"github.com/kairadc/poker-standings/internal/source"
	"github.com/kairadc/poker-standings/internal/standings"
	"github.com/kairadc/poker-standings/pkg/contracts/domain"
)

// LoadResult is one computed snapshot: the validated records, the
// consistency report over them, and the data-quality block describing the
// load. It is cached whole and shared between requests; filters are applied
// per request on top of it, never baked in.
//
// A LoadResult is immutable after construction. Handlers must not modify
// the slices it carries.
type LoadResult struct {
	Records []domain.SessionRecord
	Report  *standings.ConsistencyReport
	Quality domain.DataQuality
}

// StandingsService orchestrates the dashboard pipeline: fetch a snapshot,
// validate its rows, check consistency, aggregate tables. One computed
// LoadResult is cached per source with a TTL; concurrent cache misses for
// the same source collapse into a single in-flight load.
type StandingsService struct {
	primary    source.RowSource
	fallback   source.RowSource
	validator  *standings.Validator
	aggregator *standings.Aggregator
	snapshots  *gocache.Cache
	flight     singleflight.Group
	metrics    *infrastructure.BusinessMetrics
	logger     *slog.Logger
}

// NewStandingsService creates the service. fallback may be nil when the
// primary source is already the bundled sample; metrics may be nil in
// tests.
func NewStandingsService(
	primary source.RowSource,
	fallback source.RowSource,
	snapshots *gocache.Cache,
	metrics *infrastructure.BusinessMetrics,
	aggConfig standings.AggregatorConfig,
	logger *slog.Logger,
) *StandingsService {
	if logger == nil {
		logger = slog.Default()
	}
	if snapshots == nil {
		snapshots = gocache.New(15*time.Minute, 30*time.Minute)
	}

	logger.Info("standings service initialized",
		slog.String("source", string(primary.Kind())),
		slog.String("cache_key", primary.ID()),
		slog.Bool("sample_fallback", fallback != nil))

	return &StandingsService{
		primary:    primary,
		fallback:   fallback,
		validator:  standings.NewValidator(logger),
		aggregator: standings.NewAggregator(logger, aggConfig),
		snapshots:  snapshots,
		metrics:    metrics,
		logger:     logger,
	}
}

// Load returns the current computed snapshot, served from cache when a
// fresh one exists.
func (s *StandingsService) Load(ctx context.Context) (*LoadResult, error) {
	key := s.primary.ID()

	if v, ok := s.snapshots.Get(key); ok {
		infrastructure.RecordCacheLookup(ctx, s.metrics, true)
		return v.(*LoadResult), nil
	}
	infrastructure.RecordCacheLookup(ctx, s.metrics, false)

	return s.loadShared(ctx, key)
}

// Refresh drops the cached snapshot and loads a fresh one. This is the
// explicit "reload from source" operation behind POST /api/refresh.
func (s *StandingsService) Refresh(ctx context.Context) (*LoadResult, error) {
	key := s.primary.ID()
	s.snapshots.Delete(key)

	infrastructure.RecordRefresh(ctx, s.metrics, string(s.primary.Kind()))
	s.logger.InfoContext(ctx, "snapshot cache invalidated",
		slog.String("cache_key", key))

	return s.loadShared(ctx, key)
}

// loadShared collapses concurrent loads for one source key into a single
// fetch. Late joiners re-check the cache inside the flight, so a load that
// lands right after another finished reuses its result instead of fetching
// again.
func (s *StandingsService) loadShared(ctx context.Context, key string) (*LoadResult, error) {
	v, err, shared := s.flight.Do(key, func() (interface{}, error) {
		if v, ok := s.snapshots.Get(key); ok {
			return v, nil
		}
		result, err := s.loadFresh(ctx)
		if err != nil {
			return nil, err
		}
		s.snapshots.SetDefault(key, result)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.DebugContext(ctx, "joined in-flight load",
			slog.String("cache_key", key))
	}
	return v.(*LoadResult), nil
}

// loadFresh runs one full fetch-validate-derive pass against the source.
func (s *StandingsService) loadFresh(ctx context.Context) (*LoadResult, error) {
	start := time.Now()

	snapshot, issues, err := s.fetchWithFallback(ctx)
	if err != nil {
		infrastructure.RecordLoadMetrics(ctx, s.metrics,
			string(s.primary.Kind()), time.Since(start), 0, 0, 0, err)
		return nil, err
	}

	validation, err := s.validator.Validate(ctx, snapshot.Headers, snapshot.Rows)
	if err != nil {
		infrastructure.RecordLoadMetrics(ctx, s.metrics,
			string(snapshot.Kind), time.Since(start), len(snapshot.Rows), 0, 0, err)
		return nil, err
	}

	report := standings.CheckConsistency(validation.Records, validation.AffectedSessions)
	inconsistent := report.SessionIDs()

	quality := domain.DataQuality{
		Source:               snapshot.Kind,
		DemoMode:             snapshot.Kind == domain.SourceSample,
		FetchedAt:            snapshot.FetchedAt,
		Schema:               validation.Schema,
		RowCount:             len(snapshot.Rows),
		Issues:               issues,
		RejectedRows:         validation.Rejected,
		InconsistentSessions: inconsistent,
		Warnings:             buildWarnings(validation.Rejected, report),
	}

	infrastructure.RecordLoadMetrics(ctx, s.metrics,
		string(snapshot.Kind), time.Since(start),
		len(snapshot.Rows), len(validation.Rejected), len(inconsistent), nil)

	s.logger.InfoContext(ctx, "snapshot loaded",
		slog.String("source", string(snapshot.Kind)),
		slog.String("schema", string(validation.Schema)),
		slog.Int("rows", len(snapshot.Rows)),
		slog.Int("accepted", len(validation.Records)),
		slog.Int("rejected", len(validation.Rejected)),
		slog.Int("inconsistent_sessions", len(inconsistent)),
		slog.Bool("demo_mode", quality.DemoMode),
		slog.Duration("duration", time.Since(start)))

	return &LoadResult{
		Records: validation.Records,
		Report:  report,
		Quality: quality,
	}, nil
}

// fetchWithFallback reads the primary source and degrades to the sample
// dataset when the primary is unavailable. The returned issues explain the
// degradation; they end up in DataQuality.Issues. Schema and row problems
// are not fallback triggers, only an unreachable source is.
func (s *StandingsService) fetchWithFallback(ctx context.Context) (*source.Snapshot, []string, error) {
	fetchStart := time.Now()

	snapshot, err := s.primary.Fetch(ctx)
	if err == nil {
		return snapshot, nil, nil
	}

	if s.fallback == nil {
		return nil, nil, err
	}

	s.logger.WarnContext(ctx, "configured source unavailable, falling back to sample data",
		slog.String("source", string(s.primary.Kind())),
		slog.String("error", err.Error()))

	snapshot, fallbackErr := s.fallback.Fetch(ctx)
	if fallbackErr != nil {
		// Report the primary failure; a broken embedded sample would be
		// a build defect, not an operational state.
		return nil, nil, err
	}

	infrastructure.RecordLoadMetrics(ctx, s.metrics,
		string(s.primary.Kind()), time.Since(fetchStart), 0, 0, 0, err)

	issue := fmt.Sprintf("configured %s source unavailable, serving bundled sample data: %v",
		s.primary.Kind(), err)
	return snapshot, []string{issue}, nil
}

// Overview returns the headline KPIs for the filtered records.
func (s *StandingsService) Overview(ctx context.Context, filter domain.SessionFilter) (domain.Overview, *domain.DataQuality, error) {
	result, err := s.Load(ctx)
	if err != nil {
		return domain.Overview{}, nil, err
	}
	overview := s.aggregator.Overview(ctx, filterRecords(result.Records, filter), result.Report)
	return overview, &result.Quality, nil
}

// Standings returns the ranked standings table for the filtered records.
func (s *StandingsService) Standings(ctx context.Context, filter domain.SessionFilter) ([]domain.PlayerStanding, *domain.DataQuality, error) {
	result, err := s.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	rows := s.aggregator.Standings(ctx, filterRecords(result.Records, filter), result.Report)
	return rows, &result.Quality, nil
}

// Sessions returns the session history table, inconsistent sessions
// included and flagged.
func (s *StandingsService) Sessions(ctx context.Context, filter domain.SessionFilter) ([]domain.SessionSummary, *domain.DataQuality, error) {
	result, err := s.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	summaries := s.aggregator.SessionSummaries(ctx, filterRecords(result.Records, filter), result.Report)
	return summaries, &result.Quality, nil
}

// Leaderboards returns per-group standings along one grouping dimension.
func (s *StandingsService) Leaderboards(ctx context.Context, dim standings.Dimension, filter domain.SessionFilter) ([]domain.LeaderboardGroup, *domain.DataQuality, error) {
	result, err := s.Load(ctx)
	if err != nil {
		return nil, nil, err
	}
	groups := s.aggregator.Leaderboards(ctx, filterRecords(result.Records, filter), result.Report, dim)
	return groups, &result.Quality, nil
}

// PlayerProfile returns the detailed view for one player. The player is
// looked up by normalized identity, so "Dana" and "dana " find the same
// profile. Returns ErrPlayerNotFound when the player has no consistent
// sessions in the filtered record set.
func (s *StandingsService) PlayerProfile(ctx context.Context, player string, filter domain.SessionFilter) (domain.PlayerProfile, *domain.DataQuality, error) {
	result, err := s.Load(ctx)
	if err != nil {
		return domain.PlayerProfile{}, nil, err
	}

	key := domain.NormalizePlayerKey(player)
	profile, ok := s.aggregator.Profile(ctx, filterRecords(result.Records, filter), result.Report, key)
	if !ok {
		return domain.PlayerProfile{}, nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, player)
	}
	return profile, &result.Quality, nil
}

// SourceStatus probes the configured source without fetching data.
func (s *StandingsService) SourceStatus(ctx context.Context) domain.SourceStatus {
	return s.primary.Status(ctx)
}

// SourceKind reports the kind of the configured primary source.
func (s *StandingsService) SourceKind() domain.SourceKind {
	return s.primary.Kind()
}

// Cached reports whether a computed snapshot is currently cached.
func (s *StandingsService) Cached() bool {
	_, ok := s.snapshots.Get(s.primary.ID())
	return ok
}

// filterRecords applies the session filter. Consistency is a property of
// the source data and was already checked over the unfiltered set; only
// the aggregation inputs narrow here.
func filterRecords(records []domain.SessionRecord, filter domain.SessionFilter) []domain.SessionRecord {
	if filter.IsZero() {
		return records
	}
	filtered := make([]domain.SessionRecord, 0, len(records))
	for i := range records {
		if filter.Matches(&records[i]) {
			filtered = append(filtered, records[i])
		}
	}
	return filtered
}

// buildWarnings renders the human-readable warning list: one line per
// rejected row, then one per inconsistent session.
func buildWarnings(rejected []domain.RejectedRow, report *standings.ConsistencyReport) []string {
	warnings := make([]string, 0, len(rejected))
	for _, r := range rejected {
		warnings = append(warnings, r.String())
	}
	return append(warnings, report.Warnings()...)
}
