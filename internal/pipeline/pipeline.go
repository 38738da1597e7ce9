package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Suraj370/conversion-analytics-ab-platform/internal/analytics"
	"github.com/Suraj370/conversion-analytics-ab-platform/internal/export"
	"github.com/Suraj370/conversion-analytics-ab-platform/internal/repository"
)

// ResultWriter persists one run's output tables
type ResultWriter interface {
	Write(tables *export.Tables) error
}

// Result carries everything one batch run computed
type Result struct {
	GeneratedAt        time.Time
	EventCount         int
	Quality            analytics.QualityReport
	Journeys           map[string]*analytics.UserJourney
	Funnel             []analytics.FunnelStageMetric
	Violations         []analytics.FunnelViolation
	Experiments        []analytics.ExperimentVariantMetric
	SkippedAssignments int
	EventSummary       []analytics.EventTypeSummary
}

// Pipeline recomputes all metric tables from the full event log. Each run is
// a pure batch transform: snapshot in, tables out, no incremental state.
type Pipeline struct {
	repo   repository.EventRepository
	writer ResultWriter
	stages []analytics.Stage
	log    *zap.Logger
}

// New creates a pipeline over the given event store and funnel definition
func New(repo repository.EventRepository, writer ResultWriter, stages []analytics.Stage, log *zap.Logger) *Pipeline {
	return &Pipeline{
		repo:   repo,
		writer: writer,
		stages: stages,
		log:    log,
	}
}

// Run executes one batch recomputation. Store unavailability is fatal and
// aborts before any output is replaced. The funnel branch (aggregate +
// invariant check) and the experiment branch read the same immutable journey
// set and run concurrently. Invariant violations are logged and reported,
// never escalated to an error.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	events, err := p.repo.FetchEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch event snapshot: %w", err)
	}

	p.log.Info("Fetched event snapshot", zap.Int("event_count", len(events)))

	staged, quality := analytics.StageEvents(events)
	if quality.Dropped() > 0 || quality.InvalidProperties > 0 {
		p.log.Warn("Data quality issues in event snapshot",
			zap.Int("missing_user_id", quality.MissingUserID),
			zap.Int("missing_event_type", quality.MissingEventType),
			zap.Int("invalid_properties", quality.InvalidProperties))
	}

	journeys := analytics.BuildJourneys(staged)

	result := &Result{
		GeneratedAt: time.Now().UTC(),
		EventCount:  len(events),
		Quality:     quality,
		Journeys:    journeys,
	}

	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		result.Funnel = analytics.AggregateFunnel(journeys, p.stages)
		result.Violations = analytics.CheckFunnel(result.Funnel)
		return nil
	})

	g.Go(func() error {
		result.Experiments, result.SkippedAssignments = analytics.AnalyzeExperiments(staged, journeys)
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.EventSummary = analytics.SummarizeEvents(staged)

	for _, violation := range result.Violations {
		p.log.Warn("Funnel invariant violated",
			zap.String("step", violation.Step),
			zap.Int("step_order", violation.StepOrder),
			zap.Int("users_reached", violation.UsersReached),
			zap.String("prev_step", violation.PrevStep),
			zap.Int("prev_users_reached", violation.PrevUsersReached))
	}
	if result.SkippedAssignments > 0 {
		p.log.Warn("Skipped assignment events with missing experiment fields",
			zap.Int("count", result.SkippedAssignments))
	}

	if p.writer != nil {
		tables := &export.Tables{
			GeneratedAt:  result.GeneratedAt,
			Journeys:     export.JourneyRows(journeys, p.stages),
			Funnel:       result.Funnel,
			Experiments:  result.Experiments,
			Violations:   result.Violations,
			EventSummary: result.EventSummary,
		}
		if err := p.writer.Write(tables); err != nil {
			return nil, fmt.Errorf("failed to write output tables: %w", err)
		}
	}

	p.log.Info("Pipeline run complete",
		zap.Int("journeys", len(journeys)),
		zap.Int("funnel_stages", len(result.Funnel)),
		zap.Int("experiment_variants", len(result.Experiments)),
		zap.Int("violations", len(result.Violations)))

	return result, nil
}
