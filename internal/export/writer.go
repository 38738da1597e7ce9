package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Suraj370/conversion-analytics-ab-platform/internal/analytics"
)

// Output file names, one per metric table plus the combined dashboard feed.
const (
	JourneyFile    = "journey_summary.json"
	FunnelFile     = "funnel_metrics.json"
	ExperimentFile = "experiment_metrics.json"
	ViolationFile  = "funnel_violations.json"
	DashboardFile  = "dashboard.json"
)

// JourneyRow is the exported shape of one user journey
type JourneyRow struct {
	UserID              string               `json:"user_id"`
	FirstSeen           map[string]time.Time `json:"first_seen"`
	Reached             map[string]bool      `json:"reached"`
	EventCounts         map[string]int       `json:"event_counts"`
	TotalEvents         int                  `json:"total_events"`
	FirstPurchasePlan   string               `json:"first_purchase_plan,omitempty"`
	FirstPurchaseAmount *float64             `json:"first_purchase_amount,omitempty"`
	FirstAssignmentAt   *time.Time           `json:"first_assignment_at,omitempty"`
	IsConverted         bool                 `json:"is_converted"`
}

// Tables holds one pipeline run's complete output
type Tables struct {
	GeneratedAt  time.Time                           `json:"generated_at"`
	Journeys     []JourneyRow                        `json:"journeys"`
	Funnel       []analytics.FunnelStageMetric       `json:"funnel"`
	Experiments  []analytics.ExperimentVariantMetric `json:"experiments"`
	Violations   []analytics.FunnelViolation         `json:"violations"`
	EventSummary []analytics.EventTypeSummary        `json:"event_summary"`
}

// dashboard is the combined feed the static dashboard consumes
type dashboard struct {
	GeneratedAt  time.Time                           `json:"generated_at"`
	Funnel       []analytics.FunnelStageMetric       `json:"funnel"`
	Experiments  []analytics.ExperimentVariantMetric `json:"experiments"`
	EventSummary []analytics.EventTypeSummary        `json:"event_summary"`
}

// JourneyRows converts journeys to export rows ordered by user_id. Reached
// flags are emitted for the configured funnel stages.
func JourneyRows(journeys map[string]*analytics.UserJourney, stages []analytics.Stage) []JourneyRow {
	rows := make([]JourneyRow, 0, len(journeys))

	for _, journey := range journeys {
		firstSeen := make(map[string]time.Time, len(journey.FirstSeen))
		for eventType, at := range journey.FirstSeen {
			firstSeen[string(eventType)] = at
		}

		counts := make(map[string]int, len(journey.EventCounts))
		for eventType, count := range journey.EventCounts {
			counts[string(eventType)] = count
		}

		reached := make(map[string]bool, len(stages))
		for _, stage := range stages {
			reached[stage.Name] = journey.Reached(stage.EventType)
		}

		rows = append(rows, JourneyRow{
			UserID:              journey.UserID,
			FirstSeen:           firstSeen,
			Reached:             reached,
			EventCounts:         counts,
			TotalEvents:         journey.TotalEvents,
			FirstPurchasePlan:   journey.FirstPurchasePlan,
			FirstPurchaseAmount: journey.FirstPurchaseAmount,
			FirstAssignmentAt:   journey.FirstAssignmentAt,
			IsConverted:         journey.IsConverted,
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].UserID < rows[j].UserID })
	return rows
}

// Writer writes metric tables as JSON files with replace-on-success
// semantics: all tables marshal before any existing file is touched, and
// each file lands via rename so a failed run leaves prior output intact.
type Writer struct {
	dir string
	log *zap.Logger
}

// NewWriter creates a writer targeting the given output directory
func NewWriter(dir string, log *zap.Logger) *Writer {
	return &Writer{dir: dir, log: log}
}

// Write renders and atomically replaces all output files
func (w *Writer) Write(tables *Tables) error {
	files := []struct {
		name string
		data interface{}
	}{
		{JourneyFile, tables.Journeys},
		{FunnelFile, tables.Funnel},
		{ExperimentFile, tables.Experiments},
		{ViolationFile, tables.Violations},
		{DashboardFile, dashboard{
			GeneratedAt:  tables.GeneratedAt,
			Funnel:       tables.Funnel,
			Experiments:  tables.Experiments,
			EventSummary: tables.EventSummary,
		}},
	}

	rendered := make([][]byte, len(files))
	for i, file := range files {
		data, err := json.MarshalIndent(file.data, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal %s: %w", file.name, err)
		}
		rendered[i] = data
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	for i, file := range files {
		if err := w.writeAtomic(file.name, rendered[i]); err != nil {
			return err
		}
	}

	w.log.Info("Exported metric tables",
		zap.String("dir", w.dir),
		zap.Int("journeys", len(tables.Journeys)),
		zap.Int("funnel_stages", len(tables.Funnel)),
		zap.Int("experiment_variants", len(tables.Experiments)),
		zap.Int("violations", len(tables.Violations)))

	return nil
}

func (w *Writer) writeAtomic(name string, data []byte) error {
	target := filepath.Join(w.dir, name)

	tmp, err := os.CreateTemp(w.dir, name+".tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close %s: %w", name, err)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}

	return nil
}
