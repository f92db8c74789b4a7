package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// EventTypeHazardReported labels hazard events on the sink topic.
const EventTypeHazardReported = "hazard_reported"

// PendingHazard is a stored hazard report that has not been published yet.
// Commit marks it published and must only be called after a successful load.
type PendingHazard struct {
	Report HazardReport
	Commit func(ctx context.Context) error
}

// OutputEvent is the serialized form destined for the sink topic.
type OutputEvent struct {
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// SerializeHazardReport encodes a hazard report as an OutputEvent keyed by
// report ID so downstream consumers can deduplicate replays.
func SerializeHazardReport(report HazardReport) (OutputEvent, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return OutputEvent{}, fmt.Errorf("serialize hazard report: %w", err)
	}
	return OutputEvent{
		Key:   []byte(report.ID),
		Value: data,
		Headers: map[string]string{
			"event_type":  EventTypeHazardReported,
			"road_name":   report.RoadName,
			"reported_at": report.ReportedAt.UTC().Format(time.RFC3339),
		},
	}, nil
}
