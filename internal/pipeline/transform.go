package pipeline

import (
	"context"

	"github.com/couchcryptid/road-safety-service/internal/domain"
)

// HazardSerializer implements Transformer with domain.SerializeHazardReport.
type HazardSerializer struct{}

// NewTransformer creates the hazard report transformer used by the relay.
func NewTransformer() HazardSerializer {
	return HazardSerializer{}
}

func (HazardSerializer) Transform(_ context.Context, report domain.HazardReport) (domain.OutputEvent, error) {
	return domain.SerializeHazardReport(report)
}
