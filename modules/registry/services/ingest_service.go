package services

import (
	"context"

	"github.com/atlashealth/atlas/modules/registry/ingest"
	"github.com/atlashealth/atlas/pkg/eventbus"
)

type IngestService struct {
	pipeline  *ingest.Pipeline
	publisher eventbus.EventBus
}

func NewIngestService(pipeline *ingest.Pipeline, publisher eventbus.EventBus) *IngestService {
	return &IngestService{
		pipeline:  pipeline,
		publisher: publisher,
	}
}

// ApplyFile runs one NPPES update file through the pipeline and publishes the
// resulting report. The report is returned even when the run aborted early.
func (s *IngestService) ApplyFile(ctx context.Context, path string) (*ingest.Report, error) {
	report, err := s.pipeline.ApplyFile(ctx, path)
	if report != nil {
		s.publisher.Publish("registry.file_applied", report)
	}
	return report, err
}
