package ports

import (
	"context"
	"time"
)

// ImageCodec turns an uploaded picture into an inline JPEG data URI
type ImageCodec interface {
	Downscale(ctx context.Context, data []byte, maxWidth int, quality float64) (string, error)
}

// StateMetrics receives counters from the application services
type StateMetrics interface {
	RecordDocumentSave(success bool, duration time.Duration)
	RecordMemoryAdded()
	RecordMemoryDeleted()
}

// NoopMetrics discards every measurement
type NoopMetrics struct{}

func (NoopMetrics) RecordDocumentSave(bool, time.Duration) {}
func (NoopMetrics) RecordMemoryAdded()                     {}
func (NoopMetrics) RecordMemoryDeleted()                   {}
