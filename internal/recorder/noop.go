package recorder

import "AdAuctionSim/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordResults(_ string, _ []model.AuctionResult) error { return nil }
func (n *NoopRecorder) RecordSummary(_ *RunSummary) error                     { return nil }
func (n *NoopRecorder) Close() error                                          { return nil }
