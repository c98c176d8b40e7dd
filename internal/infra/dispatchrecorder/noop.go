package dispatchrecorder

import (
	"context"

	"github.com/KasumiMercury/primind-task-dispatcher/internal/domain"
)

type noopRecorder struct{}

func NewNoopRecorder() domain.DispatchResultRecorder {
	return &noopRecorder{}
}

func (n *noopRecorder) RecordTick(_ context.Context, _ domain.TickResultRecord) error {
	return nil
}

func (n *noopRecorder) Close() error {
	return nil
}
