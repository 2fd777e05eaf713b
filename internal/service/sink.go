package service

import (
	"context"
	"errors"

	"toolshare-backend/internal/domain"
)

// MultiSink fans an event out to every sink. All sinks are attempted; their
// errors are joined.
type MultiSink []EventSink

func (m MultiSink) Publish(ctx context.Context, event domain.Event) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
