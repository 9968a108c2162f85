package eventbus

import (
	"context"
	"errors"
)

// FanoutPublisher publishes every event to each wrapped publisher. All
// publishers are attempted; their errors are joined.
type FanoutPublisher struct {
	publishers []Publisher
}

// NewFanoutPublisher creates a FanoutPublisher. Nil publishers are skipped.
func NewFanoutPublisher(publishers ...Publisher) *FanoutPublisher {
	f := &FanoutPublisher{}
	for _, p := range publishers {
		if p != nil {
			f.publishers = append(f.publishers, p)
		}
	}
	return f
}

func (f *FanoutPublisher) Publish(ctx context.Context, routingKey string, payload []byte) error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Publish(ctx, routingKey, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Ping checks every publisher that supports it.
func (f *FanoutPublisher) Ping(ctx context.Context) error {
	var errs []error
	for _, p := range f.publishers {
		if pinger, ok := p.(interface{ Ping(context.Context) error }); ok {
			if err := pinger.Ping(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (f *FanoutPublisher) Close() error {
	var errs []error
	for _, p := range f.publishers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
