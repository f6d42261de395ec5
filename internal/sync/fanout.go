package syncx

import (
	"context"
	"errors"
)

type Publisher interface {
	Publish(ctx context.Context, typ, key string, payload any) error
}

// Fanout delivers every event to all publishers and joins their errors.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, typ, key string, payload any) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, typ, key, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
