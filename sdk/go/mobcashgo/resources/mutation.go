package resources

import (
	"context"

	"github.com/mobcash/backoffice/sdk/go/mobcashgo/client"
)

type mutation struct {
	resource string
	op       string
	success  string
	failure  string
}

// mutate runs call and applies the write contract: notify and invalidate on
// success, notify with the server detail (or m.failure) on error.
func mutate[T any](ctx context.Context, d Deps, m mutation, call func(ctx context.Context) (T, error)) (T, error) {
	result, err := call(ctx)
	if err != nil {
		d.Logger.Warn("write failed", "resource", m.resource, "op", m.op, "error", err)
		d.Notifier.Error(m.resource, m.op, client.ErrorMessage(err, m.failure))
		return result, err
	}

	d.Notifier.Success(m.resource, m.op, m.success)
	if d.Store != nil {
		d.Store.Invalidate(m.resource)
	}
	return result, nil
}
