package resources

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mobcash/backoffice/sdk/go/mobcashgo/client"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/models"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/querycache"
)

// RechargePage is one page of recharges.
type RechargePage = models.PagedResult[models.Recharge]

// Recharges lists and files balance top-up requests.
type Recharges struct {
	List *querycache.Query[RechargePage]
	deps Deps
}

func newRecharges(d Deps) *Recharges {
	return &Recharges{
		deps: d,
		List: querycache.New(d.Store, ResourceRecharges, func(ctx context.Context, params url.Values) (RechargePage, error) {
			var page RechargePage
			res, err := d.Client.Do(ctx, http.MethodGet, RechargesPath, requestWith(params))
			if err != nil {
				return page, err
			}
			err = res.Decode("recharges list", &page)
			return page, err
		}),
	}
}

// Use is the non-blocking read for f.
func (r *Recharges) Use(ctx context.Context, f models.RechargeFilters) querycache.Snapshot[RechargePage] {
	return r.List.Use(ctx, f)
}

// Fetch is the blocking read for f.
func (r *Recharges) Fetch(ctx context.Context, f models.RechargeFilters) querycache.Snapshot[RechargePage] {
	return r.List.Fetch(ctx, f)
}

// Create files a recharge request. Input is sent as given; validation belongs
// to the caller (see the form package).
//
// The returned recharge is nil when the server's reply is not a recharge
// object; the request itself still counts as successful.
func (r *Recharges) Create(ctx context.Context, in models.CreateRechargeInput) (*models.Recharge, error) {
	return mutate(ctx, r.deps, mutation{
		resource: ResourceRecharges,
		op:       "create",
		success:  MsgRechargeCreated,
		failure:  MsgRechargeCreateFailed,
	}, func(ctx context.Context) (*models.Recharge, error) {
		res, err := r.deps.Client.Do(ctx, http.MethodPost, RechargesPath, client.RequestOptions{Body: in})
		if err != nil {
			return nil, err
		}
		var created models.Recharge
		if err := res.Decode("recharge create", &created); err != nil {
			r.deps.Logger.Debug("recharge created but reply not decoded", "request_id", res.RequestID, "error", err)
			return nil, nil
		}
		return &created, nil
	})
}

func requestWith(params url.Values) client.RequestOptions {
	return client.RequestOptions{Params: params}
}
