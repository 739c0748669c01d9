package resources

import (
	"context"
	"net/http"
	"net/url"

	"github.com/mobcash/backoffice/sdk/go/mobcashgo/models"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/querycache"
)

// UserPage is one page of users.
type UserPage = models.PagedResult[models.User]

// Users is read-only: the console lists normal accounts but never edits them.
type Users struct {
	List *querycache.Query[UserPage]
}

func newUsers(d Deps) *Users {
	path := d.UsersPath
	return &Users{
		List: querycache.New(d.Store, ResourceUsers, func(ctx context.Context, params url.Values) (UserPage, error) {
			var page UserPage
			res, err := d.Client.Do(ctx, http.MethodGet, path, requestWith(params))
			if err != nil {
				return page, err
			}
			err = res.Decode("users list", &page)
			return page, err
		}),
	}
}

// Use is the non-blocking read for f.
func (u *Users) Use(ctx context.Context, f models.UserFilters) querycache.Snapshot[UserPage] {
	return u.List.Use(ctx, f)
}

// Fetch is the blocking read for f.
func (u *Users) Fetch(ctx context.Context, f models.UserFilters) querycache.Snapshot[UserPage] {
	return u.List.Fetch(ctx, f)
}
