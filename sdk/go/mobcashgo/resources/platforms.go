package resources

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/mobcash/backoffice/sdk/go/mobcashgo/client"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/models"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/querycache"
)

// PlatformPage is one page of platforms.
type PlatformPage = models.PagedResult[models.Platform]

// Platforms manages payment platforms.
type Platforms struct {
	List *querycache.Query[PlatformPage]
	deps Deps
}

func newPlatforms(d Deps) *Platforms {
	return &Platforms{
		deps: d,
		List: querycache.New(d.Store, ResourcePlatforms, func(ctx context.Context, params url.Values) (PlatformPage, error) {
			res, err := d.Client.Do(ctx, http.MethodGet, PlatformsPath, requestWith(params))
			if err != nil {
				return PlatformPage{}, err
			}
			return decodePlatformList(res.Body)
		}),
	}
}

// decodePlatformList accepts both shapes the endpoint returns: a bare array,
// which becomes a single page, or the paged envelope.
func decodePlatformList(body []byte) (PlatformPage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return PlatformPage{}, &client.ShapeError{Op: "platforms list", Reason: "empty body"}
	}

	switch trimmed[0] {
	case '[':
		var items []models.Platform
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return PlatformPage{}, &client.ShapeError{Op: "platforms list", Reason: "cannot decode array", Body: body, Err: err}
		}
		return models.SinglePage(items), nil
	case '{':
		var page PlatformPage
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return PlatformPage{}, &client.ShapeError{Op: "platforms list", Reason: "cannot decode page", Body: body, Err: err}
		}
		if page.Results == nil {
			page.Results = []models.Platform{}
		}
		return page, nil
	default:
		return PlatformPage{}, &client.ShapeError{Op: "platforms list", Reason: "neither an array nor a page", Body: body}
	}
}

// Use is the non-blocking read for f.
func (p *Platforms) Use(ctx context.Context, f models.PlatformFilters) querycache.Snapshot[PlatformPage] {
	return p.List.Use(ctx, f)
}

// Fetch is the blocking read for f.
func (p *Platforms) Fetch(ctx context.Context, f models.PlatformFilters) querycache.Snapshot[PlatformPage] {
	return p.List.Fetch(ctx, f)
}

// Create adds a platform. Blank secret fields are removed from the payload.
func (p *Platforms) Create(ctx context.Context, in models.PlatformInput) (*models.Platform, error) {
	body := in.Sanitized()
	return mutate(ctx, p.deps, mutation{
		resource: ResourcePlatforms,
		op:       "create",
		success:  MsgPlatformCreated,
		failure:  MsgPlatformCreateFailed,
	}, func(ctx context.Context) (*models.Platform, error) {
		return p.write(ctx, http.MethodPost, PlatformsPath, body)
	})
}

// Update sends a partial update for platform id.
func (p *Platforms) Update(ctx context.Context, id string, patch models.PlatformPatch) (*models.Platform, error) {
	body := patch.Sanitized()
	return mutate(ctx, p.deps, mutation{
		resource: ResourcePlatforms,
		op:       "update",
		success:  MsgPlatformUpdated,
		failure:  MsgPlatformUpdateFailed,
	}, func(ctx context.Context) (*models.Platform, error) {
		return p.write(ctx, http.MethodPut, platformPath(id), body)
	})
}

// Delete removes platform id.
func (p *Platforms) Delete(ctx context.Context, id string) error {
	_, err := mutate(ctx, p.deps, mutation{
		resource: ResourcePlatforms,
		op:       "delete",
		success:  MsgPlatformDeleted,
		failure:  MsgPlatformDeleteFailed,
	}, func(ctx context.Context) (struct{}, error) {
		_, err := p.deps.Client.Do(ctx, http.MethodDelete, platformPath(id), client.RequestOptions{})
		return struct{}{}, err
	})
	return err
}

func (p *Platforms) write(ctx context.Context, method, path string, body any) (*models.Platform, error) {
	res, err := p.deps.Client.Do(ctx, method, path, client.RequestOptions{Body: body})
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(res.Body)) == 0 {
		return nil, nil
	}
	var platform models.Platform
	if err := res.Decode("platform write", &platform); err != nil {
		p.deps.Logger.Debug("platform written but reply not decoded", "request_id", res.RequestID, "error", err)
		return nil, nil
	}
	return &platform, nil
}

func platformPath(id string) string {
	return PlatformsPath + "/" + url.PathEscape(id)
}
