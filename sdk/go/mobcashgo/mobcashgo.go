// Package mobcashgo is the Go SDK of the mobcash back office.
//
// A Console bundles the pieces every front end needs: one API client, one
// process-wide query cache, one notification feed, and the resource operations
// bound to them. Create it once at start-up and share it.
//
// Example:
//
//	cfg, _ := config.Load()
//	console, err := mobcashgo.New(mobcashgo.Options{Config: cfg})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer console.Close()
//
//	page := console.Recharges.Fetch(ctx, models.RechargeFilters{})
//	if page.Err != nil {
//	    log.Fatal(page.Err)
//	}
package mobcashgo

import (
	"log/slog"
	"net/http"

	"github.com/mobcash/backoffice/sdk/go/mobcashgo/client"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/config"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/form"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/models"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/notify"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/querycache"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/resources"
)

// Options configures New.
type Options struct {
	// Config is required.
	Config *config.Config
	// Tokens overrides the credential source. Defaults to Config.Token.
	Tokens client.TokenSource
	// HTTPClient overrides the transport.
	HTTPClient *http.Client
	// UserAgent is sent with every request.
	UserAgent string
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// PanicHook receives panics recovered from background fetches.
	PanicHook querycache.PanicHook
	// Go starts background fetches. Defaults to a plain goroutine.
	Go querycache.GoFunc
}

// Console is the shared state of one running front end.
type Console struct {
	*resources.Resources

	Client   client.Client
	Store    *querycache.Store
	Notifier notify.Notifier
	PageSize int
}

// New builds a Console from opts.
func New(opts Options) (*Console, error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, client.ErrNoBaseURL
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	tokens := opts.Tokens
	if tokens == nil {
		tokens = client.StaticToken(cfg.Token)
	}

	c, err := client.New(client.Config{
		BaseURL:    cfg.APIURL,
		Tokens:     tokens,
		HTTPClient: opts.HTTPClient,
		Timeout:    cfg.HTTPTimeout,
		UserAgent:  opts.UserAgent,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	store := querycache.NewStore(
		querycache.WithLogger(logger),
		querycache.WithPanicHook(opts.PanicHook),
		querycache.WithGo(opts.Go),
	)
	n := notify.New(notify.Config{Logger: logger})

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = models.DefaultPageSize
	}

	return &Console{
		Resources: resources.New(resources.Deps{
			Client:    c,
			Store:     store,
			Notifier:  n,
			UsersPath: cfg.UsersPath,
			Logger:    logger,
		}),
		Client:   c,
		Store:    store,
		Notifier: n,
		PageSize: pageSize,
	}, nil
}

// NewRechargeForm returns an empty recharge form wired to this console.
func (c *Console) NewRechargeForm() *form.RechargeForm {
	return form.NewRechargeForm(c.Recharges, c.Uploads, c.Notifier)
}

// NewPlatformForm returns a create form with the platform defaults.
func (c *Console) NewPlatformForm() *form.PlatformForm {
	return form.NewPlatformForm(c.Platforms, c.Uploads, c.Notifier)
}

// EditPlatformForm returns a form pre-filled from p.
func (c *Console) EditPlatformForm(p models.Platform) *form.PlatformForm {
	return form.EditPlatformForm(p, c.Platforms, c.Uploads, c.Notifier)
}

// Close stops the notification feed.
func (c *Console) Close() {
	c.Notifier.Close()
}
