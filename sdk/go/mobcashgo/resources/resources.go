// Package resources binds each back-office REST resource to the query cache.
//
// Every resource exposes a read query (a querycache.Query over its list
// endpoint) and its write operations. A successful write raises a success
// notification and invalidates every cached list of its resource, whatever the
// filters; a failed write raises an error notification carrying the server's
// detail message, or a generic message when there is none.
package resources

import (
	"log/slog"

	"github.com/mobcash/backoffice/sdk/go/mobcashgo/client"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/notify"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/querycache"
)

// Resource tags used as cache key prefixes and notification sources.
const (
	ResourceUsers     = "users"
	ResourceRecharges = "recharges"
	ResourcePlatforms = "platforms"
	ResourceUploads   = "uploads"
)

// API paths.
const (
	DefaultUsersPath = "/mobcash/users"
	RechargesPath    = "/mobcash/recharge-mobcash-balance"
	PlatformsPath    = "/mobcash/plateform"
	UploadPath       = "/mobcash/upload"
)

// Operator-facing messages.
const (
	MsgPlatformCreated = "Plateforme créée avec succès!"
	MsgPlatformUpdated = "Plateforme mise à jour avec succès!"
	MsgPlatformDeleted = "Plateforme supprimée avec succès!"
	MsgRechargeCreated = "Demande de recharge créée avec succès!"
	MsgUploadSucceeded = "Image téléchargée avec succès"

	MsgPlatformCreateFailed = "Erreur lors de la création de la plateforme"
	MsgPlatformUpdateFailed = "Erreur lors de la mise à jour de la plateforme"
	MsgPlatformDeleteFailed = "Erreur lors de la suppression de la plateforme"
	MsgRechargeCreateFailed = "Erreur lors de la création de la recharge"
	MsgProofUploadFailed    = "Erreur lors du téléchargement du fichier"
	MsgImageUploadFailed    = "Erreur lors du téléchargement de l'image"
)

// Deps are the collaborators shared by every resource.
type Deps struct {
	Client   client.Client
	Store    *querycache.Store
	Notifier notify.Notifier
	// UsersPath overrides DefaultUsersPath.
	UsersPath string
	Logger    *slog.Logger
}

// Resources groups the operations of all resources over one store.
type Resources struct {
	Users     *Users
	Recharges *Recharges
	Platforms *Platforms
	Uploads   *Uploader
}

// New wires every resource to d. A nil Notifier discards notifications.
func New(d Deps) *Resources {
	if d.Notifier == nil {
		d.Notifier = discard{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.UsersPath == "" {
		d.UsersPath = DefaultUsersPath
	}
	return &Resources{
		Users:     newUsers(d),
		Recharges: newRecharges(d),
		Platforms: newPlatforms(d),
		Uploads:   newUploader(d),
	}
}

type discard struct{}

func (discard) Notify(notify.Notification)                         {}
func (discard) Success(string, string, string)                      {}
func (discard) Error(string, string, string)                        {}
func (discard) Recent(int) []notify.Notification                    { return nil }
func (discard) Close()                                              {}
func (discard) Subscribe(notify.Filter) (notify.Subscriber, func()) { return closedSubscriber(), func() {} }

func closedSubscriber() notify.Subscriber {
	ch := make(notify.Subscriber)
	close(ch)
	return ch
}
