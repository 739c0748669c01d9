package dashboard

import (
	"context"
	"strconv"

	"github.com/charmbracelet/bubbles/table"

	"github.com/mobcash/backoffice/sdk/go/mobcashgo"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/models"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/ptr"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/querycache"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/resources"
)

// Tab is one of the dashboard's list screens.
type Tab int

const (
	TabUsers Tab = iota
	TabRecharges
	TabPlatforms
)

var tabs = []Tab{TabUsers, TabRecharges, TabPlatforms}

func (t Tab) String() string {
	switch t {
	case TabRecharges:
		return "Recharges"
	case TabPlatforms:
		return "Plateformes"
	default:
		return "Utilisateurs"
	}
}

// resource is the cache resource tag the tab reads.
func (t Tab) resource() string {
	switch t {
	case TabRecharges:
		return resources.ResourceRecharges
	case TabPlatforms:
		return resources.ResourcePlatforms
	default:
		return resources.ResourceUsers
	}
}

// listState is the filter state of one tab.
type listState struct {
	search string
	page   int
	enable *bool // platforms only
}

func (s listState) toPage(pageSize int) models.Page {
	page := s.page
	if page < 1 {
		page = 1
	}
	return models.Page{Page: page, PageSize: pageSize, Search: s.search}
}

// view is what the active tab currently shows.
type view struct {
	columns  []table.Column
	rows     []table.Row
	copyable []string // value copied with "y", per row
	count    int
	hasNext  bool
	hasPrev  bool
	status   querycache.Status
	err      error
	stale    bool
}

func (v view) loading() bool {
	return v.status == querycache.StatusLoading
}

// loadView reads the active tab through its query. Use never blocks: a missing
// or stale page starts a background fetch and the store event brings us back.
func loadView(ctx context.Context, c *mobcashgo.Console, tab Tab, s listState) view {
	page := s.toPage(c.PageSize)
	switch tab {
	case TabRecharges:
		return buildView(c.Recharges.Use(ctx, models.RechargeFilters{Page: page}), rechargeColumns, rechargeRow)
	case TabPlatforms:
		return buildView(c.Platforms.Use(ctx, models.PlatformFilters{Page: page, Enable: s.enable}), platformColumns, platformRow)
	default:
		return buildView(c.Users.Use(ctx, models.UserFilters{Page: page}), userColumns, userRow)
	}
}

func buildView[T any](snap querycache.Snapshot[models.PagedResult[T]], cols []table.Column, row func(T) (table.Row, string)) view {
	v := view{
		columns: cols,
		status:  snap.Status,
		err:     snap.Err,
		stale:   snap.Stale,
	}
	if !snap.HasData {
		return v
	}
	v.count = snap.Data.Count
	v.hasNext = snap.Data.HasNext()
	v.hasPrev = snap.Data.HasPrevious()
	for _, item := range snap.Data.Results {
		r, c := row(item)
		v.rows = append(v.rows, r)
		v.copyable = append(v.copyable, c)
	}
	return v
}

var userColumns = []table.Column{
	{Title: "Nom", Width: 22},
	{Title: "Email", Width: 28},
	{Title: "Téléphone", Width: 16},
	{Title: "Code parrain", Width: 14},
	{Title: "Statut", Width: 8},
	{Title: "Inscrit le", Width: 16},
}

func userRow(u models.User) (table.Row, string) {
	name := u.FullName()
	if name == "" {
		name = u.Username
	}
	referral := ptr.FromPtr(u.ReferralCode)
	return table.Row{
		dash(name),
		dash(u.Email),
		dash(u.Phone),
		dash(referral),
		u.ActivityLabel(),
		date(u.DateJoined),
	}, referral
}

var rechargeColumns = []table.Column{
	{Title: "ID", Width: 6},
	{Title: "Créé par", Width: 22},
	{Title: "Montant", Width: 18},
	{Title: "Méthode", Width: 18},
	{Title: "Référence", Width: 18},
	{Title: "Preuve", Width: 7},
	{Title: "Date", Width: 16},
}

func rechargeRow(r models.Recharge) (table.Row, string) {
	proof := "-"
	if r.PaymentProof != nil && *r.PaymentProof != "" {
		proof = "oui"
	}
	return table.Row{
		strconv.FormatInt(r.ID, 10),
		dash(r.CreatedBy.FullName()),
		models.FormatAmountText(r.Amount),
		r.PaymentMethod.Label(),
		dash(r.PaymentReference),
		proof,
		date(r.CreatedAt),
	}, r.PaymentReference
}

var platformColumns = []table.Column{
	{Title: "Nom", Width: 20},
	{Title: "Active", Width: 7},
	{Title: "Dépôt", Width: 6},
	{Title: "Retrait", Width: 8},
	{Title: "Ordre", Width: 6},
	{Title: "ID", Width: 36},
}

func platformRow(p models.Platform) (table.Row, string) {
	order := "-"
	if p.Order != nil {
		order = strconv.Itoa(*p.Order)
	}
	return table.Row{
		p.Name,
		yesNo(p.Enable),
		yesNo(p.ActiveForDeposit),
		yesNo(p.ActiveForWith),
		order,
		p.ID,
	}, p.ID
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func date(t models.Timestamp) string {
	return t.Display("02/01/2006 15:04")
}

func yesNo(b bool) string {
	if b {
		return "oui"
	}
	return "non"
}
