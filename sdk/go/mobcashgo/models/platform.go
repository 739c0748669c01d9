package models

import "github.com/mobcash/backoffice/sdk/go/mobcashgo/ptr"

// Platform is a payment/betting platform configured in the back office.
// The deposit and withdrawal bounds are not cross-checked on the client.
type Platform struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Image              string  `json:"image"`
	Enable             bool    `json:"enable"`
	Hash               *string `json:"hash,omitempty"`
	Cashdeskid         *string `json:"cashdeskid,omitempty"`
	Cashierpass        *string `json:"cashierpass,omitempty"`
	DepositTutoLink    *string `json:"deposit_tuto_link"`
	WithdrawalTutoLink *string `json:"withdrawal_tuto_link"`
	WhyWithdrawalFail  *string `json:"why_withdrawal_fail"`
	Order              *int    `json:"order"`
	City               *string `json:"city"`
	Street             *string `json:"street"`
	MinimunDeposit     float64 `json:"minimun_deposit"`
	MaxDeposit         float64 `json:"max_deposit"`
	MinimunWith        float64 `json:"minimun_with"`
	MaxWin             float64 `json:"max_win"`
	ActiveForDeposit   bool    `json:"active_for_deposit"`
	ActiveForWith      bool    `json:"active_for_with"`
}

// PlatformInput is a Platform without its id, as sent on create.
//
// The three secret-like fields (Hash, Cashdeskid, Cashierpass) carry omitempty:
// a nil pointer removes the key from the payload. Call Sanitized before sending
// so that blank strings become nil. The other nullable fields are sent as null.
type PlatformInput struct {
	Name               string  `json:"name"`
	Image              string  `json:"image"`
	Enable             bool    `json:"enable"`
	Hash               *string `json:"hash,omitempty"`
	Cashdeskid         *string `json:"cashdeskid,omitempty"`
	Cashierpass        *string `json:"cashierpass,omitempty"`
	DepositTutoLink    *string `json:"deposit_tuto_link"`
	WithdrawalTutoLink *string `json:"withdrawal_tuto_link"`
	WhyWithdrawalFail  *string `json:"why_withdrawal_fail"`
	Order              *int    `json:"order"`
	City               *string `json:"city"`
	Street             *string `json:"street"`
	MinimunDeposit     float64 `json:"minimun_deposit"`
	MaxDeposit         float64 `json:"max_deposit"`
	MinimunWith        float64 `json:"minimun_with"`
	MaxWin             float64 `json:"max_win"`
	ActiveForDeposit   bool    `json:"active_for_deposit"`
	ActiveForWith      bool    `json:"active_for_with"`
}

// Create-form defaults.
const (
	DefaultMinimunDeposit = 200
	DefaultMaxDeposit     = 100000
	DefaultMinimunWith    = 300
	DefaultMaxWin         = 1000000
)

// NewPlatformInput returns the values a blank create form starts with.
func NewPlatformInput() PlatformInput {
	return PlatformInput{
		Enable:         true,
		MinimunDeposit: DefaultMinimunDeposit,
		MaxDeposit:     DefaultMaxDeposit,
		MinimunWith:    DefaultMinimunWith,
		MaxWin:         DefaultMaxWin,
	}
}

// Input copies the editable fields of p, as the edit form is pre-filled.
func (p Platform) Input() PlatformInput {
	return PlatformInput{
		Name:               p.Name,
		Image:              p.Image,
		Enable:             p.Enable,
		Hash:               p.Hash,
		Cashdeskid:         p.Cashdeskid,
		Cashierpass:        p.Cashierpass,
		DepositTutoLink:    p.DepositTutoLink,
		WithdrawalTutoLink: p.WithdrawalTutoLink,
		WhyWithdrawalFail:  p.WhyWithdrawalFail,
		Order:              p.Order,
		City:               p.City,
		Street:             p.Street,
		MinimunDeposit:     p.MinimunDeposit,
		MaxDeposit:         p.MaxDeposit,
		MinimunWith:        p.MinimunWith,
		MaxWin:             p.MaxWin,
		ActiveForDeposit:   p.ActiveForDeposit,
		ActiveForWith:      p.ActiveForWith,
	}
}

// Sanitized returns a copy of in where blank secret fields are nil, so they are
// absent from the marshalled payload rather than sent as empty strings.
func (in PlatformInput) Sanitized() PlatformInput {
	out := in
	if ptr.IsBlank(out.Hash) {
		out.Hash = nil
	}
	if ptr.IsBlank(out.Cashdeskid) {
		out.Cashdeskid = nil
	}
	if ptr.IsBlank(out.Cashierpass) {
		out.Cashierpass = nil
	}
	return out
}

// PlatformPatch is a partial update body. Only non-nil fields are sent.
type PlatformPatch struct {
	Name               *string  `json:"name,omitempty"`
	Image              *string  `json:"image,omitempty"`
	Enable             *bool    `json:"enable,omitempty"`
	Hash               *string  `json:"hash,omitempty"`
	Cashdeskid         *string  `json:"cashdeskid,omitempty"`
	Cashierpass        *string  `json:"cashierpass,omitempty"`
	DepositTutoLink    *string  `json:"deposit_tuto_link,omitempty"`
	WithdrawalTutoLink *string  `json:"withdrawal_tuto_link,omitempty"`
	WhyWithdrawalFail  *string  `json:"why_withdrawal_fail,omitempty"`
	Order              *int     `json:"order,omitempty"`
	City               *string  `json:"city,omitempty"`
	Street             *string  `json:"street,omitempty"`
	MinimunDeposit     *float64 `json:"minimun_deposit,omitempty"`
	MaxDeposit         *float64 `json:"max_deposit,omitempty"`
	MinimunWith        *float64 `json:"minimun_with,omitempty"`
	MaxWin             *float64 `json:"max_win,omitempty"`
	ActiveForDeposit   *bool    `json:"active_for_deposit,omitempty"`
	ActiveForWith      *bool    `json:"active_for_with,omitempty"`
}

// IsEmpty reports whether the patch would send an empty object.
func (p PlatformPatch) IsEmpty() bool {
	return p == PlatformPatch{}
}

// Sanitized drops blank secret fields from the patch.
func (p PlatformPatch) Sanitized() PlatformPatch {
	out := p
	if ptr.IsBlank(out.Hash) {
		out.Hash = nil
	}
	if ptr.IsBlank(out.Cashdeskid) {
		out.Cashdeskid = nil
	}
	if ptr.IsBlank(out.Cashierpass) {
		out.Cashierpass = nil
	}
	return out
}

// Patch turns a full edit form into an update body carrying every field.
// Nullable fields that are nil stay out of the body.
func (in PlatformInput) Patch() PlatformPatch {
	s := in.Sanitized()
	return PlatformPatch{
		Name:               ptr.To(s.Name),
		Image:              ptr.To(s.Image),
		Enable:             ptr.To(s.Enable),
		Hash:               s.Hash,
		Cashdeskid:         s.Cashdeskid,
		Cashierpass:        s.Cashierpass,
		DepositTutoLink:    s.DepositTutoLink,
		WithdrawalTutoLink: s.WithdrawalTutoLink,
		WhyWithdrawalFail:  s.WhyWithdrawalFail,
		Order:              s.Order,
		City:               s.City,
		Street:             s.Street,
		MinimunDeposit:     ptr.To(s.MinimunDeposit),
		MaxDeposit:         ptr.To(s.MaxDeposit),
		MinimunWith:        ptr.To(s.MinimunWith),
		MaxWin:             ptr.To(s.MaxWin),
		ActiveForDeposit:   ptr.To(s.ActiveForDeposit),
		ActiveForWith:      ptr.To(s.ActiveForWith),
	}
}
