package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RechargeStatus is the review state of a recharge. The list endpoint does not
// return it yet; the metadata below is kept for when it does.
type RechargeStatus string

const (
	RechargeStatusPending  RechargeStatus = "pending"
	RechargeStatusApproved RechargeStatus = "approved"
	RechargeStatusRejected RechargeStatus = "rejected"
	RechargeStatusExpired  RechargeStatus = "expired"
)

// BadgeVariant names the visual style of a status badge.
type BadgeVariant string

const (
	BadgeDefault     BadgeVariant = "default"
	BadgeDestructive BadgeVariant = "destructive"
	BadgeSecondary   BadgeVariant = "secondary"
	BadgeOutline     BadgeVariant = "outline"
)

// StatusInfo is what a UI needs to render a recharge status.
type StatusInfo struct {
	Label   string
	Variant BadgeVariant
	Glyph   string
}

var statusInfos = map[RechargeStatus]StatusInfo{
	RechargeStatusPending:  {Label: "En attente", Variant: BadgeSecondary, Glyph: "◷"},
	RechargeStatusApproved: {Label: "Approuvé", Variant: BadgeDefault, Glyph: "✔"},
	RechargeStatusRejected: {Label: "Rejeté", Variant: BadgeDestructive, Glyph: "✖"},
	RechargeStatusExpired:  {Label: "Expiré", Variant: BadgeOutline, Glyph: "⚠"},
}

var unknownStatus = StatusInfo{Label: "Inconnu", Variant: BadgeOutline, Glyph: "⚠"}

// GetStatusInfo returns the display metadata for status, or the "Inconnu"
// fallback for empty and unrecognised values.
func GetStatusInfo(status RechargeStatus) StatusInfo {
	if info, ok := statusInfos[status]; ok {
		return info
	}
	return unknownStatus
}

// FormatAmount renders an amount with thousands grouped by spaces and the FCFA suffix,
// e.g. 200000 -> "200 000 FCFA". At most two decimals are kept.
func FormatAmount(amount decimal.Decimal) string {
	s := amount.Round(2).String()

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}

	intPart, frac, hasFrac := strings.Cut(s, ".")
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}

	out := sign + b.String()
	if hasFrac {
		out += "," + frac
	}
	return out + " FCFA"
}

// FormatAmountText formats an amount received as text. Values that are not
// numbers are shown as they are.
func FormatAmountText(amount string) string {
	d, err := decimal.NewFromString(strings.TrimSpace(amount))
	if err != nil {
		return amount + " FCFA"
	}
	return FormatAmount(d)
}
