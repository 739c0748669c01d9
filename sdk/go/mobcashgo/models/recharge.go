package models

import "fmt"

// PaymentMethod is how an operator paid for a balance top-up.
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
	PaymentMethodOther        PaymentMethod = "OTHER"
)

// PaymentMethods lists the accepted methods in the order the create form offers them.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{
		PaymentMethodBankTransfer,
		PaymentMethodMobileMoney,
		PaymentMethodOther,
	}
}

// Label returns the French display name. Unknown methods are shown verbatim.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentMethodBankTransfer:
		return "Virement bancaire"
	case PaymentMethodMobileMoney:
		return "Mobile Money"
	case PaymentMethodOther:
		return "Autre"
	default:
		return string(m)
	}
}

// Valid reports whether m is one of the accepted methods.
func (m PaymentMethod) Valid() bool {
	for _, known := range PaymentMethods() {
		if m == known {
			return true
		}
	}
	return false
}

// ParsePaymentMethod accepts the wire value of a method.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	m := PaymentMethod(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown payment method %q (expected BANK_TRANSFER, MOBILE_MONEY or OTHER)", s)
	}
	return m, nil
}

// RechargeCreator is the summary of the account that filed a recharge.
type RechargeCreator struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// FullName joins first and last name.
func (c RechargeCreator) FullName() string {
	return User{FirstName: c.FirstName, LastName: c.LastName}.FullName()
}

// Recharge is a balance top-up request. Amount is a decimal encoded as text.
type Recharge struct {
	ID               int64           `json:"id"`
	CreatedBy        RechargeCreator `json:"created_by"`
	Amount           string          `json:"amount"`
	PaymentMethod    PaymentMethod   `json:"payment_method"`
	PaymentReference string          `json:"payment_reference"`
	Notes            string          `json:"notes"`
	PaymentProof     *string         `json:"payment_proof"`
	CreatedAt        Timestamp       `json:"created_at"`
}

// CreateRechargeInput is the body of a recharge create request.
// PaymentProof is left out entirely unless an upload succeeded.
type CreateRechargeInput struct {
	Amount           string        `json:"amount"`
	PaymentMethod    PaymentMethod `json:"payment_method"`
	PaymentReference string        `json:"payment_reference"`
	Notes            string        `json:"notes"`
	PaymentProof     *string       `json:"payment_proof,omitempty"`
}
