package form

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/mobcash/backoffice/sdk/go/mobcashgo/notify"
)

// Validation messages shown to the operator.
const (
	MsgRequiredFields    = "Veuillez remplir tous les champs requis"
	MsgAmountNotPositive = "Le montant doit être un nombre positif"
	MsgInvalidMethod     = "Méthode de paiement invalide"
	MsgImageRequired     = "Veuillez télécharger une image"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if name := fld.Tag.Get("form"); name != "" {
			return name
		}
		return strings.ToLower(fld.Name)
	})
	return v
}

// checkStruct runs the struct tags of v and maps the first failure to a
// ValidationError. Field names come from the form tag.
func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	msg := MsgRequiredFields
	if fe.Tag() == "oneof" {
		msg = MsgInvalidMethod
	}
	return &ValidationError{Field: fe.Field(), Message: msg}
}

// parseAmount accepts a strictly positive decimal and returns it normalized,
// so "200000" stays "200000" and "1500.50" becomes "1500.5".
func parseAmount(s string) (string, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsPositive() {
		return "", &ValidationError{Field: "amount", Message: MsgAmountNotPositive}
	}
	return d.String(), nil
}

// report raises the error notification for a local validation failure.
func report(n notify.Notifier, resource string, err error) {
	if n == nil {
		return
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		n.Error(resource, "validate", ve.Message)
	}
}
