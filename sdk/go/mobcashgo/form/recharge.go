package form

import (
	"context"
	"sync"

	"github.com/mobcash/backoffice/sdk/go/mobcashgo/models"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/notify"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/ptr"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/resources"
)

// RechargeCreator files recharge requests.
type RechargeCreator interface {
	Create(ctx context.Context, in models.CreateRechargeInput) (*models.Recharge, error)
}

// RechargeFields are the editable values of the recharge form.
type RechargeFields struct {
	Amount           string `form:"amount" validate:"required"`
	PaymentMethod    string `form:"payment_method" validate:"required,oneof=BANK_TRANSFER MOBILE_MONEY OTHER"`
	PaymentReference string `form:"payment_reference" validate:"required"`
	Notes            string `form:"notes"`
}

// RechargeForm is the "create recharge" dialog.
type RechargeForm struct {
	Machine
	Proof Attachment

	mu       sync.Mutex
	fields   RechargeFields
	creator  RechargeCreator
	uploader Uploader
	notifier notify.Notifier
}

// NewRechargeForm returns an empty form. notifier may be nil.
func NewRechargeForm(creator RechargeCreator, uploader Uploader, notifier notify.Notifier) *RechargeForm {
	return &RechargeForm{
		creator:  creator,
		uploader: uploader,
		notifier: notifier,
	}
}

// Fields returns the current values.
func (f *RechargeForm) Fields() RechargeFields {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields
}

// SetFields replaces the values.
func (f *RechargeForm) SetFields(v RechargeFields) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fields = v
}

// AttachProof uploads a payment proof. A failure clears the selection so the
// operator has to pick a file again.
func (f *RechargeForm) AttachProof(ctx context.Context, file resources.File) (string, error) {
	if f.Busy() {
		return "", ErrSubmitInProgress
	}
	return f.Proof.Attach(ctx, f.uploader, file, resources.UploadPaymentProof)
}

// Input validates the current values and builds the request body.
func (f *RechargeForm) Input() (models.CreateRechargeInput, error) {
	fields := f.Fields()
	if err := checkStruct(fields); err != nil {
		return models.CreateRechargeInput{}, err
	}

	amount, err := parseAmount(fields.Amount)
	if err != nil {
		return models.CreateRechargeInput{}, err
	}

	in := models.CreateRechargeInput{
		Amount:           amount,
		PaymentMethod:    models.PaymentMethod(fields.PaymentMethod),
		PaymentReference: fields.PaymentReference,
		Notes:            fields.Notes,
		PaymentProof:     ptr.NonBlank(f.Proof.URL()),
	}
	return in, nil
}

// Submit validates and sends the form. Invalid input returns a *ValidationError
// and keeps every value; a failed request keeps them too. On success the form
// is cleared.
func (f *RechargeForm) Submit(ctx context.Context) error {
	if f.Proof.Uploading() {
		return ErrSubmitInProgress
	}

	var in models.CreateRechargeInput
	err := f.Machine.Submit(ctx,
		func() error {
			var err error
			in, err = f.Input()
			return err
		},
		func(ctx context.Context) error {
			_, err := f.creator.Create(ctx, in)
			return err
		},
	)
	if err != nil {
		report(f.notifier, resources.ResourceRecharges, err)
		return err
	}

	f.clear()
	return nil
}

// Close discards the values, as closing the dialog does.
func (f *RechargeForm) Close() {
	f.clear()
	f.Machine.Reset()
}

func (f *RechargeForm) clear() {
	f.SetFields(RechargeFields{})
	f.Proof.Clear()
}
