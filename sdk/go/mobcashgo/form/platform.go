package form

import (
	"context"
	"sync"

	"github.com/mobcash/backoffice/sdk/go/mobcashgo/models"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/notify"
	"github.com/mobcash/backoffice/sdk/go/mobcashgo/resources"
)

// PlatformWriter creates and updates platforms.
type PlatformWriter interface {
	Create(ctx context.Context, in models.PlatformInput) (*models.Platform, error)
	Update(ctx context.Context, id string, patch models.PlatformPatch) (*models.Platform, error)
}

type platformRules struct {
	Name string `form:"name" validate:"required"`
}

// PlatformForm is the create/edit platform dialog. The deposit and withdrawal
// bounds are sent as entered; the server is the one enforcing them.
type PlatformForm struct {
	Machine
	Image Attachment

	mu       sync.Mutex
	input    models.PlatformInput
	editing  *models.Platform
	writer   PlatformWriter
	uploader Uploader
	notifier notify.Notifier
}

// NewPlatformForm returns a create form filled with the platform defaults.
func NewPlatformForm(writer PlatformWriter, uploader Uploader, notifier notify.Notifier) *PlatformForm {
	return &PlatformForm{
		input:    models.NewPlatformInput(),
		writer:   writer,
		uploader: uploader,
		notifier: notifier,
	}
}

// EditPlatformForm returns a form pre-filled from p that submits an update.
func EditPlatformForm(p models.Platform, writer PlatformWriter, uploader Uploader, notifier notify.Notifier) *PlatformForm {
	f := NewPlatformForm(writer, uploader, notifier)
	f.input = p.Input()
	f.editing = &p
	return f
}

// Editing returns the platform being edited, or nil for a create form.
func (f *PlatformForm) Editing() *models.Platform {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.editing
}

// Input returns the current values.
func (f *PlatformForm) Input() models.PlatformInput {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.input
}

// SetInput replaces the values.
func (f *PlatformForm) SetInput(in models.PlatformInput) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.input = in
}

// AttachImage uploads a platform logo and, on success, uses it as the image.
// On failure the selection is cleared and the previous image kept.
func (f *PlatformForm) AttachImage(ctx context.Context, file resources.File) (string, error) {
	if f.Busy() {
		return "", ErrSubmitInProgress
	}
	url, err := f.Image.Attach(ctx, f.uploader, file, resources.UploadPlatformImage)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	f.input.Image = url
	f.mu.Unlock()
	return url, nil
}

// RemoveImage clears the image and the selection.
func (f *PlatformForm) RemoveImage() {
	f.Image.Clear()
	f.mu.Lock()
	f.input.Image = ""
	f.mu.Unlock()
}

func (f *PlatformForm) check() error {
	in := f.Input()
	if err := checkStruct(platformRules{Name: in.Name}); err != nil {
		return err
	}
	if f.Editing() == nil && in.Image == "" {
		return &ValidationError{Field: "image", Message: MsgImageRequired}
	}
	return nil
}

// Submit validates and sends the form: a create for a new platform, a full
// update for an edited one. Blank secret fields are left out of both.
func (f *PlatformForm) Submit(ctx context.Context) error {
	if f.Image.Uploading() {
		return ErrSubmitInProgress
	}

	err := f.Machine.Submit(ctx, f.check, func(ctx context.Context) error {
		in := f.Input().Sanitized()
		if editing := f.Editing(); editing != nil {
			_, err := f.writer.Update(ctx, editing.ID, in.Patch())
			return err
		}
		_, err := f.writer.Create(ctx, in)
		return err
	})
	if err != nil {
		report(f.notifier, resources.ResourcePlatforms, err)
		return err
	}

	if f.Editing() == nil {
		f.SetInput(models.NewPlatformInput())
		f.Image.Clear()
	}
	return nil
}
