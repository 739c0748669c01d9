package form

import (
	"context"
	"sync"

	"github.com/mobcash/backoffice/sdk/go/mobcashgo/resources"
)

// Uploader stores a file and returns its URL.
type Uploader interface {
	Upload(ctx context.Context, f resources.File, kind resources.UploadKind) (string, error)
}

// Attachment is the file picked in a form and, once uploaded, its stored URL.
// There is no retry of the same selection: a failed upload clears it.
type Attachment struct {
	mu          sync.Mutex
	name        string
	size        int64
	contentType string
	url         string
	uploading   bool
}

// AttachmentInfo is a copy of an attachment's state.
type AttachmentInfo struct {
	Name        string
	Size        int64
	ContentType string
	URL         string
	Uploading   bool
}

// Selected reports whether a file is picked (uploading or uploaded).
func (i AttachmentInfo) Selected() bool {
	return i.Name != ""
}

// Uploaded reports whether the URL is known.
func (i AttachmentInfo) Uploaded() bool {
	return i.URL != ""
}

// Info returns a copy of the current state.
func (a *Attachment) Info() AttachmentInfo {
	a.mu.Lock()
	defer a.mu.Unlock()
	return AttachmentInfo{
		Name:        a.name,
		Size:        a.size,
		ContentType: a.contentType,
		URL:         a.url,
		Uploading:   a.uploading,
	}
}

// URL returns the stored URL, empty until an upload succeeded.
func (a *Attachment) URL() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.url
}

// Uploading reports whether an upload is running.
func (a *Attachment) Uploading() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.uploading
}

// Clear forgets the selection and its URL.
func (a *Attachment) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.clearLocked()
}

// Attach validates and uploads f. On success the URL is kept; on any failure
// (local rejection included) the attachment is cleared and the error returned.
func (a *Attachment) Attach(ctx context.Context, up Uploader, f resources.File, kind resources.UploadKind) (string, error) {
	a.mu.Lock()
	if a.uploading {
		a.mu.Unlock()
		return "", ErrSubmitInProgress
	}
	a.name = f.Name
	a.size = f.Size
	a.contentType = f.ContentType
	a.url = ""
	a.uploading = true
	a.mu.Unlock()

	returned := false
	defer func() {
		if !returned {
			a.mu.Lock()
			a.uploading = false
			a.clearLocked()
			a.mu.Unlock()
		}
	}()
	url, err := up.Upload(ctx, f, kind)
	returned = true

	a.mu.Lock()
	defer a.mu.Unlock()
	a.uploading = false
	if err != nil {
		a.clearLocked()
		return "", err
	}
	a.url = url
	return url, nil
}

func (a *Attachment) clearLocked() {
	a.name = ""
	a.size = 0
	a.contentType = ""
	a.url = ""
}
