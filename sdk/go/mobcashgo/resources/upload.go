package resources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gosimple/slug"

	"github.com/mobcash/backoffice/sdk/go/mobcashgo/client"
)

// MaxUploadSize is the largest file the console accepts (5 MiB).
const MaxUploadSize = 5 * 1024 * 1024

// sniffLen is how much of the content is read to detect an undeclared type.
const sniffLen = 3072

// Local rejection reasons. Both are reported before any request is made.
var (
	ErrNotImage     = errors.New("file is not an image")
	ErrFileTooLarge = errors.New("file exceeds 5 MiB")
)

// URLFields are the reply fields an upload may return the stored URL in, by priority.
var URLFields = []string{"url", "file_url", "image_url", "file"}

// UploadKind selects the wording of the messages shown around an upload.
type UploadKind int

const (
	// UploadPaymentProof is a recharge payment proof.
	UploadPaymentProof UploadKind = iota
	// UploadPlatformImage is a platform logo.
	UploadPlatformImage
)

type uploadMessages struct {
	notImage string
	tooLarge string
	failed   string
}

func (k UploadKind) messages() uploadMessages {
	if k == UploadPlatformImage {
		return uploadMessages{
			notImage: "Veuillez sélectionner un fichier image",
			tooLarge: "La taille de l'image doit être inférieure à 5MB",
			failed:   MsgImageUploadFailed,
		}
	}
	return uploadMessages{
		notImage: "Veuillez sélectionner un fichier image",
		tooLarge: "Le fichier ne doit pas dépasser 5MB",
		failed:   MsgProofUploadFailed,
	}
}

// FileRejectedError is a local validation failure of a selected file.
type FileRejectedError struct {
	Reason  error
	Message string
}

func (e *FileRejectedError) Error() string {
	return e.Message
}

func (e *FileRejectedError) Unwrap() error {
	return e.Reason
}

// File is a file selected for upload. Size must be set by the caller.
// ContentType is the declared type; when empty it is detected from the content.
type File struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader
}

// OpenFile prepares the file at path. The type is detected from its content.
// The caller must close the returned closer.
func OpenFile(path string) (File, io.Closer, error) {
	f, err := os.Open(path)
	if err != nil {
		return File{}, nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return File{}, nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return File{}, nil, fmt.Errorf("%s is a directory", path)
	}
	return File{
		Name: filepath.Base(path),
		Size: info.Size(),
		Body: f,
	}, f, nil
}

// NewFile wraps in-memory content.
func NewFile(name, contentType string, data []byte) File {
	return File{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(data)),
		Body:        bytes.NewReader(data),
	}
}

// Uploader sends images to the upload endpoint.
type Uploader struct {
	deps Deps
}

func newUploader(d Deps) *Uploader {
	return &Uploader{deps: d}
}

// Validate checks f against the local limits without touching the network. An
// undeclared type is detected from the first bytes of the body, which stays
// readable from the start afterwards.
func Validate(f *File, kind UploadKind) error {
	msgs := kind.messages()

	if f.ContentType == "" && f.Body != nil {
		head := make([]byte, sniffLen)
		n, err := io.ReadFull(f.Body, head)
		if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read %s: %w", f.Name, err)
		}
		head = head[:n]
		f.ContentType = mimetype.Detect(head).String()
		f.Body = io.MultiReader(bytes.NewReader(head), f.Body)
	}

	if !strings.HasPrefix(f.ContentType, "image/") {
		return &FileRejectedError{Reason: ErrNotImage, Message: msgs.notImage}
	}
	if f.Size > MaxUploadSize {
		return &FileRejectedError{Reason: ErrFileTooLarge, Message: msgs.tooLarge}
	}
	return nil
}

// UploadName turns a user file name into a safe one, keeping the extension:
// "Reçu Orange (1).PNG" becomes "recu-orange-1.png".
func UploadName(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	base := slug.Make(strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	if base == "" {
		base = "upload"
	}
	return base + ext
}

// Upload validates f and posts it as multipart field "file". It returns the
// stored file URL. Rejections and failures raise an error notification; a
// rejected file never reaches the network.
func (u *Uploader) Upload(ctx context.Context, f File, kind UploadKind) (string, error) {
	msgs := kind.messages()

	if err := Validate(&f, kind); err != nil {
		u.deps.Notifier.Error(ResourceUploads, "upload", err.Error())
		return "", err
	}

	res, err := u.deps.Client.Do(ctx, http.MethodPost, UploadPath, client.RequestOptions{
		Multipart: &client.Multipart{
			FieldName:   client.DefaultFileField,
			FileName:    UploadName(f.Name),
			ContentType: f.ContentType,
			Content:     f.Body,
		},
	})
	if err != nil {
		u.deps.Notifier.Error(ResourceUploads, "upload", client.ErrorMessage(err, msgs.failed))
		return "", err
	}

	ref, err := storedURL(res.Body)
	if err != nil {
		u.deps.Logger.Warn("upload reply has no file url", "request_id", res.RequestID, "error", err)
		u.deps.Notifier.Error(ResourceUploads, "upload", msgs.failed)
		return "", err
	}

	u.deps.Notifier.Success(ResourceUploads, "upload", MsgUploadSucceeded)
	return ref, nil
}

// storedURL returns the first non-empty field of URLFields in the reply.
func storedURL(body []byte) (string, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", &client.ShapeError{Op: "upload", Reason: "reply is not an object", Body: body, Err: err}
	}
	for _, field := range URLFields {
		raw, ok := payload[field]
		if !ok {
			continue
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil && strings.TrimSpace(s) != "" {
			return s, nil
		}
	}
	return "", &client.ShapeError{
		Op:     "upload",
		Reason: "reply has none of " + strings.Join(URLFields, ", "),
		Body:   body,
	}
}
