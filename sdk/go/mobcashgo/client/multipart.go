package client

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// DefaultFileField is the form field the upload endpoint reads the file from.
const DefaultFileField = "file"

// Multipart describes a single-file multipart/form-data body.
type Multipart struct {
	// FieldName defaults to DefaultFileField.
	FieldName   string
	FileName    string
	ContentType string
	Content     io.Reader
	// Fields are extra plain form values sent before the file.
	Fields map[string]string
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// encode buffers the whole body. Uploads are capped well below a size where
// streaming would matter, and the buffer gives the request a Content-Length.
func (m *Multipart) encode() (*bytes.Buffer, string, error) {
	if m.Content == nil {
		return nil, "", fmt.Errorf("multipart body has no content")
	}

	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for key, value := range m.Fields {
		if err := w.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", key, err)
		}
	}

	field := m.FieldName
	if field == "" {
		field = DefaultFileField
	}
	contentType := m.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(field), quoteEscaper.Replace(m.FileName)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, m.Content); err != nil {
		return nil, "", fmt.Errorf("copy file content: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return buf, w.FormDataContentType(), nil
}
