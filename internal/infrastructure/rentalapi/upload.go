package rentalapi

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	// DefaultMaxUploadBytes is the image size limit (5 MiB).
	DefaultMaxUploadBytes int64 = 5 << 20
)

// DefaultImageTypes are the image types the backend accepts.
var DefaultImageTypes = []string{"image/jpeg", "image/png", "image/gif"}

// File is an in-memory upload.
type File struct {
	Name string
	Data []byte
}

// FileRules bound an upload. Zero values fall back to the defaults.
type FileRules struct {
	MaxBytes     int64
	AllowedTypes []string
}

func (r FileRules) withDefaults() FileRules {
	if r.MaxBytes <= 0 {
		r.MaxBytes = DefaultMaxUploadBytes
	}
	if len(r.AllowedTypes) == 0 {
		r.AllowedTypes = DefaultImageTypes
	}
	return r
}

// ValidateFile checks presence, size and detected content type. The type is
// sniffed from the content, never taken from the file name.
func ValidateFile(f *File, rules FileRules) []string {
	rules = rules.withDefaults()
	if f == nil || len(f.Data) == 0 {
		return []string{"File is required"}
	}

	var errs []string
	if int64(len(f.Data)) > rules.MaxBytes {
		errs = append(errs, fmt.Sprintf("File size must be less than %s", humanBytes(rules.MaxBytes)))
	}

	detected := mimetype.Detect(f.Data)
	allowed := false
	for _, t := range rules.AllowedTypes {
		if detected.Is(t) {
			allowed = true
			break
		}
	}
	if !allowed {
		errs = append(errs, fmt.Sprintf("File type must be one of: %s", strings.Join(rules.AllowedTypes, ", ")))
	}
	return errs
}

func humanBytes(n int64) string {
	switch {
	case n >= 1<<20 && n%(1<<20) == 0:
		return fmt.Sprintf("%dMB", n>>20)
	case n >= 1<<10 && n%(1<<10) == 0:
		return fmt.Sprintf("%dKB", n>>10)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}

type formField struct {
	name  string
	value string
}

type formFile struct {
	field string
	file  *File
}

// multipartBody encodes fields and files in order. The part content type is
// the sniffed one.
func multipartBody(fields []formField, files []formFile) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.name, err)
		}
	}
	for _, f := range files {
		name := f.file.Name
		if name == "" {
			name = "upload" + mimetype.Detect(f.file.Data).Extension()
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.field, name))
		h.Set("Content-Type", mimetype.Detect(f.file.Data).String())
		part, err := w.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("create part %s: %w", f.field, err)
		}
		if _, err := part.Write(f.file.Data); err != nil {
			return nil, "", fmt.Errorf("write part %s: %w", f.field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
