package transfer

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// MaxFileSize caps how much of an uploaded file is read.
const MaxFileSize = 5 << 20

// Filename derives the download name for a form: lowercased title with every
// run of non-alphanumerics replaced by a single "-", plus ".json".
func Filename(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	name := strings.TrimRight(b.String(), "-")
	if name == "" {
		name = "form"
	}
	return name + ".json"
}

// WriteForm writes the indented export envelope to w.
func WriteForm(w io.Writer, form model.Form, options ...Option) error {
	s, err := NewSerializer(options...)
	if err != nil {
		return err
	}
	raw, err := s.MarshalForm(form)
	if err != nil {
		return err
	}
	if _, err := w.Write(raw); err != nil {
		return &FileError{Op: "write", Err: err}
	}
	return nil
}

// SaveFormFile writes the export into dir using Filename and returns the
// resulting path.
func SaveFormFile(dir string, form model.Form, options ...Option) (string, error) {
	path := filepath.Join(dir, Filename(form.Title))
	file, err := os.Create(path)
	if err != nil {
		return "", &FileError{Name: path, Op: "create", Err: err}
	}
	if err := WriteForm(file, form, options...); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", &FileError{Name: path, Op: "close", Err: err}
	}
	return path, nil
}

// ReadJSONFile reads path and checks it holds JSON.
func ReadJSONFile(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Name: path, Op: "open", Err: err}
	}
	defer file.Close()
	return ReadJSON(filepath.Base(path), "", file)
}

// ReadJSON reads an uploaded file. The file is accepted when its name ends
// in .json whatever the declared content type, or when the content type is a
// JSON type. Nothing is parsed into a form here; callers pass the bytes to
// DeserializeForm.
func ReadJSON(name, contentType string, r io.Reader) ([]byte, error) {
	if !AcceptFile(name, contentType) {
		return nil, &FileError{Name: name, Op: "read", Err: fmt.Errorf("%w: %q", ErrUnsupportedFile, contentType)}
	}

	raw, err := io.ReadAll(io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return nil, &FileError{Name: name, Op: "read", Err: err}
	}
	if len(raw) > MaxFileSize {
		return nil, &FileError{Name: name, Op: "read", Err: ErrFileTooLarge}
	}
	if !json.Valid(raw) {
		return nil, &FileError{Name: name, Op: "parse", Err: ErrInvalidJSON}
	}
	return raw, nil
}

// AcceptFile applies the lenient sniffing rule used for uploads. Browsers
// and operating systems often report .json files as text/plain,
// application/octet-stream or nothing at all.
func AcceptFile(name, contentType string) bool {
	if strings.EqualFold(filepath.Ext(name), ".json") {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch {
	case mediaType == "application/json", mediaType == "text/json":
		return true
	case strings.HasPrefix(mediaType, "application/") && strings.HasSuffix(mediaType, "+json"):
		return true
	}
	return false
}
