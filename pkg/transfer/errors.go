package transfer

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

var (
	// ErrInvalidJSON reports input that does not parse as JSON.
	ErrInvalidJSON = errors.New("transfer: invalid JSON")
	// ErrStructure reports input that parses but fails structural validation.
	ErrStructure = errors.New("transfer: invalid form structure")
	// ErrUnsupportedFile reports a file rejected by extension/MIME sniffing.
	ErrUnsupportedFile = errors.New("transfer: unsupported file type")
	// ErrFileTooLarge reports a file above MaxFileSize.
	ErrFileTooLarge = errors.New("transfer: file too large")
)

// ImportError is returned by DeserializeForm. Issues lists every structural
// problem found; Err is one of the sentinels above.
type ImportError struct {
	Message string
	Issues  []string
	Err     error
}

func (e *ImportError) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if len(e.Issues) == 0 {
		return msg
	}
	return fmt.Sprintf("%s: %s", msg, strings.Join(e.Issues, "; "))
}

func (e *ImportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// FileError is returned by the file adapters before any import work starts.
type FileError struct {
	Name string
	Op   string
	Err  error
}

func (e *FileError) Error() string {
	if e == nil {
		return ""
	}
	if e.Name == "" {
		return fmt.Sprintf("transfer: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transfer: %s %s: %v", e.Op, e.Name, e.Err)
}

func (e *FileError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Message is the uniform {message, issues} shape shown to users by the CLI
// and the preview server.
type Message struct {
	Message string   `json:"message"`
	Issues  []string `json:"issues,omitempty"`
}

// ErrorMessage maps any error produced by the builder core to a Message.
func ErrorMessage(err error) Message {
	if err == nil {
		return Message{}
	}

	var importErr *ImportError
	if errors.As(err, &importErr) {
		msg := importErr.Message
		if msg == "" {
			msg = "Import failed"
		}
		return Message{Message: msg, Issues: append([]string(nil), importErr.Issues...)}
	}

	var fileErr *FileError
	if errors.As(err, &fileErr) {
		switch {
		case errors.Is(fileErr.Err, ErrUnsupportedFile):
			return Message{Message: "Please select a JSON file"}
		case errors.Is(fileErr.Err, ErrFileTooLarge):
			return Message{Message: "File is too large"}
		case errors.Is(fileErr.Err, ErrInvalidJSON):
			return Message{Message: "File does not contain valid JSON"}
		default:
			return Message{Message: "Failed to read file", Issues: []string{fileErr.Err.Error()}}
		}
	}

	var validationErr *model.ValidationError
	if errors.As(err, &validationErr) {
		issues := make([]string, 0, len(validationErr.Issues))
		for _, issue := range validationErr.Issues {
			issues = append(issues, issue.Error())
		}
		return Message{Message: "Form is invalid", Issues: issues}
	}

	return Message{Message: err.Error()}
}
