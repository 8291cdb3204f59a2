package cli

import (
	"context"
	"io"
	"os"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/transfer"
)

// loadForm reads an export file for viewing. Ids are kept so rendered field
// names match the answers a caller posts back.
func (c *CLI) loadForm(ctx context.Context, path string) (model.Form, error) {
	data, err := transfer.ReadJSONFile(path)
	if err != nil {
		return model.Form{}, err
	}
	deserializer, err := transfer.NewDeserializer(transfer.WithFactory(c.factory))
	if err != nil {
		return model.Form{}, err
	}
	opts := c.cfg.ImportOptions()
	opts.ReplaceIDs = false
	imported, err := deserializer.DeserializeForm(data, opts)
	if err != nil {
		return model.Form{}, err
	}
	if len(imported.Detached) > 0 {
		loggerFromContext(ctx).Warn("fields reference missing rows", "file", path, "fields", imported.Detached)
	}
	return imported.Form(), nil
}

// writeOutput writes data to path, or to w when path is empty or "-".
func writeOutput(w io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := w.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &transfer.FileError{Name: path, Op: "write", Err: err}
	}
	return nil
}
