package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-formbuilder/pkg/transfer"
)

// ErrIncompatible is returned by check when at least one file cannot be
// imported.
var ErrIncompatible = errors.New("one or more files cannot be imported")

type checkResult struct {
	File string `json:"file"`
	transfer.CompatibilityReport
}

func (c *CLI) checkCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check FILE...",
		Short: "Report whether form files can be imported",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			results := make([]checkResult, 0, len(args))
			for _, path := range args {
				results = append(results, checkFile(path))
			}

			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				if err := encoder.Encode(results); err != nil {
					return err
				}
			} else {
				printResults(cmd.OutOrStdout(), results)
			}

			for _, result := range results {
				if !result.CanImport {
					return ErrIncompatible
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print reports as JSON")
	return cmd
}

func checkFile(path string) checkResult {
	data, err := transfer.ReadJSONFile(path)
	if err != nil {
		msg := transfer.ErrorMessage(err)
		return checkResult{File: path, CompatibilityReport: transfer.CompatibilityReport{
			Version: "unknown",
			Issues:  append([]string{msg.Message}, msg.Issues...),
		}}
	}
	return checkResult{File: path, CompatibilityReport: transfer.ValidateFormCompatibility(data)}
}

func printResults(w io.Writer, results []checkResult) {
	for _, result := range results {
		status := "ok"
		switch {
		case !result.CanImport:
			status = "cannot import"
		case !result.IsValid:
			status = "importable with warnings"
		}
		fmt.Fprintf(w, "%s: %s (version %s)\n", result.File, status, result.Version)
		for _, issue := range result.Issues {
			fmt.Fprintf(w, "  - %s\n", issue)
		}
	}
}
