package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/ardnew/mial/lang"
)

// Output formats accepted by commands that print structured results.
const (
	outputText = "text"
	outputYAML = "yaml"
	outputJSON = "json"
)

// outputIndent is the indent width of YAML and JSON output.
const outputIndent = 2

// render writes v in the given format. Text output writes text instead of
// encoding v.
func render(ctx context.Context, w io.Writer, format string, v any, text string) error {
	switch format {
	case outputText, "":
		_, err := fmt.Fprintln(w, text)

		return err

	case outputYAML:
		if err := lang.EncodeYAML(ctx, w, v, outputIndent); err != nil {
			return ErrYAMLMarshal.Wrap(err)
		}

		return nil

	case outputJSON:
		if err := lang.EncodeJSON(w, v, outputIndent); err != nil {
			return ErrJSONMarshal.Wrap(err)
		}

		return nil
	}

	return ErrInvalidFormat.With(
		slog.String("format", format),
		slog.Any("valid", []string{outputText, outputYAML, outputJSON}),
	)
}
