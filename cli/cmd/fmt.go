package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/mial/lang"
	"github.com/ardnew/mial/log"
)

// Fmt parses a program and prints it in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as canonical MIAL source (default)."`
	AST    AST    `cmd:""                    help:"Format as an indented syntax tree."`
	YAML   YAML   `cmd:""                    help:"Format the syntax tree as YAML."`
	JSON   JSON   `cmd:""                    help:"Format the syntax tree as JSON."`
}

// ProgramArg is the program argument shared by the fmt subcommands.
type ProgramArg struct {
	Program string `arg:"" default:"-" help:"Program to format, or '-' for stdin." name:"program"`
}

// parse resolves and parses the program. Formatting never evaluates, so
// programs that fail validation can still be formatted.
func (s ProgramArg) parse(ctx context.Context, format string) (*lang.Program, error) {
	progs, err := resolvePrograms(ctx, []string{s.Program})
	if err != nil {
		return nil, err
	}

	prog, err := lang.ParseCached(ctx, progs[0].Source, lang.WithLogger(log.Default()))
	if err != nil {
		return nil, lang.WrapError(err).With(
			slog.String("format", format),
			slog.String("program", progs[0].Name),
		)
	}

	return prog, nil
}

// Native formats a program as canonical MIAL source.
type Native struct {
	ProgramArg `embed:""`

	Indent int `default:"2" help:"Indent width for formatted output (0 prints one line)." short:"i"`
}

// Run executes the native command.
func (f *Native) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := f.parse(ctx, "native")
	if err != nil {
		return err
	}

	return lang.Format(ctx, streamsFrom(ctx).Out, prog, f.Indent)
}

// AST formats a program as an indented syntax tree.
type AST struct {
	ProgramArg `embed:""`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := a.parse(ctx, "ast")
	if err != nil {
		return err
	}

	return lang.FormatTree(ctx, streamsFrom(ctx).Out, prog)
}

// YAML formats a program's syntax tree as YAML.
type YAML struct {
	ProgramArg `embed:""`

	Indent int `default:"2" help:"Indent width for YAML output (0 selects flow style)." short:"i"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := y.parse(ctx, "yaml")
	if err != nil {
		return err
	}

	if err := lang.FormatYAML(ctx, streamsFrom(ctx).Out, prog, y.Indent); err != nil {
		return ErrYAMLMarshal.Wrap(err)
	}

	return nil
}

// JSON formats a program's syntax tree as JSON.
type JSON struct {
	ProgramArg `embed:""`

	Indent int `default:"2" help:"Indent width for JSON output (0 prints one line)." short:"i"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := j.parse(ctx, "json")
	if err != nil {
		return err
	}

	if err := lang.FormatJSON(ctx, streamsFrom(ctx).Out, prog, j.Indent); err != nil {
		return ErrJSONMarshal.Wrap(err)
	}

	return nil
}
