package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ardnew/mial/lang"
	"github.com/ardnew/mial/log"
)

// Check parses and validates programs without evaluating them.
type Check struct {
	Programs []string `arg:"" help:"Programs to check ('-' reads stdin)." name:"program" optional:""`

	Quiet bool `help:"Only report programs with errors." short:"q"`
}

// Run executes the check command. Every error in every program is reported
// before the command fails.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	progs, err := resolvePrograms(ctx, c.Programs)
	if err != nil {
		return err
	}

	streams := streamsFrom(ctx)

	var failed, total int

	for _, p := range progs {
		errs := checkProgram(ctx, p.Source)
		total += len(errs)

		if len(errs) == 0 {
			if !c.Quiet {
				fmt.Fprintf(streams.Out, "%s: ok\n", p.Name)
			}

			continue
		}

		failed++

		for _, e := range errs {
			fmt.Fprintf(streams.Out, "%s: %s\n", p.Name, strings.TrimRight(lang.FormatError(e, p.Source), "\n"))
		}
	}

	if failed > 0 {
		return ErrCheckFailed.With(
			slog.Int("programs", failed),
			slog.Int("errors", total),
		)
	}

	return nil
}

// checkProgram returns every parse error in source, or the validation error
// of a program that parses.
func checkProgram(ctx context.Context, source string) []error {
	opts := []lang.Option{lang.WithLogger(log.Default()), lang.WithRecovery(true)}

	prog, err := lang.Parse(ctx, source, opts...)
	if err != nil {
		return unjoin(err)
	}

	if err := lang.Validate(ctx, prog, opts...); err != nil {
		return unjoin(err)
	}

	return nil
}

// unjoin splits an error produced by [errors.Join].
func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}

	return []error{err}
}
