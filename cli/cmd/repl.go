package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/mial/cli/cmd/repl"
	"github.com/ardnew/mial/lang"
	"github.com/ardnew/mial/log"
	"github.com/ardnew/mial/tracker"
)

// Repl starts an interactive session.
type Repl struct {
	Programs []string `arg:"" help:"Programs to evaluate before the prompt opens." name:"program" optional:""`

	Seed    uint64 `                     help:"Seed the reasoning oracle for reproducible sessions (0 seeds randomly)."`
	History string `default:"${history}" help:"REPL history file (empty disables history)."                 type:"path"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	session := repl.NewSession(r.factory(tracker.NewRecorder(tracker.WithLogger(log.Default()))))

	if len(r.Programs) > 0 {
		progs, err := resolvePrograms(ctx, r.Programs)
		if err != nil {
			return err
		}

		streams := streamsFrom(ctx)

		for _, p := range progs {
			_, out, err := session.Eval(ctx, p.Source)
			io.WriteString(streams.Out, out)

			if err != nil {
				fmt.Fprintln(streams.Err, strings.TrimRight(lang.FormatError(err, p.Source), "\n"))

				return lang.WrapError(err).With(slog.String("program", p.Name))
			}
		}
	}

	return repl.Run(ctx, session, repl.NewHistory(r.History), log.Default())
}

func (r *Repl) factory(t tracker.Tracker) repl.Factory {
	return func(stdout, stderr io.Writer) *lang.Interpreter {
		opts := []lang.Option{
			lang.WithLogger(log.Default()),
			lang.WithTracker(t),
			lang.WithOutput(stdout, stderr),
			lang.WithCache(true),
		}

		if r.Seed != 0 {
			opts = append(opts, lang.WithOracle(lang.NewRandomOracle(r.Seed)))
		}

		return lang.NewInterpreter(opts...)
	}
}
