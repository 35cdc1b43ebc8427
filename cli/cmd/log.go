package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ardnew/mial/log"
)

// Log shows the most recent entries of the execution log.
type Log struct {
	Limit  int    `default:"10"         help:"Number of entries to show (0 shows all)." short:"n"`
	Clear  bool   `                     help:"Remove every entry."`
	Output string `default:"text"       help:"Output format."                            short:"o" enum:"text,yaml,json"`
	Path   string `default:"${execlog}" help:"Execution log file."                       hidden:"" type:"path" name:"exec-log"`
}

// Run executes the log command.
func (l *Log) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	execs := OpenExecLog(l.Path)

	if l.Clear {
		log.DebugContext(ctx, "clear execution log", slog.String("path", execs.Path()))

		return execs.Clear()
	}

	recent, err := execs.Recent(ctx, l.Limit)
	if err != nil {
		return err
	}

	lines := make([]string, len(recent))
	for i, e := range recent {
		lines[i] = formatExecution(e)
	}

	return render(ctx, streamsFrom(ctx).Out, l.Output, recent, strings.Join(lines, "\n"))
}

func formatExecution(e Execution) string {
	status := "ok"
	if e.Error != "" {
		status = "error: " + e.Error
	}

	programs := strings.Join(e.Programs, " ")
	if programs == "" {
		programs = stdinSource
	}

	s := fmt.Sprintf("%s  %s  (%s)  %s",
		e.Time.Format(time.DateTime), programs, e.Duration.Round(time.Microsecond), status)

	if e.Error == "" && e.Output != "" {
		s += "  => " + e.Output
	}

	return s
}
