package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ardnew/mial/lang"
	"github.com/ardnew/mial/log"
	"github.com/ardnew/mial/tracker"
)

// Run evaluates one or more programs in a single interpreter.
type Run struct {
	Programs []string `arg:"" help:"Programs to evaluate, by path or by name on the search path ('-' reads stdin)." name:"program" optional:""`

	Output  string `default:"text" enum:"text,yaml,json" help:"Result output format."                                  short:"o"`
	Seed    uint64 `                                      help:"Seed the reasoning oracle for reproducible runs (0 seeds randomly)."`
	Trace   string `                                      help:"Print tracker events matching an expression, such as: confidence < 0.5" placeholder:"EXPR"`
	Summary bool   `                                      help:"Print knowledge tracker totals."`
	Record  bool   `default:"true"                        help:"Append the run to the execution log."                    negatable:""`
	ExecLog string `default:"${execlog}"                  help:"Execution log file."                                     hidden:"" type:"path"`

	Neo4j Neo4j `embed:"" group:"neo4j" prefix:"neo4j-"`
}

// Neo4j configures the optional knowledge graph sink.
type Neo4j struct {
	URI      string `help:"Neo4j connection URI; enables the knowledge graph sink." placeholder:"URI"`
	Username string `help:"Neo4j user name."                                        default:"neo4j"`
	Password string `help:"Neo4j password."`
	Database string `help:"Neo4j database name (server default if empty)."`
}

// Enabled reports whether a graph database was configured.
func (n Neo4j) Enabled() bool { return n.URI != "" }

func (n Neo4j) config() tracker.Neo4jConfig {
	return tracker.Neo4jConfig{
		URI:      n.URI,
		Username: n.Username,
		Password: n.Password,
		Database: n.Database,
	}
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	exec := Execution{Time: time.Now(), Programs: r.Programs}

	defer func() { r.record(ctx, exec, err) }()

	progs, err := resolvePrograms(ctx, r.Programs)
	if err != nil {
		return err
	}

	exec.Programs = make([]string, len(progs))
	for i, p := range progs {
		exec.Programs[i] = p.Name
	}

	rec := tracker.NewRecorder(tracker.WithLogger(log.Default()))
	sinks := tracker.Multi{rec}

	if r.Neo4j.Enabled() {
		graph, err := tracker.DialNeo4j(ctx, r.Neo4j.config(), log.Default())
		if err != nil {
			return err
		}

		defer graph.Close(context.WithoutCancel(ctx))

		sinks = append(sinks, graph)
	}

	streams := streamsFrom(ctx)
	in := lang.NewInterpreter(r.options(streams, sinks)...)

	var result lang.Value = lang.Null{}

	for _, p := range progs {
		log.DebugContext(ctx, "run program",
			slog.String("program", p.Name),
			slog.String("path", p.Path),
		)

		v, err := in.Run(ctx, p.Source)
		if err != nil {
			fmt.Fprintln(streams.Err, strings.TrimRight(lang.FormatError(err, p.Source), "\n"))

			return lang.WrapError(err).With(slog.String("program", p.Name))
		}

		result = v
	}

	exec.Output = result.String()
	exec.Events = rec.Len()

	err = render(ctx, streams.Out, r.Output, lang.Native(result), exec.Output)
	if err != nil {
		return err
	}

	if r.Trace != "" {
		if err := r.printTrace(ctx, rec); err != nil {
			return err
		}
	}

	if r.Summary {
		s := rec.Summary()

		return render(ctx, streams.Out, r.Output, s, formatSummary(s))
	}

	return nil
}

func (r *Run) options(streams Streams, t tracker.Tracker) []lang.Option {
	opts := []lang.Option{
		lang.WithLogger(log.Default()),
		lang.WithTracker(t),
		lang.WithOutput(streams.Out, streams.Err),
		lang.WithCache(true),
	}

	if r.Seed != 0 {
		opts = append(opts, lang.WithOracle(lang.NewRandomOracle(r.Seed)))
	}

	return opts
}

func (r *Run) printTrace(ctx context.Context, rec *tracker.Recorder) error {
	events, err := rec.Filter(r.Trace)
	if err != nil {
		return err
	}

	out := streamsFrom(ctx).Out

	if r.Output != outputText {
		return render(ctx, out, r.Output, events, "")
	}

	for _, e := range events {
		if _, err := fmt.Fprintln(out, e.String()); err != nil {
			return err
		}
	}

	return nil
}

// record appends the run to the execution log. Failures are only logged.
func (r *Run) record(ctx context.Context, exec Execution, err error) {
	if !r.Record || r.ExecLog == "" {
		return
	}

	exec.Duration = time.Since(exec.Time)
	if err != nil {
		exec.Error = err.Error()
	}

	if err := OpenExecLog(r.ExecLog).Append(context.WithoutCancel(ctx), exec); err != nil {
		log.WarnContext(ctx, "execution not recorded", slog.Any("error", err))
	}
}

func formatSummary(s tracker.Summary) string {
	return fmt.Sprintf(
		"symbols %d, variables %d, graphs %d, learn functions %d, "+
			"meta reasoning %d, learning %d, total %d",
		s.Symbols, s.Variables, s.Graphs, s.LearnFunctions,
		s.MetaReasoning, s.Learning, s.Total,
	)
}
