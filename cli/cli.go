package cli

import (
	"context"
	"errors"
	"io/fs"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/ardnew/mial/cli/cmd"
	"github.com/ardnew/mial/pkg"
)

// CLI is the top-level command-line interface for mial.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Include []string `help:"Add a directory to the program search path." placeholder:"DIR" short:"I" type:"existingdir"`

	Run   cmd.Run   `cmd:"" default:"withargs" help:"Evaluate programs"`
	Check cmd.Check `cmd:""                    help:"Parse and validate programs without evaluating them"`
	Fmt   cmd.Fmt   `cmd:""                    help:"Format a program"`
	Repl  cmd.Repl  `cmd:""                    help:"Start an interactive session"`
	Logs  cmd.Log   `cmd:""                    help:"Show recent executions"                               name:"log"`
	Info  cmd.Info  `cmd:""                    help:"Describe the language"`
	Init  cmd.Init  `cmd:""                    help:"Initialize configuration file"`
}

var neo4jGroup = kong.Group{Key: "neo4j", Title: "Knowledge graph (Neo4j)"}

// Run executes the mial CLI with the given context and arguments.
// The exit function is called with the appropriate exit code upon completion.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	err := pkg.MkdirAll()
	if err != nil {
		return err
	}

	err = loadDotenv(".env", configPath(".env"))
	if err != nil {
		return err
	}

	configFilePath := configPath(baseConfig + pkg.Extension)

	vars := kong.Vars{
		cmd.ConfigIdentifier:  configFilePath,
		cmd.CacheIdentifier:   pkg.CacheDir(),
		cmd.ExecLogIdentifier: cachePath("executions.yaml"),
		cmd.HistoryIdentifier: cachePath("history"),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Boolean logger flags never reach a TextUnmarshaler, so apply every
	// logger flag before parsing.
	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group(), neo4jGroup},
		),
		kong.DefaultEnvars(strings.TrimSuffix(pkg.EnvPrefix(), "_")),
		// Commands receive ctx as it is when they run, after the parsed
		// context and search path are attached.
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				FlagsLast:           false,
				NoAppSummary:        false,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(kong.JSON, configPath(baseConfig+".json")),
		kong.Configuration(loadYAML, configPath(baseConfig+".yaml")),
		kong.Configuration(loadMIAL(ctx), configFilePath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSearchPath(ctx, searchPath(cli.Include))

	cli.Log.start(ctx)

	// No-op unless built with tag pprof and a mode is selected.
	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx)
}

// loadDotenv loads environment variables from each existing file. Variables
// already set in the environment are not overridden.
func loadDotenv(files ...string) error {
	for _, file := range files {
		err := godotenv.Load(file)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}

	return nil
}
