// Package cmd implements the mial subcommands: run, check, fmt, repl, log,
// info and init.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the MIAL configuration file written by the init command.
	ConfigIdentifier = "config"

	// ExecLogIdentifier is the kong variable identifier containing the path to
	// the execution log.
	ExecLogIdentifier = "execlog"

	// HistoryIdentifier is the kong variable identifier containing the path to
	// the REPL history file.
	HistoryIdentifier = "history"
)
