// Package cli contains the command line interface for mial.
//
// # Usage
//
// Programs are evaluated by the default run command:
//
//	mial program.mial
//	echo 'let x: prob(0.8) = 5; confidence(x);' | mial
//	mial run -o yaml --trace 'confidence < 0.5' analysis
//
// Bare program names are resolved on the search path, composed from the
// --include directories followed by the MIAL_PATH environment variable.
//
// Logging and profiling are configured with global flags:
//
//	mial --log-level=debug --pprof-mode=cpu program.mial
//
// # Configuration
//
// Flags are resolved from, in increasing order of precedence:
//
//   - their defaults
//   - environment variables named after the flag, such as MIAL_LOG_LEVEL,
//     including those loaded from a .env file in the working directory or
//     the configuration directory
//   - config.json, config.yaml, and config.mial in the configuration
//     directory, in that order
//   - the command line
//
// The config.mial file is a program whose top-level bindings name flags,
// with underscores in place of hyphens:
//
//	let log_level = "debug";
//	let include = ["./lib"];
//
// The init command writes such a file from the current flag values.
package cli
