// Package cmd implements the command-line interface for logshape.
// It uses the Cobra library to handle commands, flags, and execution.
package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/logshape/logshape/formats"
)

// Version information (passed from main)
var (
	version string
	commit  string
	date    string
)

// Flag variables for command-line options.
// These are package-level variables as required by Cobra's flag binding.
var (
	// Decoder selection and configuration
	formatFlag     string // --format: Log format to decode
	typeFlag       string // --type: Record type label
	tzFlag         string // --tz: Zone applied to offsetless timestamps
	truncateFlag   string // --truncate: Signed payload truncation limit in bytes
	logStartFlag   bool   // --log-query-start: Report operation start instead of finish
	delimiterFlag  string // --delimiter: Field separator for the delimited format
	fieldsFlag     string // --fields: Tab-separated column names for the delimited format
	timeIndexFlag  string // --time-index: 1-based timestamp column for the delimited format
	timeFormatFlag string // --time-format: strptime layout for the timestamp column
	configFlag     string // --config: YAML file with decoder options

	// Output flags
	outputFlag  string // --output: Output encoding (json, text, parquet)
	outFileFlag string // --out: Write output to this file instead of stdout
	extractFlag string // --extract: JMESPath expression applied to each record

	// Input flags
	followFlag bool // --follow: Watch files for appended lines
)

// rootCmd is the main command for the logshape CLI.
var rootCmd = &cobra.Command{
	Use:   "logshape [files or dirs]",
	Short: "Grammar-driven log decoder",
	Long: `logshape decodes heterogeneous line-oriented server logs into
structured event records.

Each input line (or multi-line entry) is matched against the grammar of
the selected format, and the extracted values are assembled into records
with normalized timestamps, severities, and per-format fields.

Specify log files or directories as arguments. Compressed inputs
(.gz, .zst, .tar.gz, .7z, ...) are decoded transparently.`,
}

// Execute runs the root command.
// This is called by main.go to start the CLI application.
func Execute(v, c, d string) {
	version = v
	commit = c
	date = d
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// init initializes all command-line flags.
func init() {
	// Assigned here rather than in the rootCmd literal to avoid an
	// initialization cycle (executeDecoding -> loadConfig -> rootCmd).
	rootCmd.Run = executeDecoding

	// Decoder flags
	rootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "",
		fmt.Sprintf("Log format to decode (one of: %v)", formats.Names()))
	rootCmd.PersistentFlags().StringVarP(&typeFlag, "type", "t", "",
		"Type label stamped on every record (defaults to the format name)")
	rootCmd.PersistentFlags().StringVar(&tzFlag, "tz", "",
		"IANA zone applied to timestamps without an explicit offset (default UTC)")
	rootCmd.PersistentFlags().StringVar(&truncateFlag, "truncate", "",
		"Signed payload truncation limit in bytes (negative trims from the end)")
	rootCmd.PersistentFlags().BoolVar(&logStartFlag, "log-query-start", true,
		"Report the start of timed operations instead of their finish")
	rootCmd.PersistentFlags().StringVar(&delimiterFlag, "delimiter", "",
		"Field separator for the delimited format (default \",\")")
	rootCmd.PersistentFlags().StringVar(&fieldsFlag, "fields", "",
		"Tab-separated column names for the delimited format")
	rootCmd.PersistentFlags().StringVar(&timeIndexFlag, "time-index", "",
		"1-based timestamp column index for the delimited format")
	rootCmd.PersistentFlags().StringVar(&timeFormatFlag, "time-format", "",
		"strptime layout for the timestamp column (e.g. \"%Y-%m-%d %H:%M:%S\")")
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "",
		"YAML file with decoder options (flags override file values)")

	// Output flags
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "O", "json",
		"Output encoding: json, text, or parquet")
	rootCmd.PersistentFlags().StringVarP(&outFileFlag, "out", "o", "",
		"Write output to this file instead of stdout")
	rootCmd.PersistentFlags().StringVarP(&extractFlag, "extract", "E", "",
		"JMESPath expression applied to each record; matching values are printed as JSON")

	// Input flags
	rootCmd.PersistentFlags().BoolVarP(&followFlag, "follow", "F", false,
		"Watch the input files and decode lines as they are appended")

	rootCmd.MarkPersistentFlagRequired("format")
}
