// Command ggd-log views and analyzes ggd event log files.
//
// Log files are written by ggd-client with the --event-log flag.
//
// Usage:
//
//	ggd-log <command> [flags] <file.glog>
//
// Commands:
//
//	view     View log file in human-readable format
//	export   Export log file to JSON or CSV format
//	filter   Filter log file and write to new file
//	stats    Show statistics about the log file
//
// Examples:
//
//	# View parser events only
//	ggd-log view --layer parse client.glog
//
//	# Export to CSV
//	ggd-log export --format csv -o client.csv client.glog
//
//	# Keep one session's state changes
//	ggd-log filter --session 5f0c9a2e-... --category state -o lost.glog client.glog
package main

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"

	"github.com/ggd-protocol/ggd-go/cmd/ggd-log/commands"
	"github.com/ggd-protocol/ggd-go/pkg/version"
)

const usage = `ggd-log - Greengrass discovery event log analyzer

Usage:
  ggd-log <command> [flags] <file.glog>

Commands:
  view     View log file in human-readable format
  export   Export log file to JSON or CSV format
  filter   Filter log file and write to new file
  stats    Show statistics about the log file
  version  Print the version

Use "ggd-log <command> --help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	case "version", "--version":
		fmt.Println(version.String("ggd-log"))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func newFlagSet(name, synopsis, description string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "ggd-log %s - %s\n\nUsage:\n  ggd-log %s\n\nFlags:\n", name, description, synopsis)
		fs.PrintDefaults()
	}
	return fs
}

// logPath parses args and returns the single positional log file.
func logPath(fs *pflag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs := newFlagSet("view", "view [flags] <file.glog>", "View log file in human-readable format")
	layer := fs.StringP("layer", "l", "", "Filter by layer (fetch, parse, broker)")
	category := fs.StringP("category", "c", "", "Filter by category (discovery, state, message, error)")
	session := fs.String("session", "", "Filter by session ID")
	path := logPath(fs, args)

	filter := commands.ViewFilter{SessionID: *session}
	if *layer != "" {
		l, err := commands.ParseLayerFlag(*layer)
		if err != nil {
			fail(err)
		}
		filter.Layer = &l
	}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "export [flags] <file.glog>", "Export log file to JSON or CSV format")
	format := fs.StringP("format", "f", "jsonl", "Output format (jsonl, csv)")
	output := fs.StringP("output", "o", "", "Output file (default: stdout)")
	path := logPath(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "filter [flags] <file.glog>", "Filter log file and write to new file")
	output := fs.StringP("output", "o", "", "Output file (required)")
	session := fs.String("session", "", "Filter by session ID")
	thing := fs.String("thing", "", "Filter by thing name")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")
	layer := fs.StringP("layer", "l", "", "Filter by layer (fetch, parse, broker)")
	category := fs.StringP("category", "c", "", "Filter by category (discovery, state, message, error)")
	path := logPath(fs, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	count, err := commands.RunFilter(path, commands.FilterOptions{
		Output:    *output,
		SessionID: *session,
		ThingName: *thing,
		TimeStart: *timeStart,
		TimeEnd:   *timeEnd,
		Layer:     *layer,
		Category:  *category,
	})
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", count, *output)
}

func runStats(args []string) {
	fs := newFlagSet("stats", "stats <file.glog>", "Show statistics about the log file")
	path := logPath(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
