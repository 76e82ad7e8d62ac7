// Command ggd-parse parses a saved discovery document and prints the
// selected core's address and group CA.
//
// Usage:
//
//	ggd-parse [flags] <document.json>
//
// Use "-" to read the document from stdin. Without --group and --core the
// first usable interface is selected.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/ggd-protocol/ggd-go/pkg/cert"
	"github.com/ggd-protocol/ggd-go/pkg/discovery"
	ggdlog "github.com/ggd-protocol/ggd-go/pkg/log"
	"github.com/ggd-protocol/ggd-go/pkg/version"
)

type options struct {
	Group     string
	Core      string
	Interface uint8
	MaxTokens int
	CertOut   string
	Trace     bool
	Inspect   bool
	Version   bool
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var opts options
	fs := pflag.NewFlagSet("ggd-parse", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.Group, "group", "", "Group ID (manual selection)")
	fs.StringVar(&opts.Core, "core", "", "Core thing ARN (manual selection)")
	fs.Uint8Var(&opts.Interface, "interface", 1, "Connectivity interface, 1-based (manual selection)")
	fs.IntVar(&opts.MaxTokens, "max-tokens", 512, "Token budget for the document")
	fs.StringVarP(&opts.CertOut, "cert-out", "o", "", "Write the group CA PEM to this file")
	fs.BoolVar(&opts.Trace, "trace", false, "Print parser state changes")
	fs.BoolVar(&opts.Inspect, "inspect", false, "Print subject and validity of the group CA")
	fs.BoolVar(&opts.Version, "version", false, "Print the version and exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if opts.Version {
		_, err := fmt.Fprintln(stdout, version.String("ggd-parse"))
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("expected one document path, got %d", fs.NArg())
	}

	doc, err := readDocument(fs.Arg(0), stdin)
	if err != nil {
		return err
	}

	sel := discovery.AutoSelect()
	if opts.Group != "" || opts.Core != "" {
		sel = discovery.Manual(discovery.HostSelectionCriteria{
			GroupName:        opts.Group,
			CoreIdentity:     opts.Core,
			InterfaceOrdinal: opts.Interface,
		})
	}

	parseOpts := []discovery.Option{discovery.WithMaxTokens(opts.MaxTokens)}
	if opts.Trace {
		trace := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		parseOpts = append(parseOpts, discovery.WithEventLogger(ggdlog.NewSlogAdapter(trace), ""))
	}

	result, err := discovery.Parse(doc, sel, parseOpts...)
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Selection: %s\n", sel)
	fmt.Fprintf(stdout, "Host:      %s\n", result.Host())
	fmt.Fprintf(stdout, "Port:      %d\n", result.Port)
	fmt.Fprintf(stdout, "Interface: %d\n", result.Interface)
	fmt.Fprintf(stdout, "CA:        %d bytes\n", result.CertificateLength)

	if opts.Inspect {
		if err := printCertificates(stdout, result.CertificatePEM()); err != nil {
			return err
		}
	}

	if opts.CertOut != "" {
		if err := os.WriteFile(opts.CertOut, result.CertificatePEM(), 0o644); err != nil {
			return fmt.Errorf("writing certificate: %w", err)
		}
		fmt.Fprintf(stdout, "Wrote CA to %s\n", opts.CertOut)
	} else if !opts.Inspect {
		fmt.Fprintln(stdout)
		if _, err := stdout.Write(result.CertificatePEM()); err != nil {
			return err
		}
	}
	return nil
}

func readDocument(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	doc, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	return doc, nil
}

func printCertificates(w io.Writer, pemData []byte) error {
	certs, err := cert.DecodeCertsPEM(pemData)
	if err != nil {
		return fmt.Errorf("group CA: %w", err)
	}
	for _, c := range certs {
		info := cert.GetCertificateInfo(c)
		fmt.Fprintf(w, "  Subject:   %s\n", info.CommonName)
		fmt.Fprintf(w, "  Issuer:    %s\n", info.Issuer)
		fmt.Fprintf(w, "  Valid:     %s to %s\n", info.NotBefore.Format("2006-01-02"), info.NotAfter.Format("2006-01-02"))
		fmt.Fprintf(w, "  CA:        %t\n", info.IsCA)
	}
	return nil
}
