// Command htms loads pages with bound forms and drives their change events
// from the command line.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/vango-dev/htms/internal/config"
	"github.com/vango-dev/htms/internal/errors"
	"github.com/vango-dev/htms/pkg/page"
	"github.com/vango-dev/htms/pkg/telemetry"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┬ ┬┌┬┐┌┬┐┌─┐
  ├─┤ │ │││└─┐
  ┴ ┴ ┴ ┴ ┴└─┘
`

// app holds state shared by every command.
type app struct {
	configPath string
	logLevel   string
	metrics    bool

	cfg      *config.Config
	logger   *slog.Logger
	registry *prometheus.Registry
	stderr   io.Writer
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		errors.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{stderr: os.Stderr}

	rootCmd := &cobra.Command{
		Use:   "htms",
		Short: "Drive declarative AJAX forms from the command line",
		Long: `htms loads a page, finds the forms bound with x-get or x-post and
fires their change events the way the browser script would.

Each change sends the form's fields as a query string with the
X-Request marker header and merges the returned fragment into the
page by element id.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.stderr = cmd.ErrOrStderr()
			return a.setup()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "Path to htms.json or htms.yaml (default: search the working directory)")
	flags.StringVar(&a.logLevel, "log-level", "warn", "Log level: debug, info, warn or error")
	flags.BoolVar(&a.metrics, "metrics", false, "Print collected metrics to stderr on exit")

	rootCmd.AddCommand(
		formsCmd(a),
		changeCmd(a),
		versionCmd(),
	)

	return rootCmd
}

func (a *app) setup() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return errors.New("E183").WithDetail(fmt.Sprintf("got %q", a.logLevel))
	}
	a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))

	var err error
	if a.configPath != "" {
		a.cfg, err = config.LoadFile(a.configPath)
	} else {
		var wd string
		wd, err = os.Getwd()
		if err == nil {
			a.cfg, err = config.Load(wd)
		}
	}
	if err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	return nil
}

// newPage creates a page wired to the app's config, logger and metrics.
func (a *app) newPage() (*page.Page, error) {
	tel := telemetry.New(
		telemetry.WithNamespace(a.cfg.Telemetry.Namespace),
		telemetry.WithTracerName(a.cfg.Telemetry.TracerName),
		telemetry.WithRegistry(a.registry),
	)
	return page.New(
		page.WithConfig(a.cfg),
		page.WithLogger(a.logger),
		page.WithTelemetry(tel),
	)
}

// flushMetrics prints gathered metrics when --metrics is set.
func (a *app) flushMetrics() error {
	if !a.metrics || a.registry == nil {
		return nil
	}
	families, err := a.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(a.stderr, mf); err != nil {
			return err
		}
	}
	return nil
}

// printBanner prints the htms banner.
func printBanner(w io.Writer) {
	fmt.Fprint(w, banner)
}

// success prints a success message.
func success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\033[32m✓\033[0m %s\n", fmt.Sprintf(format, args...))
}

// info prints an info message.
func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}
