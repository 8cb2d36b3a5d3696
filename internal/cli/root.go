// Package cli implements the flowmeter command line, following the layout
// controlplane/telemetry/internal/data/cli/root.go uses for its own cobra
// root command.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flowmeter/flowmeter/internal/flowmeter"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

// ExitCode is the process exit status Run returns, matching the CLI's
// documented contract: 0 on success (including empty input), 1 on argument
// or I/O-open errors.
type ExitCode int

const (
	exitCodeSuccess ExitCode = 0
	exitCodeError   ExitCode = 1

	defaultProtocolTimeoutSec = 600
)

// set by LDFLAGS
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// Run parses argv, wires the engine, and drives one conversion to
// completion. It is the sole entry point cmd/flowmeter/main.go calls.
func Run(argv []string) ExitCode {
	var (
		verbose     bool
		metricsAddr string
		showVersion bool
		ipv6        bool
	)

	pathArgs, tcpTimeoutSec, udpTimeoutSec, err := parseTimeoutChain(argv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCodeError
	}

	rootCmd := &cobra.Command{
		Use:   "flowmeter <pcap-path> <csv-path> [label-path]",
		Short: "Convert an offline packet capture into a table of per-flow statistical features.",
		Args: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				return nil
			}
			return cobra.RangeArgs(2, 3)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			if showVersion {
				fmt.Printf("version: %s\ncommit: %s\ndate: %s\n", version, commit, date)
				return nil
			}

			logger := newLogger(verbose)
			reg := prometheus.WrapRegistererWithPrefix("flowmeter_", prometheus.DefaultRegisterer)

			if metricsAddr != "" {
				go serveMetrics(metricsAddr, logger)
			}

			return runConvert(cmd.Context(), logger, reg, pathArgs, tcpTimeoutSec, udpTimeoutSec, ipv6)
		},
	}
	rootCmd.SetArgs(pathArgs)
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "set debug logging level")
	rootCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address for the Prometheus /metrics endpoint (empty disables it)")
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version information and exit")
	rootCmd.Flags().BoolVar(&ipv6, "ipv6", false, "include IPv6 flows (disabled by default)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	rootCmd.SetContext(ctx)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return exitCodeError
	}
	return exitCodeSuccess
}

// runConvert builds the engine's collaborators and runs one full
// conversion. pathArgs is [pcap-path, csv-path] or [pcap-path, csv-path,
// label-path].
func runConvert(ctx context.Context, logger *slog.Logger, reg prometheus.Registerer, pathArgs []string, tcpTimeoutSec, udpTimeoutSec int, ipv6 bool) error {
	metrics := flowmeter.NewMetrics(reg)

	labelPath := ""
	if len(pathArgs) == 3 {
		labelPath = pathArgs[2]
	}
	logger.Info("processing", "pcap", pathArgs[0], "label", labelPath, "csv", pathArgs[1])

	reader := flowmeter.NewPcapReader(pathArgs[0],
		flowmeter.WithIPv6(ipv6),
		flowmeter.WithDropCounter(metrics.PacketsDroppedTotal.Inc),
	)

	sink, err := flowmeter.NewCSVSink(pathArgs[1])
	if err != nil {
		return fmt.Errorf("failed to open csv output: %w", err)
	}
	defer sink.Close()

	var labels flowmeter.LabelSet
	if len(pathArgs) == 3 {
		labels, err = flowmeter.LoadLabelFile(pathArgs[2])
		if err != nil {
			return fmt.Errorf("failed to load label file: %w", err)
		}
	}

	engine := flowmeter.NewEngine(
		flowmeter.WithLogger(logger),
		flowmeter.WithMetrics(metrics),
		flowmeter.WithLabels(labels),
		flowmeter.WithEngineProtocolTimeouts(
			int64(tcpTimeoutSec)*1_000_000,
			int64(udpTimeoutSec)*1_000_000,
		),
	)

	return engine.Run(ctx, reader, sink)
}

func serveMetrics(addr string, logger *slog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Error("metrics server stopped", "error", err)
	}
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
