// Command uniqip counts the distinct IPv6 addresses in a large text file
// (one address per line) and writes the count to an output file.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/uniqip"
)

type rootOptions struct {
	batchSize int
	fanIn     int
	workers   int
	compress  bool
	keepTmp   bool
	tmpDir    string
	ioLimit   int64
	logLevel  string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "uniqip <input> <output>",
		Short: "Count distinct IPv6 addresses in a large file",
		Long: "uniqip counts the exact number of distinct IPv6 addresses in an input file\n" +
			"with one address per line, using an external merge sort under a bounded\n" +
			"memory and file-descriptor budget. The count is written to the output file\n" +
			"as a decimal integer.",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			level, err := parseLogLevel(opts.logLevel)
			if err != nil {
				return err
			}

			counter, err := uniqip.New(
				uniqip.WithBatchSize(opts.batchSize),
				uniqip.WithFanIn(opts.fanIn),
				uniqip.WithWorkers(opts.workers),
				uniqip.WithCompression(opts.compress),
				uniqip.WithKeepWorkspace(opts.keepTmp),
				uniqip.WithWorkspaceDir(opts.tmpDir),
				uniqip.WithIOLimit(opts.ioLimit),
				uniqip.WithLogLevel(level),
			)
			if err != nil {
				return err
			}

			distinct, err := counter.CountDistinctFile(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), distinct)
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.batchSize, "batch-size", uniqip.DefaultBatchSize, "addresses sorted in memory per run")
	cmd.Flags().IntVar(&opts.fanIn, "fan-in", uniqip.DefaultFanIn, "max runs merged per pass / max open run files")
	cmd.Flags().IntVar(&opts.workers, "workers", 1, "concurrent sort/merge jobs")
	cmd.Flags().BoolVar(&opts.compress, "compress", false, "zstd-compress temporary runs")
	cmd.Flags().BoolVar(&opts.keepTmp, "keep-tmp", false, "keep the temporary workspace for diagnostics")
	cmd.Flags().StringVar(&opts.tmpDir, "tmp-dir", "", "parent directory for the temporary workspace")
	cmd.Flags().Int64Var(&opts.ioLimit, "io-limit", 0, "run-file IO limit in bytes/sec (0 = unlimited)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	return cmd
}

func parseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", s)
	}
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
