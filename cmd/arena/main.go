// Command arena runs two-sided debates between language models.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/alienxp03/arena/internal/config"
	"github.com/alienxp03/arena/provider"
	"github.com/alienxp03/arena/provider/mock"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries the state shared by all subcommands.
type app struct {
	cfgPath string
	debug   bool

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "arena",
		Short: "Run structured debates between AI models",
		Long: `arena pits two language models against each other on a topic.

The affirmative argues for the motion and the negative against it, each
optionally grounded in its own documents (PDF, DOCX, TXT). After the last
round the affirmative model writes a neutral summary.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.logger = newLogger(cmd.ErrOrStderr(), a.debug, false)
			slog.SetDefault(a.logger)

			path := a.cfgPath
			if path == "" {
				path = config.DefaultConfigPath()
			}
			cfg, err := config.LoadFrom(path)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			a.cfg = cfg
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.cfgPath, "config", "", "Config file path (default: ~/.arena/config.yaml)")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")

	root.AddCommand(
		newDebateCmd(a),
		newServeCmd(a),
		newProvidersCmd(a),
		newStylesCmd(a),
		newConfigCmd(a),
	)
	return root
}

func newLogger(w io.Writer, debug, asJSON bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelWarn}
	if asJSON {
		opts.Level = slog.LevelInfo
	}
	if debug {
		opts.Level = slog.LevelDebug
	}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// registry builds the provider registry. With useMock both participants are
// switched to the offline mock provider.
func (a *app) registry(useMock bool) *provider.Registry {
	reg := a.cfg.CreateRegistry()
	if useMock {
		if !reg.Has("mock") {
			reg.Register(mock.New("mock"))
		}
		a.cfg.Participants.Affirmative = "mock"
		a.cfg.Participants.Negative = "mock"
	}
	return reg
}
