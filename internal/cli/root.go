// Package cli implements the yuhun operator commands.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/bootstrap"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/config"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/domain"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/service"
	"github.com/Fan1234-1/Yu-Hun-Cognitive-State-Navigator/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	formatJSON = "json"
	formatText = "text"
)

type options struct {
	session string
	format  string
	backend string
	sqlite  string
	verbose bool
}

// NewRootCmd builds the command tree. A fresh tree per invocation keeps flag
// state from leaking between runs.
func NewRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "yuhun",
		Short:         "Consult the three-voice council from the terminal",
		Long:          "yuhun submits questions to the philosopher, engineer and guardian council, and browses the resulting history.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Load(); err != nil {
				return err
			}
			if opts.format != formatJSON && opts.format != formatText {
				return fmt.Errorf("invalid format %q (json or text)", opts.format)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&opts.session, "session", "s", "default", "Session id")
	root.PersistentFlags().StringVarP(&opts.format, "format", "f", formatText, "Output format: json or text")
	root.PersistentFlags().StringVar(&opts.backend, "backend", "", "History backend (default: $HISTORY_BACKEND)")
	root.PersistentFlags().StringVar(&opts.sqlite, "sqlite", "", "SQLite path (default: $SQLITE_PATH)")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log model calls to stderr")

	root.AddCommand(
		newAskCmd(opts),
		newInsightCmd(opts),
		newHistoryCmd(opts),
		newTensionCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI against os.Args.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, domain.ErrQuotaExhausted) {
			fmt.Fprintln(os.Stderr, "hint: the model quota is exhausted; switch to another API key or provider")
		}
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	cfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

// session bundles what every command needs: a navigator bound to the
// selected history store.
type session struct {
	svc    *bootstrap.Services
	store  domain.HistoryStore
	logger *zap.Logger
}

func (s *session) nav() *service.Navigator {
	return s.svc.Navigator
}

func (s *session) close() {
	_ = s.store.Close()
	_ = s.logger.Sync()
}

func openSession(ctx context.Context, opts *options) (*session, error) {
	logger, err := newLogger(opts.verbose)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	backend := opts.backend
	if backend == "" {
		backend = config.HistoryBackend()
	}
	sqlitePath := opts.sqlite
	if sqlitePath == "" {
		sqlitePath = config.SQLitePath()
	}

	hs, err := store.Open(ctx, backend, store.Options{
		SQLitePath:    sqlitePath,
		DatabaseURL:   config.DatabaseURL(),
		RedisURL:      config.RedisURL(),
		MongoURI:      config.MongoURI(),
		MongoDatabase: config.MongoDatabase(),
	})
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}

	// A one-shot command exits before background avatar jobs would finish.
	models, _, err := bootstrap.Clients(ctx, logger, false)
	if err != nil {
		_ = hs.Close()
		return nil, err
	}
	svc := bootstrap.Build(bootstrap.Deps{Models: models, Store: hs, Logger: logger})
	return &session{svc: svc, store: hs, logger: logger}, nil
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
