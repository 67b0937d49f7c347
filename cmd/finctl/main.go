package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/core"
	applog "fintrack/internal/log"
	"fintrack/internal/services"
)

// app carries what every subcommand needs. ledger may be preset by tests.
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *applog.Logger
	out    io.Writer

	ledger      *services.LedgerService
	closeLedger func()
}

func newRootCmd(a *app) *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:           "finctl",
		Short:         "Personal finance tracker command line",
		Long:          "finctl imports statements, exports reports and runs maintenance tasks against the fintrack ledger.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.initConfig(cfgFile)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.closeLedger != nil {
				a.closeLedger()
			}
		},
	}
	root.SetOut(a.out)

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./fintrack.yaml when present)")
	root.PersistentFlags().String("backend", "", "storage backend (memory, sqlite, supabase)")
	root.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	_ = a.v.BindPFlag("DATA_BACKEND", root.PersistentFlags().Lookup("backend"))
	_ = a.v.BindPFlag("LOG_LEVEL", root.PersistentFlags().Lookup("log-level"))

	root.AddCommand(importCmd(a), exportCmd(a), reportCmd(a), recurringCmd(a))
	return root
}

func (a *app) initConfig(cfgFile string) error {
	_ = godotenv.Load()

	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
	} else {
		a.v.AddConfigPath(".")
		a.v.SetConfigName("fintrack")
		a.v.SetConfigType("yaml")
	}
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	config.SetDefaults(a.v)

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	a.cfg = config.FromViper(a.v)
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	cfg := applog.DefaultConfig()
	cfg.Level = applog.ParseLevel(a.cfg.LogLevel)
	cfg.Format = a.cfg.LogFormat
	cfg.Component = "cli"
	cfg.Output = os.Stderr
	a.logger = applog.New(cfg)
	applog.SetDefault(a.logger)
	return nil
}

// openLedger opens the configured backend on first use.
func (a *app) openLedger(ctx context.Context) (*services.LedgerService, error) {
	if a.ledger != nil {
		return a.ledger, nil
	}
	if a.cfg.DataBackend == "memory" {
		a.logger.Warn("Memory backend selected: changes are discarded when finctl exits")
	}
	ledger, closeLedger, err := cli.OpenLedger(ctx, a.cfg, a.logger, cli.LedgerOptions{PublishAlerts: true})
	if err != nil {
		return nil, err
	}
	a.ledger, a.closeLedger = ledger, closeLedger
	return ledger, nil
}

func (a *app) now() time.Time {
	if a.ledger != nil {
		return a.ledger.Now()
	}
	return time.Now()
}

func (a *app) formatter() *core.Formatter {
	if a.cfg == nil {
		return core.NewFormatter(core.DefaultCurrency, core.DefaultLocale)
	}
	return core.NewFormatter(a.cfg.Currency, a.cfg.Locale)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	a := &app{v: viper.New(), out: os.Stdout}
	if err := newRootCmd(a).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, cli.ErrorStyle.Render("Error: ")+err.Error())
		cancel()
		os.Exit(1)
	}
}
