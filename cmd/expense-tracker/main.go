package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/example/expense-tracker/internal/config"
	"github.com/example/expense-tracker/internal/logging"
	"github.com/example/expense-tracker/pkg/expense"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = newRootCmd()

// app carries the state shared by all subcommands of one invocation
type app struct {
	cfgFile  string
	dataFile string
	logLevel string

	logger *log.Logger
	store  *expense.Store
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "expense-tracker",
		Short: "Record personal expenses and summarize them by category and month",
		Long: `Expense Tracker keeps personal expenses in a local JSON file,
and reports totals by category as well as monthly summaries.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.open,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVarP(&a.cfgFile, "config", "c", "", "Config file (TOML)")
	cmd.PersistentFlags().StringVar(&a.dataFile, "data-file", "", "Expense data file (overrides config)")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")

	cmd.AddCommand(
		a.newAddCmd(),
		a.newRemoveCmd(),
		a.newListCmd(),
		a.newTotalsCmd(),
		a.newSummaryCmd(),
		a.newCategoriesCmd(),
		a.newExportCmd(),
	)
	return cmd
}

// open loads .env and the config, then builds the logger and the store
func (a *app) open(cmd *cobra.Command, _ []string) error {
	// .env is optional
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(a.cfgFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("data-file") {
		cfg.DataFile = a.dataFile
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.logger, err = logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return err
	}
	a.store = expense.NewStore(cfg.DataFile, a.logger, expense.WithCategories(cfg.Categories...))
	return nil
}
