package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/AndrewLester/ntpstep/internal/config"
	"github.com/AndrewLester/ntpstep/internal/history"
	"github.com/AndrewLester/ntpstep/internal/logging"
	"github.com/AndrewLester/ntpstep/pkg/api"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:           "ntpstep",
	Short:         "Measure an NTP server and step the system clock to it",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the config file (default "+config.DefaultPath+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level, overrides the config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")

	rootCmd.AddCommand(queryCmd, syncCmd, adjustCmd, setCmd, permissionCmd, sidecarCmd, daemonCmd, historyCmd)
}

// application holds what every subcommand needs.
type application struct {
	cfg     *config.Config
	log     *logrus.Logger
	api     *api.API
	history *history.DB
}

func newApp() (*application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	log := logging.New(cfg.LogLevel)
	a, err := api.New(cfg, log)
	if err != nil {
		return nil, err
	}

	app := &application{cfg: cfg, log: log, api: a}
	if cfg.History.DBPath != "" {
		db, err := history.NewDB(cfg.History.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open history %s: %w", cfg.History.DBPath, err)
		}
		app.history = db
		a.Syncer.Recorder = db
	}
	return app, nil
}

func (a *application) Close() {
	if a.history != nil {
		a.history.Close()
	}
}

func (a *application) server(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return a.cfg.Server
}

// exitError makes main exit non-zero without printing anything more; the
// result object has already been written.
type exitError struct{ code string }

func (e exitError) Error() string { return e.code }

func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if _, ok := err.(exitError); !ok {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
