package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/google/subcommands"
	"gorm.io/gorm"

	"wealthtrack/internal/advisor"
	"wealthtrack/internal/cli"
	"wealthtrack/internal/config"
	"wealthtrack/internal/database"
	"wealthtrack/internal/logger"
	"wealthtrack/internal/rates"
	"wealthtrack/internal/syncclient"
	"wealthtrack/internal/workspace"
)

var (
	configPath = flag.String("config", config.DefaultClientConfigPath(), "Path to the client configuration file (TOML).")
	plain      = flag.Bool("plain", false, "Print raw markdown instead of rendering it.")
)

func main() {
	os.Exit(int(run()))
}

func run() subcommands.ExitStatus {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")

	app := &cli.App{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
	cli.Register(commander, app)

	flag.Parse()

	// help, flags and commands do not need the workspace.
	if name := flag.Arg(0); name != "" && !isBuiltin(name) {
		closeApp, err := setup(app)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			return subcommands.ExitFailure
		}
		defer closeApp()
	}
	defer logger.Sync()

	return commander.Execute(context.Background())
}

func isBuiltin(name string) bool {
	switch name {
	case "help", "flags", "commands":
		return true
	}
	return false
}

// setup loads the configuration and opens the local workspace.
func setup(app *cli.App) (func(), error) {
	cfg, err := config.LoadClient(*configPath)
	if err != nil {
		return nil, err
	}
	logger.InitLevel(cfg.LogLevel)

	db, err := database.OpenSQLite(cfg.WorkspaceDB)
	if err != nil {
		return nil, fmt.Errorf("open workspace %s: %w", cfg.WorkspaceDB, err)
	}
	store, err := openWorkspace(db)
	if err != nil {
		return nil, err
	}
	logger.Get().Debugw("workspace opened", "path", cfg.WorkspaceDB)

	app.Store = store
	app.APIURL = strings.TrimRight(cfg.APIURL, "/")
	app.Sync = syncclient.New(cfg.APIURL, cfg.Timeout)
	app.Rates = rates.NewConverter(nil)
	app.Generator = func(ctx context.Context) (advisor.TextGenerator, error) {
		return advisor.NewGeminiClient(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
	}
	app.Plain = *plain

	return func() { closeDB(db) }, nil
}

// openWorkspace migrates db and loads the workspace stored in it. db is closed
// when either step fails.
func openWorkspace(db *gorm.DB) (*workspace.Store, error) {
	if err := database.AutoMigrate(db); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("migrate workspace: %w", err)
	}
	store, err := workspace.Open(workspace.NewGormPersister(db))
	if err != nil {
		closeDB(db)
		return nil, fmt.Errorf("load workspace: %w", err)
	}
	return store, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
