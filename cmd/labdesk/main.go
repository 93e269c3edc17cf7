package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alexanderramin/labdesk/internal/api"
	"github.com/alexanderramin/labdesk/internal/auth"
	"github.com/alexanderramin/labdesk/internal/cli"
	"github.com/alexanderramin/labdesk/internal/config"
	"github.com/alexanderramin/labdesk/internal/db"
	"github.com/alexanderramin/labdesk/internal/repository"
	"github.com/alexanderramin/labdesk/internal/service"
	"github.com/alexanderramin/labdesk/internal/validation"
)

func main() {
	if err := run(); err != nil {
		cli.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Open the local session database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	hashKey, blockKey, err := cfg.CookieKeys(filepath.Join(config.Dir(), "cookie.key"))
	if err != nil {
		return err
	}
	codec, err := repository.NewCookieCodec(hashKey, blockKey)
	if err != nil {
		return err
	}

	// Wire repositories
	sessionRepo := repository.NewSQLiteSessionRepo(database, codec)
	eventRepo := repository.NewSQLiteAuthEventRepo(database)
	uow := db.NewSQLiteUnitOfWork(database)

	var callObserver api.Observer = api.NoopObserver{}
	var useCaseObserver service.UseCaseObserver = service.NoopUseCaseObserver{}
	if cfg.LogCalls {
		callObserver = api.NewLogObserver(os.Stderr)
		useCaseObserver = service.NewLogUseCaseObserver(os.Stderr)
	}

	client, err := api.NewClient(api.Config{BaseURL: cfg.APIURL, Timeout: cfg.Timeout}, callObserver)
	if err != nil {
		return err
	}

	store := auth.NewStore(client, uow, codec, sessionRepo, eventRepo, cfg.Profile)
	if err := store.Restore(context.Background()); err != nil {
		return err
	}

	v := validation.New()

	// Wire services
	app := &cli.App{
		Accounts:  service.NewAccountService(store, v, useCaseObserver),
		Workloads: service.NewWorkloadService(client, store, v, cfg.PageSize, useCaseObserver),
		Projects:  service.NewProjectService(client, store, v, cfg.DefaultTeacherReviewer, useCaseObserver),
		Directory: service.NewDirectoryService(client, store),
		Session:   store,
		Settings: cli.Settings{
			APIURL:       cfg.APIURL,
			PollInterval: cfg.PollInterval,
			PageSize:     cfg.PageSize,
		},
		IsInteractive: cli.StdinIsTerminal,
		ReadPassword:  cli.TerminalPassword,
	}

	return cli.NewRootCmd(app).Execute()
}
