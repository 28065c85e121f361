package main

import (
	"context"
	"fmt"

	"github.com/passvault-io/passvault/internal/clock"
	"github.com/passvault-io/passvault/internal/config"
	httphandler "github.com/passvault-io/passvault/internal/handler/http"
	"github.com/passvault-io/passvault/internal/logger"
	"github.com/passvault-io/passvault/internal/retention"
	"github.com/passvault-io/passvault/internal/server"
	"github.com/passvault-io/passvault/internal/service"
	"github.com/passvault-io/passvault/internal/store"
	"github.com/passvault-io/passvault/internal/workers"
	"github.com/passvault-io/passvault/migrations"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("passvault-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}
	if cfg.App.Version == "" {
		cfg.App.Version = buildVersion
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx := context.Background()
	clk := clock.System()

	db, err := store.NewConnectPostgres(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error connecting database")
	}
	if err = migrations.Migrate(db.DB); err != nil {
		log.Fatal().Err(err).Msg("error applying migrations")
	}

	repos := store.NewRepositories(db, log)

	sessions := store.NewLoginSessionStore(cfg.App.LoginSessionTTL, clk, log)
	sessions.StartSweeper(ctx, cfg.App.LoginSessionTTL)

	policy, err := buildRetentionPolicy(cfg.Retention)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid retention policy")
	}

	services := service.NewServices(repos, sessions, policy, cfg.App, clk, log)
	handler := httphandler.NewHandler(services, cfg.App.Version, log)

	background := workers.NewWorkers(services, repos, cfg.Workers, clk, log)
	workersCtx, stopWorkers := context.WithCancel(ctx)
	background.Run(workersCtx)

	srv, err := server.NewServer(handler.Init(), cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}
	srv.RunServer()

	stopWorkers()
	background.Wait()
}

// buildRetentionPolicy turns the configured keep-counts into composed rules;
// a zero count disables that rule.
func buildRetentionPolicy(cfg config.Retention) (retention.Policy, error) {
	type constructor struct {
		keep  int
		build func(int) (retention.Rule, error)
	}

	var rules []retention.Rule
	for _, c := range []constructor{
		{cfg.Daily, retention.Daily},
		{cfg.Weekly, retention.Weekly},
		{cfg.Monthly, retention.Monthly},
		{cfg.Yearly, retention.Yearly},
	} {
		if c.keep == 0 {
			continue
		}
		rule, err := c.build(c.keep)
		if err != nil {
			return retention.Policy{}, err
		}
		rules = append(rules, rule)
	}

	return retention.NewPolicy(rules...), nil
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
