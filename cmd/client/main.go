package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/passvault-io/passvault/internal/client"
	"github.com/passvault-io/passvault/internal/config"
	"github.com/passvault-io/passvault/internal/logger"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("passvault-client")
	cfg, err := config.GetClientConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	opts := client.Options{
		Username:      os.Getenv("PASSVAULT_USERNAME"),
		Password:      os.Getenv("PASSVAULT_PASSWORD"),
		TwoFactorCode: os.Getenv("PASSVAULT_TOTP_CODE"),
		Register:      os.Getenv("PASSVAULT_REGISTER") == "1",
		RememberMe:    true,
	}
	if opts.Username == "" || opts.Password == "" {
		log.Fatal().Msg("PASSVAULT_USERNAME and PASSVAULT_PASSWORD must be set")
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	app := client.NewApp(*cfg, log)
	if err = app.Run(ctx, opts); err != nil {
		log.Fatal().Err(err).Msg("client run error")
	}
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
