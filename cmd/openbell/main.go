package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/bobmcallan/openbell/internal/app"
	"github.com/bobmcallan/openbell/internal/common"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to config file (default: $OPENBELL_CONFIG, then openbell.toml)")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(common.GetFullVersion())
		return
	}

	// .env is optional; real environments set variables directly
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.NewApp(ctx, *configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize app: %v\n", err)
		os.Exit(1)
	}

	sent, total, err := a.Run(ctx)
	if err != nil {
		a.Logger.Error().Err(err).Msg("Digest run failed")
		os.Exit(1)
	}

	if sent == total {
		a.Logger.Info().Int("total", total).Msg("All digests completed successfully")
	} else {
		a.Logger.Warn().Int("sent", sent).Int("total", total).Msg("Some digests were not sent")
	}

	// The run only counts as failed when nothing went out
	if sent == 0 {
		os.Exit(1)
	}
}
