package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"olx-car-scraper/config"
	"olx-car-scraper/models"
	"olx-car-scraper/services"
	"olx-car-scraper/utils"
)

// cliFlags override the matching environment settings when set.
type cliFlags struct {
	URL     string        `help:"Prediction endpoint (default PREDICT_URL)" short:"u"`
	Token   string        `help:"Bearer token for the endpoint (default PREDICT_TOKEN)"`
	Timeout time.Duration `help:"Request timeout" default:"30s"`
	Brand   string        `help:"Brand shown in prompts (default EXPORT_BRAND)"`
	Model   string        `help:"Model shown in prompts (default EXPORT_MODEL)"`
}

func main() {
	var flags cliFlags
	kong.Parse(&flags,
		kong.Name("predict"),
		kong.Description("Interactive used-car price estimate."))

	logger := utils.NewLoggerTo(os.Stderr, os.Getenv("LOG_LEVEL"))
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	predictor := services.NewPredictor(orDefault(flags.URL, cfg.PredictURL),
		orDefault(flags.Token, cfg.PredictToken), flags.Timeout)
	cohort := models.Cohort{
		Brand: orDefault(flags.Brand, cfg.ExportBrand),
		Model: orDefault(flags.Model, cfg.ExportModel),
		Color: cfg.ExportColor,
	}
	dialogue := services.NewDialogue(predictor, cohort, logger)

	fmt.Println(dialogue.Handle(ctx, services.CommandStart))

	scanner := bufio.NewScanner(os.Stdin)
	for ctx.Err() == nil {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		fmt.Println(dialogue.Handle(ctx, scanner.Text()))
	}
	fmt.Println()
}

func orDefault(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}
