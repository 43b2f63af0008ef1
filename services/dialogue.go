package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"olx-car-scraper/models"
	"olx-car-scraper/utils"
)

const (
	minDialogueYear    = 2000
	maxDialogueYear    = 2025
	minDialogueMileage = 0
	maxDialogueMileage = 500000

	CommandStart  = "/start"
	CommandCancel = "/cancel"
)

type dialogueState int

const (
	stateIdle dialogueState = iota
	stateYear
	stateMileage
)

// PricePredictor is the model call the dialogue depends on.
type PricePredictor interface {
	Predict(ctx context.Context, year, mileage int) (float64, error)
}

// Dialogue is the two-step guided prediction conversation: ask the year,
// then the mileage, then answer with the rounded predicted price. /start
// restarts it from any step and /cancel ends it.
type Dialogue struct {
	predictor PricePredictor
	cohort    models.Cohort
	logger    *utils.Logger

	state dialogueState
	year  int
}

func NewDialogue(predictor PricePredictor, cohort models.Cohort, logger *utils.Logger) *Dialogue {
	return &Dialogue{predictor: predictor, cohort: cohort, logger: logger}
}

// Active reports whether the dialogue is waiting for an answer.
func (d *Dialogue) Active() bool {
	return d.state != stateIdle
}

// Handle consumes one line of user input and returns the reply.
func (d *Dialogue) Handle(ctx context.Context, input string) string {
	input = strings.TrimSpace(input)

	switch input {
	case CommandStart:
		d.state = stateYear
		d.year = 0
		d.logger.Info("[dialogue] Start")
		return fmt.Sprintf("🛠 Only %s %s %s is supported for now.\n\n🔝 Enter car year:",
			d.cohort.Brand, d.cohort.Model, d.cohort.Color)
	case CommandCancel:
		d.state = stateIdle
		d.logger.Info("[dialogue] Cancelled")
		return "❌ Cancelled."
	}

	switch d.state {
	case stateYear:
		return d.handleYear(input)
	case stateMileage:
		return d.handleMileage(ctx, input)
	}
	return "Type " + CommandStart + " to get a price prediction."
}

func (d *Dialogue) handleYear(input string) string {
	year, err := strconv.Atoi(input)
	if err != nil {
		return "❌ Please enter a valid year:"
	}
	if year < minDialogueYear || year > maxDialogueYear {
		return fmt.Sprintf("❌ Year must be between %d and %d.", minDialogueYear, maxDialogueYear)
	}

	d.year = year
	d.state = stateMileage
	d.logger.Debug("[dialogue] Year: %d", year)
	return "Enter car mileage:"
}

func (d *Dialogue) handleMileage(ctx context.Context, input string) string {
	mileage, err := strconv.Atoi(input)
	if err != nil {
		return "❌ Please enter a valid mileage:"
	}
	if mileage < minDialogueMileage || mileage > maxDialogueMileage {
		return fmt.Sprintf("❌ Mileage must be between %d and %d.", minDialogueMileage, maxDialogueMileage)
	}

	d.state = stateIdle
	price, err := d.predictor.Predict(ctx, d.year, mileage)
	if err != nil {
		d.logger.Error("[dialogue] Prediction failed for %d/%d: %v", d.year, mileage, err)
		return "⚠️ Model error or still starting. Try again soon."
	}

	rounded := RoundToHundred(price)
	d.logger.Info("[dialogue] Predicted %d USD for %d/%d", rounded, d.year, mileage)
	return fmt.Sprintf("💰 Predicted price: %d USD\n\nYou can type %s to make a new prediction.", rounded, CommandStart)
}
