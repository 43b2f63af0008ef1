package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// ErrNoPrediction means the model server answered without a price.
var ErrNoPrediction = errors.New("predictor: response has no prediction")

type predictionInput struct {
	Year    int `json:"year"`
	Mileage int `json:"mileage"`
}

type predictionRequest struct {
	Inputs []predictionInput `json:"inputs"`
}

// predictionResponse accepts both serving formats: the batch endpoint
// returns predictions[], the single-row service returns predicted_price.
type predictionResponse struct {
	Predictions    []float64 `json:"predictions"`
	PredictedPrice *float64  `json:"predicted_price"`
}

// Predictor calls the price model server.
type Predictor struct {
	url    string
	token  string
	client *http.Client
}

// NewPredictor creates a client for the model endpoint at url. token is sent
// as a bearer token when non-empty.
func NewPredictor(url, token string, timeout time.Duration) *Predictor {
	return &Predictor{url: url, token: token, client: &http.Client{Timeout: timeout}}
}

// Predict returns the model's price in USD for a car of the given year and
// mileage.
func (p *Predictor) Predict(ctx context.Context, year, mileage int) (float64, error) {
	body, err := json.Marshal(predictionRequest{Inputs: []predictionInput{{Year: year, Mileage: mileage}}})
	if err != nil {
		return 0, fmt.Errorf("predictor: encode: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("predictor: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("predictor: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, fmt.Errorf("predictor: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out predictionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("predictor: decode: %w", err)
	}
	switch {
	case len(out.Predictions) > 0:
		return out.Predictions[0], nil
	case out.PredictedPrice != nil:
		return *out.PredictedPrice, nil
	}
	return 0, ErrNoPrediction
}

// RoundToHundred rounds a price to the nearest 100 USD for display.
func RoundToHundred(price float64) int {
	return int(math.Round(price/100) * 100)
}
