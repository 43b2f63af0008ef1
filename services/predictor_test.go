package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"olx-car-scraper/models"
)

func TestPredictorSendsInputsAndToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization: got %q", got)
		}
		var req predictionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		if len(req.Inputs) != 1 || req.Inputs[0].Year != 2015 || req.Inputs[0].Mileage != 120000 {
			t.Errorf("inputs: %+v", req.Inputs)
		}
		_, _ = w.Write([]byte(`{"predictions":[8764.3]}`))
	}))
	defer srv.Close()

	p := NewPredictor(srv.URL, "secret", 5*time.Second)
	got, err := p.Predict(context.Background(), 2015, 120000)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if got != 8764.3 {
		t.Errorf("got %v, want 8764.3", got)
	}
}

func TestPredictorResponseFormats(t *testing.T) {
	tests := []struct {
		body    string
		want    float64
		wantErr error
	}{
		{`{"predicted_price": 7100.5}`, 7100.5, nil},
		{`{"predictions": []}`, 0, ErrNoPrediction},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(tt.body))
		}))
		got, err := NewPredictor(srv.URL, "", time.Second).Predict(context.Background(), 2010, 1)
		srv.Close()

		if !errors.Is(err, tt.wantErr) || got != tt.want {
			t.Errorf("body %s: got %v, %v; want %v, %v", tt.body, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestPredictorServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "endpoint scaling from zero", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := NewPredictor(srv.URL, "", time.Second).Predict(context.Background(), 2010, 1); err == nil {
		t.Error("expected an error")
	}
}

func TestRoundToHundred(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{8764.3, 8800},
		{8749.99, 8700},
		{8750, 8800},
		{49, 0},
	}
	for _, tt := range tests {
		if got := RoundToHundred(tt.in); got != tt.want {
			t.Errorf("RoundToHundred(%v) = %d; want %d", tt.in, got, tt.want)
		}
	}
}

type stubPredictor struct {
	price float64
	err   error
	calls int
}

func (s *stubPredictor) Predict(context.Context, int, int) (float64, error) {
	s.calls++
	return s.price, s.err
}

func newTestDialogue(p PricePredictor) *Dialogue {
	return NewDialogue(p, models.Cohort{Brand: "Chevrolet", Model: "Lacetti", Color: "white"}, newTestLogger())
}

func TestDialogueHappyPath(t *testing.T) {
	ctx := context.Background()
	p := &stubPredictor{price: 8764.3}
	d := newTestDialogue(p)

	if reply := d.Handle(ctx, "/start"); !strings.Contains(reply, "Enter car year") {
		t.Errorf("start reply: %q", reply)
	}
	if reply := d.Handle(ctx, "2015"); reply != "Enter car mileage:" {
		t.Errorf("year reply: %q", reply)
	}
	reply := d.Handle(ctx, "120000")
	if !strings.Contains(reply, "8800 USD") {
		t.Errorf("mileage reply: %q", reply)
	}
	if d.Active() {
		t.Error("dialogue should end after a prediction")
	}
}

func TestDialogueRepromptsOnInvalidInput(t *testing.T) {
	ctx := context.Background()
	p := &stubPredictor{price: 5000}
	d := newTestDialogue(p)
	d.Handle(ctx, "/start")

	for _, input := range []string{"nineteen", "1999", "2026"} {
		d.Handle(ctx, input)
		if d.state != stateYear {
			t.Errorf("after %q: state %v, want year", input, d.state)
		}
	}

	d.Handle(ctx, "2010")
	for _, input := range []string{"-1", "500001", "a lot"} {
		d.Handle(ctx, input)
		if d.state != stateMileage {
			t.Errorf("after %q: state %v, want mileage", input, d.state)
		}
	}
	if p.calls != 0 {
		t.Errorf("predictor called %d times on invalid input", p.calls)
	}

	d.Handle(ctx, "500000")
	if p.calls != 1 {
		t.Errorf("predictor calls: got %d, want 1", p.calls)
	}
}

func TestDialogueHidesUpstreamErrors(t *testing.T) {
	ctx := context.Background()
	d := newTestDialogue(&stubPredictor{err: errors.New("predictor: status 503: secret internals")})
	d.Handle(ctx, "/start")
	d.Handle(ctx, "2012")

	reply := d.Handle(ctx, "100000")
	if !strings.Contains(reply, "Try again") || strings.Contains(reply, "secret") {
		t.Errorf("reply leaks or lacks retry hint: %q", reply)
	}
}

func TestDialogueRestartAndCancel(t *testing.T) {
	ctx := context.Background()
	d := newTestDialogue(&stubPredictor{})
	d.Handle(ctx, "/start")
	d.Handle(ctx, "2012")

	d.Handle(ctx, "/start")
	if d.state != stateYear {
		t.Errorf("restart: state %v, want year", d.state)
	}

	if reply := d.Handle(ctx, "/cancel"); reply != "❌ Cancelled." || d.Active() {
		t.Errorf("cancel: %q, active=%v", reply, d.Active())
	}
	if reply := d.Handle(ctx, "2012"); !strings.Contains(reply, "/start") {
		t.Errorf("idle reply: %q", reply)
	}
}
