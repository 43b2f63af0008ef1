package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"olx-car-scraper/models"
)

// ListResponse is the body of the list endpoints of the cars API.
type ListResponse struct {
	Results []*models.CanonicalAd `json:"results"`
	Filters *models.FacetSummary  `json:"filters,omitempty"`
}

// APIStore reaches the cars table through the REST API instead of the
// database, the way a pipeline running outside the database network does.
type APIStore struct {
	baseURL string
	client  *http.Client
}

// NewAPIStore targets the API served at baseURL (e.g. http://django:8000).
func NewAPIStore(baseURL string, timeout time.Duration) *APIStore {
	return &APIStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (a *APIStore) ExistsByAdID(ctx context.Context, carAdID string) (bool, error) {
	q := url.Values{}
	q.Set("car_ad_id", carAdID)
	list, err := a.list(ctx, "/api/cars/", q)
	if err != nil {
		return false, err
	}
	return len(list.Results) > 0, nil
}

func (a *APIStore) ExistsByComposite(ctx context.Context, year int, description string, createdAt time.Time) (bool, error) {
	q := url.Values{}
	q.Set("year", strconv.Itoa(year))
	q.Set("description", description)
	q.Set("created_at", createdAt.Format(time.RFC3339))
	list, err := a.list(ctx, "/api/cars/filtered-list/", q)
	if err != nil {
		return false, err
	}
	return len(list.Results) > 0, nil
}

func (a *APIStore) Insert(ctx context.Context, ad *models.CanonicalAd) (int64, error) {
	body, err := json.Marshal(ad)
	if err != nil {
		return 0, fmt.Errorf("api: encode ad: %w", err)
	}

	resp, err := a.do(ctx, http.MethodPost, "/api/cars/", nil, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated:
	case http.StatusConflict:
		return 0, ErrDuplicate
	default:
		return 0, statusError(resp)
	}

	var created models.CanonicalAd
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return 0, fmt.Errorf("api: decode created ad: %w", err)
	}
	return created.ID, nil
}

func (a *APIStore) Filter(ctx context.Context, f Filter) ([]*models.CanonicalAd, error) {
	list, err := a.list(ctx, "/api/cars/filtered-list/", f.Query())
	if err != nil {
		return nil, err
	}
	return list.Results, nil
}

func (a *APIStore) Get(ctx context.Context, id int64) (*models.CanonicalAd, error) {
	resp, err := a.do(ctx, http.MethodGet, fmt.Sprintf("/api/cars/%d/", id), nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var ad models.CanonicalAd
	if err := json.NewDecoder(resp.Body).Decode(&ad); err != nil {
		return nil, fmt.Errorf("api: decode ad: %w", err)
	}
	return &ad, nil
}

func (a *APIStore) Delete(ctx context.Context, id int64) error {
	resp, err := a.do(ctx, http.MethodDelete, fmt.Sprintf("/api/cars/%d/", id), nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK:
		return nil
	case http.StatusNotFound:
		return ErrNotFound
	}
	return statusError(resp)
}

func (a *APIStore) Close() error {
	a.client.CloseIdleConnections()
	return nil
}

func (a *APIStore) list(ctx context.Context, path string, q url.Values) (*ListResponse, error) {
	resp, err := a.do(ctx, http.MethodGet, path, q, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var list ListResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("api: decode %s: %w", path, err)
	}
	return &list, nil
}

func (a *APIStore) do(ctx context.Context, method, path string, q url.Values, body io.Reader) (*http.Response, error) {
	target := a.baseURL + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	return resp, nil
}

func statusError(resp *http.Response) error {
	msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Errorf("api: %s %s: status %d: %s",
		resp.Request.Method, resp.Request.URL.Path, resp.StatusCode, strings.TrimSpace(string(msg)))
}
