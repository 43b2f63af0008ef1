package storage

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"olx-car-scraper/models"
)

func newAPITestServer(t *testing.T, handler http.HandlerFunc) *APIStore {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAPIStore(srv.URL+"/", 5*time.Second)
}

func writeList(w http.ResponseWriter, ads ...*models.CanonicalAd) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(ListResponse{Results: ads})
}

func TestAPIStoreExistsByAdID(t *testing.T) {
	s := newAPITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/cars/" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		if r.URL.Query().Get("car_ad_id") == "ID3aBc1" {
			writeList(w, sampleAd())
			return
		}
		writeList(w)
	})

	ok, err := s.ExistsByAdID(context.Background(), "ID3aBc1")
	if err != nil || !ok {
		t.Errorf("known id: got %v, %v", ok, err)
	}
	ok, err = s.ExistsByAdID(context.Background(), "ID-other")
	if err != nil || ok {
		t.Errorf("unknown id: got %v, %v", ok, err)
	}
}

func TestAPIStoreExistsByCompositeSendsRFC3339(t *testing.T) {
	ad := sampleAd()
	s := newAPITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/api/cars/filtered-list/" {
			t.Errorf("path: got %s", r.URL.Path)
		}
		if q.Get("year") != "2012" || q.Get("description") != ad.Description ||
			q.Get("created_at") != "2024-11-23T15:00:00Z" {
			t.Errorf("query: got %v", q)
		}
		writeList(w, ad)
	})

	ok, err := s.ExistsByComposite(context.Background(), ad.Year, ad.Description, ad.CreatedAt)
	if err != nil || !ok {
		t.Errorf("got %v, %v", ok, err)
	}
}

func TestAPIStoreInsert(t *testing.T) {
	s := newAPITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s", r.Method)
		}
		var ad models.CanonicalAd
		if err := json.NewDecoder(r.Body).Decode(&ad); err != nil {
			t.Errorf("decode: %v", err)
		}
		if ad.CarAdID == "ID-dup" {
			w.WriteHeader(http.StatusConflict)
			return
		}
		ad.ID = 42
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(ad)
	})

	id, err := s.Insert(context.Background(), sampleAd())
	if err != nil || id != 42 {
		t.Errorf("Insert: got %d, %v", id, err)
	}

	dup := sampleAd()
	dup.CarAdID = "ID-dup"
	if _, err := s.Insert(context.Background(), dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("duplicate Insert: got %v, want ErrDuplicate", err)
	}
}

func TestAPIStoreGetAndDeleteNotFound(t *testing.T) {
	s := newAPITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	if _, err := s.Get(context.Background(), 9); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get: got %v, want ErrNotFound", err)
	}
	if err := s.Delete(context.Background(), 9); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete: got %v, want ErrNotFound", err)
	}
}

func TestAPIStoreFilterPassesQuery(t *testing.T) {
	s := newAPITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("price"); got != "1000-9000" {
			t.Errorf("price: got %q", got)
		}
		writeList(w, sampleAd(), sampleAd())
	})

	f, _ := NewFilter(map[string]string{"price": "1000-9000"})
	ads, err := s.Filter(context.Background(), f)
	if err != nil {
		t.Fatalf("Filter: %v", err)
	}
	if len(ads) != 2 {
		t.Errorf("results: got %d, want 2", len(ads))
	}
}

func TestAPIStoreServerError(t *testing.T) {
	s := newAPITestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	if _, err := s.ExistsByAdID(context.Background(), "x"); err == nil {
		t.Error("expected an error on 500")
	}
}
