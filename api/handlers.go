package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"olx-car-scraper/models"
	"olx-car-scraper/services"
	"olx-car-scraper/storage"
	"olx-car-scraper/utils"
)

// Handler serves the cars API over an AdStore.
type Handler struct {
	store  storage.AdStore
	loc    *time.Location
	facets *services.FacetService
	logger *utils.Logger
}

// NewHandler serves store. Date-range filters and created_at facets use
// calendar days in loc.
func NewHandler(store storage.AdStore, loc *time.Location, logger *utils.Logger) *Handler {
	if loc == nil {
		loc = time.UTC
	}
	return &Handler{store: store, loc: loc, facets: services.NewFacetService(loc, logger), logger: logger}
}

// NewRouter returns a router with every route registered.
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)

	cars := r.PathPrefix("/api/cars").Subrouter()
	cars.HandleFunc("/", h.List).Methods(http.MethodGet)
	cars.HandleFunc("/", h.Create).Methods(http.MethodPost)
	cars.HandleFunc("/filtered-list/", h.FilteredList).Methods(http.MethodGet)
	cars.HandleFunc("/filters-summary/", h.FiltersSummary).Methods(http.MethodGet)
	cars.HandleFunc("/{id:[0-9]+}/", h.Get).Methods(http.MethodGet)
	cars.HandleFunc("/{id:[0-9]+}/", h.Delete).Methods(http.MethodDelete)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// List returns the ads matching the query parameters, without facets.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ads, ok := h.filter(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, storage.ListResponse{Results: ads})
}

// FilteredList returns the matching ads together with their facet summary.
func (h *Handler) FilteredList(w http.ResponseWriter, r *http.Request) {
	ads, ok := h.filter(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, storage.ListResponse{Results: ads, Filters: h.facets.Generate(ads)})
}

func (h *Handler) FiltersSummary(w http.ResponseWriter, r *http.Request) {
	ads, ok := h.filter(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.facets.Generate(ads))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var ad models.CanonicalAd
	if err := json.NewDecoder(r.Body).Decode(&ad); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if missing := ad.MissingRequired(); missing != "" {
		writeError(w, http.StatusBadRequest, missing+" is required")
		return
	}
	if ad.Price != nil && *ad.Price < 0 {
		writeError(w, http.StatusBadRequest, "price must not be negative")
		return
	}
	if ad.Mileage != nil && *ad.Mileage < 0 {
		writeError(w, http.StatusBadRequest, "mileage must not be negative")
		return
	}

	ad.ID = 0
	id, err := h.store.Insert(r.Context(), &ad)
	if errors.Is(err, storage.ErrDuplicate) {
		writeError(w, http.StatusConflict, "car_ad_id already exists")
		return
	}
	if err != nil {
		h.logger.Error("[api] Insert failed: %v", err)
		writeError(w, http.StatusInternalServerError, "could not save ad")
		return
	}

	ad.ID = id
	writeJSON(w, http.StatusCreated, ad)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	ad, err := h.store.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		h.logger.Error("[api] Get %d failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "could not load ad")
		return
	}
	writeJSON(w, http.StatusOK, ad)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := h.store.Delete(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err != nil {
		h.logger.Error("[api] Delete %d failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "could not delete ad")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) filter(w http.ResponseWriter, r *http.Request) ([]*models.CanonicalAd, bool) {
	f, err := storage.ParseFilterIn(r.URL.Query(), h.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	ads, err := h.store.Filter(r.Context(), f)
	if err != nil {
		h.logger.Error("[api] Filter %s failed: %v", r.URL.RawQuery, err)
		writeError(w, http.StatusInternalServerError, "could not query ads")
		return nil, false
	}
	if ads == nil {
		ads = []*models.CanonicalAd{}
	}
	return ads, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
