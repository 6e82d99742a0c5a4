package uavledger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

// Server exposes the flight listing and verification API:
//
//	GET /healthz
//	GET /flights
//	GET /flights/{flightID}            version listing for one flight
//	GET /flights/{flightID}?verify=1   listing plus reconciliation report
type Server struct {
	store    ObjectStore
	registry Registry
	verifier *Verifier
	router   *mux.Router
	log      zerolog.Logger
}

// NewServer wires the API to its collaborators.
func NewServer(store ObjectStore, registry Registry, log zerolog.Logger) *Server {
	s := &Server{
		store:    store,
		registry: registry,
		verifier: NewVerifier(store, registry, log),
		log:      log,
	}

	r := mux.NewRouter()
	r.Use(mux.MiddlewareFunc(hlog.NewHandler(log)))
	r.Use(mux.MiddlewareFunc(hlog.AccessHandler(func(req *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(req).Info().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})))
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/flights", s.handleFlights).Methods(http.MethodGet)
	r.HandleFunc("/flights/{flightID}", s.handleFlightVersions).Methods(http.MethodGet)
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleFlights(w http.ResponseWriter, r *http.Request) {
	flights, err := s.store.ListFlights(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if flights == nil {
		flights = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"flights": flights})
}

// flightVersionsResponse mirrors the original versions page context: the
// version list newest first, plus the verification report when requested.
type flightVersionsResponse struct {
	FlightID          string        `json:"flight_id"`
	VersionCount      int           `json:"version_count"`
	LatestVersionTime *time.Time    `json:"latest_version_time,omitempty"`
	Versions          []VersionInfo `json:"versions"`
	VerifySummary     *Verdict      `json:"verify_summary,omitempty"`
	VerifyRows        []Row         `json:"verify_rows,omitempty"`
}

func (s *Server) handleFlightVersions(w http.ResponseWriter, r *http.Request) {
	flightID := mux.Vars(r)["flightID"]

	versions, err := s.store.ListVersions(r.Context(), flightID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// newest first for display
	resp := flightVersionsResponse{
		FlightID:     flightID,
		VersionCount: len(versions),
		Versions:     make([]VersionInfo, 0, len(versions)),
	}
	for i := len(versions) - 1; i >= 0; i-- {
		resp.Versions = append(resp.Versions, versions[i])
	}
	if len(resp.Versions) > 0 {
		t := resp.Versions[0].ObservedAt
		resp.LatestVersionTime = &t
	}

	if r.URL.Query().Get("verify") == "1" {
		summary, rows := s.verifier.VerifyFlight(r.Context(), flightID)
		resp.VerifySummary = &summary
		resp.VerifyRows = rows
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) || errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusBadGateway
	}
	s.log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
