package sim

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"petfeeder/protocol"
)

// Server exposes the simulator over HTTP
type Server struct {
	sim     *Simulator
	metrics *Metrics
}

// NewServer creates the HTTP surface
func NewServer(sim *Simulator, metrics *Metrics) *Server {
	return &Server{sim: sim, metrics: metrics}
}

// Router returns the request router
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/healthz", s.health).Methods("GET")
	r.HandleFunc("/status", s.status).Methods("GET")
	r.HandleFunc("/notices", s.notices).Methods("GET")
	r.HandleFunc("/command", s.command).Methods("POST")
	r.HandleFunc("/advance", s.advance).Methods("POST")
	r.HandleFunc("/pet", s.pet).Methods("POST")
	r.Handle("/metrics", s.observed(s.metrics.Handler())).Methods("GET")

	return r
}

type commandRequest struct {
	Line string `json:"line"`
}

type commandResponse struct {
	Reply []string `json:"reply"`
}

type advanceRequest struct {
	Duration string `json:"duration"`
}

type petRequest struct {
	Present *bool `json:"present"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) status(w http.ResponseWriter, _ *http.Request) {
	snap := s.sim.Status()
	s.metrics.Observe(snap)
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) notices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, commandResponse{Reply: s.sim.Notices()})
}

func (s *Server) command(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid body: " + err.Error()})
		return
	}
	reply := s.sim.Command(req.Line)
	s.metrics.CountCommand(commandName(req.Line, reply))
	writeJSON(w, http.StatusOK, commandResponse{Reply: reply})
}

func (s *Server) advance(w http.ResponseWriter, r *http.Request) {
	var req advanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid body: " + err.Error()})
		return
	}
	d, err := time.ParseDuration(req.Duration)
	if err != nil || d <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid duration"})
		return
	}
	s.sim.Advance(d)
	s.status(w, r)
}

func (s *Server) pet(w http.ResponseWriter, r *http.Request) {
	var req petRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid body: " + err.Error()})
		return
	}
	s.sim.SetPet(req.Present)
	w.WriteHeader(http.StatusNoContent)
}

// observed refreshes the gauges before h runs
func (s *Server) observed(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.metrics.Observe(s.sim.Status())
		h.ServeHTTP(w, r)
	})
}

// commandName labels a command for metrics without letting arbitrary
// input create label values
func commandName(line string, reply []string) string {
	if len(reply) == 1 && reply[0] == "Invalid command" {
		return "invalid"
	}
	f, err := protocol.ParseFields(line)
	if err != nil || f.Name() == "" {
		return "invalid"
	}
	return f.Name()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
