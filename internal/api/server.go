// Package api exposes the simulator over HTTP: JSON endpoints for circuit
// output and run history, plus go-echarts HTML charts for quick visual
// inspection without a frontend.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/helioq-labs/varq/internal/device"
	"github.com/helioq-labs/varq/internal/monitoring"
	"github.com/helioq-labs/varq/internal/qnode"
	"github.com/helioq-labs/varq/internal/quantum"
	"github.com/helioq-labs/varq/internal/runstore"
	"github.com/helioq-labs/varq/internal/version"
)

// Server serves circuit output and stored run history. The store may be
// nil, in which case history endpoints return 404.
type Server struct {
	wires int
	store *runstore.Store
}

// NewServer builds a server for circuits of the given wire count.
func NewServer(wires int, store *runstore.Store) (*Server, error) {
	if wires < 1 || wires > quantum.MaxWires {
		return nil, fmt.Errorf("wire count must be between 1 and %d, got %d", quantum.MaxWires, wires)
	}
	return &Server{wires: wires, store: store}, nil
}

// ServeMux returns the route table.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/circuit/state", s.handleState)
	mux.HandleFunc("/api/circuit/probs", s.handleProbs)
	mux.HandleFunc("/api/circuit/sample", s.handleSample)
	mux.HandleFunc("/api/circuit/expval", s.handleExpVal)
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/runs/", s.handleRun)
	mux.HandleFunc("/charts/probs", s.handleProbsChart)
	mux.HandleFunc("/charts/loss", s.handleLossChart)
	return mux
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		monitoring.Logf("api: failed to encode response: %v", err)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"git_sha":    version.GitSHA,
		"build_time": version.BuildTime,
	})
}

// parseCircuit resolves the circuit, params, and layers query parameters
// into a circuit function. Supported circuits: "bell" (default) and
// "ansatz" (layered variational circuit; params is a comma-separated
// angle list).
func (s *Server) parseCircuit(r *http.Request) (qnode.CircuitFunc, []float64, error) {
	name := r.URL.Query().Get("circuit")
	if name == "" {
		name = "bell"
	}

	var params []float64
	if raw := r.URL.Query().Get("params"); raw != "" {
		for _, field := range strings.Split(raw, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("bad params value %q", field)
			}
			params = append(params, v)
		}
	}

	switch name {
	case "bell":
		return qnode.Bell(), params, nil
	case "ansatz":
		layers := 1
		if raw := r.URL.Query().Get("layers"); raw != "" {
			v, err := strconv.Atoi(raw)
			if err != nil || v < 1 {
				return nil, nil, fmt.Errorf("bad layers value %q", raw)
			}
			layers = v
		}
		return qnode.Ansatz(layers), params, nil
	default:
		return nil, nil, fmt.Errorf("unknown circuit %q (want bell or ansatz)", name)
	}
}

func (s *Server) buildQNode(r *http.Request, opts ...device.Option) (*qnode.QNode, []float64, error) {
	circuit, params, err := s.parseCircuit(r)
	if err != nil {
		return nil, nil, err
	}
	dev, err := device.New(s.wires, opts...)
	if err != nil {
		return nil, nil, err
	}
	qn, err := qnode.New("api", dev, circuit)
	if err != nil {
		return nil, nil, err
	}
	return qn, params, nil
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	qn, params, err := s.buildQNode(r)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	state, err := qn.State(params)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	type amp struct {
		Basis string  `json:"basis"`
		Re    float64 `json:"re"`
		Im    float64 `json:"im"`
	}
	amps := make([]amp, len(state.Amplitudes))
	for i, a := range state.Amplitudes {
		amps[i] = amp{
			Basis: fmt.Sprintf("%0*b", state.Wires, i),
			Re:    real(a),
			Im:    imag(a),
		}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"wires":      state.Wires,
		"amplitudes": amps,
		"ket":        state.FormatKet(1e-9),
	})
}

func (s *Server) handleProbs(w http.ResponseWriter, r *http.Request) {
	qn, params, err := s.buildQNode(r)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	probs, err := qn.Probs(params)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"wires": s.wires, "probs": probs})
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	shots := 100
	if raw := r.URL.Query().Get("shots"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 || v > 1_000_000 {
			s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("bad shots value %q", raw))
			return
		}
		shots = v
	}
	opts := []device.Option{device.WithShots(shots)}
	if raw := r.URL.Query().Get("seed"); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("bad seed value %q", raw))
			return
		}
		opts = append(opts, device.WithSeed(seed))
	}

	qn, params, err := s.buildQNode(r, opts...)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	samples, err := qn.Sample(params)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"shots": shots,
		"stats": device.Summarize(samples),
	})
}

func (s *Server) handleExpVal(w http.ResponseWriter, r *http.Request) {
	wire := 0
	if raw := r.URL.Query().Get("wire"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 || v >= s.wires {
			s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("bad wire value %q", raw))
			return
		}
		wire = v
	}

	var obs quantum.Observable
	switch basis := r.URL.Query().Get("basis"); basis {
	case "", "Z":
		obs = quantum.Z(wire)
	case "X":
		obs = quantum.X(wire)
	case "Y":
		obs = quantum.Y(wire)
	default:
		s.writeJSONError(w, http.StatusBadRequest, fmt.Sprintf("unknown basis %q (want X, Y, or Z)", basis))
		return
	}

	qn, params, err := s.buildQNode(r)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	ev, err := qn.ExpVal(obs, params)
	if err != nil {
		s.writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"observable": obs.Name,
		"value":      ev,
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeJSONError(w, http.StatusNotFound, "no run store configured")
		return
	}
	runs, err := s.store.ListRuns()
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeJSONError(w, http.StatusNotFound, "no run store configured")
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	if id == "" {
		s.writeJSONError(w, http.StatusBadRequest, "missing run id")
		return
	}
	run, err := s.store.GetRun(id)
	if err != nil {
		s.writeJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	hist, err := s.store.GetHistory(id)
	if err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"run": run, "history": hist})
}
