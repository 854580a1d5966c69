package api

import (
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/helioq-labs/varq/internal/monitoring"
	"github.com/helioq-labs/varq/internal/runstore"
	"github.com/helioq-labs/varq/internal/train"
)

func init() {
	monitoring.SetLogger(nil)
}

func newTestServer(t *testing.T, store *runstore.Store) *httptest.Server {
	t.Helper()
	s, err := NewServer(2, store)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	ts := httptest.NewServer(s.ServeMux())
	t.Cleanup(ts.Close)
	return ts
}

func getJSON(t *testing.T, url string, out interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Decode %s failed: %v", url, err)
		}
	}
	return resp
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, nil)
	var body map[string]string
	resp := getJSON(t, ts.URL+"/healthz", &body)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Status = %d, want 200", resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Errorf("Body = %v", body)
	}
}

func TestStateEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	var body struct {
		Wires      int `json:"wires"`
		Amplitudes []struct {
			Basis string  `json:"basis"`
			Re    float64 `json:"re"`
			Im    float64 `json:"im"`
		} `json:"amplitudes"`
	}
	resp := getJSON(t, ts.URL+"/api/circuit/state", &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want 200", resp.StatusCode)
	}
	if body.Wires != 2 || len(body.Amplitudes) != 4 {
		t.Fatalf("Unexpected body: %+v", body)
	}
	inv := 1 / math.Sqrt2
	if math.Abs(body.Amplitudes[0].Re-inv) > 1e-9 || math.Abs(body.Amplitudes[3].Re-inv) > 1e-9 {
		t.Errorf("Bell amplitudes wrong: %+v", body.Amplitudes)
	}
}

func TestProbsEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	var body struct {
		Probs []float64 `json:"probs"`
	}
	getJSON(t, ts.URL+"/api/circuit/probs", &body)
	if len(body.Probs) != 4 {
		t.Fatalf("Expected 4 probabilities, got %d", len(body.Probs))
	}
	if math.Abs(body.Probs[0]-0.5) > 1e-9 || math.Abs(body.Probs[3]-0.5) > 1e-9 {
		t.Errorf("Bell probs wrong: %v", body.Probs)
	}
}

func TestProbsAnsatzWithParams(t *testing.T) {
	ts := newTestServer(t, nil)
	var body struct {
		Probs []float64 `json:"probs"`
	}
	resp := getJSON(t, ts.URL+"/api/circuit/probs?circuit=ansatz&params=0.1,0.9,-0.3,0.4,0.2,0.8", &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want 200", resp.StatusCode)
	}
	sum := 0.0
	for _, p := range body.Probs {
		sum += p
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("Probabilities sum to %f, want 1", sum)
	}
}

func TestSampleEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	var body struct {
		Shots int `json:"shots"`
		Stats struct {
			Counts map[string]int `json:"counts"`
		} `json:"stats"`
	}
	resp := getJSON(t, ts.URL+"/api/circuit/sample?shots=200&seed=5", &body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want 200", resp.StatusCode)
	}
	if body.Shots != 200 {
		t.Errorf("Shots = %d, want 200", body.Shots)
	}
	total := 0
	for outcome, count := range body.Stats.Counts {
		if outcome != "0" && outcome != "3" {
			t.Errorf("Impossible Bell outcome %s", outcome)
		}
		total += count
	}
	if total != 200 {
		t.Errorf("Counts sum to %d, want 200", total)
	}
}

func TestExpValEndpoint(t *testing.T) {
	ts := newTestServer(t, nil)
	var body struct {
		Observable string  `json:"observable"`
		Value      float64 `json:"value"`
	}
	getJSON(t, ts.URL+"/api/circuit/expval?wire=0&basis=Z", &body)
	if body.Observable != "Z(0)" {
		t.Errorf("Observable = %q, want Z(0)", body.Observable)
	}
	if math.Abs(body.Value) > 1e-9 {
		t.Errorf("<Z(0)> on Bell = %f, want 0", body.Value)
	}
}

func TestBadRequests(t *testing.T) {
	ts := newTestServer(t, nil)
	cases := []string{
		"/api/circuit/probs?circuit=bogus",
		"/api/circuit/probs?params=notanumber",
		"/api/circuit/sample?shots=-5",
		"/api/circuit/expval?wire=9",
		"/api/circuit/expval?basis=Q",
	}
	for _, path := range cases {
		resp := getJSON(t, ts.URL+path, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("GET %s status = %d, want 400", path, resp.StatusCode)
		}
	}
}

func TestRunsWithoutStore(t *testing.T) {
	ts := newTestServer(t, nil)
	resp := getJSON(t, ts.URL+"/api/runs", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Status = %d, want 404 when no store configured", resp.StatusCode)
	}
}

func TestRunsEndpoints(t *testing.T) {
	store, err := runstore.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open store failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	hist := train.History{
		Steps: []train.StepRecord{
			{Step: 0, Loss: 1.0, Params: []float64{0.1}},
			{Step: 1, Loss: 0.4, Params: []float64{0.2}},
		},
		FinalLoss: 0.4,
		Accuracy:  1.0,
	}
	id, err := store.SaveRun(runstore.Run{Circuit: "bell", Optimizer: "gd", LearningRate: 0.4, Steps: 1}, hist)
	if err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	ts := newTestServer(t, store)

	var list struct {
		Runs []runstore.Run `json:"runs"`
	}
	getJSON(t, ts.URL+"/api/runs", &list)
	if len(list.Runs) != 1 {
		t.Fatalf("Expected 1 run, got %d", len(list.Runs))
	}

	var single struct {
		Run     runstore.Run  `json:"run"`
		History train.History `json:"history"`
	}
	resp := getJSON(t, ts.URL+"/api/runs/"+id, &single)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want 200", resp.StatusCode)
	}
	if single.Run.ID != id || len(single.History.Steps) != 2 {
		t.Errorf("Unexpected run response: %+v", single)
	}
}

func TestProbsChartRendersHTML(t *testing.T) {
	ts := newTestServer(t, nil)
	resp, err := http.Get(ts.URL + "/charts/probs")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
}

func TestLossChartRequiresRun(t *testing.T) {
	store, err := runstore.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open store failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	ts := newTestServer(t, store)

	resp := getJSON(t, ts.URL+"/charts/loss", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400 without run param", resp.StatusCode)
	}
	resp = getJSON(t, ts.URL+"/charts/loss?run=missing", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Status = %d, want 404 for unknown run", resp.StatusCode)
	}
}
