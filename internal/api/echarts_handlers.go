package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// handleProbsChart renders the basis-state probability distribution of a
// circuit as an HTML bar chart using go-echarts. Query params are the
// same as /api/circuit/probs.
func (s *Server) handleProbsChart(w http.ResponseWriter, r *http.Request) {
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

	labels := make([]string, len(probs))
	data := make([]opts.BarData, len(probs))
	for i, p := range probs {
		labels[i] = fmt.Sprintf("|%0*b>", s.wires, i)
		data[i] = opts.BarData{Value: p}
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Basis Probabilities", Theme: "dark", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{Title: "Basis-state probabilities", Subtitle: fmt.Sprintf("wires=%d", s.wires)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 1, Name: "p"}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries("probability", data)

	var buf bytes.Buffer
	if err := bar.Render(&buf); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// handleLossChart renders a stored run's loss curve as an HTML line
// chart. Requires a run store and a run query parameter.
func (s *Server) handleLossChart(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeJSONError(w, http.StatusNotFound, "no run store configured")
		return
	}
	id := r.URL.Query().Get("run")
	if id == "" {
		s.writeJSONError(w, http.StatusBadRequest, "missing run query parameter")
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

	steps := make([]string, len(hist.Steps))
	data := make([]opts.LineData, len(hist.Steps))
	for i, rec := range hist.Steps {
		steps[i] = fmt.Sprintf("%d", rec.Step)
		data[i] = opts.LineData{Value: rec.Loss}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Training Loss", Theme: "dark", Width: "900px", Height: "500px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Training loss",
			Subtitle: fmt.Sprintf("run=%s optimizer=%s lr=%g", run.ID, run.Optimizer, run.LearningRate),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: "MSE"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "step"}),
	)
	line.SetXAxis(steps)
	line.AddSeries("loss", data, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	var buf bytes.Buffer
	if err := line.Render(&buf); err != nil {
		s.writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
