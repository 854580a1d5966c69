package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/helioq-labs/varq/internal/api"
	"github.com/helioq-labs/varq/internal/config"
	"github.com/helioq-labs/varq/internal/dataset"
	"github.com/helioq-labs/varq/internal/device"
	"github.com/helioq-labs/varq/internal/monitoring"
	"github.com/helioq-labs/varq/internal/plotting"
	"github.com/helioq-labs/varq/internal/qnode"
	"github.com/helioq-labs/varq/internal/quantum"
	"github.com/helioq-labs/varq/internal/runstore"
	"github.com/helioq-labs/varq/internal/train"
)

// loadConfig resolves the optional -config flag, falling back to built-in
// defaults when no file is given.
func loadConfig(path string) (*config.TrainingConfig, error) {
	if path == "" {
		return config.EmptyTrainingConfig(), nil
	}
	return config.LoadTrainingConfig(path)
}

func bellQNode(wires int, opts ...device.Option) (*qnode.QNode, error) {
	dev, err := device.New(wires, opts...)
	if err != nil {
		return nil, err
	}
	return qnode.New("bell", dev, qnode.Bell())
}

func runState(args []string) error {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to JSON config file")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	qn, err := bellQNode(cfg.GetWires())
	if err != nil {
		return err
	}
	state, err := qn.State(nil)
	if err != nil {
		return err
	}

	fmt.Printf("circuit: H(0) CNOT(0,1) on %d wires\n", state.Wires)
	fmt.Printf("state:   %s\n", state.FormatKet(1e-9))
	fmt.Printf("norm:    %.6f\n", state.Norm())
	return nil
}

func runProbs(args []string) error {
	fs := flag.NewFlagSet("probs", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to JSON config file")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	qn, err := bellQNode(cfg.GetWires())
	if err != nil {
		return err
	}
	probs, err := qn.Probs(nil)
	if err != nil {
		return err
	}

	wires := cfg.GetWires()
	for i, p := range probs {
		fmt.Printf("|%0*b>  %.6f\n", wires, i, p)
	}
	return nil
}

func runSample(args []string) error {
	fs := flag.NewFlagSet("sample", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to JSON config file")
	shots := fs.Int("shots", 1000, "Number of samples to draw")
	seed := fs.Int64("seed", 0, "RNG seed (0 uses the config/default seed)")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *seed == 0 {
		*seed = cfg.GetSeed()
	}

	qn, err := bellQNode(cfg.GetWires(), device.WithShots(*shots), device.WithSeed(*seed))
	if err != nil {
		return err
	}
	samples, err := qn.Sample(nil)
	if err != nil {
		return err
	}

	stats := device.Summarize(samples)
	wires := cfg.GetWires()
	outcomes := make([]int, 0, len(stats.Counts))
	for outcome := range stats.Counts {
		outcomes = append(outcomes, outcome)
	}
	sort.Ints(outcomes)
	fmt.Printf("shots: %d  seed: %d\n", *shots, *seed)
	for _, outcome := range outcomes {
		count := stats.Counts[outcome]
		fmt.Printf("|%0*b>  %6d  (%.4f)\n", wires, outcome, count, float64(count)/float64(*shots))
	}
	return nil
}

func runExpVal(args []string) error {
	fs := flag.NewFlagSet("expval", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to JSON config file")
	wire := fs.Int("wire", 0, "Wire to measure")
	basis := fs.String("basis", "Z", "Measurement basis: X, Y, or Z")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}

	var obs quantum.Observable
	switch *basis {
	case "Z":
		obs = quantum.Z(*wire)
	case "X":
		obs = quantum.X(*wire)
	case "Y":
		obs = quantum.Y(*wire)
	default:
		return fmt.Errorf("unknown basis %q (want X, Y, or Z)", *basis)
	}

	qn, err := bellQNode(cfg.GetWires())
	if err != nil {
		return err
	}
	ev, err := qn.ExpVal(obs, nil)
	if err != nil {
		return err
	}
	fmt.Printf("<%s> = %.6f\n", obs.Name, ev)

	// The correlator is the signature of the Bell pair: individual Z
	// expectations vanish while ZZ stays at 1.
	if cfg.GetWires() >= 2 && *basis == "Z" {
		zz, err := qn.ExpVal(quantum.TensorZ(0, 1), nil)
		if err != nil {
			return err
		}
		fmt.Printf("<Z(0)@Z(1)> = %.6f\n", zz)
	}
	return nil
}

func runTrain(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to JSON config file")
	datasetPath := fs.String("dataset", "", "Path to JSON dataset (default: built-in set)")
	steps := fs.Int("steps", 0, "Optimization steps (0 uses config/default)")
	lr := fs.Float64("lr", 0, "Learning rate (0 uses config/default)")
	optName := fs.String("optimizer", "", "Optimizer: gradient-descent or adam (default from config)")
	dbPath := fs.String("db", "", "SQLite path for run history (default from config; empty disables)")
	plotsDir := fs.String("plots", "", "Directory for PNG artifacts (default from config)")
	quiet := fs.Bool("quiet", false, "Suppress per-step logging")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *steps == 0 {
		*steps = cfg.GetSteps()
	}
	if *lr == 0 {
		*lr = cfg.GetLearningRate()
	}
	if *optName == "" {
		*optName = cfg.GetOptimizer()
	}
	if *dbPath == "" {
		*dbPath = cfg.GetDBPath()
	}
	if *plotsDir == "" {
		*plotsDir = cfg.GetOutputDir()
	}
	if *quiet {
		monitoring.SetLogger(nil)
	}

	ds := dataset.Default()
	if *datasetPath != "" {
		ds, err = dataset.Load(*datasetPath)
		if err != nil {
			return err
		}
	}

	devOpts := []device.Option{device.WithSeed(cfg.GetSeed())}
	if shots := cfg.GetShots(); shots > 0 {
		devOpts = append(devOpts, device.WithShots(shots))
	}
	dev, err := device.New(cfg.GetWires(), devOpts...)
	if err != nil {
		return err
	}
	model, err := train.NewClassifier(dev, cfg.GetLayers())
	if err != nil {
		return err
	}
	opt, err := train.NewOptimizer(*optName, *lr)
	if err != nil {
		return err
	}

	// Small fixed offsets break the symmetry of the all-zeros start,
	// which is a stationary point of the ansatz.
	initial := make([]float64, model.ParamCount())
	for i := range initial {
		initial[i] = 0.1 * float64(i%3+1)
	}

	start := time.Now()
	hist, err := train.Run(context.Background(), model, ds, opt, initial, *steps)
	if err != nil {
		return err
	}
	improvement, _ := hist.LossImprovement()

	fmt.Printf("dataset:     %s (%d samples)\n", ds.Name, len(ds.Samples))
	fmt.Printf("optimizer:   %s  lr=%g  steps=%d\n", opt.Name(), *lr, *steps)
	fmt.Printf("final loss:  %.6f (improved by %.6f)\n", hist.FinalLoss, improvement)
	fmt.Printf("accuracy:    %.2f\n", hist.Accuracy)
	fmt.Printf("elapsed:     %s\n", time.Since(start).Round(time.Millisecond))

	if *dbPath != "" {
		store, err := runstore.Open(*dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
		id, err := store.SaveRun(runstore.Run{
			Circuit:      "embedded-ansatz",
			Optimizer:    opt.Name(),
			LearningRate: *lr,
			Steps:        *steps,
			Shots:        cfg.GetShots(),
			Seed:         cfg.GetSeed(),
		}, hist)
		if err != nil {
			return err
		}
		fmt.Printf("run id:      %s\n", id)
	}

	if *plotsDir != "" {
		outDir, err := plotting.MakeOutputDir(*plotsDir, "train")
		if err != nil {
			return err
		}
		lossFile := filepath.Join(outDir, "loss.png")
		if err := plotting.LossCurve(hist.Losses(), "Variational classifier training", lossFile); err != nil {
			return err
		}
		final := hist.Steps[len(hist.Steps)-1].Params
		probs, err := probsForTrainedModel(dev, cfg.GetLayers(), final)
		if err != nil {
			return err
		}
		probsFile := filepath.Join(outDir, "probs.png")
		if err := plotting.ProbBars(probs, cfg.GetWires(), "Trained circuit at x=0", probsFile); err != nil {
			return err
		}
		fmt.Printf("plots:       %s\n", outDir)
	}
	return nil
}

// probsForTrainedModel evaluates the trained ansatz at input 0 and
// returns its basis-state distribution for plotting.
func probsForTrainedModel(dev *device.Simulator, layers int, params []float64) ([]float64, error) {
	qn, err := qnode.New("trained", dev, qnode.Embedded(0, qnode.Ansatz(layers)))
	if err != nil {
		return nil, err
	}
	return qn.Probs(params)
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to JSON config file")
	listen := fs.String("listen", "", "Listen address (default from config)")
	dbPath := fs.String("db", "", "SQLite path for run history (default from config)")
	fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *listen == "" {
		*listen = cfg.GetListen()
	}
	if *dbPath == "" {
		*dbPath = cfg.GetDBPath()
	}

	var store *runstore.Store
	if *dbPath != "" {
		store, err = runstore.Open(*dbPath)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	server, err := api.NewServer(cfg.GetWires(), store)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              *listen,
		Handler:           server.ServeMux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		monitoring.Logf("serve: listening on %s", *listen)
		errCh <- httpServer.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
	case sig := <-sigCh:
		monitoring.Logf("serve: received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
	}
	return nil
}
