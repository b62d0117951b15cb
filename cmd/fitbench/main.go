// fitbench is a CLI utility that exercises the mesh fitting calculators on
// synthetic geometry and reports row statistics and timings.
package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"github.com/Faultbox/meshfit/internal/config"
	"github.com/Faultbox/meshfit/internal/logger"
	"github.com/Faultbox/meshfit/pkg/fit"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := "help"
	if args := flag.Args(); len(args) > 0 {
		command = args[0]
	}

	switch command {
	case "fit":
		cmdFit(cfg)
	case "rig":
		cmdRig(cfg)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`fitbench - mesh fitting benchmark utility

Usage:
  fitbench [flags] <command>

Commands:
  fit   Fit synthetic shell assets onto a sphere character and report stats
  rig   Generate rig weights for a joint chain and verify coverage

Flags:
  -config path    Config file (default: ./fitbench.yaml)
  -debug          Debug logging with per-pass timings
  -radius r       Surface projection search radius
  -seeds n        Nearest-vertex seed count
  -rings n        Character sphere rings
  -segments n     Character sphere segments
  -assets n       Number of shell assets to fit

Examples:
  fitbench -debug fit
  fitbench -rings 96 -segments 128 rig`)
}

func params(cfg *config.Config) fit.Params {
	p := fit.DefaultParams()
	p.SearchRadius = cfg.Fit.SearchRadius
	p.SeedCount = cfg.Fit.SeedCount
	p.RigSeedCount = cfg.Fit.RigSeedCount
	p.Cutoff = cfg.Fit.Cutoff
	return p
}

func cmdFit(cfg *config.Config) {
	char, err := sphereGeometry(cfg.Bench.Rings, cfg.Bench.Segments, 1.0)
	if err != nil {
		logger.Fatal("building character mesh", zap.Error(err))
	}

	calc, err := fit.NewFitCalculator(char,
		fit.WithLogger(logger.Log),
		fit.WithParams(params(cfg)))
	if err != nil {
		logger.Fatal("creating calculator", zap.Error(err))
	}

	logger.Info("character mesh",
		zap.Int("verts", char.VertexCount()),
		zap.Int("faces", len(char.Faces())))

	for i := 0; i < cfg.Bench.Assets; i++ {
		// Coarser shells floating just above the character surface.
		rings := cfg.Bench.Rings/2 + i
		asset, err := sphereGeometry(rings, cfg.Bench.Segments/2+i, 1.0+cfg.Bench.Shell)
		if err != nil {
			logger.Fatal("building asset mesh", zap.Error(err))
		}
		a := &fit.Asset{
			Name: fmt.Sprintf("shell-%d", i),
			Key:  fit.NewMeshKey(),
			Geom: asset,
		}
		weights, err := calc.GetWeights(a)
		if err != nil {
			logger.Fatal("fitting asset", zap.String("asset", a.Name), zap.Error(err))
		}
		reportWeights(a.Name, weights, true)
	}
}

func cmdRig(cfg *config.Config) {
	char, err := sphereGeometry(cfg.Bench.Rings, cfg.Bench.Segments, 1.0)
	if err != nil {
		logger.Fatal("building character mesh", zap.Error(err))
	}

	rigger, err := fit.NewRiggerFitCalculator(char, nil,
		fit.WithLogger(logger.Log),
		fit.WithParams(params(cfg)))
	if err != nil {
		logger.Fatal("creating rigger", zap.Error(err))
	}

	joints := jointChain(16)
	weights, err := rigger.WeightsForJoints(joints)
	if err != nil {
		logger.Fatal("computing rig weights", zap.Error(err))
	}
	reportWeights("joint-chain", weights, false)

	// Every character vertex must influence at least one joint.
	covered := make(map[int]bool)
	for i := 0; i < weights.Rows(); i++ {
		idx, _ := weights.Row(i)
		for _, vi := range idx {
			covered[vi] = true
		}
	}
	logger.Info("rig coverage",
		zap.Int("character_verts", char.VertexCount()),
		zap.Int("covered", len(covered)))
	if len(covered) < char.VertexCount() {
		logger.Warn("uncovered character vertices",
			zap.Int("missing", char.VertexCount()-len(covered)))
	}
}

func reportWeights(name string, w *fit.SparseWeights, normalized bool) {
	entries := len(w.Index)
	minSum, maxSum := 0.0, 0.0
	if w.Rows() > 0 {
		_, row := w.Row(0)
		minSum = floats.Sum(row)
		maxSum = minSum
	}
	for i := 1; i < w.Rows(); i++ {
		_, row := w.Row(i)
		s := floats.Sum(row)
		if s < minSum {
			minSum = s
		}
		if s > maxSum {
			maxSum = s
		}
	}
	logger.Info("weights computed",
		zap.String("asset", name),
		zap.Int("rows", w.Rows()),
		zap.Int("entries", entries),
		zap.Float64("avg_per_row", float64(entries)/float64(max(w.Rows(), 1))),
		zap.Bool("normalized", normalized),
		zap.Float64("min_row_sum", minSum),
		zap.Float64("max_row_sum", maxSum))
}
