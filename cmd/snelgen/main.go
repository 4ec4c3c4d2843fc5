// snelgen writes a .snel table file filled with random data: two nullable
// integer columns whose value ranges and NULL density match the workload
// the format was designed around. NULL slots still carry the MIN-value
// sentinel in the data section, but only the bitmap marks them NULL.
package main

import (
	"flag"
	"log"
	"log/slog"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/sneldb/snel/internal"
	"github.com/sneldb/snel/internal/format"
)

func main() {
	outDir := flag.String("out", "", "output directory (default from config)")
	rows := flag.Int("rows", 0, "rows to generate (default from config)")
	nullProb := flag.Float64("null-prob", -1, "NULL probability per nullable value (default from config)")
	seed := flag.Uint64("seed", 0, "random seed (0 = nondeterministic)")
	configPath := flag.String("config", "", "optional YAML config file")
	flag.Parse()

	cfg := internal.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = internal.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *outDir != "" {
		cfg.DataDir = *outDir
	}
	if *rows > 0 {
		cfg.Generate.Rows = *rows
	}
	if *nullProb >= 0 {
		cfg.Generate.NullProbability = *nullProb
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	path := filepath.Join(cfg.DataDir, "table1.snel")
	if _, err := os.Stat(path); err == nil {
		slog.Info("snelgen: file already exists, skipping generation", "path", path)
		return
	}

	var rng *rand.Rand
	if *seed != 0 {
		rng = rand.New(rand.NewPCG(*seed, *seed))
	} else {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	w, err := format.NewWriter([]format.Column{
		{Name: "int32col1", Type: format.Int32, Nullable: true},
		{Name: "int64col1", Type: format.Int64, Nullable: true},
	})
	if err != nil {
		log.Fatalf("Failed to create writer: %v", err)
	}

	slog.Info("snelgen: generating",
		"path", path,
		"rows", humanize.Comma(int64(cfg.Generate.Rows)),
		"null_probability", cfg.Generate.NullProbability)

	vals := make([]int64, 2)
	nulls := make([]bool, 2)
	for i := 0; i < cfg.Generate.Rows; i++ {
		if rng.Float64() <= cfg.Generate.NullProbability {
			vals[0], nulls[0] = math.MinInt32, true
		} else {
			vals[0], nulls[0] = int64(rng.Int32N(100)), false
		}
		if rng.Float64() <= cfg.Generate.NullProbability {
			vals[1], nulls[1] = math.MinInt64, true
		} else {
			vals[1], nulls[1] = rng.Int64N(10000), false
		}
		if err := w.Append(vals, nulls); err != nil {
			log.Fatalf("Failed to append row %d: %v", i, err)
		}
	}

	if err := w.WriteFile(path); err != nil {
		log.Fatalf("Failed to write %s: %v", path, err)
	}

	fi, err := os.Stat(path)
	if err != nil {
		log.Fatalf("Failed to stat %s: %v", path, err)
	}
	slog.Info("snelgen: done",
		"path", path,
		"rows", humanize.Comma(int64(w.Rows())),
		"size", humanize.Bytes(uint64(fi.Size())))
}
