// snelbench times the reference queries over a .snel file: the filtered
// COUNT through the scalar cursor path, the same COUNT through the chunked
// parallel path, and the GROUP BY / SUM pushdown. It then re-times the
// COUNT under both output modes to separate scan cost from value
// materialization cost; the counts must match.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sneldb/snel"
	"github.com/sneldb/snel/internal"
)

const filter = "int32col1 IS NOT NULL AND int64col1 > 100"

func benchmark[R any](f func() (R, error)) (R, error) {
	tic := time.Now()
	res, err := f()
	fmt.Printf("Elapsed: %d ms.\n", time.Since(tic).Milliseconds())
	return res, err
}

func main() {
	file := flag.String("file", "", "path to the .snel file (default <data_dir>/table1.snel)")
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
	path := *file
	if path == "" {
		path = filepath.Join(cfg.DataDir, "table1.snel")
	}

	tbl, err := snel.Open(path)
	if err != nil {
		log.Fatalf("Failed to open table: %v", err)
	}
	defer tbl.Close()

	slog.Info("snelbench: table open",
		"path", path, "rows", humanize.Comma(int64(tbl.NumRows())))

	// Warm up the buffers with one non-null count per column.
	for _, col := range []string{"int32col1", "int64col1"} {
		n, err := tbl.Count(col + " IS NOT NULL")
		if err != nil {
			log.Fatalf("Warmup failed: %v", err)
		}
		slog.Info("snelbench: warmup", "column", col, "non_null", humanize.Comma(n))
	}

	fmt.Println("Query 1: COUNT(*) WHERE " + filter + " (cursor path)")
	cnt, err := benchmark(func() (int64, error) { return tbl.Count(filter) })
	if err != nil {
		log.Fatalf("Query 1 failed: %v", err)
	}
	fmt.Printf("Result: %d\n", cnt)

	fmt.Println("Query 2: COUNT(*) WHERE " + filter + " (parallel path)")
	pcnt, err := benchmark(func() (int64, error) {
		return tbl.CountParallel(filter, cfg.Bench.ChunkSize, cfg.Bench.Workers)
	})
	if err != nil {
		log.Fatalf("Query 2 failed: %v", err)
	}
	fmt.Printf("Result: %d\n", pcnt)
	if pcnt != cnt {
		log.Fatalf("Count mismatch between paths: cursor=%d parallel=%d", cnt, pcnt)
	}

	fmt.Println("Query 3: int32col1, SUM(int64col1) WHERE " + filter)
	groups, err := benchmark(func() ([]snel.Group, error) {
		return tbl.GroupSum(filter, "int32col1", "int64col1")
	})
	if err != nil {
		log.Fatalf("Query 3 failed: %v", err)
	}
	fmt.Printf("Result: %d groups\n", len(groups))

	// The same COUNT under both output modes: only timing may differ.
	for _, mode := range []int{0, 1} {
		if err := snel.SetOutput(mode); err != nil {
			log.Fatalf("SNEL_SET_OUTPUT(%d) failed: %v", mode, err)
		}
		fmt.Printf("COUNT with output mode %d\n", mode)
		n, err := benchmark(func() (int64, error) { return tbl.Count(filter) })
		if err != nil {
			log.Fatalf("COUNT under mode %d failed: %v", mode, err)
		}
		fmt.Printf("Result: %d\n", n)
		if n != cnt {
			log.Fatalf("Output mode changed the count: want %d, got %d", cnt, n)
		}
	}
	if err := snel.SetOutput(1); err != nil {
		log.Fatalf("Failed to restore EMIT mode: %v", err)
	}
}
