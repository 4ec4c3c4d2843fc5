// snelsh is an interactive shell over .snel tables: open a file, inspect
// its schema, run filtered counts, group sums and row scans, and flip the
// output mode.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/peterh/liner"

	"github.com/sneldb/snel"
)

const helpText = `commands:
  open <path>                  open a .snel file
  schema                       show the open table's columns
  rows                         show the open table's row count
  count [<where>]              COUNT(*) with optional filter
  pcount [<where>]             COUNT(*) via the parallel path
  sum <key> <val> [<where>]    GROUP BY key, SUM(val)
  select <limit> [<where>]     print the first <limit> matching rows
  mode <0|1>                   set output mode (0 suppress, 1 emit)
  help                         this text
  exit                         quit`

type shell struct {
	tbl *snel.Table
}

func main() {
	file := flag.String("file", "", "open this .snel file on start")
	flag.Parse()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	histPath := filepath.Join(os.TempDir(), ".snelsh_history")
	if f, err := os.Open(histPath); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	sh := &shell{}
	if *file != "" {
		if err := sh.open(*file); err != nil {
			log.Fatalf("Failed to open %s: %v", *file, err)
		}
	}

	for {
		input, err := line.Prompt("snel> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Println()
				return
			}
			log.Fatalf("Prompt failed: %v", err)
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if input == "exit" || input == "quit" {
			return
		}
		if err := sh.dispatch(input); err != nil {
			fmt.Printf("error: %v\n", err)
		}
	}
}

func (s *shell) open(path string) error {
	if s.tbl != nil {
		_ = s.tbl.Close()
		s.tbl = nil
	}
	tbl, err := snel.Open(path)
	if err != nil {
		return err
	}
	s.tbl = tbl
	fmt.Printf("opened %s (%s rows)\n", path, humanize.Comma(int64(tbl.NumRows())))
	return nil
}

func (s *shell) need() (*snel.Table, error) {
	if s.tbl == nil {
		return nil, fmt.Errorf("no table open (use: open <path>)")
	}
	return s.tbl, nil
}

func (s *shell) dispatch(input string) error {
	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch cmd {
	case "help":
		fmt.Println(helpText)
		return nil

	case "open":
		if rest == "" {
			return fmt.Errorf("usage: open <path>")
		}
		return s.open(rest)

	case "schema":
		tbl, err := s.need()
		if err != nil {
			return err
		}
		for i, c := range tbl.Schema() {
			null := "NOT NULL"
			if c.Nullable {
				null = "NULL"
			}
			fmt.Printf("%d  %s  %s  %s\n", i, c.Name, c.Type, null)
		}
		return nil

	case "rows":
		tbl, err := s.need()
		if err != nil {
			return err
		}
		fmt.Println(humanize.Comma(int64(tbl.NumRows())))
		return nil

	case "count":
		tbl, err := s.need()
		if err != nil {
			return err
		}
		n, err := tbl.Count(rest)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil

	case "pcount":
		tbl, err := s.need()
		if err != nil {
			return err
		}
		n, err := tbl.CountParallel(rest, 0, 0)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil

	case "sum":
		tbl, err := s.need()
		if err != nil {
			return err
		}
		fields := strings.Fields(rest)
		if len(fields) < 2 {
			return fmt.Errorf("usage: sum <key> <val> [<where>]")
		}
		where := strings.Join(fields[2:], " ")
		groups, err := tbl.GroupSum(where, fields[0], fields[1])
		if err != nil {
			return err
		}
		for _, g := range groups {
			key := "NULL"
			if !g.KeyNull {
				key = strconv.FormatInt(g.Key, 10)
			}
			fmt.Printf("%s\t%d\t(%d rows)\n", key, g.Sum, g.Rows)
		}
		return nil

	case "select":
		tbl, err := s.need()
		if err != nil {
			return err
		}
		fields := strings.Fields(rest)
		if len(fields) < 1 {
			return fmt.Errorf("usage: select <limit> [<where>]")
		}
		limit, err := strconv.Atoi(fields[0])
		if err != nil || limit < 0 {
			return fmt.Errorf("bad limit %q", fields[0])
		}
		where := strings.Join(fields[1:], " ")
		var printed int
		stop := errors.New("limit reached")
		err = tbl.Scan(where, func(rowid int64, row []snel.Value) error {
			if printed >= limit {
				return stop
			}
			cells := make([]string, len(row))
			for i, v := range row {
				if v.Null {
					cells[i] = "NULL"
				} else {
					cells[i] = strconv.FormatInt(v.Int, 10)
				}
			}
			fmt.Printf("%d\t%s\n", rowid, strings.Join(cells, "\t"))
			printed++
			return nil
		})
		if err != nil && !errors.Is(err, stop) {
			return err
		}
		return nil

	case "mode":
		mode, err := strconv.Atoi(rest)
		if err != nil {
			return fmt.Errorf("usage: mode <0|1>")
		}
		if err := snel.SetOutput(mode); err != nil {
			return err
		}
		fmt.Printf("output mode = %d\n", snel.OutputMode())
		return nil

	default:
		return fmt.Errorf("unknown command %q (try: help)", cmd)
	}
}
