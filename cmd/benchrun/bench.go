package main

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"

	"github.com/Hakuto4838/TowerList.git/datastream"
	"github.com/Hakuto4838/TowerList.git/skiplist"
	"github.com/Hakuto4838/TowerList.git/skiplist/analyTool"
	"github.com/Hakuto4838/TowerList.git/skiplist/baseline"
	"github.com/Hakuto4838/TowerList.git/skiplist/towersl"
)

var allImpls = []string{"tower", "huandu", "btree"}

type benchStats struct {
	avgMs    float64
	minMs    float64
	maxMs    float64
	avgSteps float64 // 只有 Analyable 的實作有，否則為 NaN
}

func newImpl(impl string, cfg runConfig, run int) (skiplist.SkipList, error) {
	switch impl {
	case "tower":
		sl, err := towersl.NewTowerSkipList(cfg.MaxLevel, cfg.Seed+int64(run))
		if err != nil {
			return nil, err
		}
		return sl, nil
	case "huandu":
		return baseline.NewHuanduList(), nil
	case "btree":
		return baseline.NewBTreeMap(cfg.Degree), nil
	default:
		return nil, xerrors.Errorf("unknown -impl: %s", impl)
	}
}

func parseImpls(s string) []string {
	if s == "" || s == "all" {
		return allImpls
	}
	out := make([]string, 0, len(allImpls))
	seen := map[string]bool{}
	for _, p := range strings.Split(s, ",") {
		t := strings.TrimSpace(strings.ToLower(p))
		if t == "" || seen[t] {
			continue
		}
		for _, known := range allImpls {
			if t == known {
				out = append(out, t)
				seen[t] = true
			}
		}
	}
	if len(out) == 0 {
		return allImpls
	}
	return out
}

// collectBenchFilesFromDir 收集指定目錄下所有 .bin 檔案
func collectBenchFilesFromDir(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".bin" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// loadBenchFiles 平行讀取所有 bench 檔，回傳順序與 paths 相同
func loadBenchFiles(paths []string) ([]*datastream.BenchFile, error) {
	files := make([]*datastream.BenchFile, len(paths))
	var g errgroup.Group
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			bf, err := datastream.ReadBenchFile(p)
			if err != nil {
				return err
			}
			files[i] = bf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}

func runOpsAndTime(sl skiplist.SkipList, m *datastream.SequenceModel, dist map[skiplist.K]float64) time.Duration {
	start := time.Now()
	m.Replay(sl, dist)
	return time.Since(start)
}

func benchmarkImpl(bf *datastream.BenchFile, impl string, cfg runConfig) (benchStats, error) {
	durations := make([]float64, 0, cfg.Runs)
	sampleSteps := math.NaN()
	m := bf.ToSequenceModel()
	for i := 0; i < cfg.Runs; i++ {
		sl, err := newImpl(impl, cfg, i)
		if err != nil {
			return benchStats{}, err
		}
		elapsed := runOpsAndTime(sl, m, bf.Dist)
		durations = append(durations, float64(elapsed.Microseconds())/1000.0)
		logrus.Debugf("%s run %d: %d ops in %v", impl, i, m.Len(), elapsed)
		if math.IsNaN(sampleSteps) {
			if analy, ok := sl.(skiplist.Analyable); ok {
				sampleSteps, _ = analyTool.AnalyzeStep(analy, bf.Dist)
			}
		}
	}
	sort.Float64s(durations)
	return benchStats{
		avgMs:    average(durations),
		minMs:    durations[0],
		maxMs:    durations[len(durations)-1],
		avgSteps: sampleSteps,
	}, nil
}

func formatSteps(v float64) string {
	if math.IsNaN(v) {
		return "N/A"
	}
	return fmt.Sprintf("%.6f", v)
}

func renderTable(w io.Writer, header []string, rows [][]string) {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

// runBenchmark 執行單一 benchmark 檔案的測試
func runBenchmark(w io.Writer, bf *datastream.BenchFile, toRun []string, cfg runConfig) error {
	fmt.Fprintf(w, "ops: %d\n", len(bf.Ops))
	fmt.Fprintf(w, "entropy: %.6f\n", bf.Entropy())

	rows := make([][]string, 0, len(toRun))
	for _, impl := range toRun {
		logrus.Infof("benchmarking %s...", impl)
		stats, err := benchmarkImpl(bf, impl, cfg)
		if err != nil {
			return err
		}
		thr := float64(len(bf.Ops)) / (stats.avgMs / 1000.0)
		rows = append(rows, []string{
			impl,
			fmt.Sprintf("%d", cfg.Runs),
			fmt.Sprintf("%.3f", stats.avgMs),
			fmt.Sprintf("%.3f", stats.minMs),
			fmt.Sprintf("%.3f", stats.maxMs),
			fmt.Sprintf("%.2f", thr),
			formatSteps(stats.avgSteps),
		})
	}
	renderTable(w, []string{"Impl", "Runs", "Avg(ms)", "Min(ms)", "Max(ms)", "Ops/s", "AvgSteps"}, rows)
	return nil
}

// runBatchBenchmark 對多個 benchmark 檔案執行測試並匯總統計
func runBatchBenchmark(w io.Writer, paths []string, files []*datastream.BenchFile, toRun []string, cfg runConfig) error {
	type implStats struct {
		avgMsList []float64
		minMsList []float64
		maxMsList []float64
		opsList   []int
		stepsList []float64
		totalRuns int
	}
	allStats := make(map[string]*implStats, len(toRun))
	for _, impl := range toRun {
		allStats[impl] = &implStats{}
	}

	for idx, bf := range files {
		fmt.Fprintf(w, "[%d/%d] %s ops: %d, entropy: %.6f\n", idx+1, len(files), filepath.Base(paths[idx]), len(bf.Ops), bf.Entropy())
		for _, impl := range toRun {
			stats, err := benchmarkImpl(bf, impl, cfg)
			if err != nil {
				return err
			}
			s := allStats[impl]
			s.avgMsList = append(s.avgMsList, stats.avgMs)
			s.minMsList = append(s.minMsList, stats.minMs)
			s.maxMsList = append(s.maxMsList, stats.maxMs)
			s.opsList = append(s.opsList, len(bf.Ops))
			if !math.IsNaN(stats.avgSteps) {
				s.stepsList = append(s.stepsList, stats.avgSteps)
			}
			s.totalRuns += cfg.Runs
		}
	}

	fmt.Fprintln(w, strings.Repeat("=", 80))
	fmt.Fprintln(w, "AGGREGATE STATISTICS (across all benchmark files)")
	fmt.Fprintln(w, strings.Repeat("=", 80))

	rows := make([][]string, 0, len(toRun))
	for _, impl := range toRun {
		s := allStats[impl]
		if len(s.avgMsList) == 0 {
			continue
		}
		totalOps := 0
		totalSec := 0.0
		for i, ops := range s.opsList {
			totalOps += ops
			totalSec += s.avgMsList[i] / 1000.0
		}
		steps := math.NaN()
		if len(s.stepsList) > 0 {
			steps = average(s.stepsList)
		}
		rows = append(rows, []string{
			impl,
			fmt.Sprintf("%d", s.totalRuns),
			fmt.Sprintf("%.3f", average(s.avgMsList)),
			fmt.Sprintf("%.3f", minOf(s.minMsList)),
			fmt.Sprintf("%.3f", maxOf(s.maxMsList)),
			fmt.Sprintf("%.2f", float64(totalOps)/totalSec),
			formatSteps(steps),
		})
	}
	renderTable(w, []string{"Impl", "Total Runs", "Avg(ms)", "Min(ms)", "Max(ms)", "Avg Ops/s", "AvgSteps"}, rows)
	return nil
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func minOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		m = min(m, v)
	}
	return m
}

func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		m = max(m, v)
	}
	return m
}
