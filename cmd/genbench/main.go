package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Hakuto4838/TowerList.git/datastream"
)

// parseScientificNotation 解析科學記號字串（如 "1e5"）為整數
func parseScientificNotation(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// formatScientific 將數字格式化為科學記號（用於檔名）
func formatScientific(n int) string {
	if n == 0 {
		return "0"
	}
	exp := 0
	divisor := 1
	for n/divisor >= 10 {
		divisor *= 10
		exp++
	}
	coefficient := float64(n) / float64(divisor)
	if coefficient == float64(int(coefficient)) {
		return fmt.Sprintf("%de%d", int(coefficient), exp)
	}
	return fmt.Sprintf("%.1fe%d", coefficient, exp)
}

// formatDecimal 將浮點數格式化為不含小數點的字串（用於檔名），保留兩位小數
func formatDecimal(f float64) string {
	val := int(f*100 + 0.5)
	switch {
	case val%100 == 0:
		return fmt.Sprintf("%d", val/100)
	case val%10 == 0:
		return fmt.Sprintf("%d_%d", val/100, (val%100)/10)
	default:
		return fmt.Sprintf("%d_%02d", val/100, val%100)
	}
}

func defaultName(cfg datastream.BenchConfig) string {
	return fmt.Sprintf("bench_n%s_k%s_s%s_v%s_p1r%s_dr%s",
		formatScientific(cfg.N),
		formatScientific(cfg.K),
		formatDecimal(cfg.S),
		formatDecimal(cfg.V),
		formatDecimal(cfg.Phase1Ratio),
		formatDecimal(cfg.DeleteRatio))
}

func main() {
	var (
		out, path, nStr, kStr string
		seed                  int64
		nums                  int
		cfg                   datastream.BenchConfig
	)

	flag.StringVar(&nStr, "n", "0", "number of keys (scientific notation allowed, e.g. 1e5)")
	flag.Float64Var(&cfg.S, "s", 1.07, "Zipf parameter s (0 for uniform)")
	flag.Float64Var(&cfg.V, "v", 1.0, "Zipf parameter v")
	flag.StringVar(&kStr, "k", "0", "number of operations (scientific notation allowed, e.g. 1e6)")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "seed of the first file, later files use seed+i")
	flag.Float64Var(&cfg.Phase1Ratio, "phase1Ratio", 0.5, "ratio of phase1 operations")
	flag.Float64Var(&cfg.DeleteRatio, "deleteRatio", 0.1, "ratio of delete operations")
	flag.IntVar(&nums, "nums", 1, "number of files to generate")
	flag.StringVar(&out, "out", "", "output filename prefix (derived from the parameters when empty)")
	flag.StringVar(&path, "path", ".", "output directory")
	flag.BoolVar(&cfg.SimpleKey, "simpleKey", false, "use keys 0..n-1")
	flag.Parse()

	var err error
	if cfg.N, err = parseScientificNotation(nStr); err != nil {
		logrus.Fatalf("parse -n: %v", err)
	}
	if cfg.K, err = parseScientificNotation(kStr); err != nil {
		logrus.Fatalf("parse -k: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("genbench: %v", err)
	}
	if out == "" {
		out = defaultName(cfg)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		logrus.Fatalf("create output directory: %v", err)
	}

	logrus.WithFields(logrus.Fields{
		"n": cfg.N, "k": cfg.K, "s": cfg.S, "v": cfg.V,
		"phase1Ratio": cfg.Phase1Ratio, "deleteRatio": cfg.DeleteRatio,
		"seed": seed, "nums": nums, "path": path, "prefix": out,
	}).Info("generating bench files")

	for i := 0; i < nums; i++ {
		filename := out + ".bin"
		if nums > 1 {
			filename = fmt.Sprintf("%s_%d.bin", out, i)
		}
		outfile := filepath.Join(path, filename)
		cfg.Seed = uint64(seed + int64(i))
		bf, err := datastream.WriteBenchFile(cfg, outfile)
		if err != nil {
			logrus.Fatalf("generate %s: %v", outfile, err)
		}
		logrus.Infof("wrote %s (entropy %.4f)", outfile, bf.Entropy())
	}
}
