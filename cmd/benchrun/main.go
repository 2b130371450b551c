package main

import (
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/Hakuto4838/TowerList.git/datastream"
)

func main() {
	cfg, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		logrus.Fatalf("benchrun: %v", err)
	}
	if cfg.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	var benchPaths []string
	switch {
	case cfg.Dir != "":
		// -dir 優先於 -file
		benchPaths, err = collectBenchFilesFromDir(cfg.Dir)
		if err != nil {
			logrus.Fatalf("scan directory %s: %v", cfg.Dir, err)
		}
		if len(benchPaths) == 0 {
			logrus.Fatalf("no .bin files found in directory: %s", cfg.Dir)
		}
		logrus.Infof("found %d bench files in directory: %s", len(benchPaths), cfg.Dir)
	case cfg.File != "":
		benchPaths = []string{cfg.File}
	default:
		if _, err := datastream.WriteBenchFile(cfg.Gen, cfg.Out); err != nil {
			logrus.Fatalf("generate bench file: %v", err)
		}
		logrus.Infof("generated bench file: %s", cfg.Out)
		benchPaths = []string{cfg.Out}
	}

	files, err := loadBenchFiles(benchPaths)
	if err != nil {
		logrus.Fatalf("read bench files: %v", err)
	}

	toRun := parseImpls(cfg.Impl)
	logrus.Infof("implementations to test: %s", strings.Join(toRun, ","))

	if len(files) > 1 {
		err = runBatchBenchmark(os.Stdout, benchPaths, files, toRun, cfg)
	} else {
		err = runBenchmark(os.Stdout, files[0], toRun, cfg)
	}
	if err != nil {
		logrus.Fatalf("benchmark: %v", err)
	}
}
