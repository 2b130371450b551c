package main

import (
	"flag"
	"io"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/xerrors"

	"github.com/Hakuto4838/TowerList.git/datastream"
)

// runConfig 是 benchrun 的設定，可由 -config 指定的 TOML 檔載入，命令列參數優先
type runConfig struct {
	File     string `toml:"file"`
	Dir      string `toml:"dir"`
	Out      string `toml:"out"`
	Impl     string `toml:"impl"`
	Runs     int    `toml:"runs"`
	MaxLevel int    `toml:"max_level"`
	Degree   int    `toml:"btree_degree"`
	Seed     int64  `toml:"seed"`
	Verbose  bool   `toml:"verbose"`

	Gen datastream.BenchConfig `toml:"gen"`
}

func defaultConfig() runConfig {
	return runConfig{
		Impl:     "all",
		Runs:     5,
		MaxLevel: 32,
		Degree:   32,
		Seed:     time.Now().UnixNano(),
		Gen: datastream.BenchConfig{
			S:           1.07,
			V:           1.0,
			Phase1Ratio: 0.5,
			DeleteRatio: 0.1,
		},
	}
}

func newFlagSet(cfg *runConfig, configPath *string) *flag.FlagSet {
	fs := flag.NewFlagSet("benchrun", flag.ContinueOnError)
	fs.StringVar(configPath, "config", *configPath, "TOML config file; flags given on the command line override it")
	fs.StringVar(&cfg.File, "file", cfg.File, "existing bench streamfile (SLBENCH1 format)")
	fs.StringVar(&cfg.Dir, "dir", cfg.Dir, "directory containing bench files to test (will test all .bin files)")
	fs.StringVar(&cfg.Out, "out", cfg.Out, "output path to write generated bench streamfile")
	fs.StringVar(&cfg.Impl, "impl", cfg.Impl, "implementations to run: all or comma list (tower,huandu,btree)")
	fs.IntVar(&cfg.Runs, "runs", cfg.Runs, "how many times to repeat each benchmark")
	fs.IntVar(&cfg.MaxLevel, "maxlevel", cfg.MaxLevel, "max level of the tower skiplist")
	fs.IntVar(&cfg.Degree, "btree.degree", cfg.Degree, "degree of the btree baseline")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "seed for generators/structures")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "debug logging")

	fs.IntVar(&cfg.Gen.N, "n", cfg.Gen.N, "number of keys for the generator")
	fs.IntVar(&cfg.Gen.K, "k", cfg.Gen.K, "number of operations to generate")
	fs.Float64Var(&cfg.Gen.S, "s", cfg.Gen.S, "Zipf parameter s (0 for uniform)")
	fs.Float64Var(&cfg.Gen.V, "zipf.v", cfg.Gen.V, "Zipf parameter v")
	fs.Float64Var(&cfg.Gen.Phase1Ratio, "phase1Ratio", cfg.Gen.Phase1Ratio, "ratio of phase1 operations")
	fs.Float64Var(&cfg.Gen.DeleteRatio, "deleteRatio", cfg.Gen.DeleteRatio, "ratio of delete operations")
	fs.BoolVar(&cfg.Gen.SimpleKey, "simpleKey", cfg.Gen.SimpleKey, "use keys 0..n-1")
	return fs
}

// parseArgs 先找出 -config，載入 TOML 後再解析一次命令列，讓命令列覆寫檔案的值
func parseArgs(args []string, stderr io.Writer) (runConfig, error) {
	var configPath string
	cfg := defaultConfig()
	fs := newFlagSet(&cfg, &configPath)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return runConfig{}, err
	}
	if configPath == "" {
		cfg.Gen.Seed = uint64(cfg.Seed)
		return cfg, cfg.validate()
	}

	cfg = defaultConfig()
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		return runConfig{}, xerrors.Errorf("load config %s: %w", configPath, err)
	}
	fs = newFlagSet(&cfg, &configPath)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return runConfig{}, err
	}
	cfg.Gen.Seed = uint64(cfg.Seed)
	return cfg, cfg.validate()
}

func (c runConfig) validate() error {
	if c.Dir == "" && c.File == "" && c.Out == "" {
		return xerrors.New("either -file, -dir, or -out with generation params (-n,-s,-k,-seed) must be provided")
	}
	if c.Runs <= 0 {
		return xerrors.Errorf("invalid -runs: %d", c.Runs)
	}
	if c.MaxLevel <= 0 {
		return xerrors.Errorf("invalid -maxlevel: %d", c.MaxLevel)
	}
	return nil
}
