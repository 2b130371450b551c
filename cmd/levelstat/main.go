package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"

	"github.com/Hakuto4838/TowerList.git/datastream"
	"github.com/Hakuto4838/TowerList.git/skiplist"
	"github.com/Hakuto4838/TowerList.git/skiplist/analyTool"
	"github.com/Hakuto4838/TowerList.git/skiplist/tower"
	"github.com/Hakuto4838/TowerList.git/skiplist/towersl"
)

type options struct {
	n        int
	maxLevel int
	seed     int64
	show     int
	trace    bool
	zipf     float64
}

// run 依序插入 0..n-1，輸出各層節點數與結構檢查結果
func run(w io.Writer, opt options) error {
	sl, err := towersl.NewTowerSkipListWithOption(opt.maxLevel, tower.Option{Seed: opt.seed, Trace: opt.trace})
	if err != nil {
		return err
	}
	for i := 0; i < opt.n; i++ {
		sl.Put(skiplist.K(i), skiplist.V(i))
	}

	fmt.Fprintf(w, "=== tower n=%d maxlevel=%d seed=%d ===\n", opt.n, opt.maxLevel, opt.seed)
	analyTool.CountLevel(sl, w)

	if !analyTool.CheckStruct(sl) {
		return xerrors.New("tower structure check failed")
	}
	fmt.Fprintln(w, "structure: ok")

	if opt.n > 0 {
		total := 0
		for i := 0; i < opt.n; i++ {
			total += analyTool.FindStep(sl, skiplist.K(i))
		}
		fmt.Fprintf(w, "avg find steps: %.3f\n", float64(total)/float64(opt.n))
	}
	if opt.zipf > 0 && opt.n > 0 {
		zipfQueries(w, sl, opt)
	}
	if opt.show > 0 {
		analyTool.PrintSkipList(sl, opt.maxLevel, opt.show, w)
	}
	return nil
}

// zipfQueries 以 Zipf 分布查詢 n 次，比較實測平均步數與分布加權的期望步數
func zipfQueries(w io.Writer, sl skiplist.Analyable, opt options) {
	data := datastream.NewZipfDataGenerator(opt.n, opt.zipf, 0, opt.seed)
	total := 0
	for _, idx := range data.GenerateSequence(opt.n) {
		total += analyTool.FindStep(sl, skiplist.K(idx))
	}
	expect, _ := analyTool.AnalyzeStep(sl, data.GetKeyMap())
	fmt.Fprintf(w, "zipf s=%.2f entropy: %.3f\n", opt.zipf, data.Entropy())
	fmt.Fprintf(w, "zipf avg find steps: %.3f (expected %.3f)\n", float64(total)/float64(opt.n), expect)
}

func main() {
	var opt options
	flag.IntVar(&opt.n, "n", 1000, "number of sequential keys to insert")
	flag.IntVar(&opt.maxLevel, "maxlevel", 16, "max level of the skiplist")
	flag.Int64Var(&opt.seed, "seed", time.Now().UnixNano(), "seed of the promotion coin")
	flag.IntVar(&opt.show, "show", 0, "print the first N keys of every level")
	flag.BoolVar(&opt.trace, "trace", false, "log every operation with its step count")
	flag.Float64Var(&opt.zipf, "zipf", 0, "run a query phase with Zipf parameter s over the inserted keys (0 to skip)")
	flag.Parse()

	if opt.trace {
		logrus.SetLevel(logrus.DebugLevel)
	}
	if err := run(os.Stdout, opt); err != nil {
		logrus.Fatalf("levelstat: %v", err)
	}
}
