package datastream

import (
	"bufio"
	"encoding/binary"
	"io"
	randv2 "math/rand/v2"
	"os"
	"sort"

	"golang.org/x/xerrors"

	"github.com/Hakuto4838/TowerList.git/skiplist"
)

// 檔案格式（LittleEndian）：
// [8]byte  Magic: "SLBENCH1"
// uint16   Version: 1
// uint16   Reserved: 0
// uint32   DistCount
// 重複 DistCount 次：
//   int64   Key
//   float64 Weight
// uint64   OpCount
// 重複 OpCount 次：
//   uint8   OperationType (0=Query,1=Insert,2=Delete)
//   int64   Key

var (
	benchMagic   = [8]byte{'S', 'L', 'B', 'E', 'N', 'C', 'H', '1'}
	benchVersion = uint16(1)

	ErrInvalidMagic       = xerrors.New("invalid bench file magic")
	ErrUnsupportedVersion = xerrors.New("unsupported bench file version")
	ErrInvalidConfig      = xerrors.New("invalid bench config")
	ErrInvalidOperation   = xerrors.New("invalid bench operation")
)

// 檔案中的數量不可信，預先配置的容量上限，超過的部分交給 append 成長
const maxPrealloc = 1 << 16

// BenchConfig 描述一個 workload：
//   - N: key 數量
//   - S, V: Zipf 參數，S = 0 時使用均勻分布，否則需滿足 S > 1、V >= 1
//   - K: 操作數量，需 >= N 以保證每個 key 至少出現一次
//   - Phase1Ratio: 第一階段佔 K 的比例，第一階段涵蓋所有 key
//   - DeleteRatio: key 已存在時產生 Delete 的機率，其餘為 Query
//   - SimpleKey: true 時 key 為 0..N-1，否則為不重複的隨機 uint32
type BenchConfig struct {
	N           int     `toml:"n"`
	S           float64 `toml:"s"`
	V           float64 `toml:"v"`
	Seed        uint64  `toml:"seed"`
	K           int     `toml:"k"`
	Phase1Ratio float64 `toml:"phase1_ratio"`
	DeleteRatio float64 `toml:"delete_ratio"`
	SimpleKey   bool    `toml:"simple_key"`
}

func (c BenchConfig) phase1Size() int {
	return int(float64(c.K) * c.Phase1Ratio)
}

func (c BenchConfig) Validate() error {
	switch {
	case c.N <= 0:
		return xerrors.Errorf("n=%d must be positive: %w", c.N, ErrInvalidConfig)
	case c.S != 0 && (c.S <= 1.0 || c.V < 1.0):
		return xerrors.Errorf("zipf params s=%v must > 1, v=%v must >= 1: %w", c.S, c.V, ErrInvalidConfig)
	case c.K < c.N:
		return xerrors.Errorf("k (%d) must be >= n (%d): %w", c.K, c.N, ErrInvalidConfig)
	case c.phase1Size() < c.N || c.phase1Size() > c.K:
		return xerrors.Errorf("phase1Size (%d) must satisfy n <= phase1Size <= k: %w", c.phase1Size(), ErrInvalidConfig)
	case c.DeleteRatio < 0.0 || c.DeleteRatio > 1.0:
		return xerrors.Errorf("deleteRatio (%v) must be between 0.0 and 1.0: %w", c.DeleteRatio, ErrInvalidConfig)
	}
	return nil
}

type BenchFile struct {
	Dist map[skiplist.K]float64
	Ops  []Operation
}

// GenerateBench 依 cfg 產生 workload。
// 第一階段先讓每個 key 至少出現一次再以分布補齊並打亂，第二階段直接依分布抽樣。
// key 不在表中時一律產生 Insert。
func GenerateBench(cfg BenchConfig) (*BenchFile, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := cfg.N
	r := randv2.New(randv2.NewPCG(cfg.Seed, 0))

	// rank -> key 的隨機對應（不重複）
	rankToKey := make([]skiplist.K, n)
	if cfg.SimpleKey {
		for i := range rankToKey {
			rankToKey[i] = skiplist.K(i)
		}
		r.Shuffle(n, func(i, j int) { rankToKey[i], rankToKey[j] = rankToKey[j], rankToKey[i] })
	} else {
		check := make(map[skiplist.K]struct{}, n)
		for i := range rankToKey {
			k := skiplist.K(r.Uint32())
			for _, ok := check[k]; ok; _, ok = check[k] {
				k = skiplist.K(r.Uint32())
			}
			rankToKey[i] = k
			check[k] = struct{}{}
		}
	}

	gen := newKeyGenerator(cfg)
	weights := gen.GetKeyMap()
	bf := &BenchFile{
		Dist: make(map[skiplist.K]float64, n),
		Ops:  make([]Operation, 0, cfg.K),
	}
	for rank, k := range rankToKey {
		bf.Dist[k] = weights[skiplist.K(rank)]
	}

	phase1 := make([]skiplist.K, cfg.phase1Size())
	copy(phase1, rankToKey)
	for i, rank := range gen.GenerateSequence(len(phase1) - n) {
		phase1[n+i] = rankToKey[rank]
	}
	r.Shuffle(len(phase1), func(i, j int) { phase1[i], phase1[j] = phase1[j], phase1[i] })

	present := make(map[skiplist.K]bool, n)
	emit := func(key skiplist.K) {
		op := OpQuery
		switch {
		case !present[key]:
			op = OpInsert
			present[key] = true
		case r.Float64() < cfg.DeleteRatio:
			op = OpDelete
			present[key] = false
		}
		bf.Ops = append(bf.Ops, Operation{Type: op, Key: key})
	}
	for _, key := range phase1 {
		emit(key)
	}
	for i := len(phase1); i < cfg.K; i++ {
		emit(rankToKey[gen.Next()])
	}
	return bf, nil
}

// newKeyGenerator 依 cfg 選擇分布，S = 0 為均勻分布，否則權重為 1/(V+i)^S
func newKeyGenerator(cfg BenchConfig) KeyGenerator {
	if cfg.S == 0 {
		return NewUniformDataGenerator(cfg.N, int64(cfg.Seed))
	}
	return NewZipfDataGenerator(cfg.N, cfg.S, cfg.V-1, int64(cfg.Seed))
}

// WriteBenchFile 產生 workload 並寫入 filename，回傳其分布
func WriteBenchFile(cfg BenchConfig, filename string) (*BenchFile, error) {
	bf, err := GenerateBench(cfg)
	if err != nil {
		return nil, err
	}
	file, err := os.Create(filename)
	if err != nil {
		return nil, xerrors.Errorf("create bench file: %w", err)
	}
	defer file.Close()
	if err := bf.Encode(file); err != nil {
		return nil, xerrors.Errorf("write bench file %s: %w", filename, err)
	}
	return bf, file.Close()
}

// Encode 以 SLBENCH1 格式輸出，分布依 key 遞增排序以確保可重現
func (bf *BenchFile) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)
	le := binary.LittleEndian

	if _, err := bw.Write(benchMagic[:]); err != nil {
		return err
	}
	header := []any{benchVersion, uint16(0), uint32(len(bf.Dist))}
	for _, v := range header {
		if err := binary.Write(bw, le, v); err != nil {
			return err
		}
	}

	keys := make([]skiplist.K, 0, len(bf.Dist))
	for k := range bf.Dist {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		if err := binary.Write(bw, le, int64(k)); err != nil {
			return err
		}
		if err := binary.Write(bw, le, bf.Dist[k]); err != nil {
			return err
		}
	}

	if err := binary.Write(bw, le, uint64(len(bf.Ops))); err != nil {
		return err
	}
	for _, op := range bf.Ops {
		if err := bw.WriteByte(byte(op.Type)); err != nil {
			return err
		}
		if err := binary.Write(bw, le, int64(op.Key)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// DecodeBenchFile 讀取 SLBENCH1 格式
func DecodeBenchFile(r io.Reader) (*BenchFile, error) {
	br := bufio.NewReader(r)
	le := binary.LittleEndian

	var magic [8]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, xerrors.Errorf("read magic: %w", err)
	}
	if magic != benchMagic {
		return nil, xerrors.Errorf("%q: %w", magic, ErrInvalidMagic)
	}
	var header struct {
		Version   uint16
		Reserved  uint16
		DistCount uint32
	}
	if err := binary.Read(br, le, &header); err != nil {
		return nil, xerrors.Errorf("read header: %w", err)
	}
	if header.Version != benchVersion {
		return nil, xerrors.Errorf("version %d: %w", header.Version, ErrUnsupportedVersion)
	}

	dist := make(map[skiplist.K]float64, min(int(header.DistCount), maxPrealloc))
	for i := uint32(0); i < header.DistCount; i++ {
		var entry struct {
			Key    int64
			Weight float64
		}
		if err := binary.Read(br, le, &entry); err != nil {
			return nil, xerrors.Errorf("read dist entry %d: %w", i, err)
		}
		dist[skiplist.K(entry.Key)] = entry.Weight
	}

	var opCount uint64
	if err := binary.Read(br, le, &opCount); err != nil {
		return nil, xerrors.Errorf("read op count: %w", err)
	}
	ops := make([]Operation, 0, min(opCount, maxPrealloc))
	for i := uint64(0); i < opCount; i++ {
		var rec struct {
			Type uint8
			Key  int64
		}
		if err := binary.Read(br, le, &rec); err != nil {
			return nil, xerrors.Errorf("read op %d: %w", i, err)
		}
		if OperationType(rec.Type) > OpDelete {
			return nil, xerrors.Errorf("op %d type %d: %w", i, rec.Type, ErrInvalidOperation)
		}
		ops = append(ops, Operation{Type: OperationType(rec.Type), Key: skiplist.K(rec.Key)})
	}
	return &BenchFile{Dist: dist, Ops: ops}, nil
}

// ReadBenchFile 讀取 bin 檔案，回傳分布與操作序列
func ReadBenchFile(filename string) (*BenchFile, error) {
	fd, err := os.Open(filename)
	if err != nil {
		return nil, xerrors.Errorf("open bench file: %w", err)
	}
	defer fd.Close()
	bf, err := DecodeBenchFile(fd)
	if err != nil {
		return nil, xerrors.Errorf("%s: %w", filename, err)
	}
	return bf, nil
}

// ToSequenceModel 將 BenchFile 轉為可重播的 SequenceModel，與 bf 共用操作序列
func (bf *BenchFile) ToSequenceModel() *SequenceModel {
	if bf == nil {
		return &SequenceModel{}
	}
	return &SequenceModel{ops: bf.Ops}
}

func (bf *BenchFile) Entropy() float64 {
	return EntropyFromDist(bf.Dist)
}

// Replay 依序將所有操作套用到 sl
func (bf *BenchFile) Replay(sl skiplist.SkipList) {
	bf.ToSequenceModel().Replay(sl, bf.Dist)
}
