package datastream

import (
	"math"

	"github.com/Hakuto4838/TowerList.git/skiplist"
)

// KeyGenerator 依某個分布產生 key 索引 0..n-1
type KeyGenerator interface {
	Next() int
	GenerateSequence(seqLen int) []int
	GetKeyMap() map[skiplist.K]float64
	Entropy() float64
}

// OperationType 表示操作種類
type OperationType uint8

const (
	OpQuery OperationType = iota
	OpInsert
	OpDelete
)

func (t OperationType) String() string {
	switch t {
	case OpQuery:
		return "Query"
	case OpInsert:
		return "Insert"
	case OpDelete:
		return "Delete"
	default:
		return "Unknown"
	}
}

// Operation 表示一筆操作
type Operation struct {
	Type OperationType
	Key  skiplist.K
}

// Apply 將操作套用到 sl 上，Insert 的 value 由 dist 取得
func (op Operation) Apply(sl skiplist.SkipList, dist map[skiplist.K]float64) {
	switch op.Type {
	case OpQuery:
		sl.Get(op.Key)
	case OpInsert:
		sl.Put(op.Key, skiplist.V(dist[op.Key]))
	case OpDelete:
		sl.Delete(op.Key)
	}
}

// SequenceModel 以既有的 Operation 序列提供順序重播
type SequenceModel struct {
	ops []Operation
	pos int
}

// Next 回傳下一筆操作，若結束則回傳零值與 false
func (m *SequenceModel) Next() (Operation, bool) {
	if m.pos >= len(m.ops) {
		return Operation{}, false
	}
	op := m.ops[m.pos]
	m.pos++
	return op, true
}

// Reset 游標重置到起點
func (m *SequenceModel) Reset() { m.pos = 0 }

func (m *SequenceModel) Len() int { return len(m.ops) }

// Replay 從頭依序將所有操作套用到 sl
func (m *SequenceModel) Replay(sl skiplist.SkipList, dist map[skiplist.K]float64) {
	m.Reset()
	for op, ok := m.Next(); ok; op, ok = m.Next() {
		op.Apply(sl, dist)
	}
}

// EntropyFromDist 計算分布的熵（單位：bit），忽略 <= 0 的機率
func EntropyFromDist(dist map[skiplist.K]float64) float64 {
	h := 0.0
	for _, p := range dist {
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}
