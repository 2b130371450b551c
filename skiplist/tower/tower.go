// Package tower 實作以多層排序雙向串列組成的 skip list。
// 每一層是一條獨立的排序串列，同一個 key 在相鄰兩層的節點以 tower 連結上下相連，
// value 只存在 level 0。節點存放於 arena 中並以 handle 互相參照。
//
// Skiplist 不是 goroutine safe，Find 也會更新內部的搜尋路徑與步數統計。
// key 必須有一致的順序，例如 NaN 作為 float key 時行為未定義。
package tower

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/exp/constraints"
	"golang.org/x/xerrors"
)

var ErrInvalidMaxLevel = xerrors.New("max level must be positive")

type Skiplist[K constraints.Ordered, V any] struct {
	levels []level[K, V]
	nodes  arena[K, V]
	coin   CoinSource
	size   int

	// path 是最近一次搜尋在每一層留下的位置，index 與 levels 對應
	path    []position
	retired []handle

	lastSteps int
	trace     bool
	logger    *logrus.Logger
}

// New 建立最多 maxLevel 層的 Skiplist，以目前時間作為硬幣種子
func New[K constraints.Ordered, V any](maxLevel int) (*Skiplist[K, V], error) {
	return NewWithOption[K, V](maxLevel, Option{Seed: time.Now().UnixNano()})
}

func NewWithOption[K constraints.Ordered, V any](maxLevel int, opt Option) (*Skiplist[K, V], error) {
	if maxLevel < 1 {
		return nil, xerrors.Errorf("new skiplist with max level %d: %w", maxLevel, ErrInvalidMaxLevel)
	}
	s := &Skiplist[K, V]{
		levels:  make([]level[K, V], maxLevel),
		coin:    opt.coin(),
		path:    make([]position, maxLevel),
		retired: make([]handle, 0, maxLevel),
		trace:   opt.Trace,
		logger:  opt.logger(),
	}
	for i := range s.levels {
		s.levels[i] = newLevel[K, V]()
	}
	return s, nil
}

// searchPath 由最高層往下搜尋 key，把每一層的位置記錄在 s.path。
// 下一層從上一層 anchor 的 below 開始找，不需要從 head 重新掃描。
// 上層的 exact 只代表路由節點，仍要一路走到 level 0。
func (s *Skiplist[K, V]) searchPath(key K) int {
	steps := 0
	start := nilHandle
	for i := len(s.levels) - 1; i >= 0; i-- {
		pos, n := s.levels[i].find(&s.nodes, key, start)
		steps += n
		s.path[i] = pos
		if pos.anchor != nilHandle {
			start = s.nodes.at(pos.anchor).below
		}
	}
	return steps
}

// Set 插入 key 或覆寫既有 key 的 value。
// 只有新的 key 才會擲硬幣決定升到哪一層，覆寫不改變既有 tower。
func (s *Skiplist[K, V]) Set(key K, value V) {
	steps := s.searchPath(key)
	h, created := s.levels[0].insert(&s.nodes, key, value, s.path[0])
	if !created {
		s.record("set", key, steps)
		return
	}
	s.size++

	var zero V
	for i := 1; i < len(s.levels) && s.coin.Flip(); i++ {
		up, _ := s.levels[i].insert(&s.nodes, key, zero, s.path[i])
		s.nodes.at(up).below = h
		s.nodes.at(h).above = up
		h = up
	}
	s.record("set", key, steps)
}

// Find 回傳 key 對應的 value，key 不存在時 ok 為 false
func (s *Skiplist[K, V]) Find(key K) (value V, ok bool) {
	steps := s.searchPath(key)
	s.record("find", key, steps)
	pos := s.path[0]
	if !pos.exact {
		return value, false
	}
	return s.nodes.at(pos.anchor).value, true
}

func (s *Skiplist[K, V]) Contains(key K) bool {
	_, ok := s.Find(key)
	return ok
}

// Remove 刪除 key 的整座 tower，key 不存在時不做任何事並回傳 false
func (s *Skiplist[K, V]) Remove(key K) bool {
	steps := s.searchPath(key)
	defer s.record("remove", key, steps)
	if !s.path[0].exact {
		return false
	}

	removed := s.retired[:0]
	for i := range s.levels {
		if pos := s.path[i]; pos.exact {
			s.levels[i].remove(&s.nodes, pos.anchor)
			removed = append(removed, pos.anchor)
		}
	}
	// 所有層都拆完後才切斷 tower 並回收
	for _, h := range removed {
		n := s.nodes.at(h)
		n.above, n.below = nilHandle, nilHandle
	}
	for _, h := range removed {
		s.nodes.retire(h)
	}
	s.retired = removed[:0]
	s.size--
	return true
}

// Clear 移除所有 key，保留已配置的 arena 容量
func (s *Skiplist[K, V]) Clear() {
	for i := range s.levels {
		s.levels[i] = newLevel[K, V]()
	}
	s.nodes.reset()
	s.size = 0
	s.lastSteps = 0
}

func (s *Skiplist[K, V]) Len() int {
	return s.size
}

func (s *Skiplist[K, V]) MaxLevel() int {
	return len(s.levels)
}

// Height 回傳非空的層數
func (s *Skiplist[K, V]) Height() int {
	h := 0
	for h < len(s.levels) && !s.levels[h].empty() {
		h++
	}
	return h
}

// LastSteps 回傳最近一次 Set/Find/Remove 走訪的節點數
func (s *Skiplist[K, V]) LastSteps() int {
	return s.lastSteps
}

// LevelCounts 回傳每一層的節點數
func (s *Skiplist[K, V]) LevelCounts() []int {
	counts := make([]int, len(s.levels))
	for i := range s.levels {
		counts[i] = s.levels[i].length
	}
	return counts
}

// LevelKeys 依序回傳第 lv 層的所有 key
func (s *Skiplist[K, V]) LevelKeys(lv int) []K {
	if lv < 0 || lv >= len(s.levels) {
		return nil
	}
	keys := make([]K, 0, s.levels[lv].length)
	for h := s.levels[lv].head; h != nilHandle; h = s.nodes.at(h).next {
		keys = append(keys, s.nodes.at(h).key)
	}
	return keys
}

func (s *Skiplist[K, V]) record(op string, key K, steps int) {
	s.lastSteps = steps
	if !s.trace {
		return
	}
	s.logger.WithFields(logrus.Fields{
		"op":     op,
		"key":    key,
		"steps":  steps,
		"size":   s.size,
		"levels": s.LevelCounts()[:s.Height()],
	}).Debug("skiplist op")
}

func (s *Skiplist[K, V]) printLevel(sb *strings.Builder, i int, reverse bool) {
	lv := &s.levels[i]
	fmt.Fprintf(sb, "level %d (%d):", i, lv.length)
	if reverse {
		for h := lv.tail; h != nilHandle; h = s.nodes.at(h).prev {
			fmt.Fprintf(sb, " %v", s.nodes.at(h).key)
		}
	} else {
		for h := lv.head; h != nilHandle; h = s.nodes.at(h).next {
			fmt.Fprintf(sb, " %v", s.nodes.at(h).key)
		}
	}
	sb.WriteByte('\n')
}

func (s *Skiplist[K, V]) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[size=%d,height=%d]\n", s.size, s.Height())
	for i := s.Height() - 1; i >= 0; i-- {
		s.printLevel(&sb, i, false)
	}
	return sb.String()
}

// ReverseString 與 String 相同，但每層由 tail 往 head 輸出
func (s *Skiplist[K, V]) ReverseString() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[size=%d,height=%d]\n", s.size, s.Height())
	for i := s.Height() - 1; i >= 0; i-- {
		s.printLevel(&sb, i, true)
	}
	return sb.String()
}
