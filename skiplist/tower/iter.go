package tower

import (
	"iter"

	"golang.org/x/exp/constraints"
)

// 迭代只走 level 0。迭代途中呼叫 Set/Remove 的行為未定義。

// All 由小到大走訪所有 key/value
func (s *Skiplist[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for h := s.levels[0].head; h != nilHandle; h = s.nodes.at(h).next {
			n := s.nodes.at(h)
			if !yield(n.key, n.value) {
				return
			}
		}
	}
}

// Backward 由大到小走訪所有 key/value
func (s *Skiplist[K, V]) Backward() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for h := s.levels[0].tail; h != nilHandle; h = s.nodes.at(h).prev {
			n := s.nodes.at(h)
			if !yield(n.key, n.value) {
				return
			}
		}
	}
}

func (s *Skiplist[K, V]) Values() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range s.All() {
			if !yield(v) {
				return
			}
		}
	}
}

func (s *Skiplist[K, V]) ValuesBackward() iter.Seq[V] {
	return func(yield func(V) bool) {
		for _, v := range s.Backward() {
			if !yield(v) {
				return
			}
		}
	}
}

// Keys 回傳遞增排序的所有 key
func (s *Skiplist[K, V]) Keys() []K {
	return s.LevelKeys(0)
}

// Cursor 是可以逐步前進的迭代器。每次 Next 前進一個節點，
// 走到底時回傳 false 並回到起點，下一次 Next 會重新從頭開始。
type Cursor[K constraints.Ordered, V any] struct {
	s       *Skiplist[K, V]
	cur     handle
	started bool
	reverse bool
}

// Cursor 回傳由小到大的 Cursor
func (s *Skiplist[K, V]) Cursor() *Cursor[K, V] {
	return &Cursor[K, V]{s: s, cur: nilHandle}
}

// ReverseCursor 回傳由大到小的 Cursor
func (s *Skiplist[K, V]) ReverseCursor() *Cursor[K, V] {
	return &Cursor[K, V]{s: s, cur: nilHandle, reverse: true}
}

func (c *Cursor[K, V]) Next() (key K, value V, ok bool) {
	switch {
	case !c.started:
		c.cur = c.first()
		c.started = true
	case c.reverse:
		c.cur = c.s.nodes.at(c.cur).prev
	default:
		c.cur = c.s.nodes.at(c.cur).next
	}

	if c.cur == nilHandle {
		c.Reset()
		return key, value, false
	}
	n := c.s.nodes.at(c.cur)
	return n.key, n.value, true
}

// Reset 讓下一次 Next 從頭開始
func (c *Cursor[K, V]) Reset() {
	c.cur = nilHandle
	c.started = false
}

func (c *Cursor[K, V]) first() handle {
	if c.reverse {
		return c.s.levels[0].tail
	}
	return c.s.levels[0].head
}
