package tower

import "golang.org/x/exp/constraints"

// handle 是 arena 內節點的索引，nilHandle 表示不存在
type handle int32

const nilHandle handle = -1

// node 是某個 key 在單一層上的表示
// value 只在 level 0 有意義，上層節點只負責路由
type node[K constraints.Ordered, V any] struct {
	key   K
	value V
	prev  handle
	next  handle
	above handle
	below handle
	live  bool
}

// arena 持有所有節點，節點之間以 handle 互相參照
// 注意: alloc 可能使 nodes 重新配置，取得的 *node 不可跨 alloc 使用
type arena[K constraints.Ordered, V any] struct {
	nodes []node[K, V]
	free  []handle
}

func (a *arena[K, V]) alloc(key K, value V) handle {
	n := node[K, V]{
		key:   key,
		value: value,
		prev:  nilHandle,
		next:  nilHandle,
		above: nilHandle,
		below: nilHandle,
		live:  true,
	}
	if last := len(a.free) - 1; last >= 0 {
		h := a.free[last]
		a.free = a.free[:last]
		a.nodes[h] = n
		return h
	}
	a.nodes = append(a.nodes, n)
	return handle(len(a.nodes) - 1)
}

func (a *arena[K, V]) at(h handle) *node[K, V] {
	return &a.nodes[h]
}

// retire 回收節點，呼叫前該節點必須已從所有層與 tower 上解除連結
func (a *arena[K, V]) retire(h handle) {
	n := &a.nodes[h]
	if !n.live {
		panic("tower: retire of a free slot")
	}
	if n.prev != nilHandle || n.next != nilHandle || n.above != nilHandle || n.below != nilHandle {
		panic("tower: retire of a linked node")
	}
	*n = node[K, V]{prev: nilHandle, next: nilHandle, above: nilHandle, below: nilHandle}
	a.free = append(a.free, h)
}

// inUse 回傳目前仍被使用的 slot 數
func (a *arena[K, V]) inUse() int {
	return len(a.nodes) - len(a.free)
}

func (a *arena[K, V]) reset() {
	a.nodes = a.nodes[:0]
	a.free = a.free[:0]
}
