package tower

import "golang.org/x/exp/constraints"

// side 表示新 key 應該接在 anchor 的哪一側
type side int8

const (
	sideRight side = iota
	sideLeft
)

// position 是單層搜尋的結果，供同一層的插入直接使用，避免再走一次
type position struct {
	anchor handle
	side   side
	exact  bool
}

var noPosition = position{anchor: nilHandle}

// level 是一層依 key 遞增排序的雙向鏈結串列
// 只負責 prev/next，tower 連結由 Skiplist 維護
type level[K constraints.Ordered, V any] struct {
	head   handle
	tail   handle
	length int
}

func newLevel[K constraints.Ordered, V any]() level[K, V] {
	return level[K, V]{head: nilHandle, tail: nilHandle}
}

func (l *level[K, V]) empty() bool {
	return l.head == nilHandle
}

// find 從 start 開始尋找 key 的位置，start 為 nilHandle 時從 head 開始。
// 方向由 start 的 key 與目標比較決定：較小往 next 走，較大往 prev 走。
// 找到相同 key 時回傳 exact，否則回傳越界前最後一個節點與 key 所在的側。
// 第二個回傳值是走訪（比較）的節點數。
func (l *level[K, V]) find(a *arena[K, V], key K, start handle) (position, int) {
	if l.empty() {
		return noPosition, 0
	}
	cur := start
	if cur == nilHandle {
		cur = l.head
	}
	steps := 1
	n := a.at(cur)
	if n.key == key {
		return position{anchor: cur, exact: true}, steps
	}

	if n.key < key {
		for n.next != nilHandle {
			nx := n.next
			nn := a.at(nx)
			steps++
			if nn.key == key {
				return position{anchor: nx, exact: true}, steps
			}
			if nn.key > key {
				break
			}
			cur, n = nx, nn
		}
		return position{anchor: cur, side: sideRight}, steps
	}

	for n.prev != nilHandle {
		pv := n.prev
		pn := a.at(pv)
		steps++
		if pn.key == key {
			return position{anchor: pv, exact: true}, steps
		}
		if pn.key < key {
			break
		}
		cur, n = pv, pn
	}
	return position{anchor: cur, side: sideLeft}, steps
}

// insert 依 pos 將 key 接入本層。pos 為 exact 時直接覆寫 value 並回傳既有節點，
// created 為 false。
func (l *level[K, V]) insert(a *arena[K, V], key K, value V, pos position) (h handle, created bool) {
	if pos.exact {
		a.at(pos.anchor).value = value
		return pos.anchor, false
	}

	h = a.alloc(key, value)
	l.length++
	if pos.anchor == nilHandle {
		if !l.empty() {
			panic("tower: insert without anchor into a non-empty level")
		}
		l.head, l.tail = h, h
		return h, true
	}

	n := a.at(h)
	anc := a.at(pos.anchor)
	if pos.side == sideRight {
		n.prev = pos.anchor
		n.next = anc.next
		if anc.next != nilHandle {
			a.at(anc.next).prev = h
		} else {
			l.tail = h
		}
		anc.next = h
		return h, true
	}

	n.next = pos.anchor
	n.prev = anc.prev
	if anc.prev != nilHandle {
		a.at(anc.prev).next = h
	} else {
		l.head = h
	}
	anc.prev = h
	return h, true
}

// remove 將節點從本層鏈結中拆下，節點本身由呼叫者回收
func (l *level[K, V]) remove(a *arena[K, V], h handle) {
	n := a.at(h)
	if n.prev != nilHandle {
		a.at(n.prev).next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nilHandle {
		a.at(n.next).prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nilHandle, nilHandle
	l.length--
}
