package skiplist

// benchmark 與分析工具使用的 key/value 型別
type K = int64
type V = float64

type SkipList interface {
	Contains(key K) bool
	Get(key K) (V, bool)
	Put(key K, value V)
	Delete(key K)
}

// Analyable 提供分析功能的介面
type Analyable interface {
	SkipList
	// GetMaxStats 獲取節點數和最高層級
	GetMaxStats() (nodes int, height int)
	// LevelKeys 回傳第 level 層由小到大的 key
	LevelKeys(level int) []K
	// LastSteps 回傳最近一次操作走訪的節點數
	LastSteps() int
}
