package towersl

import (
	"github.com/Hakuto4838/TowerList.git/skiplist"
	"github.com/Hakuto4838/TowerList.git/skiplist/tower"
)

// TowerSkipList 把 tower.Skiplist 包裝成 benchmark 使用的 skiplist.Analyable
type TowerSkipList struct {
	sl *tower.Skiplist[skiplist.K, skiplist.V]
}

func NewTowerSkipList(maxLevel int, seed int64) (*TowerSkipList, error) {
	return NewTowerSkipListWithOption(maxLevel, tower.Option{Seed: seed})
}

func NewTowerSkipListWithOption(maxLevel int, opt tower.Option) (*TowerSkipList, error) {
	sl, err := tower.NewWithOption[skiplist.K, skiplist.V](maxLevel, opt)
	if err != nil {
		return nil, err
	}
	return &TowerSkipList{sl: sl}, nil
}

func (t *TowerSkipList) Contains(key skiplist.K) bool {
	return t.sl.Contains(key)
}

func (t *TowerSkipList) Get(key skiplist.K) (skiplist.V, bool) {
	return t.sl.Find(key)
}

func (t *TowerSkipList) Put(key skiplist.K, value skiplist.V) {
	t.sl.Set(key, value)
}

func (t *TowerSkipList) Delete(key skiplist.K) {
	t.sl.Remove(key)
}

func (t *TowerSkipList) GetMaxStats() (int, int) {
	return t.sl.Len(), t.sl.Height()
}

func (t *TowerSkipList) LevelKeys(level int) []skiplist.K {
	return t.sl.LevelKeys(level)
}

func (t *TowerSkipList) LastSteps() int {
	return t.sl.LastSteps()
}

// Unwrap 回傳底層的 tower.Skiplist
func (t *TowerSkipList) Unwrap() *tower.Skiplist[skiplist.K, skiplist.V] {
	return t.sl
}
