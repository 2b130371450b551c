package tower

import (
	"bytes"
	"math"
	"math/rand"
	"slices"
	"sort"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	hskiplist "github.com/huandu/skiplist"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestList[K int | string, V any](t *testing.T, maxLevel int, seed int64) *Skiplist[K, V] {
	t.Helper()
	s, err := NewWithOption[K, V](maxLevel, Option{Seed: seed})
	require.NoError(t, err)
	return s
}

// checkInvariants 檢查每一層的排序、雙向連結與 tower 連結
func checkInvariants[K int | string, V any](t *testing.T, s *Skiplist[K, V]) {
	t.Helper()
	total := 0
	for i := range s.levels {
		lv := &s.levels[i]
		count := 0
		prev := nilHandle
		for h := lv.head; h != nilHandle; h = s.nodes.at(h).next {
			n := s.nodes.at(h)
			require.True(t, n.live, "level %d: dead node in chain", i)
			require.Equal(t, prev, n.prev, "level %d: broken prev link", i)
			if prev != nilHandle {
				require.Less(t, s.nodes.at(prev).key, n.key, "level %d: keys not ascending", i)
			}
			if i == 0 {
				require.Equal(t, nilHandle, n.below)
			} else {
				require.NotEqual(t, nilHandle, n.below, "level %d: key %v has no tower below", i, n.key)
				b := s.nodes.at(n.below)
				require.Equal(t, n.key, b.key)
				require.Equal(t, h, b.above)
			}
			if n.above != nilHandle {
				require.Equal(t, h, s.nodes.at(n.above).below)
			}
			prev = h
			count++
		}
		require.Equal(t, prev, lv.tail, "level %d: tail mismatch", i)
		require.Equal(t, lv.length, count, "level %d: length mismatch", i)
		if i > 0 {
			require.LessOrEqual(t, count, s.levels[i-1].length)
		}
		total += count
	}
	require.Equal(t, s.size, s.levels[0].length)
	require.Equal(t, total, s.nodes.inUse())
}

func collect[K int | string, V any](s *Skiplist[K, V], backward bool) []V {
	var out []V
	seq := s.Values()
	if backward {
		seq = s.ValuesBackward()
	}
	for v := range seq {
		out = append(out, v)
	}
	return out
}

func TestNewInvalidMaxLevel(t *testing.T) {
	for _, lvl := range []int{0, -3} {
		s, err := New[int, string](lvl)
		assert.Nil(t, s)
		assert.ErrorIs(t, err, ErrInvalidMaxLevel)
	}

	s, err := New[int, string](1)
	require.NoError(t, err)
	assert.Equal(t, 1, s.MaxLevel())
}

func TestBasic(t *testing.T) {
	s := newTestList[int, string](t, 8, 42)
	for i, k := range []int{5, 1, 9, 3} {
		s.Set(k, []string{"e", "a", "i", "c"}[i])
	}

	assert.Equal(t, []string{"a", "c", "e", "i"}, collect(s, false))
	assert.Equal(t, []string{"i", "e", "c", "a"}, collect(s, true))

	v, ok := s.Find(9)
	assert.True(t, ok)
	assert.Equal(t, "i", v)

	assert.True(t, s.Remove(1))
	assert.Equal(t, []string{"c", "e", "i"}, collect(s, false))
	_, ok = s.Find(1)
	assert.False(t, ok)
	assert.Equal(t, 3, s.Len())
	checkInvariants(t, s)
}

func TestEmpty(t *testing.T) {
	s := newTestList[int, int](t, 4, 1)
	_, ok := s.Find(3)
	assert.False(t, ok)
	assert.False(t, s.Remove(3))
	assert.Empty(t, collect(s, false))
	assert.Equal(t, 0, s.Height())
	assert.Equal(t, "[size=0,height=0]\n", s.String())

	_, _, ok = s.Cursor().Next()
	assert.False(t, ok)
}

func TestOverwrite(t *testing.T) {
	s := newTestList[int, string](t, 16, 7)
	for i := range 200 {
		s.Set(i, "v1")
	}
	before := s.LevelCounts()
	for i := range 200 {
		s.Set(i, "v2")
	}

	assert.Equal(t, before, s.LevelCounts())
	assert.Equal(t, 200, s.Len())
	for i := range 200 {
		v, ok := s.Find(i)
		require.True(t, ok)
		require.Equal(t, "v2", v)
	}
	checkInvariants(t, s)
}

func TestRemoveAllLevels(t *testing.T) {
	s := newTestList[int, int](t, 16, 3)
	for i := range 500 {
		s.Set(i, i*10)
	}
	for i := 0; i < 500; i += 2 {
		require.True(t, s.Remove(i))
	}
	checkInvariants(t, s)

	for lv := range s.MaxLevel() {
		for _, k := range s.LevelKeys(lv) {
			require.Equal(t, 1, k%2, "removed key %d still on level %d", k, lv)
		}
	}
	for i := range 500 {
		v, ok := s.Find(i)
		if i%2 == 0 {
			assert.False(t, ok)
		} else {
			assert.True(t, ok)
			assert.Equal(t, i*10, v)
		}
	}
	assert.Equal(t, 250, s.Len())
}

func TestRemoveAbsent(t *testing.T) {
	s := newTestList[int, int](t, 8, 9)
	for _, k := range []int{10, 20, 30} {
		s.Set(k, k)
	}
	before := collect(s, false)
	counts := s.LevelCounts()

	for _, k := range []int{0, 15, 25, 40} {
		assert.False(t, s.Remove(k))
	}
	assert.Equal(t, before, collect(s, false))
	assert.Equal(t, counts, s.LevelCounts())
	checkInvariants(t, s)
}

func TestRandom(t *testing.T) {
	const (
		N    = 5000
		seed = 0xa30378d2
	)
	rnd := rand.New(rand.NewSource(seed))
	s := newTestList[int, int](t, 20, seed)
	ref := make(map[int]int)

	for i := range N {
		k := rnd.Intn(N / 2)
		switch rnd.Intn(4) {
		case 0:
			_, present := ref[k]
			assert.Equal(t, present, s.Remove(k))
			delete(ref, k)
		default:
			s.Set(k, i)
			ref[k] = i
		}
	}
	checkInvariants(t, s)
	require.Equal(t, len(ref), s.Len())

	keys := make([]int, 0, len(ref))
	for k := range ref {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	assert.Equal(t, keys, s.Keys())

	left := math.MinInt
	for k, v := range s.All() {
		require.Less(t, left, k)
		require.Equal(t, ref[k], v)
		left = k
	}

	forward := collect(s, false)
	backward := collect(s, true)
	slices.Reverse(backward)
	assert.Equal(t, forward, backward)
}

func TestStringKeys(t *testing.T) {
	faker := gofakeit.New(42)
	s := newTestList[string, int](t, 12, 42)
	ref := make(map[string]int)
	for i := range 1000 {
		k := faker.Username()
		s.Set(k, i)
		ref[k] = i
	}
	checkInvariants(t, s)
	assert.Equal(t, len(ref), s.Len())
	for k, want := range ref {
		got, ok := s.Find(k)
		require.True(t, ok)
		require.Equal(t, want, got)
	}
	assert.True(t, slices.IsSorted(s.Keys()))
}

func TestLevelPopulation(t *testing.T) {
	const N = 1000
	s := newTestList[int, int](t, 16, 20240601)
	for i := range N {
		s.Set(i, i)
	}
	checkInvariants(t, s)

	counts := s.LevelCounts()
	assert.Equal(t, N, counts[0])
	for lv := 1; lv <= 4; lv++ {
		expect := float64(N) / math.Pow(2, float64(lv))
		got := float64(counts[lv])
		assert.InDelta(t, expect, got, expect/2, "level %d: got %d nodes", lv, counts[lv])
	}
}

func TestScriptedPromotion(t *testing.T) {
	var flips []bool
	coin := CoinFunc(func() bool {
		f := flips[0]
		flips = flips[1:]
		return f
	})
	s, err := NewWithOption[int, string](3, Option{Coin: coin})
	require.NoError(t, err)

	// 10 升兩層 (第二次升到 maxLevel 後就不再擲)，20 不升，30 升一層
	flips = []bool{true, true}
	s.Set(10, "a")
	flips = []bool{false}
	s.Set(20, "b")
	flips = []bool{true, false}
	s.Set(30, "c")
	require.Empty(t, flips)

	assert.Equal(t, []int{10, 20, 30}, s.LevelKeys(0))
	assert.Equal(t, []int{10, 30}, s.LevelKeys(1))
	assert.Equal(t, []int{10}, s.LevelKeys(2))
	assert.Nil(t, s.LevelKeys(3))
	assert.Equal(t, []int{3, 2, 1}, s.LevelCounts())
	assert.Equal(t, 3, s.Height())

	// 覆寫不會擲硬幣
	s.Set(30, "C")
	v, ok := s.Find(30)
	assert.True(t, ok)
	assert.Equal(t, "C", v)

	s.Remove(10)
	assert.Equal(t, []int{2, 1, 0}, s.LevelCounts())
	assert.Equal(t, 2, s.Height())
	checkInvariants(t, s)

	assert.Equal(t, "[size=2,height=2]\nlevel 1 (1): 30\nlevel 0 (2): 20 30\n", s.String())
	assert.Equal(t, "[size=2,height=2]\nlevel 1 (1): 30\nlevel 0 (2): 30 20\n", s.ReverseString())
}

func TestDeterministicSeed(t *testing.T) {
	a := newTestList[int, int](t, 12, 99)
	b := newTestList[int, int](t, 12, 99)
	for i := range 300 {
		a.Set(i, i)
		b.Set(i, i)
	}
	for lv := range a.MaxLevel() {
		assert.Equal(t, a.LevelKeys(lv), b.LevelKeys(lv))
	}
}

func TestCursor(t *testing.T) {
	s := newTestList[int, string](t, 4, 5)
	for i, k := range []int{3, 1, 2} {
		s.Set(k, []string{"c", "a", "b"}[i])
	}

	c := s.Cursor()
	var got []string
	for _, v, ok := c.Next(); ok; _, v, ok = c.Next() {
		got = append(got, v)
	}
	assert.Equal(t, []string{"a", "b", "c"}, got)

	// 走完後重新從頭開始
	k, v, ok := c.Next()
	assert.True(t, ok)
	assert.Equal(t, 1, k)
	assert.Equal(t, "a", v)

	c.Reset()
	k, _, _ = c.Next()
	assert.Equal(t, 1, k)

	rc := s.ReverseCursor()
	got = got[:0]
	for _, v, ok := rc.Next(); ok; _, v, ok = rc.Next() {
		got = append(got, v)
	}
	assert.Equal(t, []string{"c", "b", "a"}, got)
}

func TestIterStop(t *testing.T) {
	s := newTestList[int, int](t, 4, 5)
	for i := range 10 {
		s.Set(i, i)
	}
	var got []int
	for k := range s.All() {
		if k == 3 {
			break
		}
		got = append(got, k)
	}
	assert.Equal(t, []int{0, 1, 2}, got)

	got = got[:0]
	for v := range s.ValuesBackward() {
		if v == 6 {
			break
		}
		got = append(got, v)
	}
	assert.Equal(t, []int{9, 8, 7}, got)
}

func TestArenaReuse(t *testing.T) {
	s := newTestList[int, int](t, 8, 11)
	for i := range 100 {
		s.Set(i, i)
	}
	slots := len(s.nodes.nodes)
	for round := range 5 {
		for i := range 100 {
			s.Remove(i)
		}
		require.Equal(t, 0, s.nodes.inUse())
		for i := range 100 {
			s.Set(i, i+round)
		}
		checkInvariants(t, s)
	}
	// 重新插入的高度不同，arena 只會因多出來的 tower 節點成長
	assert.LessOrEqual(t, len(s.nodes.nodes), slots*2)
}

func TestClear(t *testing.T) {
	s := newTestList[int, int](t, 8, 11)
	for i := range 50 {
		s.Set(i, i)
	}
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.Height())
	assert.Empty(t, s.Keys())
	s.Set(1, 1)
	checkInvariants(t, s)
}

func TestFindSteps(t *testing.T) {
	const N = 1 << 14
	s := newTestList[int, int](t, 32, 1)
	for i := range N {
		s.Set(i*2, i)
	}
	total := 0
	for i := range N {
		_, ok := s.Find(i * 2)
		require.True(t, ok)
		total += s.LastSteps()
	}
	avg := float64(total) / N
	assert.Less(t, avg, 5*math.Log2(N))

	s.Find(-1)
	assert.Positive(t, s.LastSteps())
}

func TestTrace(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetLevel(logrus.DebugLevel)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	s, err := NewWithOption[int, int](4, Option{Seed: 1, Trace: true, Logger: logger})
	require.NoError(t, err)
	s.Set(1, 1)
	s.Find(1)
	s.Remove(1)

	out := buf.String()
	assert.Contains(t, out, "op=set")
	assert.Contains(t, out, "op=find")
	assert.Contains(t, out, "op=remove")
	assert.Contains(t, out, "steps=")
}

func BenchmarkTowerWrite(b *testing.B) {
	s, _ := NewWithOption[int, int](24, Option{Seed: 1})
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < b.N; i++ {
		s.Set(rnd.Int(), i)
	}
}

func BenchmarkTowerRead(b *testing.B) {
	const N = 1 << 20
	s, _ := NewWithOption[int, int](24, Option{Seed: 1})
	data := make([]int, N)
	rnd := rand.New(rand.NewSource(1))
	for i := range data {
		data[i] = rnd.Int()
		s.Set(data[i], i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Find(data[i%N])
	}
}

func BenchmarkHuanduWrite(b *testing.B) {
	s := hskiplist.New(hskiplist.Int)
	rnd := rand.New(rand.NewSource(1))
	for i := 0; i < b.N; i++ {
		s.Set(rnd.Int(), i)
	}
}

func BenchmarkHuanduRead(b *testing.B) {
	const N = 1 << 20
	s := hskiplist.New(hskiplist.Int)
	data := make([]int, N)
	rnd := rand.New(rand.NewSource(1))
	for i := range data {
		data[i] = rnd.Int()
		s.Set(data[i], i)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = s.Get(data[i%N])
	}
}
