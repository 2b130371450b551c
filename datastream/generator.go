package datastream

import (
	"math"
	"math/rand"
	"sort"

	"github.com/Hakuto4838/TowerList.git/skiplist"
)

// cdfGenerator 以 CDF 二分搜尋抽樣，weights[i] 是索引 i 的機率
type cdfGenerator struct {
	weights []float64
	cdf     []float64
	rng     *rand.Rand
}

func newCDFGenerator(weights []float64, rng *rand.Rand) cdfGenerator {
	cdf := make([]float64, len(weights))
	sum := 0.0
	for i, w := range weights {
		sum += w
		cdf[i] = sum
	}
	return cdfGenerator{weights: weights, cdf: cdf, rng: rng}
}

// Next 產生一筆查詢 (回傳索引 0~n-1)
func (g *cdfGenerator) Next() int {
	i := sort.SearchFloat64s(g.cdf, g.rng.Float64())
	return min(i, len(g.cdf)-1)
}

// GenerateSequence 產生指定長度的查詢序列
func (g *cdfGenerator) GenerateSequence(seqLen int) []int {
	seq := make([]int, seqLen)
	for i := range seq {
		seq[i] = g.Next()
	}
	return seq
}

func (g *cdfGenerator) GetKeyMap() map[skiplist.K]float64 {
	result := make(map[skiplist.K]float64, len(g.weights))
	for i, w := range g.weights {
		result[skiplist.K(i)] = w
	}
	return result
}

func (g *cdfGenerator) Entropy() float64 {
	h := 0.0
	for _, p := range g.weights {
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}

// ZipfDataGenerator 產生符合 Zipf 分布的查詢序列，權重 1/(i+b)^a 打亂後對應到索引
type ZipfDataGenerator struct {
	cdfGenerator
	a, b float64
}

func NewZipfDataGenerator(n int, a, b float64, seed int64) *ZipfDataGenerator {
	rng := rand.New(rand.NewSource(seed))
	weights := make([]float64, n)
	var sum float64
	for i := 1; i <= n; i++ {
		weights[i-1] = 1.0 / math.Pow(float64(i)+b, a)
		sum += weights[i-1]
	}
	for i := range weights {
		weights[i] /= sum
	}
	rng.Shuffle(len(weights), func(i, j int) {
		weights[i], weights[j] = weights[j], weights[i]
	})
	return &ZipfDataGenerator{cdfGenerator: newCDFGenerator(weights, rng), a: a, b: b}
}

// UniformDataGenerator 產生符合平均分布的查詢序列
type UniformDataGenerator struct {
	cdfGenerator
}

func NewUniformDataGenerator(n int, seed int64) *UniformDataGenerator {
	weights := make([]float64, n)
	for i := range weights {
		weights[i] = 1.0 / float64(n)
	}
	return &UniformDataGenerator{cdfGenerator: newCDFGenerator(weights, rand.New(rand.NewSource(seed)))}
}
