package tower

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

// CoinSource 提供每一層升階判定用的硬幣，Flip 回傳 true 代表繼續往上升一層
type CoinSource interface {
	Flip() bool
}

// CoinFunc 讓一般函式可以當作 CoinSource 使用
type CoinFunc func() bool

func (f CoinFunc) Flip() bool {
	return f()
}

type randCoin struct {
	rng *rand.Rand
}

// NewRandCoin 回傳以 seed 初始化的公正硬幣
func NewRandCoin(seed int64) CoinSource {
	return &randCoin{rng: rand.New(rand.NewSource(seed))}
}

func (c *randCoin) Flip() bool {
	return c.rng.Int63()&1 == 1
}

// Option 是建立 Skiplist 時的選項
type Option struct {
	// Seed 在 Coin 為 nil 時用來建立預設硬幣
	Seed int64
	// Coin 非 nil 時取代預設硬幣
	Coin CoinSource
	// Trace 開啟後每次操作都會以 debug 等級記錄比較步數與各層節點數
	Trace bool
	// Logger 為 nil 時使用 logrus 的標準 logger
	Logger *logrus.Logger
}

func (o Option) coin() CoinSource {
	if o.Coin != nil {
		return o.Coin
	}
	return NewRandCoin(o.Seed)
}

func (o Option) logger() *logrus.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return logrus.StandardLogger()
}
