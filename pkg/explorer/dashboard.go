package explorer

import (
	"math"

	"github.com/soon-network/soonscan/internal/types"
)

// ChartPoint is one point of the transactions-per-block series. Timestamp is
// in unix milliseconds.
type ChartPoint struct {
	Number       uint64 `json:"number"`
	Transactions int    `json:"transactions"`
	Timestamp    int64  `json:"timestamp"`
}

// Dashboard summarizes a newest-first list of blocks.
type Dashboard struct {
	Blocks            []types.Block `json:"blocks"`
	LatestBlock       *uint64       `json:"latestBlock,omitempty"`
	AverageBlockTime  *float64      `json:"averageBlockTime,omitempty"` // seconds
	TotalTransactions int           `json:"totalTransactions"`
	Chart             []ChartPoint  `json:"chart"`
}

// BuildDashboard derives the overview figures from blocks, which must be
// ordered newest first as returned by Service.LatestBlocks. Blocks whose number
// or timestamp cannot be parsed are left out of the chart.
func BuildDashboard(blocks []types.Block) Dashboard {
	d := Dashboard{
		Blocks: blocks,
		Chart:  make([]ChartPoint, 0, len(blocks)),
	}
	if len(blocks) == 0 {
		return d
	}

	if n, err := blocks[0].NumberValue(); err == nil {
		d.LatestBlock = &n
	}

	newest, errNewest := blocks[0].Time()
	oldest, errOldest := blocks[len(blocks)-1].Time()
	if len(blocks) > 1 && errNewest == nil && errOldest == nil {
		avg := newest.Sub(oldest).Seconds() / float64(len(blocks))
		avg = math.Round(avg*100) / 100
		d.AverageBlockTime = &avg
	}

	for i := len(blocks) - 1; i >= 0; i-- {
		b := blocks[i]
		d.TotalTransactions += len(b.Transactions)

		n, err := b.NumberValue()
		if err != nil {
			continue
		}
		ts, err := b.Time()
		if err != nil {
			continue
		}
		d.Chart = append(d.Chart, ChartPoint{
			Number:       n,
			Transactions: len(b.Transactions),
			Timestamp:    ts.UnixMilli(),
		})
	}
	return d
}
