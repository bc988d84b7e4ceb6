package types

import (
	"time"

	"github.com/soon-network/soonscan/pkg/utils"
)

// Block is the normalized form of a block reply from either RPC dialect.
// Number and Timestamp keep the textual form the node returned (hex or decimal).
type Block struct {
	Number       string        `json:"number"`
	Timestamp    string        `json:"timestamp"`
	Hash         string        `json:"hash"`
	ParentHash   string        `json:"parentHash"`
	Slot         uint64        `json:"slot"`
	BlockHeight  *uint64       `json:"blockHeight,omitempty"`
	Transactions []Transaction `json:"transactions"`
}

// NumberValue parses Number.
func (b *Block) NumberValue() (uint64, error) {
	return utils.ParseQuantity(b.Number)
}

// Time parses Timestamp as unix seconds.
func (b *Block) Time() (time.Time, error) {
	secs, err := utils.ParseQuantity(b.Timestamp)
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(int64(secs), 0).UTC(), nil
}
