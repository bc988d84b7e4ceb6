package sdk

// BlockData is a block as reported by getBlock.
type BlockData struct {
	Slot              uint64            `json:"slot"`
	Blockhash         string            `json:"blockhash"`
	PreviousBlockhash string            `json:"previousBlockhash"`
	ParentSlot        uint64            `json:"parentSlot"`
	Transactions      []TransactionData `json:"transactions"`
	BlockTime         *int64            `json:"blockTime"`
	BlockHeight       *uint64           `json:"blockHeight"`
}

// TransactionData is a transaction flattened to its first two account keys.
// Amount is the lamport balance change of the second account.
type TransactionData struct {
	Signature          string  `json:"signature"`
	Slot               uint64  `json:"slot"`
	Err                any     `json:"err"`
	Memo               *string `json:"memo"`
	BlockTime          *int64  `json:"blockTime"`
	ConfirmationStatus string  `json:"confirmationStatus"`
	From               string  `json:"from"`
	To                 string  `json:"to"`
	Amount             int64   `json:"amount"`
}

// AccountInfo is an account balance in SOON plus its recent transactions.
type AccountInfo struct {
	Address      string            `json:"address"`
	Balance      float64           `json:"balance"`
	Transactions []TransactionData `json:"transactions"`
}

// SignatureInfo is one entry of getSignaturesForAddress.
type SignatureInfo struct {
	Signature          string  `json:"signature"`
	Slot               uint64  `json:"slot"`
	Err                any     `json:"err"`
	Memo               *string `json:"memo"`
	BlockTime          *int64  `json:"blockTime"`
	ConfirmationStatus string  `json:"confirmationStatus"`
}

// QueryOptions selects a range of blocks for Client.Blocks.
//
// Without FromBlock the range covers the Limit slots just before the latest
// slot; the latest slot itself is not included. Offset shifts the start forward. StartTime and EndTime (unix seconds, inclusive) drop blocks outside
// the window; blocks without a block time are dropped when either is set.
type QueryOptions struct {
	Limit     int
	Offset    int
	FromBlock *uint64
	ToBlock   *uint64
	StartTime *int64
	EndTime   *int64

	// Progress, if set, is called after each slot of the range is attempted.
	Progress func(done, total int)
}
