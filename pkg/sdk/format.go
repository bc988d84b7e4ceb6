package sdk

import "encoding/json"

type rawBlock struct {
	Slot              *uint64          `json:"slot"`
	Blockhash         string           `json:"blockhash"`
	PreviousBlockhash string           `json:"previousBlockhash"`
	ParentSlot        uint64           `json:"parentSlot"`
	Transactions      []rawTransaction `json:"transactions"`
	BlockTime         *int64           `json:"blockTime"`
	BlockHeight       *uint64          `json:"blockHeight"`
}

type rawTransaction struct {
	Signature          string  `json:"signature"`
	Slot               *uint64 `json:"slot"`
	Err                any     `json:"err"`
	Memo               *string `json:"memo"`
	BlockTime          *int64  `json:"blockTime"`
	ConfirmationStatus string  `json:"confirmationStatus"`
	Transaction        *struct {
		Signatures []string `json:"signatures"`
		Message    struct {
			AccountKeys []json.RawMessage `json:"accountKeys"`
		} `json:"message"`
	} `json:"transaction"`
	Meta *struct {
		Err          any     `json:"err"`
		PreBalances  []int64 `json:"preBalances"`
		PostBalances []int64 `json:"postBalances"`
	} `json:"meta"`
}

type rawAccountInfo struct {
	Lamports *uint64 `json:"lamports"`
	Value    *struct {
		Lamports uint64 `json:"lamports"`
	} `json:"value"`
}

func (a *rawAccountInfo) lamports() uint64 {
	switch {
	case a == nil:
		return 0
	case a.Value != nil:
		return a.Value.Lamports
	case a.Lamports != nil:
		return *a.Lamports
	default:
		return 0
	}
}

// formatBlock converts a getBlock reply. Transactions inherit the block's slot
// and time, which getBlock does not repeat per entry.
func formatBlock(rb *rawBlock, slot uint64) BlockData {
	if rb.Slot != nil {
		slot = *rb.Slot
	}
	b := BlockData{
		Slot:              slot,
		Blockhash:         rb.Blockhash,
		PreviousBlockhash: rb.PreviousBlockhash,
		ParentSlot:        rb.ParentSlot,
		Transactions:      make([]TransactionData, 0, len(rb.Transactions)),
		BlockTime:         rb.BlockTime,
		BlockHeight:       rb.BlockHeight,
	}
	for i := range rb.Transactions {
		tx := formatTransaction(&rb.Transactions[i])
		if rb.Transactions[i].Slot == nil {
			tx.Slot = slot
		}
		if tx.BlockTime == nil {
			tx.BlockTime = rb.BlockTime
		}
		b.Transactions = append(b.Transactions, tx)
	}
	return b
}

func formatTransaction(rt *rawTransaction) TransactionData {
	tx := TransactionData{
		Signature:          rt.Signature,
		Err:                rt.Err,
		Memo:               rt.Memo,
		BlockTime:          rt.BlockTime,
		ConfirmationStatus: rt.ConfirmationStatus,
	}
	if rt.Slot != nil {
		tx.Slot = *rt.Slot
	}
	if rt.Transaction != nil {
		if len(rt.Transaction.Signatures) > 0 && rt.Transaction.Signatures[0] != "" {
			tx.Signature = rt.Transaction.Signatures[0]
		}
		keys := rt.Transaction.Message.AccountKeys
		if len(keys) > 0 {
			tx.From = accountKey(keys[0])
		}
		if len(keys) > 1 {
			tx.To = accountKey(keys[1])
		}
	}
	if rt.Meta != nil {
		if tx.Err == nil {
			tx.Err = rt.Meta.Err
		}
		if len(rt.Meta.PreBalances) > 1 && len(rt.Meta.PostBalances) > 1 {
			tx.Amount = rt.Meta.PostBalances[1] - rt.Meta.PreBalances[1]
		}
	}
	return tx
}

// accountKey reads a key in plain or jsonParsed ({"pubkey": ...}) form.
func accountKey(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Pubkey string `json:"pubkey"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Pubkey
	}
	return ""
}
