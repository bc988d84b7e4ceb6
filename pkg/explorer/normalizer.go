package explorer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/soon-network/soonscan/internal/types"
	"github.com/soon-network/soonscan/pkg/utils"
)

// Raw replies are decoded into pointer fields so that "absent" and "present but
// empty" stay distinguishable; the first present field wins.

type rawBlock struct {
	// Ethereum-style
	Hash       *string `json:"hash"`
	ParentHash *string `json:"parentHash"`
	Number     *text   `json:"number"`
	Timestamp  *text   `json:"timestamp"`

	// Slot-style
	Blockhash         *string `json:"blockhash"`
	PreviousBlockhash *string `json:"previousBlockhash"`
	BlockTime         *int64  `json:"blockTime"`
	BlockHeight       *uint64 `json:"blockHeight"`

	Transactions []json.RawMessage `json:"transactions"`
}

type rawTransaction struct {
	// Ethereum-style
	Hash        *string `json:"hash"`
	From        *string `json:"from"`
	To          *string `json:"to"`
	Value       *text   `json:"value"`
	BlockNumber *text   `json:"blockNumber"`

	// Slot-style
	Signature   *string         `json:"signature"`
	Slot        *uint64         `json:"slot"`
	Transaction *rawSlotMessage `json:"transaction"`
	Meta        *rawMeta        `json:"meta"`
}

type rawSlotMessage struct {
	Signatures []string `json:"signatures"`
	Message    struct {
		AccountKeys []accountKey `json:"accountKeys"`
	} `json:"message"`
}

type rawMeta struct {
	PreBalances  []int64 `json:"preBalances"`
	PostBalances []int64 `json:"postBalances"`
}

// accountKey accepts both the plain base58 form and the jsonParsed {pubkey} form.
type accountKey string

func (k *accountKey) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*k = accountKey(s)
		return nil
	}
	var obj struct {
		Pubkey string `json:"pubkey"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("account key: %w", err)
	}
	*k = accountKey(obj.Pubkey)
	return nil
}

// text holds a quantity in the textual form the node used. JSON numbers are
// kept as their decimal literal.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*t = text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("quantity: %w", err)
	}
	*t = text(n.String())
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// NormalizeBlock maps a block reply of either dialect onto types.Block.
// blockTime is the result of a separate getBlockTime lookup, if one was made.
func NormalizeBlock(raw json.RawMessage, requestedSlot uint64, blockTime *int64) (types.Block, error) {
	if isNull(raw) {
		return types.Block{}, &BlockNotFoundError{Slot: requestedSlot}
	}
	var rb rawBlock
	if err := json.Unmarshal(raw, &rb); err != nil {
		return types.Block{}, fmt.Errorf("decode block %d: %w", requestedSlot, err)
	}

	b := types.Block{
		Hash:         firstString(rb.Hash, rb.Blockhash),
		ParentHash:   firstString(rb.ParentHash, rb.PreviousBlockhash),
		Number:       strconv.FormatUint(requestedSlot, 10),
		Slot:         requestedSlot,
		BlockHeight:  rb.BlockHeight,
		Transactions: make([]types.Transaction, 0, len(rb.Transactions)),
	}
	if rb.Number != nil {
		b.Number = string(*rb.Number)
	}
	switch {
	case rb.Timestamp != nil:
		b.Timestamp = string(*rb.Timestamp)
	case blockTime != nil:
		b.Timestamp = strconv.FormatInt(*blockTime, 10)
	case rb.BlockTime != nil:
		b.Timestamp = strconv.FormatInt(*rb.BlockTime, 10)
	}

	for i, entry := range rb.Transactions {
		tx, err := normalizeEntry(entry, requestedSlot)
		if err != nil {
			return types.Block{}, fmt.Errorf("block %d transaction %d: %w", requestedSlot, i, err)
		}
		b.Transactions = append(b.Transactions, tx)
	}
	return b, nil
}

// NormalizeTransaction maps a single transaction reply of either dialect onto
// types.Transaction. The slot comes from the reply when it carries one,
// otherwise slotHint is used.
func NormalizeTransaction(raw json.RawMessage, hash string, slotHint uint64) (types.Transaction, error) {
	if isNull(raw) {
		return types.Transaction{}, &TransactionNotFoundError{Hash: hash}
	}
	var rt rawTransaction
	if err := json.Unmarshal(raw, &rt); err != nil {
		return types.Transaction{}, fmt.Errorf("decode transaction %s: %w", hash, err)
	}
	slot := slotHint
	switch {
	case rt.Slot != nil:
		slot = *rt.Slot
	case rt.BlockNumber != nil:
		if n, err := utils.ParseQuantity(string(*rt.BlockNumber)); err == nil {
			slot = n
		}
	}
	return rt.normalize(slot), nil
}

// normalizeEntry handles one element of a block's transaction list, which is
// either a full object or a bare hash.
func normalizeEntry(entry json.RawMessage, slot uint64) (types.Transaction, error) {
	var hash string
	if err := json.Unmarshal(entry, &hash); err == nil {
		return types.Transaction{Hash: hash, Slot: slot}, nil
	}
	var rt rawTransaction
	if err := json.Unmarshal(entry, &rt); err != nil {
		return types.Transaction{}, err
	}
	return rt.normalize(slot), nil
}

func (rt *rawTransaction) normalize(slot uint64) types.Transaction {
	var (
		firstSig *string
		keys     []accountKey
	)
	if rt.Transaction != nil {
		if len(rt.Transaction.Signatures) > 0 {
			firstSig = &rt.Transaction.Signatures[0]
		}
		keys = rt.Transaction.Message.AccountKeys
	}

	tx := types.Transaction{
		Hash:      firstString(rt.Hash, firstSig, rt.Signature),
		From:      firstString(rt.From, keyAt(keys, 0)),
		To:        firstString(rt.To, keyAt(keys, 1)),
		Signature: firstString(firstSig, rt.Signature),
		Slot:      slot,
	}
	switch {
	case rt.Value != nil:
		tx.Value = string(*rt.Value)
		tx.ValueUnit = types.UnitWei
	case rt.Meta != nil && len(rt.Meta.PreBalances) > 1 && len(rt.Meta.PostBalances) > 1:
		tx.Value = strconv.FormatInt(rt.Meta.PostBalances[1]-rt.Meta.PreBalances[1], 10)
		tx.ValueUnit = types.UnitLamports
	}
	return tx
}

func keyAt(keys []accountKey, i int) *string {
	if i >= len(keys) {
		return nil
	}
	s := string(keys[i])
	return &s
}

func firstString(candidates ...*string) string {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return ""
}
