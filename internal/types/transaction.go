package types

import "github.com/soon-network/soonscan/pkg/utils"

// Units of Transaction.Value.
const (
	UnitWei      = "wei"
	UnitLamports = "lamports"
)

// Transaction is the normalized form of a transaction entry. Value is the raw
// hex or decimal amount, or empty when the reply carried none. ValueUnit tells
// how Value is denominated: wei for Ethereum-style replies, lamports for the
// balance delta of slot-style replies.
type Transaction struct {
	Hash      string `json:"hash"`
	From      string `json:"from"`
	To        string `json:"to"`
	Value     string `json:"value"`
	Signature string `json:"signature"`
	Slot      uint64 `json:"slot"`
	ValueUnit string `json:"valueUnit,omitempty"`
}

// DisplayValue renders Value in SOON. A value without a unit is read as wei.
func (t Transaction) DisplayValue() string {
	if t.ValueUnit == UnitLamports {
		return utils.FormatSOON(t.Value, utils.LamportDecimals)
	}
	return utils.FormatSOON(t.Value, utils.WeiDecimals)
}
