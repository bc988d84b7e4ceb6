package utils

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

const lamportsPerSOON = 1e9

// Decimals of the base units nodes report amounts in.
const (
	WeiDecimals     = 18
	LamportDecimals = 9
)

// ParseQuantity parses a block number, timestamp or amount that is either a
// 0x-prefixed hex quantity or a plain decimal string.
func ParseQuantity(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errors.New("empty quantity")
	}
	if !has0xPrefix(s) {
		return strconv.ParseUint(s, 10, 64)
	}
	v, err := hexutil.DecodeUint64(s)
	if errors.Is(err, hexutil.ErrLeadingZero) {
		// Some nodes pad quantities; accept them anyway.
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return v, err
}

// EncodeQuantity encodes v as a 0x-prefixed hex quantity.
func EncodeQuantity(v uint64) string {
	return hexutil.EncodeUint64(v)
}

// FormatSOON renders a hex or decimal amount of a base unit with the given
// decimals as SOON with six decimals. Unparseable values render as "0 SOON".
func FormatSOON(value string, decimals int) string {
	v, err := parseBig(value)
	if err != nil {
		return "0 SOON"
	}
	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	f := new(big.Float).Quo(new(big.Float).SetInt(v), new(big.Float).SetInt(unit))
	return fmt.Sprintf("%s SOON", f.Text('f', 6))
}

// LamportsToSOON converts a lamport balance to whole SOON.
func LamportsToSOON(lamports uint64) float64 {
	return float64(lamports) / lamportsPerSOON
}

func parseBig(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if has0xPrefix(s) {
		if v, ok := new(big.Int).SetString(s[2:], 16); ok {
			return v, nil
		}
		return nil, fmt.Errorf("invalid hex value %q", s)
	}
	if v, ok := new(big.Int).SetString(s, 10); ok {
		return v, nil
	}
	return nil, fmt.Errorf("invalid decimal value %q", s)
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}
