// Package util contains helper functions used around the code.
package util

import (
	"errors"
	"math/big"
	"strings"
)

// ErrBadAmount is returned when a decimal ether amount cannot be parsed.
var ErrBadAmount = errors.New("invalid decimal amount")

// weiPerEth is 10^18.
var weiPerEth = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// EthToWei converts a non-negative decimal ether amount such as "0.01" into wei. At most 18
// fractional digits are accepted since wei is the smallest unit.
func EthToWei(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "." || strings.HasPrefix(s, "-") || strings.HasPrefix(s, "+") {
		return nil, ErrBadAmount
	}
	intPart := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	if len(frac) > 18 || strings.ContainsAny(intPart+frac, "eExX.") {
		return nil, ErrBadAmount
	}
	frac += strings.Repeat("0", 18-len(frac))
	wei, ok := new(big.Int).SetString(intPart+frac, 10)
	if !ok || wei.Sign() < 0 {
		return nil, ErrBadAmount
	}
	return wei, nil
}

// WeiToEth formats a wei amount as a decimal ether string with trailing zeroes trimmed.
func WeiToEth(wei *big.Int) string {
	q, r := new(big.Int).QuoRem(wei, weiPerEth, new(big.Int))
	if r.Sign() == 0 {
		return q.String()
	}
	frac := r.String()
	frac = strings.Repeat("0", 18-len(frac)) + frac
	return q.String() + "." + strings.TrimRight(frac, "0")
}

// EthFloat returns the ether value of a wei amount as a float64. Only for monitoring gauges, the
// loss of precision makes it unsuitable for any amount arithmetic.
func EthFloat(wei *big.Int) float64 {
	f, _ := new(big.Float).Quo(new(big.Float).SetInt(wei), new(big.Float).SetInt(weiPerEth)).Float64()
	return f
}
