package format

import (
	"errors"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidNumber is returned for amounts that are not plain decimals
var ErrInvalidNumber = errors.New("invalid number")

// EtherDecimals is the number of wei in one ether, as a power of ten
const EtherDecimals = 18

// ParseUnits converts a decimal amount string to its integer base-unit value,
// rounding fractional digits beyond decimals half away from zero.
func ParseUnits(amount string, decimals int) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" || strings.ContainsAny(amount, "eE") {
		return nil, ErrInvalidNumber
	}
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, ErrInvalidNumber
	}
	return d.Shift(int32(decimals)).Round(0).BigInt(), nil
}

// FormatUnits renders a base-unit integer as a decimal string without
// trailing zeros, e.g. 1500000 with 6 decimals is "1.5".
func FormatUnits(value *big.Int, decimals int) string {
	if value == nil {
		return "0"
	}
	return decimal.NewFromBigInt(value, -int32(decimals)).String()
}

// WeiToEther renders wei as ether with a fixed number of decimals
func WeiToEther(wei *big.Int, decimals int) string {
	if wei == nil {
		wei = new(big.Int)
	}
	return decimal.NewFromBigInt(wei, -EtherDecimals).StringFixed(int32(decimals))
}

// EtherToWei converts an ether amount to wei, dropping sub-wei precision
func EtherToWei(ether string) (*big.Int, error) {
	ether = strings.TrimSpace(ether)
	d, err := decimal.NewFromString(ether)
	if err != nil || ether == "" {
		return nil, ErrInvalidNumber
	}
	return d.Shift(EtherDecimals).Floor().BigInt(), nil
}

// GasPrice formats a wei gas price in Gwei, e.g. "25.50 Gwei"
func GasPrice(wei *big.Int) string {
	if wei == nil {
		wei = new(big.Int)
	}
	return decimal.NewFromBigInt(wei, -9).StringFixed(2) + " Gwei"
}
