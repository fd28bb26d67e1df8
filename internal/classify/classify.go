// Package classify turns raw on-chain amounts into fixed-precision display
// strings and flags transfers that meet a chain's static alert threshold.
//
// Every function here is pure: no I/O, no clock, no shared state.
package classify

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ErrNegativeAmount is returned when a raw value or fee is below zero.
var ErrNegativeAmount = errors.New("negative amount")

const (
	// weiExponent scales wei to ETH.
	weiExponent = -18
	// satoshiExponent scales satoshi to BTC.
	satoshiExponent = -8

	// EthPlaces is the fixed number of decimals of ETH amounts.
	EthPlaces = 4
	// BtcPlaces is the fixed number of decimals of BTC amounts and fees.
	BtcPlaces = 8
)

var (
	// EthThreshold is the static alert threshold for Ethereum transfers, in ETH.
	EthThreshold = decimal.NewFromInt(100)
	// BtcThreshold is the static alert threshold for Bitcoin transfers, in BTC.
	BtcThreshold = decimal.NewFromInt(10)
)

// Result is the classification of a single amount.
type Result struct {
	Value   string // amount in the chain-native unit, fixed precision
	IsAlert bool   // Value >= threshold, compared on the unrounded amount
	Rule    string // human readable rule; empty unless IsAlert
}

// UtxoResult is the classification of a UTXO-chain transaction.
type UtxoResult struct {
	Result
	Fee string // fee in the chain-native unit, fixed precision
}

// Amount classifies value against threshold, formatting it with places
// decimals. rule is attached only when the threshold is met; the boundary is
// inclusive.
func Amount(value decimal.Decimal, places int32, threshold decimal.Decimal, rule string) (Result, error) {
	if value.IsNegative() {
		return Result{}, fmt.Errorf("%w: %s", ErrNegativeAmount, value)
	}

	res := Result{
		Value:   value.StringFixed(places),
		IsAlert: value.GreaterThanOrEqual(threshold),
	}
	if res.IsAlert {
		res.Rule = rule
	}

	return res, nil
}

// EthRule describes the Ethereum rule for threshold.
func EthRule(threshold decimal.Decimal) string {
	return fmt.Sprintf("large ETH transfer >= %s ETH", threshold)
}

// BtcRule describes the Bitcoin rule for threshold.
func BtcRule(threshold decimal.Decimal) string {
	return fmt.Sprintf("large BTC transfer >= %s BTC", threshold)
}

// Account classifies an Ethereum transfer of wei. A nil wei counts as zero.
func Account(wei *big.Int, threshold decimal.Decimal) (Result, error) {
	if wei == nil {
		wei = new(big.Int)
	}

	value := decimal.NewFromBigInt(wei, weiExponent)
	return Amount(value, EthPlaces, threshold, EthRule(threshold))
}

// Utxo classifies a Bitcoin transaction given its value and fee in satoshi.
func Utxo(valueSats, feeSats int64, threshold decimal.Decimal) (UtxoResult, error) {
	fee := decimal.New(feeSats, satoshiExponent)
	if fee.IsNegative() {
		return UtxoResult{}, fmt.Errorf("%w: fee %s", ErrNegativeAmount, fee)
	}

	res, err := Amount(decimal.New(valueSats, satoshiExponent), BtcPlaces, threshold, BtcRule(threshold))
	if err != nil {
		return UtxoResult{}, err
	}

	return UtxoResult{
		Result: res,
		Fee:    fee.StringFixed(BtcPlaces),
	}, nil
}
