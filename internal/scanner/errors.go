package scanner

import "fmt"

const (
	// ChainEthereum labels account-chain logs, errors and metrics.
	ChainEthereum = "ethereum"
	// ChainBitcoin labels UTXO-chain logs, errors and metrics.
	ChainBitcoin = "bitcoin"
)

// FetchError reports a failed read from a chain source. It aborts the tick
// it happened in; the next tick starts over from the unchanged cursor.
type FetchError struct {
	Chain string // ChainEthereum or ChainBitcoin
	Query string // method or endpoint that failed
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Chain, e.Query, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
