package scanner

import "math/big"

// AccountTx is a classified account-chain (Ethereum) transaction as
// published to observers and kept in history.
type AccountTx struct {
	ID          string  `json:"id"`
	TxHash      string  `json:"txHash"`
	BlockNumber uint64  `json:"blockNumber"`
	From        string  `json:"from"`
	To          *string `json:"to"`
	ValueEth    string  `json:"valueEth"`
	IsAlert     bool    `json:"isAlert"`
	Rule        string  `json:"rule,omitempty"`
	CreatedAt   int64   `json:"createdAt"`
}

// UtxoTx is a classified UTXO-chain (Bitcoin) mempool transaction.
type UtxoTx struct {
	ID        string `json:"id"`
	Txid      string `json:"txid"`
	ValueBtc  string `json:"valueBtc"`
	FeeBtc    string `json:"feeBtc"`
	Vsize     int64  `json:"vsize"`
	IsAlert   bool   `json:"isAlert"`
	Rule      string `json:"rule,omitempty"`
	CreatedAt int64  `json:"createdAt"`
}

// Block is a block header with its transaction hashes in block order.
type Block struct {
	Number   uint64
	TxHashes []string
}

// Transaction is the raw account-chain transfer returned by AccountChain.
type Transaction struct {
	Hash  string
	From  string
	To    *string  // nil for contract creation
	Value *big.Int // wei
}

// MempoolTx is one entry of the UTXO chain's recent mempool feed.
type MempoolTx struct {
	Txid  string
	Value int64 // satoshi
	Fee   int64 // satoshi
	Vsize int64
}
