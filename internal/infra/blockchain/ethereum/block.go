package ethereum

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gabapcia/txalert/internal/pkg/types"
	"github.com/gabapcia/txalert/internal/pkg/validator"
	"github.com/gabapcia/txalert/internal/scanner"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

var (
	// ErrBlockNotFound is returned when the node answers null for a block.
	ErrBlockNotFound = errors.New("block not found")

	// ErrTransactionNotFound is returned when the node answers null for a
	// transaction, typically one that was dropped or reorged away.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// isNull reports whether a JSON-RPC result is absent or null.
func isNull(data json.RawMessage) bool {
	return len(data) == 0 || string(data) == "null"
}

type (
	// TransactionResponse holds the transaction fields read from
	// eth_getTransactionByHash.
	TransactionResponse struct {
		Hash  string       `json:"hash" validate:"hash32"`
		From  string       `json:"from" validate:"required"`
		To    *string      `json:"to"`
		Value *hexutil.Big `json:"value" validate:"required"`
	}

	// BlockResponse holds the block fields read from eth_getBlockByNumber
	// with hydration disabled, so Transactions are hashes.
	BlockResponse struct {
		Number       types.Hex `json:"number" validate:"required"`
		Hash         string    `json:"hash"`
		Transactions []string  `json:"transactions" validate:"dive,hash32"`
	}
)

func (t TransactionResponse) toScannerTransaction() scanner.Transaction {
	return scanner.Transaction{
		Hash:  t.Hash,
		From:  t.From,
		To:    t.To,
		Value: t.Value.ToInt(),
	}
}

func (b BlockResponse) toScannerBlock() scanner.Block {
	return scanner.Block{
		Number:   b.Number.Uint64(),
		TxHashes: b.Transactions,
	}
}

func decode[T any](data json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return v, fmt.Errorf("malformed response: %w", err)
	}

	return v, nil
}

// decodeStruct decodes data and checks it against its validate tags.
func decodeStruct[T any](data json.RawMessage) (T, error) {
	v, err := decode[T](data)
	if err != nil {
		return v, err
	}

	return v, validator.Validate(v)
}

// LatestBlockNumber fetches the chain tip with eth_blockNumber.
func (c *client) LatestBlockNumber(ctx context.Context) (uint64, error) {
	data, err := c.conn.Fetch(ctx, "eth_blockNumber")
	if err != nil {
		return 0, err
	}

	n, err := decode[hexutil.Uint64](data)
	return uint64(n), err
}

// BlockByNumber fetches block n with its transaction hashes.
func (c *client) BlockByNumber(ctx context.Context, n uint64) (scanner.Block, error) {
	data, err := c.conn.Fetch(ctx, "eth_getBlockByNumber", types.HexFromUint64(n), false)
	if err != nil {
		return scanner.Block{}, err
	}

	if isNull(data) {
		return scanner.Block{}, fmt.Errorf("%w: %d", ErrBlockNotFound, n)
	}

	block, err := decodeStruct[BlockResponse](data)
	if err != nil {
		return scanner.Block{}, err
	}

	return block.toScannerBlock(), nil
}

// TransactionByHash fetches one transaction.
func (c *client) TransactionByHash(ctx context.Context, hash string) (scanner.Transaction, error) {
	data, err := c.conn.Fetch(ctx, "eth_getTransactionByHash", hash)
	if err != nil {
		return scanner.Transaction{}, err
	}

	if isNull(data) {
		return scanner.Transaction{}, fmt.Errorf("%w: %s", ErrTransactionNotFound, hash)
	}

	tx, err := decodeStruct[TransactionResponse](data)
	if err != nil {
		return scanner.Transaction{}, err
	}

	return tx.toScannerTransaction(), nil
}

// ChainID returns the network id reported by eth_chainId.
func (c *client) ChainID(ctx context.Context) (uint64, error) {
	data, err := c.conn.Fetch(ctx, "eth_chainId")
	if err != nil {
		return 0, err
	}

	id, err := decode[hexutil.Uint64](data)
	return uint64(id), err
}
