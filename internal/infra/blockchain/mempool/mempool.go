package mempool

import (
	"context"
	"math"

	"github.com/gabapcia/txalert/internal/pkg/logger"
	"github.com/gabapcia/txalert/internal/pkg/validator"
	"github.com/gabapcia/txalert/internal/scanner"
)

type (
	// RecentTransactionResponse is one entry of GET /mempool/recent.
	// Value and Fee are in satoshi; absent numbers decode as zero.
	RecentTransactionResponse struct {
		Txid  string  `json:"txid" validate:"txid"`
		Fee   int64   `json:"fee" validate:"gte=0"`
		Vsize float64 `json:"vsize" validate:"gte=0"`
		Value int64   `json:"value" validate:"gte=0"`
	}

	// InfoResponse is the body of GET /mempool.
	InfoResponse struct {
		Count    int64   `json:"count"`
		Vsize    int64   `json:"vsize"`
		TotalFee float64 `json:"total_fee"`
	}
)

func (r RecentTransactionResponse) toScannerMempoolTx() scanner.MempoolTx {
	return scanner.MempoolTx{
		Txid:  r.Txid,
		Value: r.Value,
		Fee:   r.Fee,
		Vsize: int64(math.Round(r.Vsize)),
	}
}

// RecentTransactions returns the latest mempool entries in the order served.
// Entries that fail validation are dropped.
func (c *client) RecentTransactions(ctx context.Context) ([]scanner.MempoolTx, error) {
	var items []RecentTransactionResponse
	if err := c.getJSON(ctx, "/mempool/recent", &items); err != nil {
		return nil, err
	}

	txs := make([]scanner.MempoolTx, 0, len(items))
	for _, item := range items {
		if err := validator.Validate(item); err != nil {
			logger.Debug(ctx, "dropping invalid mempool entry", "tx.id", item.Txid, "error", err)
			continue
		}

		txs = append(txs, item.toScannerMempoolTx())
	}

	return txs, nil
}

// Info returns the current mempool backlog.
func (c *client) Info(ctx context.Context) (InfoResponse, error) {
	var info InfoResponse
	return info, c.getJSON(ctx, "/mempool", &info)
}
