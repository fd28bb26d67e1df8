package http

import (
	"net/http"
	"strconv"

	"github.com/gabapcia/txalert/internal/classify"
	"github.com/gabapcia/txalert/internal/pkg/logger"
	"github.com/gabapcia/txalert/internal/scanner"
)

var networkNames = map[uint64]string{
	1:        "mainnet",
	17000:    "holesky",
	11155111: "sepolia",
}

type (
	healthResponse struct {
		Status string `json:"status"`
	}

	alertsResponse struct {
		Alerts []scanner.AccountTx `json:"alerts"`
	}

	txsResponse struct {
		Txs []scanner.AccountTx `json:"txs"`
	}

	btcTxsResponse struct {
		Txs []scanner.UtxoTx `json:"txs"`
	}

	ethStatusResponse struct {
		ChainID             string  `json:"chainId"`
		Name                string  `json:"name"`
		LatestBlock         uint64  `json:"latestBlock"`
		RPCURL              string  `json:"rpcUrl"`
		LargeTxThresholdEth float64 `json:"largeTxThresholdEth"`
	}

	btcStatusResponse struct {
		Chain               string  `json:"chain"`
		Height              uint64  `json:"height"`
		MempoolSize         int64   `json:"mempoolSize"`
		MempoolVsize        int64   `json:"mempoolVsize"`
		APIBase             string  `json:"apiBase"`
		LargeTxThresholdBtc float64 `json:"largeTxThresholdBtc"`
	}
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, healthResponse{Status: "ok"})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, alertsResponse{Alerts: s.histories.EthAlerts.All()})
}

func (s *Server) handleTxs(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, txsResponse{Txs: s.histories.EthTxs.All()})
}

func (s *Server) handleBtcTxs(w http.ResponseWriter, r *http.Request) {
	writeJSON(r.Context(), w, http.StatusOK, btcTxsResponse{Txs: s.histories.BtcTxs.All()})
}

func (s *Server) handleEthStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	chainID, err := s.cfg.eth.ChainID(ctx)
	if err != nil {
		logger.Error(ctx, "failed to fetch chain id", "chain", scanner.ChainEthereum, "error", err)
		writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: "Failed to fetch status"})
		return
	}

	latest, err := s.cfg.eth.LatestBlockNumber(ctx)
	if err != nil {
		logger.Error(ctx, "failed to fetch latest block", "chain", scanner.ChainEthereum, "error", err)
		writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: "Failed to fetch status"})
		return
	}

	name, ok := networkNames[chainID]
	if !ok {
		name = "unknown"
	}

	writeJSON(ctx, w, http.StatusOK, ethStatusResponse{
		ChainID:             strconv.FormatUint(chainID, 10),
		Name:                name,
		LatestBlock:         latest,
		RPCURL:              s.cfg.rpcURL,
		LargeTxThresholdEth: classify.EthThreshold.InexactFloat64(),
	})
}

func (s *Server) handleBtcStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	height, err := s.cfg.btc.TipHeight(ctx)
	if err != nil {
		logger.Error(ctx, "failed to fetch tip height", "chain", scanner.ChainBitcoin, "error", err)
		writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: "Failed to fetch btc status"})
		return
	}

	info, err := s.cfg.btc.Info(ctx)
	if err != nil {
		logger.Error(ctx, "failed to fetch mempool info", "chain", scanner.ChainBitcoin, "error", err)
		writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: "Failed to fetch btc status"})
		return
	}

	writeJSON(ctx, w, http.StatusOK, btcStatusResponse{
		Chain:               scanner.ChainBitcoin,
		Height:              height,
		MempoolSize:         info.Count,
		MempoolVsize:        info.Vsize,
		APIBase:             s.cfg.btcAPIBase,
		LargeTxThresholdBtc: classify.BtcThreshold.InexactFloat64(),
	})
}
