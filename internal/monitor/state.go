package monitor

import (
	"github.com/gabapcia/txalert/internal/history"
	"github.com/gabapcia/txalert/internal/scanner"
)

const (
	// EthTxCapacity is the number of Ethereum transactions kept in memory.
	EthTxCapacity = 300
	// EthAlertCapacity is the number of Ethereum alerts kept in memory.
	EthAlertCapacity = 200
	// BtcTxCapacity is the number of mempool transactions kept in memory.
	BtcTxCapacity = 300
)

// Limits bounds how many entries of each history go into an init message.
type Limits struct {
	Alerts int
	Txs    int
	BtcTxs int
}

// DefaultLimits are the init sizes used when none are configured.
var DefaultLimits = Limits{Alerts: 50, Txs: 200, BtcTxs: 200}

// InitPayload is the data of the init message sent to each new observer.
type InitPayload struct {
	Alerts []scanner.AccountTx `json:"alerts"`
	Txs    []scanner.AccountTx `json:"txs"`
	BtcTxs []scanner.UtxoTx    `json:"btcTxs"`
}

// Histories groups the bounded histories shared by scanners, the
// broadcaster snapshot and the HTTP read endpoints.
type Histories struct {
	EthTxs    *history.Buffer[scanner.AccountTx]
	EthAlerts *history.Buffer[scanner.AccountTx]
	BtcTxs    *history.Buffer[scanner.UtxoTx]
}

// NewHistories allocates the three histories with their fixed capacities.
func NewHistories() Histories {
	return Histories{
		EthTxs:    history.New[scanner.AccountTx](EthTxCapacity),
		EthAlerts: history.New[scanner.AccountTx](EthAlertCapacity),
		BtcTxs:    history.New[scanner.UtxoTx](BtcTxCapacity),
	}
}

// Snapshot copies the newest entries of each history, bounded by l.
func (h Histories) Snapshot(l Limits) InitPayload {
	return InitPayload{
		Alerts: h.EthAlerts.Snapshot(l.Alerts),
		Txs:    h.EthTxs.Snapshot(l.Txs),
		BtcTxs: h.BtcTxs.Snapshot(l.BtcTxs),
	}
}

// SnapshotFunc adapts Snapshot to broadcast.SnapshotFunc.
func (h Histories) SnapshotFunc(l Limits) func() any {
	return func() any {
		return h.Snapshot(l)
	}
}
