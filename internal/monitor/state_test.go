package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/gabapcia/txalert/internal/broadcast"
	"github.com/gabapcia/txalert/internal/scanner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistories_Snapshot(t *testing.T) {
	h := NewHistories()
	assert.Equal(t, EthTxCapacity, h.EthTxs.Cap())
	assert.Equal(t, EthAlertCapacity, h.EthAlerts.Cap())
	assert.Equal(t, BtcTxCapacity, h.BtcTxs.Cap())

	for i := 0; i < 10; i++ {
		tx := scanner.AccountTx{TxHash: fmt.Sprintf("0x%d", i)}
		h.EthTxs.Prepend(tx)
		if i%2 == 0 {
			h.EthAlerts.Prepend(tx)
		}
		h.BtcTxs.Prepend(scanner.UtxoTx{Txid: fmt.Sprintf("%d", i)})
	}

	snap := h.Snapshot(Limits{Alerts: 2, Txs: 3, BtcTxs: 100})

	require.Len(t, snap.Alerts, 2)
	assert.Equal(t, "0x8", snap.Alerts[0].TxHash)
	require.Len(t, snap.Txs, 3)
	assert.Equal(t, "0x9", snap.Txs[0].TxHash)
	assert.Len(t, snap.BtcTxs, 10)
}

func TestInitPayload_JSON(t *testing.T) {
	h := NewHistories()

	raw, err := json.Marshal(h.Snapshot(DefaultLimits))
	require.NoError(t, err)
	assert.JSONEq(t, `{"alerts":[],"txs":[],"btcTxs":[]}`, string(raw))
}

type collectObserver struct {
	mu   sync.Mutex
	msgs []map[string]json.RawMessage
}

func (c *collectObserver) Send(_ context.Context, msg []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(msg, &m); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, m)
	return nil
}

func (c *collectObserver) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.msgs)
}

func TestHistories_WithBroadcaster(t *testing.T) {
	h := NewHistories()
	b := broadcast.New(h.SnapshotFunc(DefaultLimits))

	tx := scanner.AccountTx{ID: "0xa-1", TxHash: "0xa", ValueEth: "1.0000"}
	b.Emit(t.Context(), func() { h.EthTxs.Prepend(tx) }, broadcast.NewEvent(broadcast.TypeTx, tx))

	obs := &collectObserver{}
	sub, err := b.Connect(t.Context(), obs)
	require.NoError(t, err)
	defer sub.Close()

	require.Eventually(t, func() bool { return obs.len() == 1 }, time.Second, 5*time.Millisecond)

	var typ string
	require.NoError(t, json.Unmarshal(obs.msgs[0]["type"], &typ))
	assert.Equal(t, "init", typ)

	var data InitPayload
	require.NoError(t, json.Unmarshal(obs.msgs[0]["data"], &data))
	require.Len(t, data.Txs, 1)
	assert.Equal(t, "0xa", data.Txs[0].TxHash)
	assert.Empty(t, data.Alerts)
	assert.Empty(t, data.BtcTxs)
}
