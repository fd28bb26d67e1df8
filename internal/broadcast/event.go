package broadcast

import "encoding/json"

// EventType discriminates outbound messages.
type EventType string

const (
	// TypeInit carries the connection snapshot; always the first message.
	TypeInit EventType = "init"
	// TypeTx carries one classified account-chain transaction.
	TypeTx EventType = "tx"
	// TypeAlert carries an account-chain transaction that met the threshold.
	TypeAlert EventType = "alert"
	// TypeBtcTx carries one classified UTXO-chain transaction.
	TypeBtcTx EventType = "btc_tx"
)

// Event is the envelope written to observers: {"type": ..., "data": ...}.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// NewEvent wraps data in an Event of type t.
func NewEvent(t EventType, data any) Event {
	return Event{Type: t, Data: data}
}

func (e Event) encode() ([]byte, error) {
	return json.Marshal(e)
}
