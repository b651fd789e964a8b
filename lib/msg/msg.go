// Package msg defines the interface for publishing sweep events to different message brokers.
package msg

// SweepEvent is the message published to the broker after a transfer has been confirmed.
type SweepEvent struct {
	ID     string `json:"id"` // request id assigned by the API layer
	Hash   string `json:"hash"`
	From   string `json:"from"`
	To     string `json:"to"`
	Amount string `json:"amount"` // decimal ether actually sent
	Block  uint64 `json:"block"`
	Fee    uint64 `json:"fee"`
}

// EventSink is implemented by broker clients.
type EventSink interface {
	Setup(interface{}) error
	Close() error

	SendSweep(net string, e SweepEvent) error
}
