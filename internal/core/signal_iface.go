package core

import "errors"

// Frame is a raw text payload sent over the signaling transport.
type Frame []byte

var (
	ErrBackpressure     = errors.New("backpressure")
	ErrConnectionClosed = errors.New("connection closed")
)

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
//
//go:generate mockgen -source=signal_iface.go -destination=mocks/mock_signal.go -package=mocks
type SignalConnection interface {
	// TrySend never blocks. It returns ErrBackpressure when the outbound
	// buffer is full and ErrConnectionClosed after Close.
	TrySend(Frame) error
	Close()
}
