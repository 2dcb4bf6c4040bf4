// Package applet provides the shared lifecycle and transport contract for
// HLE library applets: small, modal, OS-provided programs a guest
// application launches and exchanges structured data buffers with.
package applet

import "errors"

// ErrNotImplemented signals that an applet was asked for a capability it
// does not support, such as interactive mid-session data exchange.
var ErrNotImplemented = errors.New("applet: capability not implemented")

// State is an applet's lifecycle state. An applet instance moves strictly
// forward through these states and is discarded by its owner once Complete.
type State uint8

const (
	Uninitialized State = iota
	Initialized
	Executing
	Complete
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case Executing:
		return "executing"
	case Complete:
		return "complete"
	default:
		return "invalid"
	}
}

// Applet is the lifecycle every library applet implements. The owning
// broker drives Initialize then Execute, and polls TransactionComplete to
// learn when the session's result has been pushed back.
type Applet interface {
	Initialize() error
	Execute() error
	// ExecuteInteractive handles mid-session interactive data. Applets
	// that do not support it return ErrNotImplemented.
	ExecuteInteractive() error
	TransactionComplete() bool
	GetStatus() error
}

// Broker is the applet-facing side of the data channel between the guest
// and the applet: the applet pops inbound argument buffers and pushes its
// completion result back through it.
type Broker interface {
	// PopNormalData removes and returns the next inbound data buffer.
	// The second return is false when no buffer is queued.
	PopNormalData() ([]byte, bool)
	// PushNormalData queues an outbound data buffer for the guest.
	PushNormalData(data []byte)
	// SignalStateChanged notifies the owner that the applet's state
	// advanced, typically on completion.
	SignalStateChanged()
}
