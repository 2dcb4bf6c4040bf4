package applet

import "sync"

// DataBroker is an in-process implementation of the data channel between a
// guest and an applet. The guest side queues argument buffers and waits for
// the state-changed signal; the applet side consumes them through the
// Broker interface.
//
// All methods are safe for concurrent use: an applet's completion callback
// may push from a different goroutine than the one driving Execute.
type DataBroker struct {
	mu       sync.Mutex
	inbound  [][]byte
	outbound [][]byte
	signal   chan struct{}
}

// NewDataBroker returns an empty broker.
func NewDataBroker() *DataBroker {
	return &DataBroker{signal: make(chan struct{}, 1)}
}

// PushNormalDataToApplet queues a buffer for the applet to pop. Guest side.
func (b *DataBroker) PushNormalDataToApplet(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.inbound = append(b.inbound, data)
}

// PopNormalDataFromApplet removes and returns the next buffer the applet
// pushed. Guest side.
func (b *DataBroker) PopNormalDataFromApplet() ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.outbound) == 0 {
		return nil, false
	}
	data := b.outbound[0]
	b.outbound = b.outbound[1:]
	return data, true
}

// StateChanged returns the channel signalled when the applet advances its
// state. Guest side.
func (b *DataBroker) StateChanged() <-chan struct{} {
	return b.signal
}

// PopNormalData implements Broker.
func (b *DataBroker) PopNormalData() ([]byte, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.inbound) == 0 {
		return nil, false
	}
	data := b.inbound[0]
	b.inbound = b.inbound[1:]
	return data, true
}

// PushNormalData implements Broker.
func (b *DataBroker) PushNormalData(data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.outbound = append(b.outbound, data)
}

// SignalStateChanged implements Broker. The signal is level-triggered: a
// second signal before the guest observes the first coalesces with it.
func (b *DataBroker) SignalStateChanged() {
	select {
	case b.signal <- struct{}{}:
	default:
	}
}
