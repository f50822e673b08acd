// Package sim provides an in-memory simulation harness: a channel-based
// transport, a synthetic transaction generator, and the wiring that drives
// a set of node.Node instances through a fixed number of slots. It is a
// demonstration entry point for cmd/leiosim, not part of the protocol
// core's specification surface.
package sim

import (
	"fmt"

	"github.com/mikekeke/leiosim/model"
	"github.com/mikekeke/leiosim/node"
)

// Network is an in-process Transport implementation: every node is given
// a Network handle bound to its own id, and SendTo delivers directly onto
// the recipient's inbound channel. FIFO per sender-receiver pair holds
// because each recipient channel is a single Go channel fed directly by
// the sender goroutine's own call stack.
type Network struct {
	from  model.NodeID
	inbox map[model.NodeID]chan node.Inbound
}

// NewNetwork builds a fully-connected in-memory fabric for the given node
// ids, each with inbound buffer capacity bufSize.
func NewNetwork(ids []model.NodeID, bufSize int) *Network {
	inbox := make(map[model.NodeID]chan node.Inbound, len(ids))
	for _, id := range ids {
		inbox[id] = make(chan node.Inbound, bufSize)
	}
	return &Network{inbox: inbox}
}

// For returns a Transport handle bound to sender id, sharing this
// Network's inbox fabric.
func (net *Network) For(id model.NodeID) *Network {
	return &Network{from: id, inbox: net.inbox}
}

// InboxOf returns the channel a node should read its inbound messages
// from.
func (net *Network) InboxOf(id model.NodeID) chan node.Inbound {
	return net.inbox[id]
}

// SendTo implements node.Transport.
func (net *Network) SendTo(to model.NodeID, msg node.Message) error {
	ch, ok := net.inbox[to]
	if !ok {
		return fmt.Errorf("sim: unknown recipient node %d", to)
	}
	ch <- node.Inbound{From: net.from, Message: msg}
	return nil
}

// SlotBroadcaster fans a slot-tick sequence out to every node's slot
// channel. Each node's channel has capacity 1 and a non-blocking send: a
// node that falls behind observes a coalesced slot transition rather than
// blocking the broadcaster, matching the latest-value broadcast semantics
// the node runtime relies on.
type SlotBroadcaster struct {
	channels map[model.NodeID]chan uint64
}

// NewSlotBroadcaster creates a slot channel for each given node id.
func NewSlotBroadcaster(ids []model.NodeID) *SlotBroadcaster {
	channels := make(map[model.NodeID]chan uint64, len(ids))
	for _, id := range ids {
		channels[id] = make(chan uint64, 1)
	}
	return &SlotBroadcaster{channels: channels}
}

// ChannelFor returns the slot-tick channel for a given node.
func (b *SlotBroadcaster) ChannelFor(id model.NodeID) chan uint64 {
	return b.channels[id]
}

// Broadcast publishes slot to every node, overwriting any unconsumed
// previous value rather than blocking.
func (b *SlotBroadcaster) Broadcast(slot uint64) {
	for _, ch := range b.channels {
		select {
		case ch <- slot:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- slot:
			default:
			}
		}
	}
}

// Close closes every node's slot channel, which is the node runtime's
// clean-shutdown signal.
func (b *SlotBroadcaster) Close() {
	for _, ch := range b.channels {
		close(ch)
	}
}
