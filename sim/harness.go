package sim

import (
	"encoding/binary"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/mikekeke/leiosim/events"
	"github.com/mikekeke/leiosim/model"
	"github.com/mikekeke/leiosim/node"
	"github.com/rs/zerolog"
)

// Clock is a simple monotonic tick counter shared by every node and the
// event tracker, satisfying events.Clock.
type Clock struct {
	now atomic.Uint64
}

// Now implements events.Clock.
func (c *Clock) Now() uint64 { return c.now.Load() }

// Advance moves the clock forward by one tick and returns the new value.
func (c *Clock) Advance() uint64 { return c.now.Add(1) }

// Configuration bundles the parameters needed to stand up a harness run.
type Configuration struct {
	NodeConfig  node.Configuration
	NodeCount   int
	Stakes      []uint64 // per-node stake; len must equal NodeCount
	SlotCount   uint64
	TxPerSlot   int
	TxBytes     uint64
	InboxBuffer int
}

// Harness wires a fully-connected set of node.Node instances over an
// in-memory Network, drives them through a fixed number of slots, and
// feeds each a synthetic transaction stream.
type Harness struct {
	config  Configuration
	network *Network
	slots   *SlotBroadcaster
	clock   *Clock
	tracker *events.Tracker
	log     zerolog.Logger

	nodes  []*node.Node
	txChan map[model.NodeID]chan model.Transaction

	rng *rand.Rand
}

// NewHarness constructs a Harness with nodeCount nodes whose stakes are
// config.Stakes, wired over an in-memory network fabric.
func NewHarness(config Configuration, log zerolog.Logger) *Harness {
	ids := make([]model.NodeID, config.NodeCount)
	for i := range ids {
		ids[i] = model.NodeID(i)
	}

	network := NewNetwork(ids, config.InboxBuffer)
	slots := NewSlotBroadcaster(ids)
	clock := &Clock{}
	tracker := events.NewTracker(clock, log)

	var totalStake uint64
	for _, s := range config.Stakes {
		totalStake += s
	}

	h := &Harness{
		config:  config,
		network: network,
		slots:   slots,
		clock:   clock,
		tracker: tracker,
		log:     log,
		txChan:  make(map[model.NodeID]chan model.Transaction, len(ids)),
		rng:     rand.New(rand.NewSource(1)),
	}

	for _, id := range ids {
		txCh := make(chan model.Transaction, 64)
		h.txChan[id] = txCh
		peers := make([]model.NodeID, 0, len(ids)-1)
		for _, peer := range ids {
			if peer != id {
				peers = append(peers, peer)
			}
		}
		n := node.NewNode(
			id,
			config.Stakes[id],
			totalStake,
			peers,
			config.NodeConfig,
			network.For(id),
			tracker,
			clock,
			rand.New(rand.NewSource(int64(id)+1)),
			log,
			slots.ChannelFor(id),
			txCh,
			network.InboxOf(id),
		)
		h.nodes = append(h.nodes, n)
	}

	return h
}

// Events returns the channel observational events are published on.
func (h *Harness) Events() <-chan events.Event {
	return h.tracker.Events()
}

// Run drives every node's event loop in its own goroutine, ticks the
// clock and slot broadcaster config.SlotCount times, emitting a Slot event
// and injecting synthetic transactions each slot, then closes the slot and
// local-tx channels to let nodes shut down cleanly. It blocks until every
// node has returned.
func (h *Harness) Run() {
	var wg sync.WaitGroup
	for _, n := range h.nodes {
		wg.Add(1)
		go func(n *node.Node) {
			defer wg.Done()
			if err := n.Run(); err != nil {
				h.log.Error().Err(err).Msg("node terminated with error")
			}
		}(n)
	}

	for slot := uint64(0); slot < h.config.SlotCount; slot++ {
		h.clock.Advance()
		h.tracker.TrackSlot(slot)
		h.generateTransactions(slot)
		h.slots.Broadcast(slot)
		time.Sleep(time.Millisecond)
	}

	h.slots.Close()
	for _, ch := range h.txChan {
		close(ch)
	}
	wg.Wait()
	h.tracker.Close()
}

// generateTransactions mints config.TxPerSlot synthetic transactions,
// assigns each a random publisher and shard, emits TransactionGenerated,
// and feeds it to the publisher's local-tx channel.
func (h *Harness) generateTransactions(slot uint64) {
	for i := 0; i < h.config.TxPerSlot; i++ {
		id := newTransactionID()
		publisher := model.NodeID(h.rng.Intn(h.config.NodeCount))
		shard := uint64(h.rng.Intn(int(h.config.NodeConfig.IBShards)))
		tx := model.Transaction{ID: id, Bytes: h.config.TxBytes, Shard: shard}
		h.tracker.TrackTransactionGenerated(tx, publisher)
		h.txChan[publisher] <- tx
	}
}

// newTransactionID mints a fresh transaction id from a random UUID's
// leading 8 bytes, giving transactions globally-unique ids without the
// harness needing to coordinate a counter across goroutines.
func newTransactionID() model.TransactionID {
	u := uuid.New()
	return model.TransactionID(binary.BigEndian.Uint64(u[:8]) >> 1)
}
