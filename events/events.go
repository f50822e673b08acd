// Package events defines the observational event stream emitted by a node
// runtime and a non-blocking tracker that timestamps and publishes it.
package events

import (
	"github.com/mikekeke/leiosim/model"
	"github.com/rs/zerolog"
)

// Kind identifies which variant of Event is populated.
type Kind int

const (
	Slot Kind = iota
	TransactionGenerated
	TransactionSent
	TransactionReceived
	PraosBlockGenerated
	PraosBlockSent
	PraosBlockReceived
	InputBlockGenerated
	EmptyInputBlockNotGenerated
	InputBlockSent
	InputBlockReceived
)

// Event is a single observational event, timestamped at the moment it was
// handed to the Tracker. Only the fields relevant to Kind are populated;
// callers switch on Kind before reading them.
type Event struct {
	Kind      Kind
	Timestamp uint64

	SlotNumber uint64

	TxID      model.TransactionID
	TxBytes   uint64
	Sender    model.NodeID
	Recipient model.NodeID
	Publisher model.NodeID

	BlockSlot         uint64
	BlockProducer     model.NodeID
	BlockVRF          uint64
	BlockTransactions []model.TransactionID

	IBHeader       model.InputBlockHeader
	IBID           model.InputBlockID
	IBTransactions []model.TransactionID
}

// Clock supplies the monotonically non-decreasing timestamp events are
// stamped with. The simulation harness is the external collaborator that
// implements it.
type Clock interface {
	Now() uint64
}

// Tracker is a non-blocking outbound event channel. Sends never block the
// caller: the channel is a bounded buffer of 4096 events, not an unbounded
// queue, and a send that finds the buffer full is logged and dropped rather
// than propagated, per the observability-not-correctness contract of the
// event stream.
type Tracker struct {
	out   chan Event
	clock Clock
	log   zerolog.Logger
}

// NewTracker returns a Tracker that stamps events with clock.Now() and
// publishes them on an internal channel buffered to 4096 events, logging
// drops through log.
func NewTracker(clock Clock, log zerolog.Logger) *Tracker {
	return &Tracker{
		out:   make(chan Event, 4096),
		clock: clock,
		log:   log,
	}
}

// Events returns the channel consumers should read published events from.
func (t *Tracker) Events() <-chan Event {
	return t.out
}

// Close signals that no further events will be published.
func (t *Tracker) Close() {
	close(t.out)
}

func (t *Tracker) send(e Event) {
	e.Timestamp = t.clock.Now()
	select {
	case t.out <- e:
	default:
		t.log.Warn().Int("kind", int(e.Kind)).Msg("dropped event: tracker channel full")
	}
}

func (t *Tracker) TrackSlot(number uint64) {
	t.send(Event{Kind: Slot, SlotNumber: number})
}

func (t *Tracker) TrackTransactionGenerated(tx model.Transaction, publisher model.NodeID) {
	t.send(Event{Kind: TransactionGenerated, TxID: tx.ID, Publisher: publisher, TxBytes: tx.Bytes})
}

func (t *Tracker) TrackTransactionSent(id model.TransactionID, sender, recipient model.NodeID) {
	t.send(Event{Kind: TransactionSent, TxID: id, Sender: sender, Recipient: recipient})
}

func (t *Tracker) TrackTransactionReceived(id model.TransactionID, sender, recipient model.NodeID) {
	t.send(Event{Kind: TransactionReceived, TxID: id, Sender: sender, Recipient: recipient})
}

func (t *Tracker) TrackPraosBlockGenerated(b model.Block) {
	ids := make([]model.TransactionID, len(b.Transactions))
	for i, tx := range b.Transactions {
		ids[i] = tx.ID
	}
	t.send(Event{
		Kind:              PraosBlockGenerated,
		BlockSlot:         b.Slot,
		BlockProducer:     b.Producer,
		BlockVRF:          b.VRF,
		BlockTransactions: ids,
	})
}

func (t *Tracker) TrackPraosBlockSent(b model.Block, sender, recipient model.NodeID) {
	t.send(Event{Kind: PraosBlockSent, BlockSlot: b.Slot, Sender: sender, Recipient: recipient})
}

func (t *Tracker) TrackPraosBlockReceived(b model.Block, sender, recipient model.NodeID) {
	t.send(Event{Kind: PraosBlockReceived, BlockSlot: b.Slot, Sender: sender, Recipient: recipient})
}

func (t *Tracker) TrackInputBlockGenerated(ib model.InputBlock) {
	ids := make([]model.TransactionID, len(ib.Transactions))
	for i, tx := range ib.Transactions {
		ids[i] = tx.ID
	}
	t.send(Event{Kind: InputBlockGenerated, IBHeader: ib.Header, IBTransactions: ids})
}

func (t *Tracker) TrackEmptyInputBlockNotGenerated(header model.InputBlockHeader) {
	t.send(Event{Kind: EmptyInputBlockNotGenerated, IBHeader: header})
}

func (t *Tracker) TrackInputBlockSent(id model.InputBlockID, sender, recipient model.NodeID) {
	t.send(Event{Kind: InputBlockSent, IBID: id, Sender: sender, Recipient: recipient})
}

func (t *Tracker) TrackInputBlockReceived(id model.InputBlockID, sender, recipient model.NodeID) {
	t.send(Event{Kind: InputBlockReceived, IBID: id, Sender: sender, Recipient: recipient})
}
