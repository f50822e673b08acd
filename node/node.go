// Package node implements the per-node protocol state machine: a single
// cooperative event loop that consumes slot ticks, local transaction
// submissions, and peer messages, and drives Praos block production, IB
// scheduling/production, and the three gossip protocols (tx, block, IB).
//
// A Node holds no shared mutable state with any other node; all
// communication happens through the Transport collaborator and the
// slot-tick/local-tx channels supplied at construction.
package node

import (
	"container/heap"
	"math/rand"

	"github.com/mikekeke/leiosim/events"
	"github.com/mikekeke/leiosim/model"
	"github.com/rs/zerolog"
)

type txState int

const (
	txPending txState = iota
	txReceived
)

type txEntry struct {
	state txState
	tx    model.Transaction
}

type praosState struct {
	mempool    map[model.TransactionID]model.Transaction
	peerHeads  map[model.NodeID]uint64
	blocksSeen map[uint64]struct{}
	blocks     map[uint64]model.Block
}

func newPraosState() praosState {
	return praosState{
		mempool:    make(map[model.TransactionID]model.Transaction),
		peerHeads:  make(map[model.NodeID]uint64),
		blocksSeen: make(map[uint64]struct{}),
		blocks:     make(map[uint64]model.Block),
	}
}

type pendingInputBlock struct {
	header    model.InputBlockHeader
	requested bool
}

// ibQueueItem is a queued IB body request, popped earliest-timestamp
// first. It is keyed by IB id: re-queuing an id already present just
// updates its timestamp in place, mirroring the keyed priority queue the
// original implementation uses for this same purpose.
type ibQueueItem struct {
	id        model.InputBlockID
	timestamp uint64
	index     int
}

type ibRequestQueue struct {
	items []*ibQueueItem
	index map[model.InputBlockID]*ibQueueItem
}

func newIBRequestQueue() ibRequestQueue {
	return ibRequestQueue{index: make(map[model.InputBlockID]*ibQueueItem)}
}

func (q ibRequestQueue) Len() int { return len(q.items) }

func (q ibRequestQueue) Less(i, j int) bool { return q.items[i].timestamp < q.items[j].timestamp }

func (q ibRequestQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index = i
	q.items[j].index = j
}

func (q *ibRequestQueue) Push(x any) {
	item := x.(*ibQueueItem)
	item.index = len(q.items)
	q.items = append(q.items, item)
	q.index[item.id] = item
}

func (q *ibRequestQueue) Pop() any {
	old := q.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	q.items = old[:n-1]
	delete(q.index, item.id)
	return item
}

// pushOrUpdate enqueues id at timestamp, or updates its priority in place
// if it is already queued.
func (q *ibRequestQueue) pushOrUpdate(id model.InputBlockID, timestamp uint64) {
	if item, ok := q.index[id]; ok {
		item.timestamp = timestamp
		heap.Fix(q, item.index)
		return
	}
	heap.Push(q, &ibQueueItem{id: id, timestamp: timestamp})
}

// popMin pops the queued request with the earliest timestamp.
func (q *ibRequestQueue) popMin() (model.InputBlockID, bool) {
	if q.Len() == 0 {
		return model.InputBlockID{}, false
	}
	return heap.Pop(q).(*ibQueueItem).id, true
}

type peerInputBlockRequests struct {
	pending ibRequestQueue
	active  map[model.InputBlockID]struct{}
}

func newPeerInputBlockRequests() *peerInputBlockRequests {
	return &peerInputBlockRequests{pending: newIBRequestQueue(), active: make(map[model.InputBlockID]struct{})}
}

type leiosState struct {
	mempool    map[model.TransactionID]model.Transaction
	unsentIBs  map[uint64][]model.InputBlockHeader
	ibs        map[model.InputBlockID]model.InputBlock
	pendingIBs map[model.InputBlockID]*pendingInputBlock
	ibRequests map[model.NodeID]*peerInputBlockRequests
}

func newLeiosState() leiosState {
	return leiosState{
		mempool:    make(map[model.TransactionID]model.Transaction),
		unsentIBs:  make(map[uint64][]model.InputBlockHeader),
		ibs:        make(map[model.InputBlockID]model.InputBlock),
		pendingIBs: make(map[model.InputBlockID]*pendingInputBlock),
		ibRequests: make(map[model.NodeID]*peerInputBlockRequests),
	}
}

func (l *leiosState) requestsFor(peer model.NodeID) *peerInputBlockRequests {
	r, ok := l.ibRequests[peer]
	if !ok {
		r = newPeerInputBlockRequests()
		l.ibRequests[peer] = r
	}
	return r
}

// Node is a single simulated participant. It is not safe for concurrent
// use from multiple goroutines: Run owns it exclusively once started.
type Node struct {
	id         model.NodeID
	stake      uint64
	totalStake uint64
	peers      []model.NodeID

	config    Configuration
	transport Transport
	tracker   *events.Tracker
	clock     events.Clock
	rng       *rand.Rand
	log       zerolog.Logger

	slotCh <-chan uint64
	txCh   <-chan model.Transaction
	msgCh  <-chan Inbound

	txs   map[model.TransactionID]txEntry
	praos praosState
	leios leiosState
}

// NewNode constructs a Node ready to Run. slotCh, txCh, and msgCh are the
// three input sources the event loop selects over; their closure is the
// node's normal shutdown signal.
func NewNode(
	id model.NodeID,
	stake, totalStake uint64,
	peers []model.NodeID,
	config Configuration,
	transport Transport,
	tracker *events.Tracker,
	clock events.Clock,
	rng *rand.Rand,
	log zerolog.Logger,
	slotCh <-chan uint64,
	txCh <-chan model.Transaction,
	msgCh <-chan Inbound,
) *Node {
	return &Node{
		id:         id,
		stake:      stake,
		totalStake: totalStake,
		peers:      peers,
		config:     config,
		transport:  transport,
		tracker:    tracker,
		clock:      clock,
		rng:        rng,
		log:        log.With().Int("node_id", int(id)).Logger(),
		slotCh:     slotCh,
		txCh:       txCh,
		msgCh:      msgCh,
		txs:        make(map[model.TransactionID]txEntry),
		praos:      newPraosState(),
		leios:      newLeiosState(),
	}
}

// Run drives the node's event loop until one of its input channels closes,
// which is treated as a normal end-of-simulation shutdown. A handler error
// is propagated to the caller and terminates this node's simulation.
func (n *Node) Run() error {
	for {
		select {
		case slot, ok := <-n.slotCh:
			if !ok {
				return nil
			}
			if err := n.handleNewSlot(slot); err != nil {
				return err
			}
		case tx, ok := <-n.txCh:
			if !ok {
				return nil
			}
			if err := n.receiveTx(n.id, tx); err != nil {
				return err
			}
		case in, ok := <-n.msgCh:
			if !ok {
				return nil
			}
			if err := n.dispatch(in.From, in.Message); err != nil {
				return err
			}
		}
	}
}

func (n *Node) dispatch(from model.NodeID, msg Message) error {
	switch msg.Kind {
	case AnnounceTx:
		return n.receiveAnnounceTx(from, msg.TxID)
	case RequestTx:
		return n.receiveRequestTx(from, msg.TxID)
	case Tx:
		return n.receiveTx(from, msg.Transaction)
	case RollForward:
		return n.receiveRollForward(from, msg.Slot)
	case RequestBlock:
		return n.receiveRequestBlock(from, msg.Slot)
	case Block:
		return n.receiveBlock(from, msg.PraosBlock)
	case AnnounceIBHeader:
		return n.receiveAnnounceIBHeader(from, msg.IBID)
	case RequestIBHeader:
		return n.receiveRequestIBHeader(from, msg.IBID)
	case IBHeader:
		return n.receiveIBHeader(from, msg.IBHeader, msg.HasBody)
	case AnnounceIB:
		return n.receiveAnnounceIB(from, msg.IBID)
	case RequestIB:
		return n.receiveRequestIB(from, msg.IBID)
	case IB:
		return n.receiveIB(from, msg.InputBlock)
	}
	return nil
}

// sendTo forwards msg to peer to, trace-logging the send when this node is
// in the configured trace set.
func (n *Node) sendTo(to model.NodeID, msg Message) error {
	if n.config.Traces(n.id) {
		n.log.Trace().
			Int("to", int(to)).
			Uint64("bytes", msg.BytesSize()).
			Msg("sent message")
	}
	return n.transport.SendTo(to, msg)
}

// drainPendingIBRequest pops the earliest-queued, still-eligible pending
// IB request for peer and issues it, maintaining steady per-peer request
// utilization after an in-flight request completes.
func (n *Node) drainPendingIBRequest(peer model.NodeID) error {
	reqs := n.leios.requestsFor(peer)
	for {
		id, ok := reqs.pending.popMin()
		if !ok {
			break
		}
		pending, ok := n.leios.pendingIBs[id]
		if !ok {
			// fetched from some other node already
			continue
		}
		if pending.requested {
			continue
		}
		pending.requested = true
		reqs.active[id] = struct{}{}
		if err := n.sendTo(peer, Message{Kind: RequestIB, IBID: id}); err != nil {
			return err
		}
		break
	}
	return nil
}
