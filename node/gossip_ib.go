package node

import "github.com/mikekeke/leiosim/model"

// receiveAnnounceIBHeader always requests the header: the announcement
// itself carries no information beyond the id.
func (n *Node) receiveAnnounceIBHeader(from model.NodeID, id model.InputBlockID) error {
	return n.sendTo(from, Message{Kind: RequestIBHeader, IBID: id})
}

// receiveRequestIBHeader replies with whatever this node knows about id:
// the bare header if only pending, or the header plus a has_body bit if
// the full IB is held.
func (n *Node) receiveRequestIBHeader(from model.NodeID, id model.InputBlockID) error {
	if pending, ok := n.leios.pendingIBs[id]; ok {
		return n.sendTo(from, Message{Kind: IBHeader, IBHeader: pending.header, HasBody: false})
	}
	if ib, ok := n.leios.ibs[id]; ok {
		return n.sendTo(from, Message{Kind: IBHeader, IBHeader: ib.Header, HasBody: true})
	}
	return nil
}

// receiveIBHeader stores a newly-heard header as pending and forwards the
// announcement to every other peer. A set has_body bit is treated as an
// implicit AnnounceIB from the sender.
func (n *Node) receiveIBHeader(from model.NodeID, header model.InputBlockHeader, hasBody bool) error {
	id := header.ID()
	if _, have := n.leios.ibs[id]; have {
		return nil
	}
	if _, pending := n.leios.pendingIBs[id]; pending {
		return nil
	}
	n.leios.pendingIBs[id] = &pendingInputBlock{header: header}
	for _, peer := range n.peers {
		if peer == from {
			continue
		}
		if err := n.sendTo(peer, Message{Kind: AnnounceIBHeader, IBID: id}); err != nil {
			return err
		}
	}
	if hasBody {
		return n.receiveAnnounceIB(from, id)
	}
	return nil
}

// receiveAnnounceIB requests the IB body if it has not already been
// requested and this node has spare per-peer request capacity; otherwise
// it queues the request, keyed by the header's timestamp.
func (n *Node) receiveAnnounceIB(from model.NodeID, id model.InputBlockID) error {
	pending, ok := n.leios.pendingIBs[id]
	if !ok {
		return nil
	}
	if pending.requested {
		return nil
	}
	reqs := n.leios.requestsFor(from)
	if len(reqs.active) < n.config.MaxIBRequestsPerPeer {
		pending.requested = true
		reqs.active[id] = struct{}{}
		return n.sendTo(from, Message{Kind: RequestIB, IBID: id})
	}
	reqs.pending.pushOrUpdate(id, pending.header.Timestamp)
	return nil
}

// receiveRequestIB replies with the IB if this node holds it.
func (n *Node) receiveRequestIB(from model.NodeID, id model.InputBlockID) error {
	ib, ok := n.leios.ibs[id]
	if !ok {
		return nil
	}
	n.tracker.TrackInputBlockSent(id, n.id, from)
	return n.sendTo(from, Message{Kind: IB, InputBlock: ib})
}

// receiveIB stores a delivered IB, removes its transactions from the
// Leios mempool, propagates AnnounceIB to every other peer, and drains one
// eligible queued request from the sender to keep utilization steady.
func (n *Node) receiveIB(from model.NodeID, ib model.InputBlock) error {
	id := ib.ID()
	n.tracker.TrackInputBlockReceived(id, from, n.id)
	for _, tx := range ib.Transactions {
		delete(n.leios.mempool, tx.ID)
	}
	n.leios.ibs[id] = ib

	for _, peer := range n.peers {
		if peer == from {
			continue
		}
		if err := n.sendTo(peer, Message{Kind: AnnounceIB, IBID: id}); err != nil {
			return err
		}
	}

	delete(n.leios.pendingIBs, id)
	reqs := n.leios.requestsFor(from)
	delete(reqs.active, id)

	return n.drainPendingIBRequest(from)
}
