package node

import "github.com/mikekeke/leiosim/model"

// receiveAnnounceTx records an unknown transaction as pending and requests
// its body from the announcer.
func (n *Node) receiveAnnounceTx(from model.NodeID, id model.TransactionID) error {
	if _, known := n.txs[id]; known {
		return nil
	}
	n.txs[id] = txEntry{state: txPending}
	return n.sendTo(from, Message{Kind: RequestTx, TxID: id})
}

// receiveRequestTx replies with the transaction body if this node holds it.
func (n *Node) receiveRequestTx(from model.NodeID, id model.TransactionID) error {
	entry, ok := n.txs[id]
	if !ok || entry.state != txReceived {
		return nil
	}
	n.tracker.TrackTransactionSent(id, n.id, from)
	return n.sendTo(from, Message{Kind: Tx, Transaction: entry.tx})
}

// receiveTx handles both a local submission (from == n.id) and a gossiped
// transaction body: it records the body, inserts it into both mempools,
// and announces it to every peer except the sender.
func (n *Node) receiveTx(from model.NodeID, tx model.Transaction) error {
	if from != n.id {
		n.tracker.TrackTransactionReceived(tx.ID, from, n.id)
	}
	if n.config.Traces(n.id) {
		n.log.Trace().Int("tx_id", int(tx.ID)).Msg("saw transaction")
	}
	n.txs[tx.ID] = txEntry{state: txReceived, tx: tx}
	n.praos.mempool[tx.ID] = tx
	for _, peer := range n.peers {
		if peer == from {
			continue
		}
		if err := n.sendTo(peer, Message{Kind: AnnounceTx, TxID: tx.ID}); err != nil {
			return err
		}
	}
	n.leios.mempool[tx.ID] = tx
	return nil
}
