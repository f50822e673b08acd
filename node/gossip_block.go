package node

import "github.com/mikekeke/leiosim/model"

// receiveRollForward requests the block body for a newly-heard-of slot.
func (n *Node) receiveRollForward(from model.NodeID, slot uint64) error {
	if _, seen := n.praos.blocksSeen[slot]; seen {
		return nil
	}
	n.praos.blocksSeen[slot] = struct{}{}
	return n.sendTo(from, Message{Kind: RequestBlock, Slot: slot})
}

// receiveRequestBlock replies with the block if this node holds it.
func (n *Node) receiveRequestBlock(from model.NodeID, slot uint64) error {
	block, ok := n.praos.blocks[slot]
	if !ok {
		return nil
	}
	n.tracker.TrackPraosBlockSent(block, n.id, from)
	return n.sendTo(from, Message{Kind: Block, PraosBlock: block})
}

// receiveBlock inserts a gossiped block if new, advances the sender's
// tracked head, and republishes via the normal publish path so peers
// behind the new slot are told to roll forward.
func (n *Node) receiveBlock(from model.NodeID, block model.Block) error {
	n.tracker.TrackPraosBlockReceived(block, from, n.id)
	if _, already := n.praos.blocks[block.Slot]; already {
		return nil
	}
	n.praos.blocks[block.Slot] = block
	if head, ok := n.praos.peerHeads[from]; !ok || head < block.Slot {
		n.praos.peerHeads[from] = block.Slot
	}
	return n.publishBlock(block)
}
