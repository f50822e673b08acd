package node

import (
	"sort"

	"github.com/mikekeke/leiosim/model"
)

func sortedTxIDs(mempool map[model.TransactionID]model.Transaction) []model.TransactionID {
	ids := make([]model.TransactionID, 0, len(mempool))
	for id := range mempool {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// handleNewSlot is the per-slot entry point: it runs IB scheduling at the
// start of each stage, produces any IBs scheduled for this slot, and
// attempts Praos block production, in that order.
func (n *Node) handleNewSlot(slot uint64) error {
	if slot%n.config.StageLength == 0 {
		n.scheduleInputBlockGeneration(slot)
	}
	if err := n.generateInputBlocks(slot); err != nil {
		return err
	}
	return n.tryGeneratePraosBlock(slot)
}

// scheduleInputBlockGeneration runs a sequence of stake-weighted VRF draws
// for the coming stage, one per unit (and a fractional remainder) of
// ib_generation_probability, and files a header per success into
// unsentIBs at the slot it will be produced at.
func (n *Node) scheduleInputBlockGeneration(slot uint64) {
	probability := n.config.IBGenerationProbability
	slotVRFs := make(map[uint64][]uint64)
	var slotOrder []uint64
	for probability > 0 {
		p := probability
		if p > 1 {
			p = 1
		}
		if vrf, ok := n.runVRF(p); ok {
			vrfSlot := slot
			if n.config.UniformIBGeneration {
				vrfSlot = slot + uint64(n.rng.Int63n(int64(n.config.StageLength)))
			}
			if _, seen := slotVRFs[vrfSlot]; !seen {
				slotOrder = append(slotOrder, vrfSlot)
			}
			slotVRFs[vrfSlot] = append(slotVRFs[vrfSlot], vrf)
		}
		probability -= 1
	}
	for _, vrfSlot := range slotOrder {
		vrfs := slotVRFs[vrfSlot]
		headers := make([]model.InputBlockHeader, len(vrfs))
		for i, vrf := range vrfs {
			headers[i] = model.InputBlockHeader{
				Slot:      vrfSlot,
				Producer:  n.id,
				Index:     uint64(i),
				VRF:       vrf,
				Timestamp: n.clock.Now(),
			}
		}
		n.leios.unsentIBs[vrfSlot] = append(n.leios.unsentIBs[vrfSlot], headers...)
	}
}

// generateInputBlocks produces (or reports empty) every IB scheduled for
// this slot.
func (n *Node) generateInputBlocks(slot uint64) error {
	headers, ok := n.leios.unsentIBs[slot]
	if !ok {
		return nil
	}
	delete(n.leios.unsentIBs, slot)
	for _, header := range headers {
		ib := model.InputBlock{Header: header}
		n.tryFillingIB(&ib)
		if len(ib.Transactions) > 0 {
			if err := n.generateIB(ib); err != nil {
				return err
			}
		} else {
			n.tracker.TrackEmptyInputBlockNotGenerated(ib.Header)
		}
	}
	return nil
}

// tryFillingIB greedily takes transactions from the Leios mempool whose
// shard matches the header's VRF-selected shard, in tx-id order, while
// staying within max_ib_size.
func (n *Node) tryFillingIB(ib *model.InputBlock) {
	shard := ib.Header.VRF % n.config.IBShards
	for _, id := range sortedTxIDs(n.leios.mempool) {
		tx := n.leios.mempool[id]
		if tx.Shard != shard {
			continue
		}
		if ib.Bytes()+tx.Bytes > n.config.MaxIBSize {
			continue
		}
		ib.Transactions = append(ib.Transactions, tx)
		delete(n.leios.mempool, id)
	}
}

// generateIB refreshes the header's timestamp, stores the IB locally, and
// announces its header to every peer.
func (n *Node) generateIB(ib model.InputBlock) error {
	ib.Header.Timestamp = n.clock.Now()
	n.tracker.TrackInputBlockGenerated(ib)
	id := ib.ID()
	n.leios.ibs[id] = ib
	for _, peer := range n.peers {
		if err := n.sendTo(peer, Message{Kind: AnnounceIBHeader, IBID: id}); err != nil {
			return err
		}
	}
	return nil
}

// tryGeneratePraosBlock runs the Praos leader-election VRF and, on
// success, drains the Praos mempool in ascending tx-id order while
// staying within max_block_size.
func (n *Node) tryGeneratePraosBlock(slot uint64) error {
	vrf, ok := n.runVRF(n.config.BlockGenerationProbability)
	if !ok {
		return nil
	}

	var size uint64
	var transactions []model.Transaction
	for _, id := range sortedTxIDs(n.praos.mempool) {
		tx := n.praos.mempool[id]
		if size+tx.Bytes > n.config.MaxBlockSize {
			break
		}
		size += tx.Bytes
		transactions = append(transactions, tx)
		delete(n.praos.mempool, id)
	}

	block := model.Block{Slot: slot, Producer: n.id, VRF: vrf, Transactions: transactions}
	n.tracker.TrackPraosBlockGenerated(block)
	return n.publishBlock(block)
}

// publishBlock inserts block locally and advertises it via RollForward to
// every peer whose tracked head is behind its slot.
//
// Transactions in published blocks are not removed from the Leios
// mempool: the relationship between Praos inclusion and Leios eligibility
// is left for a future protocol revision.
func (n *Node) publishBlock(block model.Block) error {
	for _, peer := range n.peers {
		if head, ok := n.praos.peerHeads[peer]; !ok || head < block.Slot {
			if err := n.sendTo(peer, Message{Kind: RollForward, Slot: block.Slot}); err != nil {
				return err
			}
			n.praos.peerHeads[peer] = block.Slot
		}
	}
	n.praos.blocks[block.Slot] = block
	return nil
}
