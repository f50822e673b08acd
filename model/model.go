// Package model defines the opaque domain entities passed between nodes:
// transactions, Praos blocks, and the header/body pair that makes up an
// input block. Every value here is immutable once constructed and safe to
// share across goroutines.
package model

// NodeID identifies a simulated node.
type NodeID int

// TransactionID identifies a Transaction.
type TransactionID int

// Transaction is an opaque mempool entry: a payload of a given size,
// assigned to a shard for input-block inclusion.
type Transaction struct {
	ID    TransactionID
	Bytes uint64
	Shard uint64
}

// Block is a Praos main-chain block.
type Block struct {
	Slot         uint64
	Producer     NodeID
	VRF          uint64
	Transactions []Transaction
}

// Bytes returns the total size of the block's transactions.
func (b Block) Bytes() uint64 {
	var total uint64
	for _, tx := range b.Transactions {
		total += tx.Bytes
	}
	return total
}

// InputBlockID identifies an input block by the slot, producer, and
// per-slot index it was scheduled under.
type InputBlockID struct {
	Slot     uint64
	Producer NodeID
	Index    uint64
}

// InputBlockHeader is the gossiped, header-only view of an input block: it
// carries everything needed to decide whether to fetch the body.
type InputBlockHeader struct {
	Slot      uint64
	Producer  NodeID
	Index     uint64
	VRF       uint64
	Timestamp uint64
}

// ID returns the identifier this header's body will be stored under.
func (h InputBlockHeader) ID() InputBlockID {
	return InputBlockID{Slot: h.Slot, Producer: h.Producer, Index: h.Index}
}

// InputBlock is a Leios-tier block: a header plus its sharded transaction
// payload.
type InputBlock struct {
	Header       InputBlockHeader
	Transactions []Transaction
}

// ID returns the identifier of this input block.
func (ib InputBlock) ID() InputBlockID {
	return ib.Header.ID()
}

// Bytes returns the total size of the input block's transactions.
func (ib InputBlock) Bytes() uint64 {
	var total uint64
	for _, tx := range ib.Transactions {
		total += tx.Bytes
	}
	return total
}
