package node

import "github.com/mikekeke/leiosim/model"

// MessageKind discriminates the wire-level message taxonomy.
type MessageKind int

const (
	AnnounceTx MessageKind = iota
	RequestTx
	Tx
	RollForward
	RequestBlock
	Block
	AnnounceIBHeader
	RequestIBHeader
	IBHeader
	AnnounceIB
	RequestIB
	IB
)

// Message is a single wire-level protocol message. Only the fields
// relevant to Kind are populated; handlers switch on Kind before reading
// them. events.Event uses the same single-struct-with-a-type-tag shape.
type Message struct {
	Kind MessageKind

	TxID        model.TransactionID
	Transaction model.Transaction

	Slot       uint64
	PraosBlock model.Block

	IBID       model.InputBlockID
	IBHeader   model.InputBlockHeader
	HasBody    bool
	InputBlock model.InputBlock
}

// BytesSize estimates the wire size of the message, for bandwidth
// accounting and trace logging. It is a rough accounting figure, not a
// real serialization format.
func (m Message) BytesSize() uint64 {
	const overhead = 16
	switch m.Kind {
	case Tx:
		return overhead + m.Transaction.Bytes
	case Block:
		return overhead + m.PraosBlock.Bytes()
	case IB:
		return overhead + m.InputBlock.Bytes()
	case IBHeader:
		return overhead + 40
	default:
		return overhead
	}
}

// Inbound is a message received from a peer, tagged with its sender.
type Inbound struct {
	From    model.NodeID
	Message Message
}

// Transport is the node's outbound collaborator: reliable, directed
// message delivery with FIFO ordering per sender-receiver pair. It is
// assumed reliable; the node runtime has no retry layer of its own.
type Transport interface {
	SendTo(to model.NodeID, msg Message) error
}
