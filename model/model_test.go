package model

import "testing"

func TestInputBlockIDRoundTrips(t *testing.T) {
	header := InputBlockHeader{Slot: 10, Producer: 3, Index: 2, VRF: 99, Timestamp: 1234}
	ib := InputBlock{Header: header, Transactions: []Transaction{{ID: 1, Bytes: 5}}}

	if ib.ID() != header.ID() {
		t.Fatalf("InputBlock.ID() = %v, want %v", ib.ID(), header.ID())
	}
	want := InputBlockID{Slot: 10, Producer: 3, Index: 2}
	if ib.ID() != want {
		t.Fatalf("ID() = %v, want %v", ib.ID(), want)
	}
}

func TestBlockBytesSumsTransactions(t *testing.T) {
	b := Block{Transactions: []Transaction{{Bytes: 3}, {Bytes: 4}, {Bytes: 5}}}
	if got := b.Bytes(); got != 12 {
		t.Fatalf("Bytes() = %d, want 12", got)
	}
}

func TestInputBlockBytesSumsTransactions(t *testing.T) {
	ib := InputBlock{Transactions: []Transaction{{Bytes: 7}, {Bytes: 8}}}
	if got := ib.Bytes(); got != 15 {
		t.Fatalf("Bytes() = %d, want 15", got)
	}
}
