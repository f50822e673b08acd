package sim

import (
	"testing"
	"time"

	"github.com/mikekeke/leiosim/events"
	"github.com/mikekeke/leiosim/node"
	"github.com/rs/zerolog"
)

func TestHarnessRunProducesTransactionGeneratedEvents(t *testing.T) {
	cfg := Configuration{
		NodeConfig: node.Configuration{
			StageLength:                4,
			IBGenerationProbability:    0.5,
			BlockGenerationProbability: 0.2,
			IBShards:                   2,
			MaxBlockSize:               10000,
			MaxIBSize:                  10000,
			MaxIBRequestsPerPeer:       2,
		},
		NodeCount:   3,
		Stakes:      []uint64{1, 1, 1},
		SlotCount:   10,
		TxPerSlot:   1,
		TxBytes:     100,
		InboxBuffer: 64,
	}
	h := NewHarness(cfg, zerolog.Nop())

	var seenGenerated bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range h.Events() {
			if e.Kind == events.TransactionGenerated {
				seenGenerated = true
			}
		}
	}()

	runDone := make(chan struct{})
	go func() {
		h.Run()
		close(runDone)
	}()

	select {
	case <-runDone:
	case <-time.After(10 * time.Second):
		t.Fatal("harness run did not finish in time")
	}
	<-done

	if !seenGenerated {
		t.Fatal("expected at least one TransactionGenerated event over 10 slots")
	}
}
