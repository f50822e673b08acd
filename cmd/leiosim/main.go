// Command leiosim runs an in-memory demonstration of the node runtime: a
// fully-connected set of nodes exchanging transactions, Praos blocks, and
// input blocks over a fixed number of slots, printing a summary of the
// observational event stream at the end.
package main

import (
	"fmt"
	"os"

	"github.com/mikekeke/leiosim/model"
	"github.com/mikekeke/leiosim/node"
	"github.com/mikekeke/leiosim/sim"
	"github.com/rs/zerolog"
	"gopkg.in/urfave/cli.v1"
)

func main() {
	app := cli.NewApp()
	app.Name = "leiosim"
	app.Usage = "in-memory Praos/Leios node simulation demo"
	app.Flags = []cli.Flag{
		cli.IntFlag{Name: "nodes", Value: 5, Usage: "number of simulated nodes"},
		cli.Uint64Flag{Name: "slots", Value: 200, Usage: "number of slots to simulate"},
		cli.IntFlag{Name: "tx-per-slot", Value: 4, Usage: "synthetic transactions minted per slot"},
		cli.Uint64Flag{Name: "stage-length", Value: 10, Usage: "slots per IB scheduling stage"},
		cli.Uint64Flag{Name: "ib-shards", Value: 4, Usage: "number of input-block shards"},
		cli.Float64Flag{Name: "ib-generation-probability", Value: 0.5},
		cli.Float64Flag{Name: "block-generation-probability", Value: 0.05},
		cli.BoolFlag{Name: "uniform-ib-generation"},
		cli.Uint64Flag{Name: "max-block-size", Value: 90000},
		cli.Uint64Flag{Name: "max-ib-size", Value: 300000},
		cli.IntFlag{Name: "max-ib-requests-per-peer", Value: 1},
		cli.BoolFlag{Name: "verbose", Usage: "trace-log every node"},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "leiosim:", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	if c.Bool("verbose") {
		log = log.Level(zerolog.TraceLevel)
	} else {
		log = log.Level(zerolog.InfoLevel)
	}

	nodeCount := c.Int("nodes")
	stakes := make([]uint64, nodeCount)
	for i := range stakes {
		stakes[i] = 1
	}

	nodeTrace := make(map[model.NodeID]struct{})
	if c.Bool("verbose") {
		for i := 0; i < nodeCount; i++ {
			nodeTrace[model.NodeID(i)] = struct{}{}
		}
	}

	config := sim.Configuration{
		NodeConfig: node.Configuration{
			StageLength:                c.Uint64("stage-length"),
			IBGenerationProbability:    c.Float64("ib-generation-probability"),
			BlockGenerationProbability: c.Float64("block-generation-probability"),
			UniformIBGeneration:        c.Bool("uniform-ib-generation"),
			IBShards:                   c.Uint64("ib-shards"),
			MaxBlockSize:               c.Uint64("max-block-size"),
			MaxIBSize:                  c.Uint64("max-ib-size"),
			MaxIBRequestsPerPeer:       c.Int("max-ib-requests-per-peer"),
			TraceNodes:                 nodeTrace,
		},
		NodeCount:   nodeCount,
		Stakes:      stakes,
		SlotCount:   c.Uint64("slots"),
		TxPerSlot:   c.Int("tx-per-slot"),
		TxBytes:     500,
		InboxBuffer: 256,
	}

	h := sim.NewHarness(config, log)

	summary := make(map[int]int)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for e := range h.Events() {
			summary[int(e.Kind)]++
		}
	}()

	h.Run()
	<-done

	fmt.Println("event counts by kind:")
	for kind, count := range summary {
		fmt.Printf("  %d: %d\n", kind, count)
	}
	return nil
}
