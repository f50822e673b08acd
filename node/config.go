package node

import "github.com/mikekeke/leiosim/model"

// Configuration holds the protocol parameters recognized by the node core.
// There is no file-backed loader here; callers populate this struct
// directly or decode it from whatever format the harness chooses.
type Configuration struct {
	// StageLength is the number of slots over which IB scheduling for a
	// stage is amortized.
	StageLength uint64

	// IBGenerationProbability is the expected number of IBs a node
	// schedules per stage; it may exceed 1.
	IBGenerationProbability float64

	// BlockGenerationProbability is the Praos leader-election success rate.
	BlockGenerationProbability float64

	// UniformIBGeneration selects an IB's slot uniformly within the stage
	// rather than always pinning it to the stage's first slot.
	UniformIBGeneration bool

	// IBShards is the number of shards transactions are partitioned into.
	IBShards uint64

	// MaxBlockSize bounds the total transaction bytes in a Praos block.
	MaxBlockSize uint64

	// MaxIBSize bounds the total transaction bytes in an input block.
	MaxIBSize uint64

	// MaxIBRequestsPerPeer caps concurrent in-flight IB body requests to a
	// single peer; surplus requests queue by header timestamp.
	MaxIBRequestsPerPeer int

	// TraceNodes is the set of node ids that log at trace level.
	TraceNodes map[model.NodeID]struct{}
}

// Traces reports whether id is in the configured trace set.
func (c Configuration) Traces(id model.NodeID) bool {
	_, ok := c.TraceNodes[id]
	return ok
}
