package implementation

import (
	"fmt"

	bwmarrin "github.com/bwmarrin/snowflake"
	"github.com/jt828/functrace/pkg/snowflake"
)

// maxNodeID is the largest node id the default 10 node bits can hold.
const maxNodeID = -1 ^ (-1 << 10)

type bwmarrinSnowflake struct {
	node *bwmarrin.Node
}

// NewSnowflake returns a generator for span store row ids. Each process
// writing to the same store needs its own nodeID.
func NewSnowflake(nodeID int64) (snowflake.Snowflake, error) {
	if nodeID < 0 || nodeID > maxNodeID {
		return nil, fmt.Errorf("snowflake node id %d out of range [0, %d]", nodeID, maxNodeID)
	}
	node, err := bwmarrin.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &bwmarrinSnowflake{node: node}, nil
}

func (s *bwmarrinSnowflake) Generate() int64 {
	return s.node.Generate().Int64()
}
