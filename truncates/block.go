package truncates

import (
	"github.com/reusee/itera/contexts"
)

type Anchor uint8

const (
	// AnchorTop keeps the head of the block and truncates its tail.
	AnchorTop Anchor = iota
	// AnchorBottom keeps the tail of the block and truncates its head.
	AnchorBottom
)

// Block is one tagged span of message content. MinTokens is the floor below
// which the block must not be shrunk; Flex weights how much of the overflow
// this block absorbs relative to its siblings (zero means weight one).
type Block struct {
	Text      string
	Anchor    Anchor
	MinTokens int
	Flex      float64
}

type Message struct {
	Role   contexts.Role
	Blocks []Block
}

// Marker replaces removed content so the model can see something was cut.
const Marker = "…[truncated]"
