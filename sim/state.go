package sim

// NodeState is the storage mode of the node between accesses.
type NodeState string

const (
	// Keep holds the data uncompressed and pays HoldCost per tick.
	Keep NodeState = "keep"
	// Compress holds a compressed copy; only valid for three-tier models.
	Compress NodeState = "compress"
	// Discard drops the data; the next access pays RecoverCost.
	Discard NodeState = "discard"
)

func (s NodeState) String() string {
	return string(s)
}

// level orders states by how much of the data is retained.
func (s NodeState) level() int {
	switch s {
	case Keep:
		return 0
	case Compress:
		return 1
	default:
		return 2
	}
}

// Decision is a policy's verdict for one idle tick: the state to occupy for
// that tick and the cost charged for it.
type Decision struct {
	Next NodeState
	Cost float64
}
