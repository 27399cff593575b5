package model

// MutationOp names a query-state mutation.
type MutationOp string

// Mutation ops.
const (
	OpSet          MutationOp = "set"
	OpSetAll       MutationOp = "setAll"
	OpClear        MutationOp = "clear"
	OpClearAll     MutationOp = "clearAll"
	OpToggle       MutationOp = "toggle"
	OpToggleSingle MutationOp = "toggleSingle"
	// OpBarrier carries no change; it is applied once everything queued
	// before it has been.
	OpBarrier MutationOp = "barrier"
)

// Mutation is one change to the URL query, applied on top of whatever query
// is current when its turn comes.
type Mutation struct {
	ID     string            `json:"id,omitempty"`
	Op     MutationOp        `json:"op"`
	Key    string            `json:"key,omitempty"`
	Value  string            `json:"value,omitempty"`
	Record map[string]string `json:"record,omitempty"`

	// Done is closed after the mutation was handled, successfully or not.
	Done chan struct{} `json:"-"`
}
