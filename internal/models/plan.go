package models

// Action is one kind of planned registry operation.
type Action string

const (
	ActionCreate Action = "create"
	ActionDelete Action = "delete"
	ActionSkip   Action = "skip"
)

// Operation is a single planned step against the registry. Target is always
// set; Record is populated only for creates. Building operations is pure, so
// a plan can be printed or tested without a live registry.
type Operation struct {
	Action     Action        `json:"action"`
	Target     Target        `json:"target"`
	Record     SilenceRecord `json:"record,omitempty"`
	SkipReason string        `json:"skip_reason,omitempty"`
}

// OperationPlan is the ordered list of operations for one invocation.
type OperationPlan []Operation

// Count returns how many operations in the plan have the given action.
func (p OperationPlan) Count(action Action) int {
	n := 0
	for _, op := range p {
		if op.Action == action {
			n++
		}
	}
	return n
}

// Mutations returns only the operations that would write to the registry.
func (p OperationPlan) Mutations() OperationPlan {
	var out OperationPlan
	for _, op := range p {
		if op.Action != ActionSkip {
			out = append(out, op)
		}
	}
	return out
}
