package booking

// Status represents booking status
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// transitions is the full set of legal status changes. Anything absent here
// is rejected with ErrInvalidTransition.
var transitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusConfirmed: true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusCompleted: true,
		StatusCancelled: true,
		StatusNoShow:    true,
	},
}

// CanTransition reports whether from -> to is a legal status change
func CanTransition(from, to Status) bool {
	return transitions[from][to]
}

// Terminal reports whether the status admits no further transitions
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}
