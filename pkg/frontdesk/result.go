package frontdesk

// FailureKind classifies why a transition did not succeed.
type FailureKind string

const (
	FailureNotFound         FailureKind = "not_found"
	FailureRejected         FailureKind = "rejected"
	FailureConflict         FailureKind = "conflict"
	FailureStore            FailureKind = "store_failure"
	FailurePartiallyApplied FailureKind = "partially_applied"
)

// String returns the stable kind code.
func (kind FailureKind) String() string {
	return string(kind)
}

// Verdict is the outcome of a read-only transition check.
// Reservation and Room carry the records the decision was based on, when they were read.
type Verdict struct {
	Approved    bool
	Reason      string
	Kind        FailureKind
	Reservation *Reservation
	Room        *Room
	cause       error
}

// Cause returns the underlying store error for store failures.
func (verdict Verdict) Cause() error {
	return verdict.cause
}

// TransitionResult is the uniform outcome of PerformCheckIn and PerformCheckOut.
// On success both records are present and Error is empty. On failure Error holds
// a user-displayable message; FailurePartiallyApplied results carry the committed reservation.
type TransitionResult struct {
	Success     bool
	Reservation *Reservation
	Room        *Room
	Error       string
	Kind        FailureKind
}

func approve(reservation Reservation, room *Room) Verdict {
	return Verdict{Approved: true, Reservation: &reservation, Room: room}
}

func reject(kind FailureKind, reason string, reservation *Reservation, cause error) Verdict {
	return Verdict{Kind: kind, Reason: reason, Reservation: reservation, cause: cause}
}

func succeeded(reservation Reservation, room Room) TransitionResult {
	return TransitionResult{Success: true, Reservation: &reservation, Room: &room}
}

func failed(kind FailureKind, message string) TransitionResult {
	return TransitionResult{Kind: kind, Error: message}
}
