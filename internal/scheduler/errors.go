package scheduler

import (
	"fmt"

	"github.com/google/uuid"
)

const (
	OpSettle   = "settle"
	OpUnsettle = "unsettle"
)

// PartialWriteError reports a settle or unsettle where only one of its two
// writes reached the store. It is only produced by stores without
// transactions; callers should refresh their view and tell the operator.
type PartialWriteError struct {
	Op          string
	ChargeID    uuid.UUID
	SuccessorID uuid.UUID

	// ChargeWritten is true when the charge's own status change was stored
	// and the successor write failed, false for the reverse.
	ChargeWritten bool

	Err error
}

func (e *PartialWriteError) Error() string {
	if e.ChargeWritten {
		return fmt.Sprintf("%s %s: charge updated but successor %s was not: %v", e.Op, e.ChargeID, e.SuccessorID, e.Err)
	}

	return fmt.Sprintf("%s %s: successor %s written but charge update failed: %v", e.Op, e.ChargeID, e.SuccessorID, e.Err)
}

func (e *PartialWriteError) Unwrap() error {
	return e.Err
}
