package oxidb

import "fmt"

// Error is returned when the server answers {"ok": false}.
type Error struct {
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("oxidb: %s", e.Msg)
}

// TransactionConflictError is returned when the server reports a write
// conflict, e.g. a unique index violation raced by another writer.
type TransactionConflictError struct {
	Msg string
}

func (e *TransactionConflictError) Error() string {
	return fmt.Sprintf("oxidb: conflict: %s", e.Msg)
}
