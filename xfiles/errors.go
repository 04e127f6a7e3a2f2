package xfiles

import "errors"

var (
	// ErrInvalidTID is returned for a TID that is unknown, retired, or in a
	// state that does not allow the operation.
	ErrInvalidTID = errors.New("invalid TID")

	// ErrResolution is returned when an NNID has no entry in the queue of the
	// current ASID. It wraps the cause reported by the table.
	ErrResolution = errors.New("NNID resolution failed")

	// ErrResourceExhausted is returned when every TID is held.
	ErrResourceExhausted = errors.New("no free TID")

	// ErrModeMismatch is returned when the learning mode of a transaction does
	// not allow the operation.
	ErrModeMismatch = errors.New("learning mode mismatch")

	// ErrKilled is returned by ReadData when the transaction was killed.
	ErrKilled = errors.New("transaction killed")

	// ErrFailed is returned when the accelerator could not run the
	// transaction. It wraps the cause.
	ErrFailed = errors.New("transaction failed")

	// ErrShortRead is returned by ReadData when the transaction finished with
	// fewer outputs than requested.
	ErrShortRead = errors.New("fewer outputs than requested")

	// ErrNoContext is returned when a request is made before both the table
	// pointer and the ASID are set.
	ErrNoContext = errors.New("ASID or ANT pointer not set")

	// ErrNoData is returned when a write carries no element.
	ErrNoData = errors.New("no data")

	// ErrInvalidRegister is returned for registers the accelerator does not
	// define.
	ErrInvalidRegister = errors.New("invalid register")
)
