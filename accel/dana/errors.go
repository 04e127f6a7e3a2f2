package dana

import "errors"

var (
	// ErrInvalidTID is returned for TIDs outside the TID space.
	ErrInvalidTID = errors.New("TID out of range")

	// ErrTIDInUse is returned when binding a TID that is still bound.
	ErrTIDInUse = errors.New("TID in use")

	// ErrNotBound is returned when operating on a TID with no request.
	ErrNotBound = errors.New("TID not bound")

	// ErrAlreadyStarted is returned when writing inputs to a started
	// transaction.
	ErrAlreadyStarted = errors.New("transaction already started")

	// ErrRunning is returned when releasing a transaction that still runs.
	ErrRunning = errors.New("transaction still running")

	// ErrNoASID is returned when binding a request before SetASID.
	ErrNoASID = errors.New("ASID not set")

	// ErrNoANTP is returned when starting a transaction before SetANTP.
	ErrNoANTP = errors.New("ASID--NNID table pointer not set")

	// ErrCacheBusy is returned when every configuration cache entry is used
	// by a running transaction.
	ErrCacheBusy = errors.New("configuration cache busy")

	// ErrNoInput is returned when starting a transaction without inputs.
	ErrNoInput = errors.New("no input data")
)
