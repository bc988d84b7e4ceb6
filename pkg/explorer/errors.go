package explorer

import "fmt"

// BlockNotFoundError is returned when the node answered with an empty block body.
type BlockNotFoundError struct {
	Slot uint64
}

func (e *BlockNotFoundError) Error() string {
	return fmt.Sprintf("block %d not found", e.Slot)
}

// TransactionNotFoundError is returned when the node has no transaction for Hash.
type TransactionNotFoundError struct {
	Hash string
}

func (e *TransactionNotFoundError) Error() string {
	return fmt.Sprintf("transaction %s not found", e.Hash)
}

// NoBlocksFetchedError is returned when every block of a latest-N batch failed.
// Err is the last per-block failure.
type NoBlocksFetchedError struct {
	Requested int
	Err       error
}

func (e *NoBlocksFetchedError) Error() string {
	return fmt.Sprintf("no blocks fetched out of %d requested: %v", e.Requested, e.Err)
}

func (e *NoBlocksFetchedError) Unwrap() error { return e.Err }
