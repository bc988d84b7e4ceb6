package sdk

import (
	"errors"
	"strings"
)

var (
	ErrBlockNotFound       = errors.New("block not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrInvalidSignature    = errors.New("invalid transaction signature")
	ErrMissingRPCURL       = errors.New("rpc url is required")
	ErrMissingArchiveURL   = errors.New("archive url is required")
)

// ArchiveError carries the errors array of a GraphQL response.
type ArchiveError struct {
	Messages []string
}

func (e *ArchiveError) Error() string {
	return "archive query failed: " + strings.Join(e.Messages, "; ")
}
