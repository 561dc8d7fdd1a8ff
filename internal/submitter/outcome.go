package submitter

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
)

type Status uint8

const (
	StatusConfirmed Status = iota + 1
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusConfirmed:
		return "confirmed"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", uint8(s))
	}
}

// Outcome is the second stage of a submission. Receipt is set whenever the
// transaction was mined, including when it reverted.
type Outcome struct {
	Status  Status
	Receipt *types.Receipt
	Err     error
}

// Submission is a broadcast transaction whose hash is known and whose receipt may not be
type Submission struct {
	ID    uuid.UUID
	Hash  common.Hash
	Nonce uint64

	done    chan struct{}
	outcome Outcome
}

func newSubmission(hash common.Hash, nonce uint64) *Submission {
	return &Submission{
		ID:    uuid.New(),
		Hash:  hash,
		Nonce: nonce,
		done:  make(chan struct{}),
	}
}

func (s *Submission) resolve(o Outcome) {
	s.outcome = o
	close(s.done)
}

// Done is closed once the outcome is known
func (s *Submission) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the outcome is known. Cancelling ctx stops waiting, not the transaction.
func (s *Submission) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-s.done:
		return s.outcome, nil
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	}
}
