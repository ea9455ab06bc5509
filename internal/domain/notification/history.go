package notification

import (
	"context"
	"time"

	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// Entry is one line of the audit trail of a proposition.
type Entry struct {
	PropositionID shared.PropositionID
	Author        string
	MessageFR     string
	MessageEN     string
	Tags          []string
	At            time.Time
}

// NewEntry builds an entry with the same text in both languages when en is
// empty.
func NewEntry(propositionID shared.PropositionID, author, fr, en string, at time.Time, tags ...string) Entry {
	if en == "" {
		en = fr
	}
	return Entry{
		PropositionID: propositionID,
		Author:        author,
		MessageFR:     fr,
		MessageEN:     en,
		Tags:          tags,
		At:            at,
	}
}

// History records the audit trail. Record is only called once the
// aggregate has been saved.
type History interface {
	Record(ctx context.Context, entry Entry) error
	List(ctx context.Context, propositionID shared.PropositionID) ([]Entry, error)
}
