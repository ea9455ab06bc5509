// Package notification describes the outgoing side effects of the admission
// core: messages sent to the people involved in a proposition and the audit
// trail kept for each proposition.
package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// MessageID identifies one outgoing message.
type MessageID string

// NewMessageID generates a fresh identity.
func NewMessageID() MessageID {
	return MessageID(uuid.NewString())
}

// String returns the string representation.
func (id MessageID) String() string {
	return string(id)
}

// Channel is the delivery channel of a message.
type Channel string

const (
	ChannelEmail Channel = "EMAIL"
	ChannelWeb   Channel = "WEB"
)

// IsValid reports whether the channel is known.
func (c Channel) IsValid() bool {
	switch c {
	case ChannelEmail, ChannelWeb:
		return true
	}
	return false
}

// Kind is the business reason of a message.
type Kind string

const (
	KindSignaturesRequested Kind = "SIGNATURES_REQUESTED"
	KindSignatoryRefused    Kind = "SIGNATORY_REFUSED"
	KindSignatoryApproved   Kind = "SIGNATORY_APPROVED"
	KindSignatoryRemoved    Kind = "SIGNATORY_REMOVED"
	KindSubmitted           Kind = "SUBMITTED"
	KindDocumentsRequested  Kind = "DOCUMENTS_REQUESTED"
	KindDocumentsOverdue    Kind = "DOCUMENTS_OVERDUE"
	KindDecision            Kind = "DECISION"
)

// ══════════════════════════════════════════════════════════════════════════════
// MESSAGE
// ══════════════════════════════════════════════════════════════════════════════

// Message is a notification whose content is fully computed before it
// reaches the Notifier. The Notifier only transports it.
type Message struct {
	ID            MessageID
	Kind          Kind
	Channel       Channel
	PropositionID shared.PropositionID
	Recipients    []shared.PersonID
	Subject       string
	Body          string
	CreatedAt     time.Time
}

func newMessage(kind Kind, propositionID shared.PropositionID, recipients []shared.PersonID, subject, body string, now time.Time) Message {
	return Message{
		ID:            NewMessageID(),
		Kind:          kind,
		Channel:       ChannelEmail,
		PropositionID: propositionID,
		Recipients:    recipients,
		Subject:       subject,
		Body:          body,
		CreatedAt:     now,
	}
}

// SignaturesRequested builds the invitation sent to new signatories.
func SignaturesRequested(propositionID shared.PropositionID, candidate shared.PersonID, invited []shared.PersonID, now time.Time) Message {
	return newMessage(KindSignaturesRequested, propositionID, invited,
		"Signature requested for a doctoral proposition",
		fmt.Sprintf("%s asks you to sign the doctoral proposition %s.", candidate, propositionID),
		now)
}

// SignatoryAnswered builds the message sent to the candidate once a
// signatory approved or refused.
func SignatoryAnswered(propositionID shared.PropositionID, candidate, signatory shared.PersonID, approved bool, reason string, now time.Time) Message {
	if approved {
		return newMessage(KindSignatoryApproved, propositionID, []shared.PersonID{candidate},
			"Your doctoral proposition was approved",
			fmt.Sprintf("%s approved your doctoral proposition.", signatory),
			now)
	}
	body := fmt.Sprintf("%s refused your doctoral proposition.", signatory)
	if reason != "" {
		body += " Reason: " + reason
	}
	return newMessage(KindSignatoryRefused, propositionID, []shared.PersonID{candidate},
		"Your doctoral proposition was refused", body, now)
}

// SignatoryRemoved builds the message sent to a removed signatory.
func SignatoryRemoved(propositionID shared.PropositionID, signatory shared.PersonID, now time.Time) Message {
	return newMessage(KindSignatoryRemoved, propositionID, []shared.PersonID{signatory},
		"You were removed from a supervision group",
		fmt.Sprintf("You are no longer a member of the supervision group of %s.", propositionID),
		now)
}

// Submitted builds the confirmation sent after a successful submission.
func Submitted(propositionID shared.PropositionID, candidate shared.PersonID, signatories []shared.PersonID, reference string, now time.Time) Message {
	recipients := append([]shared.PersonID{candidate}, signatories...)
	return newMessage(KindSubmitted, propositionID, recipients,
		"Admission proposition "+reference+" submitted",
		fmt.Sprintf("The proposition %s has been submitted.", reference),
		now)
}

// DocumentsRequested lists the requested documents for the candidate.
func DocumentsRequested(propositionID shared.PropositionID, candidate shared.PersonID, labels []string, due *time.Time, now time.Time) Message {
	var b strings.Builder
	b.WriteString("The following documents are requested:\n")
	for _, l := range labels {
		b.WriteString("- " + l + "\n")
	}
	if due != nil {
		b.WriteString("Deadline: " + due.Format(time.DateOnly) + "\n")
	}
	return newMessage(KindDocumentsRequested, propositionID, []shared.PersonID{candidate},
		"Documents requested", b.String(), now)
}

// DocumentsOverdue reminds the candidate of requested documents whose
// deadline has passed.
func DocumentsOverdue(propositionID shared.PropositionID, candidate shared.PersonID, labels []string, now time.Time) Message {
	var b strings.Builder
	b.WriteString("The deadline has passed for the following documents:\n")
	for _, l := range labels {
		b.WriteString("- " + l + "\n")
	}
	return newMessage(KindDocumentsOverdue, propositionID, []shared.PersonID{candidate},
		"Requested documents are overdue", b.String(), now)
}

// Decision informs the candidate of a decision taken on the proposition.
func Decision(propositionID shared.PropositionID, candidate shared.PersonID, subject, body string, now time.Time) Message {
	return newMessage(KindDecision, propositionID, []shared.PersonID{candidate}, subject, body, now)
}

// Notifier transports messages. Delivery is fire-and-forget: a failure
// never rolls back the operation that produced the message.
type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}
