package query

import (
	"context"
	"errors"
	"time"

	"golang.org/x/text/language"

	"github.com/uclouvain/admission-core/internal/domain/notification"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// GetHistoryQuery reads the audit trail of a proposition.
type GetHistoryQuery struct {
	PropositionID shared.PropositionID
	Language      string

	// Tag keeps only entries carrying it, every entry when empty.
	Tag string
}

// Validate checks the query.
func (q *GetHistoryQuery) Validate() error {
	if q.PropositionID.IsZero() {
		return errors.New("proposition_id is required")
	}
	return nil
}

// EntryDTO is one history line in the requested language.
type EntryDTO struct {
	Author  string    `json:"auteur"`
	Message string    `json:"message"`
	Tags    []string  `json:"tags,omitempty"`
	At      time.Time `json:"created"`
}

// GetHistoryHandler handles GetHistoryQuery.
type GetHistoryHandler struct {
	history notification.History
}

// NewGetHistoryHandler creates a new handler.
func NewGetHistoryHandler(history notification.History) *GetHistoryHandler {
	return &GetHistoryHandler{history: history}
}

// Handle executes the query.
func (h *GetHistoryHandler) Handle(ctx context.Context, query GetHistoryQuery) ([]EntryDTO, error) {
	if err := query.Validate(); err != nil {
		return nil, shared.WrapError("query", "GetHistory", shared.ErrValidation, err.Error(), err)
	}
	entries, err := h.history.List(ctx, query.PropositionID)
	if err != nil {
		return nil, shared.WrapError("query", "GetHistory", shared.ErrExternalService, "failed to read history", err)
	}
	base, _ := shared.ParseLanguage(query.Language).Base()
	english, _ := language.English.Base()

	result := make([]EntryDTO, 0, len(entries))
	for _, e := range entries {
		if query.Tag != "" && !hasTag(e.Tags, query.Tag) {
			continue
		}
		msg := e.MessageFR
		if base == english {
			msg = e.MessageEN
		}
		result = append(result, EntryDTO{Author: e.Author, Message: msg, Tags: e.Tags, At: e.At})
	}
	return result, nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
