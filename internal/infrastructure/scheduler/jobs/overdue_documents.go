// Package jobs holds the periodic jobs run by the scheduler.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/uclouvain/admission-core/internal/domain/document"
	"github.com/uclouvain/admission-core/internal/domain/general"
	"github.com/uclouvain/admission-core/internal/domain/notification"
	"github.com/uclouvain/admission-core/internal/domain/proposition"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// OverdueDocumentsJobName is the scheduler name of OverdueDocumentsJob.
const OverdueDocumentsJobName = "overdue-documents"

// CandidateFinder resolves the candidate of a doctoral or general
// proposition.
type CandidateFinder interface {
	CandidateOf(ctx context.Context, id shared.PropositionID) (shared.PersonID, error)
}

type propositionCandidates struct {
	doctorates proposition.Repository
	generals   general.Repository
}

// PropositionCandidates looks the candidate up among doctoral then general
// propositions.
func PropositionCandidates(doctorates proposition.Repository, generals general.Repository) CandidateFinder {
	return propositionCandidates{doctorates: doctorates, generals: generals}
}

func (c propositionCandidates) CandidateOf(ctx context.Context, id shared.PropositionID) (shared.PersonID, error) {
	p, err := c.doctorates.Get(ctx, id)
	if err == nil {
		return p.CandidateID, nil
	}
	if !errors.Is(err, proposition.ErrPropositionNotFound) {
		return "", err
	}
	g, err := c.generals.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return g.CandidateID, nil
}

// OverdueDocumentsConfig holds the dependencies of OverdueDocumentsJob.
type OverdueDocumentsConfig struct {
	Slots      document.Repository
	Candidates CandidateFinder
	Notifier   notification.Notifier
	History    notification.History
	Clock      shared.Clock
	Logger     *slog.Logger
}

// OverdueDocumentsJob reminds candidates of requested documents whose
// deadline has passed. Each slot is reminded once per deadline; a new
// deadline set by a manager makes it eligible again.
type OverdueDocumentsJob struct {
	cfg    OverdueDocumentsConfig
	logger *slog.Logger

	mu       sync.Mutex
	reminded map[document.SlotID]int64
}

// NewOverdueDocumentsJob creates the job.
func NewOverdueDocumentsJob(cfg OverdueDocumentsConfig) *OverdueDocumentsJob {
	if cfg.Clock == nil {
		cfg.Clock = shared.SystemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &OverdueDocumentsJob{
		cfg:      cfg,
		logger:   cfg.Logger.With("job", OverdueDocumentsJobName),
		reminded: make(map[document.SlotID]int64),
	}
}

// Name implements scheduler.Job.
func (j *OverdueDocumentsJob) Name() string { return OverdueDocumentsJobName }

// Run implements scheduler.Job. A proposition whose candidate cannot be
// resolved is skipped and reported in the returned error; the others are
// still reminded.
func (j *OverdueDocumentsJob) Run(ctx context.Context) error {
	now := j.cfg.Clock.Now()
	slots, err := j.cfg.Slots.SearchOverdue(ctx, now)
	if err != nil {
		return fmt.Errorf("search overdue slots: %w", err)
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	current := make(map[document.SlotID]bool, len(slots))
	byProposition := make(map[shared.PropositionID][]*document.Slot)
	var order []shared.PropositionID
	for _, s := range slots {
		current[s.ID] = true
		if due, ok := j.reminded[s.ID]; ok && due == s.DueAt.UnixNano() {
			continue
		}
		if _, seen := byProposition[s.ID.PropositionID]; !seen {
			order = append(order, s.ID.PropositionID)
		}
		byProposition[s.ID.PropositionID] = append(byProposition[s.ID.PropositionID], s)
	}
	for id := range j.reminded {
		if !current[id] {
			delete(j.reminded, id)
		}
	}

	var errs []error
	sent := 0
	for _, propositionID := range order {
		if err := ctx.Err(); err != nil {
			return err
		}
		pending := byProposition[propositionID]
		candidate, err := j.cfg.Candidates.CandidateOf(ctx, propositionID)
		if err != nil {
			errs = append(errs, fmt.Errorf("proposition %s: %w", propositionID, err))
			continue
		}
		labels := make([]string, 0, len(pending))
		for _, s := range pending {
			labels = append(labels, slotLabel(s))
		}
		msg := notification.DocumentsOverdue(propositionID, candidate, labels, now)
		if err := j.cfg.Notifier.Notify(ctx, msg); err != nil {
			errs = append(errs, fmt.Errorf("proposition %s: notify: %w", propositionID, err))
			continue
		}
		for _, s := range pending {
			j.reminded[s.ID] = s.DueAt.UnixNano()
		}
		sent++
		if j.cfg.History != nil {
			entry := notification.NewEntry(propositionID, "system",
				fmt.Sprintf("Rappel envoyé pour %d document(s) en retard.", len(labels)),
				fmt.Sprintf("Reminder sent for %d overdue document(s).", len(labels)),
				now, "proposition", "documents", "reminder")
			if err := j.cfg.History.Record(ctx, entry); err != nil {
				j.logger.Warn("history not recorded", "proposition_id", propositionID.String(), "error", err)
			}
		}
	}

	j.logger.Info("overdue documents checked", "overdue", len(slots), "reminders", sent)
	return errors.Join(errs...)
}

func slotLabel(s *document.Slot) string {
	if s.Label != "" {
		return s.Label
	}
	return s.ID.Identifier
}
