package proposition

import (
	"context"

	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// Repository loads and saves doctoral propositions.
type Repository interface {
	// Get returns ErrPropositionNotFound when absent.
	Get(ctx context.Context, id shared.PropositionID) (*Proposition, error)
	Save(ctx context.Context, p *Proposition) error
	Delete(ctx context.Context, id shared.PropositionID) error
	SearchByCandidate(ctx context.Context, candidate shared.PersonID) ([]*Proposition, error)
	// CountActiveByCandidate counts propositions whose status is active.
	CountActiveByCandidate(ctx context.Context, candidate shared.PersonID) (int, error)
	// NextReference allocates the next submission reference. Numbers are
	// strictly increasing and never reused.
	NextReference(ctx context.Context) (int64, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSLATORS
// ══════════════════════════════════════════════════════════════════════════════

// Doctorate is the read model of a doctoral training offer.
type Doctorate struct {
	Training    shared.TrainingID
	Title       string
	Commission  string
	Campus      string
	Institution string
}

// DoctorateTranslator reads the training catalogue.
type DoctorateTranslator interface {
	// Get returns ErrDoctorateNotFound when the offer does not exist.
	Get(ctx context.Context, training shared.TrainingID) (Doctorate, error)
}

// Scholarship is the read model of a research scholarship.
type Scholarship struct {
	ID    string
	Short string
	Long  string
}

// ScholarshipTranslator reads the scholarship catalogue.
type ScholarshipTranslator interface {
	// Get returns ErrScholarshipNotFound when the scholarship does not exist.
	Get(ctx context.Context, id string) (Scholarship, error)
}
