// Package jury holds the composition of the doctoral defense jury.
package jury

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/validator"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	ErrJuryNotFound = shared.NewBusinessError("JURY-1", shared.ErrNotFound,
		"jury not found")
	ErrMemberNotFound = shared.NewBusinessError("JURY-2", shared.ErrNotFound,
		"jury member not found")
	ErrAlreadyInJury = shared.NewBusinessError("JURY-3", shared.ErrAlreadyExists,
		"this person is already a member of the jury")
	ErrNonDoctorWithoutJustification = shared.NewBusinessError("JURY-4", shared.ErrValidation,
		"a member who is not a doctor needs a justification")
	ErrExternalWithoutInstitution = shared.NewBusinessError("JURY-5", shared.ErrValidation,
		"an external member needs an institution")
	ErrExternalWithoutCountry = shared.NewBusinessError("JURY-6", shared.ErrValidation,
		"an external member needs a country")
	ErrExternalWithoutLastName = shared.NewBusinessError("JURY-7", shared.ErrValidation,
		"an external member needs a last name")
	ErrExternalWithoutFirstName = shared.NewBusinessError("JURY-8", shared.ErrValidation,
		"an external member needs a first name")
	ErrExternalWithoutTitle = shared.NewBusinessError("JURY-9", shared.ErrValidation,
		"an external member needs a title")
	ErrExternalWithoutGender = shared.NewBusinessError("JURY-10", shared.ErrValidation,
		"an external member needs a gender")
	ErrExternalWithoutEmail = shared.NewBusinessError("JURY-11", shared.ErrValidation,
		"an external member needs an email")
	ErrPromoterCannotPreside = shared.NewBusinessError("JURY-12", shared.ErrValidation,
		"a promoter cannot be the president of the jury")
	ErrPromoterCannotBeRemoved = shared.NewBusinessError("JURY-13", shared.ErrInvalidState,
		"a promoter cannot be removed from the jury")
)

// Role is the role of a member in the jury.
type Role string

const (
	President Role = "PRESIDENT"
	Secretary Role = "SECRETAIRE"
	Member    Role = "MEMBRE"
)

// Title is the academic title of a member.
type Title string

const (
	NoTitle   Title = ""
	Doctor    Title = "DOCTEUR"
	Professor Title = "PROFESSEUR"
	NonDoctor Title = "NON_DOCTEUR"
)

// MemberID identifies a jury member.
type MemberID uuid.UUID

// String returns the string representation.
func (id MemberID) String() string {
	return uuid.UUID(id).String()
}

// ParseMemberID parses the canonical textual form.
func ParseMemberID(s string) (MemberID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return MemberID{}, shared.WrapError("jury", "ParseMemberID", shared.ErrInvalidID, "invalid member ID", err)
	}
	return MemberID(id), nil
}

// JuryMember is a member of the jury. Members with a registration number
// come from the people directory; the others are external.
type JuryMember struct {
	ID                     MemberID
	Role                   Role
	IsPromoter             bool
	Registration           string
	Institution            string
	OtherInstitution       string
	Country                string
	LastName               string
	FirstName              string
	Title                  Title
	NonDoctorJustification string
	Gender                 string
	Email                  string
}

// IsExternal reports whether the member is unknown to the people directory.
func (m JuryMember) IsExternal() bool {
	return m.Registration == ""
}

// Jury is the defense jury of a doctorate, keyed by the proposition.
type Jury struct {
	ID      shared.PropositionID
	Title   string
	Members []JuryMember
}

// New creates a jury seeded with the promoters of the doctorate.
func New(id shared.PropositionID, promoters []shared.PersonID) *Jury {
	j := &Jury{ID: id, Members: []JuryMember{}}
	for _, p := range promoters {
		j.Members = append(j.Members, JuryMember{
			ID:           MemberID(uuid.New()),
			Role:         Member,
			IsPromoter:   true,
			Registration: p.String(),
		})
	}
	return j
}

// AddMember adds a non-promoter member with the MEMBRE role.
func (j *Jury) AddMember(m JuryMember) (MemberID, error) {
	rules := []validator.Validator{
		shouldNotAlreadyBeInJury(j, m.Registration),
		shouldNonDoctorBeJustified(m),
	}
	if m.IsExternal() {
		rules = append(rules,
			validator.NotBlank(m.Institution, ErrExternalWithoutInstitution),
			validator.NotBlank(m.Country, ErrExternalWithoutCountry),
			validator.NotBlank(m.LastName, ErrExternalWithoutLastName),
			validator.NotBlank(m.FirstName, ErrExternalWithoutFirstName),
			validator.NotBlank(string(m.Title), ErrExternalWithoutTitle),
			validator.NotBlank(m.Gender, ErrExternalWithoutGender),
			validator.NotBlank(m.Email, ErrExternalWithoutEmail),
		)
	}
	if err := (validator.List{Invariants: rules}).Validate(); err != nil {
		return MemberID{}, err
	}
	m.ID = MemberID(uuid.New())
	m.Role = Member
	m.IsPromoter = false
	j.Members = append(j.Members, m)
	return m.ID, nil
}

// ModifyRole assigns a role. The previous president or secretary goes
// back to the MEMBRE role.
func (j *Jury) ModifyRole(id MemberID, role Role) error {
	idx := j.indexOf(id)
	err := validator.List{
		DataContract: []validator.Validator{validator.Check(idx >= 0, ErrMemberNotFound)},
		Invariants: []validator.Validator{validator.Func(func() error {
			if role == President && j.Members[idx].IsPromoter {
				return ErrPromoterCannotPreside
			}
			return nil
		})},
	}.Validate()
	if err != nil {
		return err
	}
	if role != Member {
		for i := range j.Members {
			if j.Members[i].Role == role {
				j.Members[i].Role = Member
			}
		}
	}
	j.Members[idx].Role = role
	return nil
}

// RemoveMember removes a non-promoter member.
func (j *Jury) RemoveMember(id MemberID) error {
	idx := j.indexOf(id)
	err := validator.List{
		DataContract: []validator.Validator{validator.Check(idx >= 0, ErrMemberNotFound)},
		Invariants: []validator.Validator{validator.Func(func() error {
			if j.Members[idx].IsPromoter {
				return ErrPromoterCannotBeRemoved
			}
			return nil
		})},
	}.Validate()
	if err != nil {
		return err
	}
	j.Members = slices.Delete(j.Members, idx, idx+1)
	return nil
}

// Member returns a member by identity.
func (j *Jury) Member(id MemberID) (JuryMember, error) {
	idx := j.indexOf(id)
	if idx < 0 {
		return JuryMember{}, ErrMemberNotFound
	}
	return j.Members[idx], nil
}

func (j *Jury) indexOf(id MemberID) int {
	return slices.IndexFunc(j.Members, func(m JuryMember) bool { return m.ID == id })
}

// Clone returns a deep copy.
func (j *Jury) Clone() *Jury {
	c := *j
	c.Members = slices.Clone(j.Members)
	return &c
}

func shouldNotAlreadyBeInJury(j *Jury, registration string) validator.Validator {
	return validator.Func(func() error {
		if registration == "" {
			return nil
		}
		for _, m := range j.Members {
			if m.Registration == registration {
				return ErrAlreadyInJury
			}
		}
		return nil
	})
}

func shouldNonDoctorBeJustified(m JuryMember) validator.Validator {
	return validator.Check(m.Title != NonDoctor || m.NonDoctorJustification != "", ErrNonDoctorWithoutJustification)
}

// Repository loads and saves juries.
type Repository interface {
	// Get returns ErrJuryNotFound when absent.
	Get(ctx context.Context, id shared.PropositionID) (*Jury, error)
	Save(ctx context.Context, j *Jury) error
}
