package supervision

import (
	"github.com/uclouvain/admission-core/internal/domain/shared"
	"github.com/uclouvain/admission-core/internal/domain/validator"
)

// Single-rule validators. Each receives only the slice of state it checks.

func shouldGroupNotBeFull(count, max int, err *shared.BusinessError) validator.Validator {
	return validator.Check(count < max, err)
}

func shouldNotAlreadyBeMember(g *Group, person shared.PersonID) validator.Validator {
	return validator.Func(func() error {
		if g.isPromoter(person) || g.isCAMember(person) {
			return ErrAlreadyMember
		}
		return nil
	})
}

func shouldBePromoter(g *Group, person shared.PersonID) validator.Validator {
	return validator.Check(g.isPromoter(person), ErrPromoterNotFound)
}

func shouldBeCAMember(g *Group, person shared.PersonID) validator.Validator {
	return validator.Check(g.isCAMember(person), ErrCAMemberNotFound)
}

func shouldBeSignatory(g *Group, person shared.PersonID) validator.Validator {
	return validator.Check(g.isPromoter(person) || g.isCAMember(person), ErrSignatoryNotFound)
}

func shouldNotAlreadyBeInvited(sig *Signature) validator.Validator {
	return validator.Check(sig == nil || sig.State == NotInvited, ErrSignatoryAlreadyInvited)
}

func shouldBeInvited(sig *Signature) validator.Validator {
	return validator.Check(sig == nil || sig.State == Invited, ErrSignatoryNotInvited)
}

func shouldHaveInternalPromoter(promoters []Signature, external map[shared.PersonID]bool) validator.Validator {
	return validator.Func(func() error {
		for _, p := range promoters {
			if !external[p.Person] {
				return nil
			}
		}
		return ErrMissingPromoter
	})
}

func shouldHaveEnoughCAMembers(members []Signature, min int) validator.Validator {
	return validator.Check(len(members) >= min, ErrMissingCAMember)
}

func shouldHaveReferencePromoter(g *Group) validator.Validator {
	return validator.Check(!g.ReferencePromoter.IsEmpty() && g.isPromoter(g.ReferencePromoter), ErrMissingReferencePromoter)
}

func shouldAllHaveApproved(signatures []Signature, err *shared.BusinessError) validator.Validator {
	return validator.Func(func() error {
		for _, s := range signatures {
			if s.State != Approved {
				return err
			}
		}
		return nil
	})
}

func shouldCotutelleBeComplete(c *Cotutelle) validator.Validator {
	return validator.Func(func() error {
		if c == nil || !c.Active {
			return nil
		}
		if c.Motivation == "" || c.institutionName() == "" || len(c.OpeningRequest) == 0 {
			return ErrCotutelleIncomplete
		}
		return nil
	})
}

func shouldCotutelleHaveExternalPromoter(c *Cotutelle, promoters []Signature, external map[shared.PersonID]bool) validator.Validator {
	return validator.Func(func() error {
		if c == nil || !c.Active {
			return nil
		}
		for _, p := range promoters {
			if external[p.Person] {
				return nil
			}
		}
		return ErrCotutelleWithoutExternalPromoter
	})
}
