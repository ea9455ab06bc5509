package proposition

import (
	"github.com/uclouvain/admission-core/internal/domain/checklist"
	"github.com/uclouvain/admission-core/internal/domain/validator"
)

func shouldNotExceedActivePropositions(active, max int) validator.Validator {
	return validator.Check(max <= 0 || active < max, ErrMaximumPropositionsReached)
}

func shouldJustifyPreAdmission(t AdmissionType, justification string) validator.Validator {
	return validator.Check(t != PreAdmission || justification != "", ErrJustificationRequired)
}

func shouldWorkContractMatchFinancing(f Financing) validator.Validator {
	return validator.Check(f.Type != WorkContract || f.WorkContractType != "", ErrWorkContractInconsistent)
}

func doctorateDone(r PriorResearch) bool {
	return r.DoctorateAlreadyDone == YesDoctorate || r.DoctorateAlreadyDone == PartialDoctorate
}

func shouldInstitutionMatchPriorResearch(r PriorResearch) validator.Validator {
	return validator.Check(!doctorateDone(r) || r.Institution != "", ErrInstitutionInconsistent)
}

func shouldThesisDomainMatchPriorResearch(r PriorResearch) validator.Validator {
	return validator.Check(!doctorateDone(r) || r.ThesisDomain != "", ErrThesisDomainInconsistent)
}

func shouldProjectBeComplete(p Project) validator.Validator {
	return validator.Check(
		p.Title != "" && p.Summary != "" && p.ThesisLanguage != "" && len(p.Documents) > 0,
		ErrProjectIncomplete,
	)
}

func shouldFinancingBeComplete(f Financing) validator.Validator {
	return validator.Check(f.Type != NoFinancing, ErrProjectIncomplete.Withf("financing type"))
}

// scholarshipKnown is resolved by the caller through the scholarship
// translator before the list runs.
func shouldScholarshipExist(f Financing, scholarshipKnown bool) validator.Validator {
	return validator.Check(f.Type != SearchScholarship || f.Scholarship == "" || scholarshipKnown, ErrScholarshipNotFound)
}

func shouldCDDDecisionNotBeClosed(c checklist.Checklist) validator.Validator {
	node := c.Status(checklist.CDDDecision)
	closed := node.Status == checklist.ManagerBlocking && node.Extra["decision"] == "CLOTURE"
	return validator.Check(!closed, ErrCDDDecisionClosed)
}
