package proposition

import (
	"golang.org/x/text/language"

	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// Status is the lifecycle status of a doctoral proposition.
type Status string

const (
	InProgress                  Status = "IN_PROGRESS"
	SigningInProgress           Status = "SIGNING_IN_PROGRESS"
	Submitted                   Status = "SUBMITTED"
	Confirmed                   Status = "CONFIRMEE"
	ToCompleteForSIC            Status = "A_COMPLETER_POUR_SIC"
	CompletedForSIC             Status = "COMPLETEE_POUR_SIC"
	FacProcessing               Status = "TRAITEMENT_FAC"
	ToCompleteForFac            Status = "A_COMPLETER_POUR_FAC"
	CompletedForFac             Status = "COMPLETEE_POUR_FAC"
	ReturnedFromFac             Status = "RETOUR_DE_FAC"
	AwaitingDirectionValidation Status = "ATTENTE_VALIDATION_DIRECTION"
	EnrolmentAuthorized         Status = "INSCRIPTION_AUTORISEE"
	EnrolmentRefused            Status = "INSCRIPTION_REFUSEE"
	Closed                      Status = "CLOTUREE"
	Cancelled                   Status = "ANNULEE"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []Status{
	InProgress, SigningInProgress, Submitted, Confirmed,
	ToCompleteForSIC, CompletedForSIC, FacProcessing, ToCompleteForFac,
	CompletedForFac, ReturnedFromFac, AwaitingDirectionValidation,
	EnrolmentAuthorized, EnrolmentRefused, Closed, Cancelled,
}

// StatusLabels is the label table of Status.
var StatusLabels = shared.LabelTable{
	language.French: {
		string(InProgress):                  "En brouillon",
		string(SigningInProgress):           "En attente de signature",
		string(Submitted):                   "Demande soumise",
		string(Confirmed):                   "Confirmée",
		string(ToCompleteForSIC):            "À compléter pour le SIC",
		string(CompletedForSIC):             "Complétée pour le SIC",
		string(FacProcessing):               "Traitement facultaire",
		string(ToCompleteForFac):            "À compléter pour la faculté",
		string(CompletedForFac):             "Complétée pour la faculté",
		string(ReturnedFromFac):             "Retour de la faculté",
		string(AwaitingDirectionValidation): "En attente de validation de la direction",
		string(EnrolmentAuthorized):         "Inscription autorisée",
		string(EnrolmentRefused):            "Inscription refusée",
		string(Closed):                      "Clôturée",
		string(Cancelled):                   "Annulée",
	},
	language.English: {
		string(InProgress):                  "In draft form",
		string(SigningInProgress):           "Waiting for signature",
		string(Submitted):                   "Application submitted",
		string(Confirmed):                   "Confirmed",
		string(ToCompleteForSIC):            "To be completed for the enrolment office",
		string(CompletedForSIC):             "Completed for the enrolment office",
		string(FacProcessing):               "Faculty processing",
		string(ToCompleteForFac):            "To be completed for the faculty",
		string(CompletedForFac):             "Completed for the faculty",
		string(ReturnedFromFac):             "Returned from the faculty",
		string(AwaitingDirectionValidation): "Awaiting validation by the direction",
		string(EnrolmentAuthorized):         "Enrolment authorised",
		string(EnrolmentRefused):            "Enrolment refused",
		string(Closed):                      "Closed",
		string(Cancelled):                   "Cancelled",
	},
}

// IsActive reports whether the proposition still counts toward the
// candidate's limit of propositions in progress.
func (s Status) IsActive() bool {
	switch s {
	case Cancelled, Closed, EnrolmentRefused:
		return false
	default:
		return true
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Decision transitions
// ─────────────────────────────────────────────────────────────────────────────

// Transition names a decision transition of the administrative workflow.
type Transition string

const (
	Confirm                   Transition = "confirm"
	RequestDocumentsBySIC     Transition = "request_documents_sic"
	RequestDocumentsByFac     Transition = "request_documents_fac"
	CancelDocumentsRequestSIC Transition = "cancel_documents_request_sic"
	CancelDocumentsRequestFac Transition = "cancel_documents_request_fac"
	CompleteDocumentsForSIC   Transition = "complete_documents_sic"
	CompleteDocumentsForFac   Transition = "complete_documents_fac"
	SendToFac                 Transition = "send_to_fac"
	ApproveByCDD              Transition = "approve_by_cdd"
	RefuseByCDD               Transition = "refuse_by_cdd"
	ApproveBySIC              Transition = "approve_by_sic"
	ValidateEnrolment         Transition = "validate_enrolment"
	RefuseEnrolment           Transition = "refuse_enrolment"
	Close                     Transition = "close"
)

type transitionRule struct {
	from []Status
	to   Status
	err  *shared.BusinessError
}

// Each transition lists its legal source states. A source outside the list
// raises err and nothing changes.
var transitions = map[Transition]transitionRule{
	Confirm: {
		from: []Status{Submitted},
		to:   Confirmed,
		err:  ErrNotManagedBySIC,
	},
	RequestDocumentsBySIC: {
		from: []Status{Confirmed, CompletedForSIC, ReturnedFromFac},
		to:   ToCompleteForSIC,
		err:  ErrNotManagedBySIC,
	},
	CancelDocumentsRequestSIC: {
		from: []Status{ToCompleteForSIC},
		to:   Confirmed,
		err:  ErrNotManagedBySIC,
	},
	CompleteDocumentsForSIC: {
		from: []Status{ToCompleteForSIC},
		to:   CompletedForSIC,
		err:  ErrNotManagedBySIC,
	},
	SendToFac: {
		from: []Status{Confirmed, CompletedForSIC},
		to:   FacProcessing,
		err:  ErrNotManagedBySIC,
	},
	RequestDocumentsByFac: {
		from: []Status{FacProcessing, CompletedForFac},
		to:   ToCompleteForFac,
		err:  ErrNotManagedByCDD,
	},
	CancelDocumentsRequestFac: {
		from: []Status{ToCompleteForFac},
		to:   FacProcessing,
		err:  ErrNotManagedByCDD,
	},
	CompleteDocumentsForFac: {
		from: []Status{ToCompleteForFac},
		to:   CompletedForFac,
		err:  ErrNotManagedByCDD,
	},
	ApproveByCDD: {
		from: []Status{FacProcessing, CompletedForFac},
		to:   ReturnedFromFac,
		err:  ErrNotManagedByCDD,
	},
	RefuseByCDD: {
		from: []Status{FacProcessing, CompletedForFac},
		to:   ReturnedFromFac,
		err:  ErrNotManagedByCDD,
	},
	ApproveBySIC: {
		from: []Status{ReturnedFromFac, Confirmed, CompletedForSIC},
		to:   AwaitingDirectionValidation,
		err:  ErrNotManagedBySIC,
	},
	ValidateEnrolment: {
		from: []Status{AwaitingDirectionValidation},
		to:   EnrolmentAuthorized,
		err:  ErrNotManagedBySIC,
	},
	RefuseEnrolment: {
		from: []Status{AwaitingDirectionValidation},
		to:   EnrolmentRefused,
		err:  ErrNotManagedBySIC,
	},
	Close: {
		from: []Status{Confirmed, ReturnedFromFac, ToCompleteForSIC, CompletedForSIC},
		to:   Closed,
		err:  ErrNotManagedBySIC,
	},
}

// Sources returns the legal source states of a transition.
func (t Transition) Sources() []Status {
	return transitions[t].from
}

// Target returns the state a transition leads to.
func (t Transition) Target() Status {
	return transitions[t].to
}
