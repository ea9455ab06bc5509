package general

import (
	"golang.org/x/text/language"

	"github.com/uclouvain/admission-core/internal/domain/shared"
)

var (
	ErrPropositionNotFound = shared.NewBusinessError("FORMATION-GENERALE-1", shared.ErrNotFound,
		"proposition not found")
	ErrUnexpectedStatus = shared.NewBusinessError("FORMATION-GENERALE-2", shared.ErrStateTransition,
		"the proposition is not in the expected status for this action")
	ErrContinuingUnexpectedStatus = shared.NewBusinessError("FORMATION-CONTINUE-1", shared.ErrStateTransition,
		"the proposition is not in the expected status for this action")
)

// Kind tells which admission context a proposition belongs to.
type Kind string

const (
	General    Kind = "FORMATION_GENERALE"
	Continuing Kind = "FORMATION_CONTINUE"
)

// Status is the status of a general or continuing education proposition.
// Both machines share the status vocabulary; each only reaches its own.
type Status string

const (
	InProgress                  Status = "EN_BROUILLON"
	Confirmed                   Status = "CONFIRMEE"
	FeesPending                 Status = "FRAIS_DOSSIER_EN_ATTENTE"
	ToCompleteForSIC            Status = "A_COMPLETER_POUR_SIC"
	CompletedForSIC             Status = "COMPLETEE_POUR_SIC"
	FacProcessing               Status = "TRAITEMENT_FAC"
	ToCompleteForFac            Status = "A_COMPLETER_POUR_FAC"
	CompletedForFac             Status = "COMPLETEE_POUR_FAC"
	ReturnedFromFac             Status = "RETOUR_DE_FAC"
	AwaitingDirectionValidation Status = "ATTENTE_VALIDATION_DIRECTION"
	OnHold                      Status = "EN_ATTENTE"
	ToValidate                  Status = "A_VALIDER"
	EnrolmentAuthorized         Status = "INSCRIPTION_AUTORISEE"
	EnrolmentRefused            Status = "INSCRIPTION_REFUSEE"
	Closed                      Status = "CLOTUREE"
	Cancelled                   Status = "ANNULEE"
)

// StatusLabels is the label table of Status.
var StatusLabels = shared.LabelTable{
	language.French: {
		string(InProgress):                  "En brouillon",
		string(Confirmed):                   "Confirmée",
		string(FeesPending):                 "Frais de dossier en attente",
		string(ToCompleteForSIC):            "À compléter pour le SIC",
		string(CompletedForSIC):             "Complétée pour le SIC",
		string(FacProcessing):               "Traitement facultaire",
		string(ToCompleteForFac):            "À compléter pour la faculté",
		string(CompletedForFac):             "Complétée pour la faculté",
		string(ReturnedFromFac):             "Retour de la faculté",
		string(AwaitingDirectionValidation): "En attente de validation de la direction",
		string(OnHold):                      "En attente",
		string(ToValidate):                  "À valider",
		string(EnrolmentAuthorized):         "Inscription autorisée",
		string(EnrolmentRefused):            "Inscription refusée",
		string(Closed):                      "Clôturée",
		string(Cancelled):                   "Annulée",
	},
	language.English: {
		string(InProgress):                  "In draft form",
		string(Confirmed):                   "Application confirmed",
		string(FeesPending):                 "Application fees pending",
		string(ToCompleteForSIC):            "To be completed for the enrolment office",
		string(CompletedForSIC):             "Completed for the enrolment office",
		string(FacProcessing):               "Faculty processing",
		string(ToCompleteForFac):            "To be completed for the faculty",
		string(CompletedForFac):             "Completed for the faculty",
		string(ReturnedFromFac):             "Returned from the faculty",
		string(AwaitingDirectionValidation): "Awaiting validation by the direction",
		string(OnHold):                      "On hold",
		string(ToValidate):                  "To validate",
		string(EnrolmentAuthorized):         "Enrolment authorised",
		string(EnrolmentRefused):            "Enrolment refused",
		string(Closed):                      "Closed",
		string(Cancelled):                   "Cancelled",
	},
}

// Action names a transition of one of the machines.
type Action string

const (
	Submit                Action = "submit"
	RequirePayment        Action = "require_payment"
	WaivePayment          Action = "waive_payment"
	PayFees               Action = "pay_fees"
	RequestDocumentsBySIC Action = "request_documents_sic"
	CompleteDocumentsSIC  Action = "complete_documents_sic"
	CancelRequestSIC      Action = "cancel_documents_request_sic"
	SendToFac             Action = "send_to_fac"
	RequestDocumentsByFac Action = "request_documents_fac"
	CompleteDocumentsFac  Action = "complete_documents_fac"
	CancelRequestFac      Action = "cancel_documents_request_fac"
	ApproveByFac          Action = "approve_by_fac"
	RefuseByFac           Action = "refuse_by_fac"
	ApproveBySIC          Action = "approve_by_sic"
	ValidateEnrolment     Action = "validate_enrolment"
	RefuseEnrolment       Action = "refuse_enrolment"
	PutOnHold             Action = "put_on_hold"
	SendToValidation      Action = "send_to_validation"
	Close                 Action = "close"
	Cancel                Action = "cancel"
)

type rule struct {
	from []Status
	to   Status
}

var sicStates = []Status{Confirmed, ToCompleteForSIC, CompletedForSIC, ReturnedFromFac}

var generalMachine = map[Action]rule{
	Submit:                {from: []Status{InProgress}, to: Confirmed},
	RequirePayment:        {from: []Status{Confirmed}, to: FeesPending},
	WaivePayment:          {from: []Status{FeesPending, Confirmed}, to: Confirmed},
	PayFees:               {from: []Status{FeesPending}, to: Confirmed},
	RequestDocumentsBySIC: {from: []Status{Confirmed, CompletedForSIC, ReturnedFromFac}, to: ToCompleteForSIC},
	CompleteDocumentsSIC:  {from: []Status{ToCompleteForSIC}, to: CompletedForSIC},
	CancelRequestSIC:      {from: []Status{ToCompleteForSIC}, to: Confirmed},
	SendToFac:             {from: []Status{Confirmed, CompletedForSIC}, to: FacProcessing},
	RequestDocumentsByFac: {from: []Status{FacProcessing, CompletedForFac}, to: ToCompleteForFac},
	CompleteDocumentsFac:  {from: []Status{ToCompleteForFac}, to: CompletedForFac},
	CancelRequestFac:      {from: []Status{ToCompleteForFac}, to: FacProcessing},
	ApproveByFac:          {from: []Status{FacProcessing, CompletedForFac}, to: ReturnedFromFac},
	RefuseByFac:           {from: []Status{FacProcessing, CompletedForFac}, to: ReturnedFromFac},
	ApproveBySIC:          {from: []Status{ReturnedFromFac, Confirmed, CompletedForSIC}, to: AwaitingDirectionValidation},
	ValidateEnrolment:     {from: []Status{AwaitingDirectionValidation}, to: EnrolmentAuthorized},
	RefuseEnrolment:       {from: []Status{AwaitingDirectionValidation}, to: EnrolmentRefused},
	Close:                 {from: sicStates, to: Closed},
	Cancel:                {from: []Status{InProgress}, to: Cancelled},
}

var continuingMachine = map[Action]rule{
	Submit:            {from: []Status{InProgress}, to: Confirmed},
	PutOnHold:         {from: []Status{Confirmed, ToValidate}, to: OnHold},
	SendToValidation:  {from: []Status{Confirmed, OnHold}, to: ToValidate},
	ValidateEnrolment: {from: []Status{ToValidate}, to: EnrolmentAuthorized},
	RefuseEnrolment:   {from: []Status{ToValidate, OnHold}, to: EnrolmentRefused},
	Close:             {from: []Status{Confirmed, OnHold, ToValidate}, to: Closed},
	Cancel:            {from: []Status{InProgress}, to: Cancelled},
}
