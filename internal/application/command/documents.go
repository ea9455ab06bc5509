package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uclouvain/admission-core/internal/domain/document"
	"github.com/uclouvain/admission-core/internal/domain/notification"
	"github.com/uclouvain/admission-core/internal/domain/proposition"
	"github.com/uclouvain/admission-core/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DOCUMENTS
// ══════════════════════════════════════════════════════════════════════════════

// DocumentDeps groups the collaborators of the document handlers.
type DocumentDeps struct {
	Slots        document.Repository
	Propositions proposition.Repository
	Effects
}

// SlotResult describes a slot after a command.
type SlotResult struct {
	ID      document.SlotID
	Status  document.Status
	Deleted bool
}

func slotResultOf(s *document.Slot) *SlotResult {
	return &SlotResult{ID: s.ID, Status: s.Status}
}

// ─────────────────────────────────────────────────────────────────────────────
// Define a document to request
// ─────────────────────────────────────────────────────────────────────────────

// DefineDocumentToRequestCommand marks a document as to be requested. A
// known document is addressed by Tab and Key; a free requestable slot is
// created when Type is one of the free requestable types.
type DefineDocumentToRequestCommand struct {
	PropositionID shared.PropositionID
	Tab           document.Tab
	Key           string
	Type          document.Type
	Label         string
	Reason        string
	RequestStatus document.RequestStatus
	Author        string
}

// CommandName implements bus.Command.
func (DefineDocumentToRequestCommand) CommandName() string { return "document.define_to_request" }

// DefineDocumentToRequestHandler handles DefineDocumentToRequestCommand.
type DefineDocumentToRequestHandler struct {
	deps *DocumentDeps
}

// NewDefineDocumentToRequestHandler creates a new DefineDocumentToRequestHandler.
func NewDefineDocumentToRequestHandler(deps *DocumentDeps) *DefineDocumentToRequestHandler {
	return &DefineDocumentToRequestHandler{deps: deps}
}

// Handle executes the command.
func (h *DefineDocumentToRequestHandler) Handle(ctx context.Context, cmd DefineDocumentToRequestCommand) (*SlotResult, error) {
	if err := requireID("DefineDocumentToRequest", cmd.PropositionID); err != nil {
		return nil, err
	}
	now := h.deps.now()
	builder := document.NewIdentityBuilder(cmd.PropositionID)

	var slot *document.Slot
	if cmd.Type.IsFreeRequestable() {
		s, err := document.InitializeFreeToRequest(builder, cmd.Type, cmd.Label, cmd.Reason, cmd.RequestStatus, cmd.Author, now)
		if err != nil {
			return nil, err
		}
		slot = s
	} else {
		if err := requireField("DefineDocumentToRequest", "key", cmd.Key); err != nil {
			return nil, err
		}
		id := builder.Key(cmd.Tab, cmd.Key)
		existing, err := h.deps.Slots.Get(ctx, id)
		switch {
		case errors.Is(err, document.ErrSlotNotFound):
			slot = document.InitializeToRequest(id, cmd.Reason, cmd.RequestStatus, cmd.Author, now)
		case err != nil:
			return nil, err
		default:
			if err := existing.DefineToRequest(cmd.Reason, cmd.RequestStatus, cmd.Author, now); err != nil {
				return nil, err
			}
			slot = existing
		}
	}

	if err := h.deps.Slots.Save(ctx, slot); err != nil {
		return nil, fmt.Errorf("define_document_to_request: save: %w", err)
	}
	return slotResultOf(slot), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Upload an internal document
// ─────────────────────────────────────────────────────────────────────────────

// UploadInternalDocumentCommand stores a manager upload in a new free slot.
type UploadInternalDocumentCommand struct {
	PropositionID shared.PropositionID
	Type          document.Type
	Label         string
	File          string
	Author        string
}

// CommandName implements bus.Command.
func (UploadInternalDocumentCommand) CommandName() string { return "document.upload_internal" }

// UploadInternalDocumentHandler handles UploadInternalDocumentCommand.
type UploadInternalDocumentHandler struct {
	deps *DocumentDeps
}

// NewUploadInternalDocumentHandler creates a new UploadInternalDocumentHandler.
func NewUploadInternalDocumentHandler(deps *DocumentDeps) *UploadInternalDocumentHandler {
	return &UploadInternalDocumentHandler{deps: deps}
}

// Handle executes the command.
func (h *UploadInternalDocumentHandler) Handle(ctx context.Context, cmd UploadInternalDocumentCommand) (*SlotResult, error) {
	if err := requireID("UploadInternalDocument", cmd.PropositionID); err != nil {
		return nil, err
	}
	if err := requireField("UploadInternalDocument", "file", cmd.File); err != nil {
		return nil, err
	}
	slot, err := document.InitializeFreeInternal(document.NewIdentityBuilder(cmd.PropositionID),
		cmd.Type, cmd.Label, cmd.File, cmd.Author, h.deps.now())
	if err != nil {
		return nil, err
	}
	if err := h.deps.Slots.Save(ctx, slot); err != nil {
		return nil, fmt.Errorf("upload_internal_document: save: %w", err)
	}
	return slotResultOf(slot), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Specify / cancel a request
// ─────────────────────────────────────────────────────────────────────────────

// SpecifyDocumentRequestCommand updates the request of one slot.
type SpecifyDocumentRequestCommand struct {
	SlotID        document.SlotID
	Reason        string
	Status        document.Status
	RequestStatus document.RequestStatus
	DueAt         *time.Time
	Author        string
}

// CommandName implements bus.Command.
func (SpecifyDocumentRequestCommand) CommandName() string { return "document.specify_request" }

// SpecifyDocumentRequestHandler handles SpecifyDocumentRequestCommand.
type SpecifyDocumentRequestHandler struct {
	deps *DocumentDeps
}

// NewSpecifyDocumentRequestHandler creates a new SpecifyDocumentRequestHandler.
func NewSpecifyDocumentRequestHandler(deps *DocumentDeps) *SpecifyDocumentRequestHandler {
	return &SpecifyDocumentRequestHandler{deps: deps}
}

// Handle executes the command.
func (h *SpecifyDocumentRequestHandler) Handle(ctx context.Context, cmd SpecifyDocumentRequestCommand) (*SlotResult, error) {
	slot, err := h.deps.Slots.Get(ctx, cmd.SlotID)
	if err != nil {
		return nil, err
	}
	if err := slot.SpecifyRequest(cmd.Reason, cmd.Status, cmd.RequestStatus, cmd.DueAt, cmd.Author, h.deps.now()); err != nil {
		return nil, err
	}
	if err := h.deps.Slots.Save(ctx, slot); err != nil {
		return nil, fmt.Errorf("specify_document_request: save: %w", err)
	}
	return slotResultOf(slot), nil
}

// CancelDocumentRequestCommand withdraws the request of one slot.
type CancelDocumentRequestCommand struct {
	SlotID document.SlotID
	Author string
}

// CommandName implements bus.Command.
func (CancelDocumentRequestCommand) CommandName() string { return "document.cancel_request" }

// CancelDocumentRequestHandler handles CancelDocumentRequestCommand.
type CancelDocumentRequestHandler struct {
	deps *DocumentDeps
}

// NewCancelDocumentRequestHandler creates a new CancelDocumentRequestHandler.
func NewCancelDocumentRequestHandler(deps *DocumentDeps) *CancelDocumentRequestHandler {
	return &CancelDocumentRequestHandler{deps: deps}
}

// Handle cancels the request, deleting the slot when nothing remains of it.
func (h *CancelDocumentRequestHandler) Handle(ctx context.Context, cmd CancelDocumentRequestCommand) (*SlotResult, error) {
	slot, err := h.deps.Slots.Get(ctx, cmd.SlotID)
	if err != nil {
		return nil, err
	}
	deleted, err := slot.CancelRequest(cmd.Author, h.deps.now())
	if err != nil {
		return nil, err
	}
	if deleted {
		if err := h.deps.Slots.Delete(ctx, slot.ID); err != nil {
			return nil, fmt.Errorf("cancel_document_request: delete: %w", err)
		}
		return &SlotResult{ID: slot.ID, Status: slot.Status, Deleted: true}, nil
	}
	if err := h.deps.Slots.Save(ctx, slot); err != nil {
		return nil, fmt.Errorf("cancel_document_request: save: %w", err)
	}
	return slotResultOf(slot), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Fill a slot
// ─────────────────────────────────────────────────────────────────────────────

// FillDocumentCommand stores files in a slot. ByManager files are
// validated at once; candidate files complete a request.
type FillDocumentCommand struct {
	SlotID    document.SlotID
	Files     []string
	ByManager bool
	Author    string
}

// CommandName implements bus.Command.
func (FillDocumentCommand) CommandName() string { return "document.fill" }

// FillDocumentHandler handles FillDocumentCommand.
type FillDocumentHandler struct {
	deps *DocumentDeps
}

// NewFillDocumentHandler creates a new FillDocumentHandler.
func NewFillDocumentHandler(deps *DocumentDeps) *FillDocumentHandler {
	return &FillDocumentHandler{deps: deps}
}

// Handle executes the command.
func (h *FillDocumentHandler) Handle(ctx context.Context, cmd FillDocumentCommand) (*SlotResult, error) {
	slot, err := h.deps.Slots.Get(ctx, cmd.SlotID)
	if err != nil {
		return nil, err
	}
	now := h.deps.now()
	if cmd.ByManager {
		slot.FillByManager(cmd.Files, cmd.Author, now)
	} else if err := slot.FillByCandidate(cmd.Files, cmd.Author, now); err != nil {
		return nil, err
	}
	if err := h.deps.Slots.Save(ctx, slot); err != nil {
		return nil, fmt.Errorf("fill_document: save: %w", err)
	}
	return slotResultOf(slot), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Send the documents request
// ─────────────────────────────────────────────────────────────────────────────

// SendDocumentsRequestCommand asks the candidate for every slot to request
// and hands the doctoral proposition back to them.
type SendDocumentsRequestCommand struct {
	PropositionID shared.PropositionID
	ByFac         bool
	DueAt         *time.Time
	Author        string
}

// CommandName implements bus.Command.
func (SendDocumentsRequestCommand) CommandName() string { return "document.send_request" }

// SendDocumentsRequestResult lists the requested slots.
type SendDocumentsRequestResult struct {
	PropositionID shared.PropositionID
	Status        proposition.Status
	Requested     []document.SlotID
}

// SendDocumentsRequestHandler handles SendDocumentsRequestCommand.
type SendDocumentsRequestHandler struct {
	deps *DocumentDeps
}

// NewSendDocumentsRequestHandler creates a new SendDocumentsRequestHandler.
func NewSendDocumentsRequestHandler(deps *DocumentDeps) *SendDocumentsRequestHandler {
	return &SendDocumentsRequestHandler{deps: deps}
}

// Handle executes the command.
func (h *SendDocumentsRequestHandler) Handle(ctx context.Context, cmd SendDocumentsRequestCommand) (*SendDocumentsRequestResult, error) {
	if err := requireID("SendDocumentsRequest", cmd.PropositionID); err != nil {
		return nil, err
	}
	p, err := h.deps.Propositions.Get(ctx, cmd.PropositionID)
	if err != nil {
		return nil, err
	}
	slots, err := h.deps.Slots.SearchByProposition(ctx, cmd.PropositionID)
	if err != nil {
		return nil, fmt.Errorf("send_documents_request: search slots: %w", err)
	}

	now := h.deps.now()
	var (
		requested []*document.Slot
		labels    []string
	)
	for _, s := range slots {
		if s.Status != document.ToRequest {
			continue
		}
		if err := s.SpecifyRequest(s.ManagerReason, document.Requested, s.RequestStatus, cmd.DueAt, cmd.Author, now); err != nil {
			return nil, err
		}
		requested = append(requested, s)
		label := s.Label
		if label == "" {
			label = s.ID.Identifier
		}
		labels = append(labels, label)
	}
	if len(requested) == 0 {
		return nil, document.ErrStatusNotAllowed.Withf("no document to request")
	}
	if err := p.RequestDocuments(cmd.ByFac, cmd.Author, now); err != nil {
		return nil, err
	}

	ids := make([]document.SlotID, 0, len(requested))
	for _, s := range requested {
		if err := h.deps.Slots.Save(ctx, s); err != nil {
			return nil, fmt.Errorf("send_documents_request: save slot: %w", err)
		}
		ids = append(ids, s.ID)
	}
	if err := h.deps.Propositions.Save(ctx, p); err != nil {
		return nil, fmt.Errorf("send_documents_request: save proposition: %w", err)
	}

	h.deps.notify(ctx, notification.DocumentsRequested(p.ID, p.CandidateID, labels, cmd.DueAt, now))
	h.deps.record(ctx, notification.NewEntry(p.ID, cmd.Author,
		"Des documents ont été réclamés.", "Documents have been requested.", now, "proposition", "documents"))

	return &SendDocumentsRequestResult{PropositionID: p.ID, Status: p.Status, Requested: ids}, nil
}
