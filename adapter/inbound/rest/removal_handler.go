package rest

import (
	"errors"
	"net/http"

	"github.com/bantuankita/bantuankita/domain/model"
)

const msgRemovalRequested = "Removal request submitted successfully and is pending admin approval"

type removalRequestResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	RequestID string `json:"requestId"`
}

type reviewRemovalRequest struct {
	RequestID string `json:"requestId"`
}

type reviewRemovalResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Request *model.RemovalRequest `json:"request"`
}

func (h *Handler) requestRemoval(w http.ResponseWriter, r *http.Request) {
	var draft model.RemovalDraft
	if err := decodeBody(r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req, err := h.removals.Request(r.Context(), draft)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrMissingFields):
			writeError(w, http.StatusBadRequest, "Missing required fields")
		case errors.Is(err, model.ErrNoMatchingOffer):
			writeError(w, http.StatusNotFound, "No matching record found")
		case errors.Is(err, model.ErrPendingRemovalExists):
			writeError(w, http.StatusBadRequest, "You already have a pending removal request")
		default:
			h.logger.Error("Failed to file removal request", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, removalRequestResponse{
		Success:   true,
		Message:   msgRemovalRequested,
		RequestID: req.ID,
	})
}

func (h *Handler) listRemovalRequests(w http.ResponseWriter, r *http.Request) {
	requests, err := h.removals.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list removal requests", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch removal requests")
		return
	}
	if requests == nil {
		requests = []*model.RemovalRequest{}
	}
	writeJSON(w, http.StatusOK, requests)
}

func (h *Handler) approveRemoval(w http.ResponseWriter, r *http.Request) {
	h.reviewRemoval(w, r, model.DecisionApprove)
}

func (h *Handler) rejectRemoval(w http.ResponseWriter, r *http.Request) {
	h.reviewRemoval(w, r, model.DecisionReject)
}

func (h *Handler) reviewRemoval(w http.ResponseWriter, r *http.Request, decision model.Decision) {
	var body reviewRemovalRequest
	if err := decodeBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.RequestID == "" {
		writeError(w, http.StatusBadRequest, "Request ID is required")
		return
	}

	var (
		req     *model.RemovalRequest
		err     error
		verb    = "approve"
		message = "Removal request approved and offer deleted successfully"
	)
	if decision == model.DecisionApprove {
		req, err = h.removals.Approve(r.Context(), body.RequestID, model.SourceAPI)
	} else {
		verb, message = "reject", "Removal request rejected"
		req, err = h.removals.Reject(r.Context(), body.RequestID, model.SourceAPI)
	}

	if err != nil {
		var conflict *model.StatusConflictError
		switch {
		case errors.Is(err, model.ErrRemovalRequestNotFound):
			writeError(w, http.StatusNotFound, "Removal request not found")
		case errors.As(err, &conflict):
			writeError(w, http.StatusBadRequest, "Removal request is not pending")
		default:
			h.logger.Error("Failed to review removal request", "requestId", body.RequestID, "decision", decision, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to "+verb+" removal request")
		}
		return
	}

	writeJSON(w, http.StatusOK, reviewRemovalResponse{
		Success: true,
		Message: message,
		Request: req,
	})
}

func (h *Handler) reconcileRemovals(w http.ResponseWriter, r *http.Request) {
	n, err := h.removals.Reconcile(r.Context())
	if err != nil {
		h.logger.Error("Failed to reconcile removal requests", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to reconcile removal requests")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "reconciled": n})
}
