package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/bantuankita/bantuankita/domain/model"
)

const msgOfferSubmitted = "Penawaran bantuan berhasil dikirim dan menunggu persetujuan admin"

type submitOfferResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	OfferID string `json:"offerId"`
}

type publicOffersResponse struct {
	Offers     []*model.PublicOffer `json:"offers"`
	Pagination model.Pagination     `json:"pagination"`
}

type reviewOfferRequest struct {
	OfferID string `json:"offerId"`
}

type reviewOfferResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message"`
	Offer   *model.Offer `json:"offer"`
}

func (h *Handler) submitOffer(w http.ResponseWriter, r *http.Request) {
	var draft model.OfferDraft
	if err := decodeBody(r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	offer, err := h.offers.Submit(r.Context(), draft)
	if err != nil {
		var invalid *model.ValidationError
		switch {
		case errors.Is(err, model.ErrMissingFields):
			writeError(w, http.StatusBadRequest, "Missing required fields")
		case errors.As(err, &invalid):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Validation failed", Errors: invalid.Messages})
		default:
			h.logger.Error("Failed to submit offer", "error", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	writeJSON(w, http.StatusOK, submitOfferResponse{
		Success: true,
		Message: msgOfferSubmitted,
		OfferID: offer.ID,
	})
}

// listOffers serves the public directory; unparseable page or limit fall back to defaults
func (h *Handler) listOffers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result := h.offers.ListPublic(r.Context(), page, limit, model.OfferFilters{
		Skill: q.Get("skill"),
		City:  q.Get("city"),
	})

	offers := make([]*model.PublicOffer, 0, len(result.Offers))
	for _, o := range result.Offers {
		offers = append(offers, o.ToPublic())
	}

	writeJSON(w, http.StatusOK, publicOffersResponse{
		Offers:     offers,
		Pagination: result.Pagination,
	})
}

func (h *Handler) adminListOffers(w http.ResponseWriter, r *http.Request) {
	offers, err := h.offers.ListAll(r.Context())
	if err != nil {
		h.logger.Error("Failed to list offers", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch offers")
		return
	}
	if offers == nil {
		offers = []*model.Offer{}
	}
	writeJSON(w, http.StatusOK, offers)
}

func (h *Handler) adminGetOffer(w http.ResponseWriter, r *http.Request) {
	offer, err := h.offers.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, model.ErrOfferNotFound) {
			writeError(w, http.StatusNotFound, "Offer not found")
			return
		}
		h.logger.Error("Failed to get offer", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch offer")
		return
	}
	writeJSON(w, http.StatusOK, offer)
}

func (h *Handler) adminDeleteOffer(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.offers.Delete(r.Context(), id); err != nil {
		if errors.Is(err, model.ErrOfferNotFound) {
			writeError(w, http.StatusNotFound, "Offer not found")
			return
		}
		h.logger.Error("Failed to delete offer", "offerId", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete offer")
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (h *Handler) approveOffer(w http.ResponseWriter, r *http.Request) {
	h.reviewOffer(w, r, model.DecisionApprove)
}

func (h *Handler) rejectOffer(w http.ResponseWriter, r *http.Request) {
	h.reviewOffer(w, r, model.DecisionReject)
}

func (h *Handler) reviewOffer(w http.ResponseWriter, r *http.Request, decision model.Decision) {
	var req reviewOfferRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.OfferID == "" {
		writeError(w, http.StatusBadRequest, "Offer ID is required")
		return
	}

	var (
		offer *model.Offer
		err   error
		verb  = "approve"
	)
	if decision == model.DecisionApprove {
		offer, err = h.offers.Approve(r.Context(), req.OfferID, model.SourceAPI)
	} else {
		verb = "reject"
		offer, err = h.offers.Reject(r.Context(), req.OfferID, model.SourceAPI)
	}

	if err != nil {
		var conflict *model.StatusConflictError
		switch {
		case errors.Is(err, model.ErrOfferNotFound):
			writeError(w, http.StatusNotFound, "Offer not found")
		case errors.As(err, &conflict):
			writeError(w, http.StatusBadRequest, "Offer is "+conflict.Error())
		default:
			h.logger.Error("Failed to review offer", "offerId", req.OfferID, "decision", decision, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to "+verb+" offer")
		}
		return
	}

	writeJSON(w, http.StatusOK, reviewOfferResponse{
		Success: true,
		Message: "Offer " + verb + "d successfully",
		Offer:   offer,
	})
}

func (h *Handler) offerStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.offers.Stats(r.Context())
	if err != nil {
		h.logger.Error("Failed to compute offer stats", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
