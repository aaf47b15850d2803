package rest

import (
	"net/http"
	"time"

	"github.com/bantuankita/bantuankita/adapter/outbound/telegram"
	"github.com/bantuankita/bantuankita/domain/port/outbound"
)

type setWebhookRequest struct {
	WebhookURL string `json:"webhookUrl"`
}

type setWebhookResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Result     bool   `json:"result"`
	WebhookURL string `json:"webhookUrl"`
}

type webhookInfoResponse struct {
	Success     bool                    `json:"success"`
	WebhookInfo *outbound.WebhookStatus `json:"webhookInfo"`
}

type webhookFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func (h *Handler) telegramWebhookStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "Telegram webhook endpoint is active",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}

// telegramWebhook dispatches callback queries. Other updates are acknowledged
// and ignored. A 500 makes Telegram redeliver, which is safe because a second
// decision on a reviewed record only answers "already ...".
func (h *Handler) telegramWebhook(w http.ResponseWriter, r *http.Request) {
	update, err := telegram.DecodeUpdate(r.Body)
	if err != nil {
		h.logger.Error("Invalid Telegram update", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to handle webhook")
		return
	}

	if cb := telegram.CallbackFromUpdate(update); cb != nil {
		if err := h.callbacks.HandleCallback(r.Context(), cb); err != nil {
			h.logger.Error("Failed to handle Telegram callback", "updateId", update.UpdateID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to handle webhook")
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *Handler) setWebhook(w http.ResponseWriter, r *http.Request) {
	var req setWebhookRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	url := req.WebhookURL
	if url == "" {
		url = h.config.Telegram.WebhookURL
	}
	if url == "" {
		writeJSON(w, http.StatusBadRequest, webhookFailure{Error: "webhookUrl is required"})
		return
	}

	if err := h.notifier.SetWebhook(r.Context(), url); err != nil {
		h.logger.Error("Failed to set Telegram webhook", "url", url, "error", err)
		writeJSON(w, http.StatusInternalServerError, webhookFailure{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, setWebhookResponse{
		Success:    true,
		Message:    "Webhook set successfully",
		Result:     true,
		WebhookURL: url,
	})
}

func (h *Handler) getWebhookInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.notifier.WebhookInfo(r.Context())
	if err != nil {
		h.logger.Error("Failed to get Telegram webhook info", "error", err)
		writeJSON(w, http.StatusInternalServerError, webhookFailure{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, webhookInfoResponse{Success: true, WebhookInfo: info})
}
