package rest

import (
	"net/http"

	"github.com/bantuankita/bantuankita/config"
)

type SettingsResponse struct {
	Config   *config.PublicConfig `json:"config"`
	FilePath string               `json:"filePath,omitempty"`
	Message  string               `json:"message,omitempty"`
}

type LogLevelRequest struct {
	Level string `json:"level"`
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	public := h.config.Public()
	if h.levels != nil {
		public.General.LogLevel = h.levels.Level()
	}

	writeJSON(w, http.StatusOK, SettingsResponse{
		Config:   public,
		FilePath: h.configPath,
		Message:  "Settings retrieved successfully",
	})
}

// updateLogLevel changes the level of the running process only. Edits to the
// config file are picked up by the config watcher.
func (h *Handler) updateLogLevel(w http.ResponseWriter, r *http.Request) {
	if h.levels == nil {
		writeError(w, http.StatusNotImplemented, "Runtime log level changes are not supported")
		return
	}

	var req LogLevelRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.levels.UpdateLevel(req.Level); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"level":   h.levels.Level(),
	})
}
