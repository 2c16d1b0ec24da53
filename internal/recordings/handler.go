// AngelaMos | 2026
// handler.go

package recordings

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/voqo-dev/crm-backend/internal/core"
)

type Handler struct {
	client Client
	logger *slog.Logger
}

func NewHandler(client Client, logger *slog.Logger) *Handler {
	return &Handler{
		client: client,
		logger: logger,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/calls/{callSID}/recordings", h.ListForCall)
		r.Get("/recordings/{recordingSID}/audio", h.StreamAudio)
	})
}

// ListForCall returns the recordings Twilio holds for one call, with
// their audio rewritten to point at this API's proxy endpoint so the
// dashboard never needs Twilio credentials.
func (h *Handler) ListForCall(w http.ResponseWriter, r *http.Request) {
	callSID := chi.URLParam(r, "callSID")

	recs, err := h.client.ListForCall(r.Context(), callSID)
	if err != nil {
		h.logger.Error("failed to list call recordings",
			"call_sid", callSID,
			"error", err,
		)
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToRecordingResponseList(recs))
}

// StreamAudio proxies a recording's mp3 from Twilio, passing the Range
// header through in both directions so seeking works.
func (h *Handler) StreamAudio(w http.ResponseWriter, r *http.Request) {
	recordingSID := chi.URLParam(r, "recordingSID")

	stream, err := h.client.StreamAudio(
		r.Context(),
		recordingSID,
		r.Header.Get("Range"),
	)
	if err != nil {
		h.logger.Error("failed to stream recording audio",
			"recording_sid", recordingSID,
			"error", err,
		)
		core.InternalServerError(w, err)
		return
	}
	defer stream.Body.Close()

	w.Header().Set("Content-Type", "audio/mpeg")
	if stream.ContentLength != "" {
		w.Header().Set("Content-Length", stream.ContentLength)
	}
	if stream.ContentRange != "" {
		w.Header().Set("Content-Range", stream.ContentRange)
	}
	if stream.AcceptRanges != "" {
		w.Header().Set("Accept-Ranges", stream.AcceptRanges)
	}
	w.WriteHeader(stream.StatusCode)

	if _, err := io.Copy(w, stream.Body); err != nil {
		h.logger.Warn("recording audio stream interrupted",
			"recording_sid", recordingSID,
			"error", err,
		)
	}
}
