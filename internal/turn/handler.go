package turn

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aiox-platform/travelbot/internal/api"
)

const maxBodyBytes = 1 << 20

// MessageResponse is the success body of the webhook.
type MessageResponse struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Handler struct {
	pipeline *Pipeline
}

func NewHandler(p *Pipeline) *Handler {
	return &Handler{pipeline: p}
}

// TravelAssistant handles one webhook activity.
func (h *Handler) TravelAssistant(w http.ResponseWriter, r *http.Request) {
	slog.Info("travel assistant received a request")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			api.HandleError(w, api.ErrPayloadTooLarge)
			return
		}
		api.HandleError(w, api.ErrBadRequest)
		return
	}

	req, err := ParseRequest(body)
	if err != nil {
		slog.Info("rejected webhook request", "kind", KindOf(err), "error", err)
		api.HandleError(w, toAppError(err))
		return
	}

	reply, err := h.pipeline.Run(r.Context(), req)
	if err != nil {
		slog.Error("turn failed",
			"conversation_id", req.ConversationID,
			"channel", req.Channel,
			"kind", KindOf(err),
			"error", err)
		api.HandleError(w, toAppError(err))
		return
	}

	api.JSON(w, http.StatusOK, MessageResponse{Type: "message", Text: reply})
}
