package contact

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/learning-hub/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/response"
	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/validate"
)

type Handler struct {
	store     Store
	collector *analytics.Collector
	metrics   *metrics.Metrics
	now       func() time.Time
	logger    *slog.Logger
}

// NewHandler wires a store; collector and metrics may be nil.
func NewHandler(store Store, collector *analytics.Collector, m *metrics.Metrics) *Handler {
	return &Handler{
		store:     store,
		collector: collector,
		metrics:   m,
		now:       time.Now,
		logger:    logger.WithComponent("contact-handler"),
	}
}

// Submit serves POST /api/contact.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	body, err := validate.DecodeBody(w, r)
	if err != nil {
		response.Error(w, err)
		return
	}
	in, err := Validate(body)
	if err != nil {
		response.Error(w, err)
		return
	}

	msg := Message{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Message:   in.Message,
		CreatedAt: h.now().UTC(),
	}
	if err := h.store.Save(r.Context(), msg); err != nil {
		h.logger.Error("failed to store contact message", "error", err)
		response.Error(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ContactMessagesTotal.Inc()
	}
	if h.collector != nil {
		h.collector.Track(analytics.UserEvent{
			Type:      analytics.EventContact,
			Timestamp: msg.CreatedAt,
			RequestID: middleware.GetRequestID(r.Context()),
		})
	}
	logger.FromContext(r.Context()).Info("contact message received", "id", msg.ID)

	response.Message(w, http.StatusOK, "Message sent", msg)
}

// List serves GET /api/contact.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.store.List(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}
	response.List(w, messages)
}
