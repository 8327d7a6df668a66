package analytics

import (
	"net/http"

	"github.com/Adithya-Monish-Kumar-K/learning-hub/pkg/response"
)

type Handler struct {
	aggregator *Aggregator
}

func NewHandler(aggregator *Aggregator) *Handler {
	return &Handler{aggregator: aggregator}
}

// Stats serves GET /api/analytics.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	response.OK(w, http.StatusOK, h.aggregator.Stats())
}
