package rest

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aliskhannn/boulder-progress/internal/domain/entities"
)

type setCountRequest struct {
	Count *int `json:"count"`
}

// boulderView adds the display labels of the catalog grid.
type boulderView struct {
	*entities.Boulder
	ColorLabel string `json:"color_label"`
	ZoneLabel  string `json:"zone_label"`
}

type statsResponse struct {
	Stats   entities.Stats `json:"stats"`
	Level   entities.Level `json:"level"`
	Summary string         `json:"summary"`
}

func (h *Handler) ListBoulders(w http.ResponseWriter, r *http.Request) {
	boulders, err := h.catalog.List(r.Context())
	if err != nil {
		h.failWith(w, r, err)
		return
	}

	views := make([]boulderView, 0, len(boulders))
	for _, b := range boulders {
		views = append(views, boulderView{Boulder: b, ColorLabel: b.Color.Label(), ZoneLabel: b.Zone.Label()})
	}

	success(w, views)
}

func (h *Handler) Ledger(w http.ResponseWriter, r *http.Request) {
	entries, err := h.progress.Ledger(r.Context(), profileFrom(r.Context()).ID)
	if err != nil {
		h.failWith(w, r, err)
		return
	}

	success(w, entries)
}

func (h *Handler) SetCount(w http.ResponseWriter, r *http.Request) {
	var req setCountRequest
	if err := decodeJSON(r, &req); err != nil || req.Count == nil {
		fail(w, http.StatusBadRequest, "count is required")
		return
	}

	entry, err := h.progress.SetCount(r.Context(), profileFrom(r.Context()).ID, mux.Vars(r)["boulderID"], *req.Count)
	h.writeProgress(w, r, "set", entry, err)
}

func (h *Handler) Increment(w http.ResponseWriter, r *http.Request) {
	entry, err := h.progress.Adjust(r.Context(), profileFrom(r.Context()).ID, mux.Vars(r)["boulderID"], 1)
	h.writeProgress(w, r, "increment", entry, err)
}

func (h *Handler) Decrement(w http.ResponseWriter, r *http.Request) {
	entry, err := h.progress.Adjust(r.Context(), profileFrom(r.Context()).ID, mux.Vars(r)["boulderID"], -1)
	h.writeProgress(w, r, "decrement", entry, err)
}

// writeProgress answers a mutation. A nil entry means the pair was removed.
func (h *Handler) writeProgress(w http.ResponseWriter, r *http.Request, kind string, entry *entities.ProgressEntry, err error) {
	if err != nil {
		h.failWith(w, r, err)
		return
	}
	if h.metrics != nil {
		h.metrics.ObserveProgressWrite(kind)
	}

	if entry == nil {
		writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: "progress removed"})
		return
	}

	success(w, entry)
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, level, err := h.progress.Stats(r.Context(), profileFrom(r.Context()).ID, h.now().In(h.opts.Location))
	if err != nil {
		h.failWith(w, r, err)
		return
	}

	success(w, statsResponse{Stats: stats, Level: level, Summary: level.Summary()})
}
