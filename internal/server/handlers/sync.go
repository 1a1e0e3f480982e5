// Package handlers implements the HTTP surface of the sync server.
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iudanet/campkeeper/internal/models"
	"github.com/iudanet/campkeeper/internal/server/storage"
	"github.com/iudanet/campkeeper/internal/validation"
	"github.com/iudanet/campkeeper/pkg/api"
)

// SyncHandler serves the push and pull endpoints.
type SyncHandler struct {
	logger  *slog.Logger
	storage storage.DocumentStorage
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(logger *slog.Logger, storage storage.DocumentStorage) *SyncHandler {
	return &SyncHandler{
		logger:  logger,
		storage: storage,
	}
}

// Register mounts the sync routes on a router protected by auth middleware.
func (h *SyncHandler) Register(r chi.Router) {
	r.Post("/sync/{campaign}", h.Push)
	r.Get("/sync/{campaign}/{collection}/since/{since}", h.Pull)
}

// Push handles POST /sync/{campaign}: a batch of replicated changes applied
// in order with last-write-wins semantics. The whole batch is accepted or the
// request fails; the client retries the full batch either way.
func (h *SyncHandler) Push(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	campaign := chi.URLParam(r, "campaign")
	if err := validation.ValidateSlug(campaign); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid campaign: %v", err))
		return
	}

	var wireChanges []api.Change
	if err := json.NewDecoder(r.Body).Decode(&wireChanges); err != nil {
		h.logger.Warn("Failed to decode push request", "error", err)
		h.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	applied := 0
	for i, wc := range wireChanges {
		ch, err := changeFromWire(wc)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, fmt.Sprintf("change %d: %v", i, err))
			return
		}

		took, err := h.storage.ApplyChange(ctx, userID, campaign, ch)
		if err != nil {
			h.logger.Error("Failed to apply change",
				"error", err,
				"campaign", campaign,
				"entity", ch.Entity,
				"entity_id", ch.EntityID)
			h.writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if took {
			applied++
		}
	}

	h.logger.Info("Push completed",
		"user_id", userID,
		"campaign", campaign,
		"received", len(wireChanges),
		"applied", applied)

	h.writeJSON(w, http.StatusOK, api.PushResponse{Status: "ok"})
}

// Pull handles GET /sync/{campaign}/{collection}/since/{since}: every
// document of the collection updated strictly after the cursor. Edges go out
// in their snake_case wire form.
func (h *SyncHandler) Pull(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := GetUserID(ctx)
	if !ok {
		h.writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	campaign := chi.URLParam(r, "campaign")
	if err := validation.ValidateSlug(campaign); err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid campaign: %v", err))
		return
	}

	col, ok := models.CollectionByPath(chi.URLParam(r, "collection"))
	if !ok {
		h.writeError(w, http.StatusNotFound, "unknown collection")
		return
	}

	since, err := strconv.ParseInt(chi.URLParam(r, "since"), 10, 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid since cursor")
		return
	}

	docs, err := h.storage.ListDocumentsSince(ctx, userID, campaign, col.Name, since)
	if err != nil {
		h.logger.Error("Failed to list documents",
			"error", err,
			"campaign", campaign,
			"collection", col.Name)
		h.writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if col.Name == models.CollectionEdges {
		for i, doc := range docs {
			docs[i] = EdgeToWire(doc)
		}
	}

	if docs == nil {
		docs = []models.Doc{}
	}

	h.logger.Debug("Pull completed",
		"user_id", userID,
		"campaign", campaign,
		"collection", col.Name,
		"since", since,
		"count", len(docs))

	h.writeJSON(w, http.StatusOK, docs)
}

// changeFromWire validates one incoming change and converts it.
func changeFromWire(wc api.Change) (models.Change, error) {
	op := models.ChangeOp(wc.Op)
	switch op {
	case models.OpCreate, models.OpUpdate, models.OpDelete:
	default:
		return models.Change{}, fmt.Errorf("unknown op %q", wc.Op)
	}

	known := false
	for _, col := range models.Collections() {
		if col.Name == wc.Entity {
			known = true
			break
		}
	}
	if !known {
		return models.Change{}, fmt.Errorf("unknown entity %q", wc.Entity)
	}

	if wc.EntityID == "" {
		return models.Change{}, fmt.Errorf("missing entity id")
	}

	return models.Change{
		Op:       op,
		Entity:   wc.Entity,
		EntityID: wc.EntityID,
		Payload:  wc.Payload,
		TS:       wc.TS,
	}, nil
}

func (h *SyncHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", "error", err)
	}
}

func (h *SyncHandler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, api.ErrorResponse{Message: message})
}
