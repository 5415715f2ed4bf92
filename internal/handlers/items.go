package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/habitcards/assistant/internal/models"
	"github.com/habitcards/assistant/internal/store"
	"go.uber.org/zap"
)

// mirrorCollections are the collections the backend exposes as
// /api/{collection} CRUD routes.
var mirrorCollections = map[string]bool{
	models.CollectionAlarms:   true,
	models.CollectionMeetings: true,
	models.CollectionMoods:    true,
	models.CollectionInbox:    true,
	models.CollectionSchedule: true,
	models.CollectionProfiles: true,
}

// ItemsHandler handles the generic collection CRUD endpoints. Documents are
// schemaless JSON; the server backfills id and createdAt and otherwise stores
// what the client sent.
type ItemsHandler struct {
	store  *store.Gateway
	logger *zap.Logger
}

// NewItemsHandler creates an items handler.
func NewItemsHandler(gw *store.Gateway, logger *zap.Logger) *ItemsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ItemsHandler{store: gw, logger: logger}
}

func collectionFromRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	collection := mux.Vars(r)["collection"]
	if !mirrorCollections[collection] {
		respondError(w, http.StatusNotFound, "unknown collection")
		return "", false
	}
	return collection, true
}

// List handles GET /api/{collection}, returning all documents in insertion
// order.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	collection, ok := collectionFromRequest(w, r)
	if !ok {
		return
	}

	docs, err := h.store.FetchRawAll(r.Context(), collection)
	if err != nil {
		h.logger.Error("list_items_failed", zap.String("collection", collection), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to list items")
		return
	}

	items := make([]json.RawMessage, 0, len(docs))
	for _, doc := range docs {
		items = append(items, json.RawMessage(doc))
	}
	respondJSON(w, http.StatusOK, items)
}

// Create handles POST /api/{collection}. Missing id and createdAt fields are
// backfilled server-side; the stored document is echoed back.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	collection, ok := collectionFromRequest(w, r)
	if !ok {
		return
	}

	var doc map[string]any
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	id, _ := doc["id"].(string)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.New().String()
		doc["id"] = id
	}
	if _, hasCreated := doc["createdAt"]; !hasCreated {
		doc["createdAt"] = time.Now().UTC().Format(time.RFC3339)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid document")
		return
	}

	if err := h.store.InsertRaw(r.Context(), collection, id, data); err != nil {
		h.logger.Error("create_item_failed", zap.String("collection", collection), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to store item")
		return
	}

	respondJSON(w, http.StatusCreated, doc)
}

// Get handles GET /api/{collection}/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	collection, ok := collectionFromRequest(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	doc, err := h.store.FetchRawByID(r.Context(), collection, id)
	if err != nil {
		h.logger.Error("get_item_failed", zap.String("collection", collection), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to fetch item")
		return
	}
	if doc == nil {
		respondError(w, http.StatusNotFound, "not found")
		return
	}

	respondJSON(w, http.StatusOK, json.RawMessage(doc))
}

// Delete handles DELETE /api/{collection}/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	collection, ok := collectionFromRequest(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	if err := h.store.Delete(r.Context(), collection, id); err != nil {
		h.logger.Error("delete_item_failed", zap.String("collection", collection), zap.Error(err))
		respondError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
