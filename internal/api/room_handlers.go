package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gestaoclinica/backend/internal/repo"
)

type CreateRoomRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	var req CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		http.Error(w, `{"error":"name obrigatório"}`, http.StatusBadRequest)
		return
	}
	id, err := repo.CreateRoom(r.Context(), h.Pool, cid, req.Name, req.Description)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	list, err := repo.RoomsByClinic(r.Context(), h.Pool, cid)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	type roomResp struct {
		ID          string  `json:"id"`
		Name        string  `json:"name"`
		Description *string `json:"description,omitempty"`
	}
	out := make([]roomResp, len(list))
	for i, rm := range list {
		out[i] = roomResp{ID: rm.ID.String(), Name: rm.Name, Description: rm.Description}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"rooms": out})
}

func (h *Handler) DeactivateRoom(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	roomID, err := uuid.Parse(mux.Vars(r)["roomId"])
	if err != nil {
		http.Error(w, `{"error":"invalid room_id"}`, http.StatusBadRequest)
		return
	}
	found, err := repo.DeactivateRoom(r.Context(), h.Pool, cid, roomID)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}
