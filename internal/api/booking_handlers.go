package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/gestaoclinica/backend/internal/auth"
	"github.com/gestaoclinica/backend/internal/repo"
)

type CreateBookingRequest struct {
	RoomID    string  `json:"room_id"`
	DoctorID  string  `json:"doctor_id"`
	PatientID *string `json:"patient_id,omitempty"`
	StartAt   string  `json:"start_at"` // RFC 3339
	EndAt     string  `json:"end_at"`
	Notes     *string `json:"notes,omitempty"`
}

// CreateBooking reserva uma sala. MEDICO só reserva para si; ADMIN para
// qualquer médico da clínica.
func (h *Handler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid body"}`, http.StatusBadRequest)
		return
	}
	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		http.Error(w, `{"error":"invalid room_id"}`, http.StatusBadRequest)
		return
	}
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		http.Error(w, `{"error":"invalid doctor_id"}`, http.StatusBadRequest)
		return
	}
	if !auth.IsAdmin(r.Context()) && auth.UserIDFrom(r.Context()) != doctorID.String() {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	var patientID *uuid.UUID
	if req.PatientID != nil && *req.PatientID != "" {
		pid, err := uuid.Parse(*req.PatientID)
		if err != nil {
			http.Error(w, `{"error":"invalid patient_id"}`, http.StatusBadRequest)
			return
		}
		patientID = &pid
	}
	startAt, err := time.Parse(time.RFC3339, req.StartAt)
	if err != nil {
		http.Error(w, `{"error":"start_at inválido"}`, http.StatusBadRequest)
		return
	}
	endAt, err := time.Parse(time.RFC3339, req.EndAt)
	if err != nil {
		http.Error(w, `{"error":"end_at inválido"}`, http.StatusBadRequest)
		return
	}
	if !endAt.After(startAt) {
		http.Error(w, `{"error":"end_at deve ser depois de start_at"}`, http.StatusBadRequest)
		return
	}
	overlap, err := repo.HasBookingOverlap(r.Context(), h.Pool, cid, roomID, startAt, endAt)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if overlap {
		http.Error(w, `{"error":"sala já reservada neste horário"}`, http.StatusConflict)
		return
	}
	id, err := repo.CreateBooking(r.Context(), h.Pool, cid, roomID, doctorID, patientID, startAt.UTC(), endAt.UTC(), req.Notes)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	h.Cache.Invalidate("fechamento:" + cid.String() + ":")
	writeJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

// Agenda lista as reservas da clínica entre ?de=...&ate=... (RFC 3339).
func (h *Handler) Agenda(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("de"))
	if err != nil {
		http.Error(w, `{"error":"parâmetro de inválido"}`, http.StatusBadRequest)
		return
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("ate"))
	if err != nil || !to.After(from) {
		http.Error(w, `{"error":"parâmetro ate inválido"}`, http.StatusBadRequest)
		return
	}
	list, err := repo.AgendaByRange(r.Context(), h.Pool, cid, from.UTC(), to.UTC())
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	type agendaResp struct {
		ID         string  `json:"id"`
		RoomID     string  `json:"room_id"`
		RoomName   string  `json:"room_name"`
		DoctorID   string  `json:"doctor_id"`
		DoctorName string  `json:"doctor_name"`
		PatientID  *string `json:"patient_id,omitempty"`
		StartAt    string  `json:"start_at"`
		EndAt      string  `json:"end_at"`
		Notes      *string `json:"notes,omitempty"`
	}
	out := make([]agendaResp, len(list))
	for i, e := range list {
		var pid *string
		if e.PatientID != nil {
			s := e.PatientID.String()
			pid = &s
		}
		out[i] = agendaResp{
			ID:         e.ID.String(),
			RoomID:     e.RoomID.String(),
			RoomName:   e.RoomName,
			DoctorID:   e.DoctorID.String(),
			DoctorName: e.DoctorName,
			PatientID:  pid,
			StartAt:    e.StartAt.UTC().Format(time.RFC3339),
			EndAt:      e.EndAt.UTC().Format(time.RFC3339),
			Notes:      e.Notes,
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"bookings": out})
}

func (h *Handler) DeleteBooking(w http.ResponseWriter, r *http.Request) {
	cid, ok := clinicUUID(r)
	if !ok {
		http.Error(w, `{"error":"forbidden"}`, http.StatusForbidden)
		return
	}
	bookingID, err := uuid.Parse(mux.Vars(r)["bookingId"])
	if err != nil {
		http.Error(w, `{"error":"invalid booking_id"}`, http.StatusBadRequest)
		return
	}
	found, err := repo.DeleteBooking(r.Context(), h.Pool, cid, bookingID)
	if err != nil {
		http.Error(w, `{"error":"internal"}`, http.StatusInternalServerError)
		return
	}
	if !found {
		http.Error(w, `{"error":"not found"}`, http.StatusNotFound)
		return
	}
	h.Cache.Invalidate("fechamento:" + cid.String() + ":")
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}
