package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"huddle/internal/config"
	"huddle/internal/database"
	"huddle/internal/domain"
	"huddle/internal/export"
	"huddle/internal/models"
	"huddle/internal/schedule"
	"huddle/internal/service"

	"github.com/rs/zerolog"
)

// HTTPServer is the only transport surface: it authenticates the acting
// user, then delegates to the room and booking services.
type HTTPServer struct {
	cfg      *config.APIConfig
	bookings domain.BookingService
	rooms    domain.RoomService
	server   *http.Server
	auth     *HTTPAuth
	logger   *zerolog.Logger
}

func NewHTTPServer(cfg *config.APIConfig, bookings domain.BookingService, rooms domain.RoomService, cache domain.ScheduleCache, logger *zerolog.Logger) *HTTPServer {
	mux := http.NewServeMux()
	srv := &HTTPServer{cfg: cfg, bookings: bookings, rooms: rooms, logger: logger}
	srv.auth = NewHTTPAuth(cfg, cache)

	mux.HandleFunc("GET /healthz", srv.handleHealth)

	mux.HandleFunc("GET /api/v1/rooms", srv.handleListRooms)
	mux.HandleFunc("POST /api/v1/rooms", srv.handleCreateRoom)
	mux.HandleFunc("GET /api/v1/rooms/{id}", srv.handleGetRoom)
	mux.HandleFunc("PUT /api/v1/rooms/{id}", srv.handleUpdateRoom)
	mux.HandleFunc("DELETE /api/v1/rooms/{id}", srv.handleDeleteRoom)
	mux.HandleFunc("PUT /api/v1/rooms/{id}/access/{email}", srv.handleSetAccess)
	mux.HandleFunc("DELETE /api/v1/rooms/{id}/access/{email}", srv.handleRemoveAccess)
	mux.HandleFunc("GET /api/v1/rooms/{id}/bookings", srv.handleRoomBookings)
	mux.HandleFunc("GET /api/v1/rooms/{id}/schedule", srv.handleRoomSchedule)
	mux.HandleFunc("GET /api/v1/rooms/{id}/export", srv.handleRoomExport)

	mux.HandleFunc("POST /api/v1/bookings", srv.handleCreateBooking)
	mux.HandleFunc("DELETE /api/v1/bookings/{id}", srv.handleCancelBooking)
	mux.HandleFunc("GET /api/v1/my/bookings", srv.handleMyBookings)

	handler := loggingMiddleware(logger, srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler exposes the configured handler chain for tests.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- rooms ---

func (s *HTTPServer) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.rooms.List(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
}

type roomRequest struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Capacity    int               `json:"capacity"`
	AccessList  map[string]string `json:"access_list"`
}

func (r roomRequest) toModel(id string) (*models.Room, error) {
	access := make(map[string]models.Role, len(r.AccessList))
	for email, roleStr := range r.AccessList {
		role, err := models.ParseRole(roleStr)
		if err != nil {
			return nil, err
		}
		access[strings.TrimSpace(email)] = role
	}
	return &models.Room{
		ID:          id,
		Name:        r.Name,
		Description: r.Description,
		Capacity:    r.Capacity,
		AccessList:  access,
	}, nil
}

func (s *HTTPServer) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	actor, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no identity")
		return
	}

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	room, err := req.toModel("")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.rooms.Create(r.Context(), room, actor); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, room)
}

func (s *HTTPServer) handleGetRoom(w http.ResponseWriter, r *http.Request) {
	room, err := s.rooms.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *HTTPServer) handleUpdateRoom(w http.ResponseWriter, r *http.Request) {
	actor, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no identity")
		return
	}

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	room, err := req.toModel(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.rooms.Update(r.Context(), room, actor); err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (s *HTTPServer) handleDeleteRoom(w http.ResponseWriter, r *http.Request) {
	actor, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no identity")
		return
	}

	if err := s.rooms.Delete(r.Context(), r.PathValue("id"), actor); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleSetAccess(w http.ResponseWriter, r *http.Request) {
	actor, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no identity")
		return
	}

	var req struct {
		Role string `json:"role"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}

	err := s.rooms.SetAccess(r.Context(), r.PathValue("id"), r.PathValue("email"), req.Role, actor)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleRemoveAccess(w http.ResponseWriter, r *http.Request) {
	actor, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no identity")
		return
	}

	err := s.rooms.RemoveAccess(r.Context(), r.PathValue("id"), r.PathValue("email"), actor)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- bookings ---

func (s *HTTPServer) handleRoomBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := s.bookings.ListForRoom(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleRoomSchedule(w http.ResponseWriter, r *http.Request) {
	dateStr := strings.TrimSpace(r.URL.Query().Get("date"))
	if dateStr == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	day, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	agenda, err := s.bookings.DaySchedule(r.Context(), r.PathValue("id"), day)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"date": dateStr, "bookings": agenda})
}

func (s *HTTPServer) handleRoomExport(w http.ResponseWriter, r *http.Request) {
	roomID := r.PathValue("id")
	from, to, err := exportRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	room, err := s.rooms.Get(r.Context(), roomID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	bookings, err := s.bookings.ListForRoom(r.Context(), roomID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	fileName := fmt.Sprintf("agenda_%s_%s.xlsx", roomID, from.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))

	if err := export.WriteAgenda(w, room, bookings, from, to); err != nil {
		s.logger.Error().Err(err).Str("room_id", roomID).Msg("agenda export failed")
	}
}

func exportRange(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -7)
	to := now.AddDate(0, 0, 14)

	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from date: %s", v)
		}
		from = parsed
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to date: %s", v)
		}
		to = parsed
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("to date before from date")
	}
	return from, to, nil
}

type bookingRequest struct {
	RoomID    string    `json:"room_id"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no identity")
		return
	}

	var req bookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if strings.TrimSpace(req.RoomID) == "" {
		writeError(w, http.StatusBadRequest, "room_id is required")
		return
	}

	booking, err := s.bookings.Propose(r.Context(), domain.ProposeRequest{
		RoomID: req.RoomID,
		Actor:  actor,
		Title:  req.Title,
		Start:  req.StartTime,
		End:    req.EndTime,
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, booking)
}

func (s *HTTPServer) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	actor, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no identity")
		return
	}

	if err := s.bookings.Cancel(r.Context(), r.PathValue("id"), actor); err != nil {
		s.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleMyBookings(w http.ResponseWriter, r *http.Request) {
	actor, ok := IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "no identity")
		return
	}

	bookings, err := s.bookings.ListForUser(r.Context(), actor.UID)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

// --- error mapping ---

// writeServiceError distinguishes logical rejections (fix your input) from
// infrastructure failures (retry), per the error taxonomy.
func (s *HTTPServer) writeServiceError(w http.ResponseWriter, err error) {
	var conflict *schedule.ConflictError

	switch {
	case errors.Is(err, schedule.ErrInvalidInterval):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &conflict):
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":          "time slot is already booked",
			"conflict_title": conflict.Title,
			"conflict_start": conflict.Start,
			"conflict_end":   conflict.End,
		})
	case errors.Is(err, schedule.ErrConflict):
		writeError(w, http.StatusConflict, "time slot is already booked")
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "operation not permitted for this user")
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, database.ErrIndeterminate):
		writeJSON(w, http.StatusGatewayTimeout, map[string]any{
			"error":   "write outcome unknown",
			"recheck": true,
		})
	case errors.Is(err, database.ErrStoreUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error":     "store unavailable",
			"retryable": true,
		})
	default:
		s.logger.Error().Err(err).Msg("unhandled service error")
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
