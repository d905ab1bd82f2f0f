package charge

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/carlosandre007/escala/internal/calendar"
	"github.com/carlosandre007/escala/internal/charge"
	"github.com/carlosandre007/escala/internal/recurrence"
	"github.com/carlosandre007/escala/internal/scheduler"
)

type Handler struct {
	svc      *scheduler.Service
	validate *validator.Validate
}

func NewHandler(svc *scheduler.Service) *Handler {
	return &Handler{
		svc:      svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.week)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.delete)
	r.Post("/{id}/settle", h.settle)
	r.Post("/{id}/unsettle", h.unsettle)
}

func (h *Handler) week(w http.ResponseWriter, r *http.Request) {
	ref := h.svc.Today()

	if s := r.URL.Query().Get("date"); s != "" {
		d, err := calendar.Parse(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}

		ref = d
	}

	view, err := h.svc.Week(r.Context(), ref)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toWeekResponse(view))
}

type createChargeRequest struct {
	ClientName string          `json:"client_name" validate:"required,max=200"`
	Reference  string          `json:"reference" validate:"required,max=200"`
	Amount     decimal.Decimal `json:"amount"`
	DueDate    calendar.Date   `json:"due_date"`
	DueTime    *string         `json:"due_time,omitempty" validate:"omitempty,datetime=15:04"`
	Recurring  bool            `json:"recurring"`
	Frequency  string          `json:"frequency" validate:"omitempty,oneof=none fixed weekly monthly"`
	DayOfWeek  *int            `json:"day_of_week,omitempty" validate:"omitempty,min=0,max=6"`
	DayOfMonth *int            `json:"day_of_month,omitempty" validate:"omitempty,min=1,max=31"`
}

func (req createChargeRequest) params() (charge.CreateParams, error) {
	freq, err := recurrence.ParseFrequency(req.Frequency)
	if err != nil {
		return charge.CreateParams{}, err
	}

	p := charge.CreateParams{
		ClientName: req.ClientName,
		Reference:  req.Reference,
		Amount:     req.Amount,
		DueDate:    req.DueDate,
		DueTime:    req.DueTime,
		Recurrence: recurrence.Rule{
			Recurring: req.Recurring,
			Frequency: freq,
			AnchorDay: req.DayOfMonth,
		},
	}

	if req.DayOfWeek != nil {
		p.Recurrence.AnchorWeekday = new(time.Weekday(*req.DayOfWeek))
	}

	// Without explicit anchors a recurring charge repeats on its first due date.
	if p.Recurrence.Repeats() && !req.DueDate.IsZero() {
		switch freq {
		case recurrence.Weekly:
			if p.Recurrence.AnchorWeekday == nil {
				p.Recurrence.AnchorWeekday = new(req.DueDate.Weekday())
			}
		case recurrence.Monthly:
			if p.Recurrence.AnchorDay == nil {
				p.Recurrence.AnchorDay = new(req.DueDate.Day)
			}
		}
	}

	return p, nil
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createChargeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	params, err := req.params()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.svc.Create(r.Context(), params)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(c))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) settle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Settle(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, settleResponse{
		Charge:          toResponse(res.Charge),
		Successor:       toResponsePtr(res.Successor),
		Changed:         res.Changed,
		SuccessorReused: res.SuccessorReused,
	})
}

func (h *Handler) unsettle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Unsettle(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, unsettleResponse{
		Charge:    toResponse(res.Charge),
		Successor: toResponsePtr(res.Successor),
		Changed:   res.Changed,
		Retracted: res.Retracted,
	})
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}

	return id, true
}

// fail maps service errors onto status codes.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var partial *scheduler.PartialWriteError

	switch {
	case errors.As(err, &partial):
		slog.ErrorContext(r.Context(), "partial write", "op", partial.Op, "charge_id", partial.ChargeID, "error", err)

		resp := errorResponse{Error: err.Error(), ChargeWritten: new(partial.ChargeWritten)}
		if partial.SuccessorID != uuid.Nil {
			resp.SuccessorID = new(partial.SuccessorID)
		}

		writeJSON(w, http.StatusInternalServerError, resp)
	case errors.Is(err, charge.ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, charge.ErrNotFound):
		writeError(w, http.StatusNotFound, "charge not found")
	case errors.Is(err, charge.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
