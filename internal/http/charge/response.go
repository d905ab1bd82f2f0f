package charge

import (
	"time"

	"github.com/google/uuid"

	"github.com/carlosandre007/escala/internal/calendar"
	"github.com/carlosandre007/escala/internal/charge"
	"github.com/carlosandre007/escala/internal/ledger"
	"github.com/carlosandre007/escala/internal/recurrence"
	"github.com/carlosandre007/escala/internal/scheduler"
)

type chargeResponse struct {
	ID            uuid.UUID            `json:"id"`
	ClientName    string               `json:"client_name"`
	Reference     string               `json:"reference"`
	Amount        string               `json:"amount"`
	DueDate       calendar.Date        `json:"due_date"`
	DueTime       *string              `json:"due_time,omitempty"`
	Status        charge.Status        `json:"status"`
	SettledAt     *time.Time           `json:"settled_at,omitempty"`
	Recurring     bool                 `json:"recurring"`
	Frequency     recurrence.Frequency `json:"frequency"`
	DayOfWeek     *int                 `json:"day_of_week,omitempty"`
	DayOfMonth    *int                 `json:"day_of_month,omitempty"`
	PredecessorID *uuid.UUID           `json:"predecessor_id,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     *time.Time           `json:"updated_at,omitempty"`
}

func toResponse(c *charge.Charge) chargeResponse {
	resp := chargeResponse{
		ID:            c.ID,
		ClientName:    c.ClientName,
		Reference:     c.Reference,
		Amount:        c.Amount.StringFixed(2),
		DueDate:       c.DueDate,
		DueTime:       c.DueTime,
		Status:        c.Status,
		SettledAt:     c.SettledAt,
		Recurring:     c.Recurrence.Recurring,
		Frequency:     c.Recurrence.Frequency,
		DayOfMonth:    c.Recurrence.AnchorDay,
		PredecessorID: c.PredecessorID,
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}

	if wd := c.Recurrence.AnchorWeekday; wd != nil {
		resp.DayOfWeek = new(int(*wd))
	}

	return resp
}

func toResponseList(charges []*charge.Charge) []chargeResponse {
	resp := make([]chargeResponse, len(charges))
	for i, c := range charges {
		resp[i] = toResponse(c)
	}

	return resp
}

func toResponsePtr(c *charge.Charge) *chargeResponse {
	if c == nil {
		return nil
	}

	return new(toResponse(c))
}

type summaryResponse struct {
	Total            string `json:"total"`
	Settled          string `json:"settled"`
	Outstanding      string `json:"outstanding"`
	Count            int    `json:"count"`
	SettledCount     int    `json:"settled_count"`
	OutstandingCount int    `json:"outstanding_count"`
}

func toSummaryResponse(s ledger.Summary) summaryResponse {
	return summaryResponse{
		Total:            s.Total.StringFixed(2),
		Settled:          s.Settled.StringFixed(2),
		Outstanding:      s.Outstanding.StringFixed(2),
		Count:            s.Count,
		SettledCount:     s.SettledCount,
		OutstandingCount: s.OutstandingCount,
	}
}

type dayResponse struct {
	Date    calendar.Date    `json:"date"`
	Charges []chargeResponse `json:"charges"`
}

type weekResponse struct {
	Start   calendar.Date   `json:"start"`
	End     calendar.Date   `json:"end"`
	Days    []dayResponse   `json:"days"`
	Summary summaryResponse `json:"summary"`
}

func toWeekResponse(v *scheduler.WeekView) weekResponse {
	days := make([]dayResponse, len(v.Window))
	for i, d := range v.Window.Days() {
		days[i] = dayResponse{Date: d, Charges: toResponseList(v.Day(i))}
	}

	return weekResponse{
		Start:   v.Window.Start(),
		End:     v.Window.End(),
		Days:    days,
		Summary: toSummaryResponse(v.Summary),
	}
}

type settleResponse struct {
	Charge          chargeResponse  `json:"charge"`
	Successor       *chargeResponse `json:"successor,omitempty"`
	Changed         bool            `json:"changed"`
	SuccessorReused bool            `json:"successor_reused"`
}

type unsettleResponse struct {
	Charge    chargeResponse  `json:"charge"`
	Successor *chargeResponse `json:"successor,omitempty"`
	Changed   bool            `json:"changed"`
	Retracted bool            `json:"retracted"`
}

type errorResponse struct {
	Error string `json:"error"`

	// Set for partial writes only.
	SuccessorID   *uuid.UUID `json:"successor_id,omitempty"`
	ChargeWritten *bool      `json:"charge_written,omitempty"`
}
