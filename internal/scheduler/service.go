package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carlosandre007/escala/internal/calendar"
	"github.com/carlosandre007/escala/internal/charge"
	"github.com/carlosandre007/escala/internal/events"
)

// SuccessorPolicy decides what unsettling a charge does to the successor its
// settlement created.
type SuccessorPolicy string

const (
	// PolicyLeave keeps the successor. Two pending occurrences can then coexist.
	PolicyLeave SuccessorPolicy = "leave"
	// PolicyRetract deletes the successor while it is still pending.
	PolicyRetract SuccessorPolicy = "retract"
)

func ParseSuccessorPolicy(s string) (SuccessorPolicy, error) {
	switch p := SuccessorPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyLeave, nil
	case PolicyLeave, PolicyRetract:
		return p, nil
	default:
		return "", fmt.Errorf("unknown successor policy %q", s)
	}
}

type Service struct {
	repo      charge.Repository
	publisher events.Publisher
	policy    SuccessorPolicy
	loc       *time.Location
	now       func() time.Time
}

type Option func(*Service)

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithSuccessorPolicy(p SuccessorPolicy) Option {
	return func(s *Service) { s.policy = p }
}

// WithLocation sets the zone used to decide which calendar day "today" is.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) { s.loc = loc }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(repo charge.Repository, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		publisher: events.Nop{},
		policy:    PolicyLeave,
		loc:       time.Local,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Service) Now() time.Time {
	return s.now()
}

func (s *Service) Today() calendar.Date {
	return calendar.FromTime(s.now().In(s.loc))
}

// Week loads the window containing ref.
func (s *Service) Week(ctx context.Context, ref calendar.Date) (*WeekView, error) {
	w := calendar.WindowFor(ref)

	charges, err := s.repo.ListByDueDateRange(ctx, w.Start(), w.End())
	if err != nil {
		return nil, fmt.Errorf("list week %s: %w", w.Start(), err)
	}

	return NewWeekView(w, charges), nil
}

// Refresh reloads local's window from the store and reports where local had
// drifted from it.
func (s *Service) Refresh(ctx context.Context, local *WeekView) (*WeekView, []Drift, error) {
	snapshot, err := s.Week(ctx, local.Window.Start())
	if err != nil {
		return nil, nil, err
	}

	view, drift := Reconcile(local, snapshot)

	for _, d := range drift {
		if d.Kind == DriftAdded {
			continue
		}

		slog.WarnContext(ctx, "local view drifted from store",
			"charge_id", d.ChargeID, "kind", d.Kind, "local", d.Local, "stored", d.Stored)
	}

	return view, drift, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*charge.Charge, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, params charge.CreateParams) (*charge.Charge, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	c := charge.New(params)
	if err := s.repo.Insert(ctx, c); err != nil {
		return nil, fmt.Errorf("create charge: %w", err)
	}

	slog.InfoContext(ctx, "charge created", "charge_id", c.ID, "client", c.ClientName, "due", c.DueDate)

	return c, nil
}

type SettleResult struct {
	Charge *charge.Charge
	// Successor is the next occurrence, nil when the charge does not recur.
	Successor *charge.Charge
	// Changed is false when the charge was already settled.
	Changed bool
	// SuccessorReused is true when an earlier settlement had already created the successor.
	SuccessorReused bool
}

// Settle marks the charge as received and, for recurring charges, makes sure
// the next occurrence exists.
func (s *Service) Settle(ctx context.Context, id uuid.UUID) (*SettleResult, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load charge: %w", err)
	}

	if c.IsSettled() {
		return &SettleResult{Charge: c}, nil
	}

	settledAt := s.now()
	patch := charge.Patch{
		Status:    charge.StatusSettled,
		SettledAt: &settledAt,
		From:      charge.StatusPending,
	}

	var res *SettleResult

	if tr, ok := s.repo.(charge.Transactor); ok {
		res, err = s.settleTx(ctx, tr, c, patch)
	} else {
		res, err = s.settleOrdered(ctx, c, patch)
	}

	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "charge settled",
		"charge_id", c.ID, "successor_id", successorID(res.Successor), "successor_reused", res.SuccessorReused)

	s.publish(ctx, events.TypeSettled, res.Charge, res.Successor)

	return res, nil
}

func (s *Service) settleTx(ctx context.Context, tr charge.Transactor, c *charge.Charge, patch charge.Patch) (*SettleResult, error) {
	tx, err := tr.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin settle: %w", err)
	}
	defer tx.Rollback()

	if err := tx.Update(ctx, c.ID, patch); err != nil {
		return nil, fmt.Errorf("settle charge: %w", err)
	}

	succ, reused, err := ensureSuccessor(ctx, tx, c)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit settle: %w", err)
	}

	return &SettleResult{
		Charge:          applyPatch(c, patch),
		Successor:       succ,
		Changed:         true,
		SuccessorReused: reused,
	}, nil
}

// settleOrdered writes the successor before the charge, so a failure in
// between leaves an extra pending occurrence rather than a settled charge
// with no follow-up.
func (s *Service) settleOrdered(ctx context.Context, c *charge.Charge, patch charge.Patch) (*SettleResult, error) {
	succ, reused, err := ensureSuccessor(ctx, s.repo, c)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, c.ID, patch); err != nil {
		if succ != nil && !reused {
			return nil, &PartialWriteError{
				Op:          OpSettle,
				ChargeID:    c.ID,
				SuccessorID: succ.ID,
				Err:         err,
			}
		}

		return nil, fmt.Errorf("settle charge: %w", err)
	}

	return &SettleResult{
		Charge:          applyPatch(c, patch),
		Successor:       succ,
		Changed:         true,
		SuccessorReused: reused,
	}, nil
}

// ensureSuccessor returns the successor of c, inserting it when none exists yet.
func ensureSuccessor(ctx context.Context, w charge.Writer, c *charge.Charge) (*charge.Charge, bool, error) {
	next := c.Successor()
	if next == nil {
		return nil, false, nil
	}

	existing, err := w.FindSuccessor(ctx, c.ID)
	if err == nil {
		return existing, true, nil
	}

	if !errors.Is(err, charge.ErrNotFound) {
		return nil, false, fmt.Errorf("find successor: %w", err)
	}

	if err := w.Insert(ctx, next); err != nil {
		return nil, false, fmt.Errorf("create successor: %w", err)
	}

	return next, false, nil
}

type UnsettleResult struct {
	Charge *charge.Charge
	// Successor is the occurrence created by the earlier settlement, if any.
	Successor *charge.Charge
	// Changed is false when the charge was already pending.
	Changed bool
	// Retracted is true when Successor was deleted.
	Retracted bool
}

// Unsettle returns a settled charge to pending. What happens to its
// successor depends on the service's SuccessorPolicy.
func (s *Service) Unsettle(ctx context.Context, id uuid.UUID) (*UnsettleResult, error) {
	c, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load charge: %w", err)
	}

	if !c.IsSettled() {
		return &UnsettleResult{Charge: c}, nil
	}

	patch := charge.Patch{
		Status: charge.StatusPending,
		From:   charge.StatusSettled,
	}

	var res *UnsettleResult

	if tr, ok := s.repo.(charge.Transactor); ok {
		res, err = s.unsettleTx(ctx, tr, c, patch)
	} else {
		res, err = s.unsettleOrdered(ctx, c, patch)
	}

	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "charge unsettled",
		"charge_id", c.ID, "successor_id", successorID(res.Successor), "retracted", res.Retracted)

	s.publish(ctx, events.TypeUnsettled, res.Charge, res.Successor)

	return res, nil
}

func (s *Service) unsettleTx(ctx context.Context, tr charge.Transactor, c *charge.Charge, patch charge.Patch) (*UnsettleResult, error) {
	tx, err := tr.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin unsettle: %w", err)
	}
	defer tx.Rollback()

	if err := tx.Update(ctx, c.ID, patch); err != nil {
		return nil, fmt.Errorf("unsettle charge: %w", err)
	}

	succ, err := findSuccessor(ctx, tx, c.ID)
	if err != nil {
		return nil, err
	}

	retract := s.shouldRetract(succ)
	if retract {
		if err := tx.Delete(ctx, succ.ID); err != nil {
			return nil, fmt.Errorf("retract successor: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit unsettle: %w", err)
	}

	return &UnsettleResult{
		Charge:    applyPatch(c, patch),
		Successor: succ,
		Changed:   true,
		Retracted: retract,
	}, nil
}

func (s *Service) unsettleOrdered(ctx context.Context, c *charge.Charge, patch charge.Patch) (*UnsettleResult, error) {
	if err := s.repo.Update(ctx, c.ID, patch); err != nil {
		return nil, fmt.Errorf("unsettle charge: %w", err)
	}

	res := &UnsettleResult{Charge: applyPatch(c, patch), Changed: true}

	succ, err := findSuccessor(ctx, s.repo, c.ID)
	if err != nil {
		if s.policy != PolicyRetract {
			// The charge itself is back to pending; the lookup is informational.
			slog.WarnContext(ctx, "failed to look up successor", "charge_id", c.ID, "error", err)
			return res, nil
		}

		return nil, &PartialWriteError{Op: OpUnsettle, ChargeID: c.ID, ChargeWritten: true, Err: err}
	}

	res.Successor = succ

	if s.shouldRetract(succ) {
		if err := s.repo.Delete(ctx, succ.ID); err != nil {
			return nil, &PartialWriteError{
				Op:            OpUnsettle,
				ChargeID:      c.ID,
				SuccessorID:   succ.ID,
				ChargeWritten: true,
				Err:           err,
			}
		}

		res.Retracted = true
	}

	return res, nil
}

func (s *Service) shouldRetract(succ *charge.Charge) bool {
	return s.policy == PolicyRetract && succ != nil && !succ.IsSettled()
}

// findSuccessor is FindSuccessor with ErrNotFound mapped to a nil charge.
func findSuccessor(ctx context.Context, w charge.Writer, id uuid.UUID) (*charge.Charge, error) {
	succ, err := w.FindSuccessor(ctx, id)
	if errors.Is(err, charge.ErrNotFound) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("find successor: %w", err)
	}

	return succ, nil
}

// Delete removes the charge. Deleting a charge that does not exist is not an error.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	c, err := s.repo.Get(ctx, id)
	if errors.Is(err, charge.ErrNotFound) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("load charge: %w", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete charge: %w", err)
	}

	slog.InfoContext(ctx, "charge deleted", "charge_id", id)

	s.publish(ctx, events.TypeDeleted, c, nil)

	return nil
}

func (s *Service) publish(ctx context.Context, t events.Type, c, successor *charge.Charge) {
	if err := s.publisher.Publish(ctx, events.New(t, c, successor, s.now())); err != nil {
		slog.ErrorContext(ctx, "failed to publish event", "type", t, "charge_id", c.ID, "error", err)
	}
}

func applyPatch(c *charge.Charge, patch charge.Patch) *charge.Charge {
	cp := c.Clone()
	cp.Status = patch.Status
	cp.SettledAt = nil

	if patch.SettledAt != nil {
		cp.SettledAt = new(*patch.SettledAt)
	}

	return cp
}

func successorID(c *charge.Charge) any {
	if c == nil {
		return nil
	}

	return c.ID
}
