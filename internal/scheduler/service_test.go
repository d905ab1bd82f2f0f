package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carlosandre007/escala/internal/calendar"
	"github.com/carlosandre007/escala/internal/charge"
	"github.com/carlosandre007/escala/internal/events"
	"github.com/carlosandre007/escala/internal/recurrence"
	"github.com/carlosandre007/escala/internal/scheduler"
)

var fixedNow = time.Date(2024, time.March, 10, 14, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

// txRepo is a repository that also supports transactions.
type txRepo struct {
	*charge.MockRepository
	*charge.MockTransactor
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, e)

	return p.err
}

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []events.Type
	for _, e := range p.events {
		out = append(out, e.Type)
	}

	return out
}

func weeklyCharge() *charge.Charge {
	return &charge.Charge{
		ID:         uuid.New(),
		ClientName: "Ana",
		Reference:  "Aula de piano",
		Amount:     decimal.RequireFromString("100.00"),
		DueDate:    calendar.New(2024, time.March, 10),
		Status:     charge.StatusPending,
		Recurrence: recurrence.Rule{Recurring: true, Frequency: recurrence.Weekly},
	}
}

func oneOffCharge() *charge.Charge {
	c := weeklyCharge()
	c.Recurrence = recurrence.Rule{Frequency: recurrence.None}

	return c
}

func settledCharge() *charge.Charge {
	c := weeklyCharge()
	c.Status = charge.StatusSettled
	c.SettledAt = new(fixedNow.Add(-time.Hour))

	return c
}

func settlePatch() charge.Patch {
	return charge.Patch{
		Status:    charge.StatusSettled,
		SettledAt: new(fixedNow),
		From:      charge.StatusPending,
	}
}

func unsettlePatch() charge.Patch {
	return charge.Patch{Status: charge.StatusPending, From: charge.StatusSettled}
}

func TestService_Settle(t *testing.T) {
	type testCase struct {
		name            string
		charge          *charge.Charge
		setupMock       func(m *charge.MockRepository, c *charge.Charge)
		wantErr         error
		wantPartial     bool
		wantChanged     bool
		wantSuccessorOn *calendar.Date
		wantReused      bool
	}

	tests := []testCase{
		{
			name:   "OneOffChargeOnlyUpdates",
			charge: oneOffCharge(),
			setupMock: func(m *charge.MockRepository, c *charge.Charge) {
				m.EXPECT().Get(gomock.Any(), c.ID).Return(c, nil)
				m.EXPECT().Update(gomock.Any(), c.ID, settlePatch()).Return(nil)
			},
			wantChanged: true,
		},
		{
			name:   "WeeklyInsertsSuccessorBeforeUpdate",
			charge: weeklyCharge(),
			setupMock: func(m *charge.MockRepository, c *charge.Charge) {
				gomock.InOrder(
					m.EXPECT().Get(gomock.Any(), c.ID).Return(c, nil),
					m.EXPECT().FindSuccessor(gomock.Any(), c.ID).Return(nil, charge.ErrNotFound),
					m.EXPECT().
						Insert(gomock.Any(), gomock.Any()).
						DoAndReturn(func(_ context.Context, succ *charge.Charge) error {
							require.NotNil(t, succ.PredecessorID)
							assert.Equal(t, c.ID, *succ.PredecessorID)
							assert.Equal(t, charge.StatusPending, succ.Status)
							assert.Nil(t, succ.SettledAt)
							succ.ID = uuid.New()

							return nil
						}),
					m.EXPECT().Update(gomock.Any(), c.ID, settlePatch()).Return(nil),
				)
			},
			wantChanged:     true,
			wantSuccessorOn: new(calendar.New(2024, time.March, 17)),
		},
		{
			name:   "ReusesExistingSuccessor",
			charge: weeklyCharge(),
			setupMock: func(m *charge.MockRepository, c *charge.Charge) {
				existing := c.Successor()
				existing.ID = uuid.New()

				m.EXPECT().Get(gomock.Any(), c.ID).Return(c, nil)
				m.EXPECT().FindSuccessor(gomock.Any(), c.ID).Return(existing, nil)
				m.EXPECT().Update(gomock.Any(), c.ID, settlePatch()).Return(nil)
			},
			wantChanged:     true,
			wantSuccessorOn: new(calendar.New(2024, time.March, 17)),
			wantReused:      true,
		},
		{
			name:   "AlreadySettledIsNoOp",
			charge: settledCharge(),
			setupMock: func(m *charge.MockRepository, c *charge.Charge) {
				m.EXPECT().Get(gomock.Any(), c.ID).Return(c, nil)
			},
			wantChanged: false,
		},
		{
			name:   "NotFound",
			charge: weeklyCharge(),
			setupMock: func(m *charge.MockRepository, c *charge.Charge) {
				m.EXPECT().Get(gomock.Any(), c.ID).Return(nil, charge.ErrNotFound)
			},
			wantErr: charge.ErrNotFound,
		},
		{
			name:   "InsertFailsLeavesChargeUntouched",
			charge: weeklyCharge(),
			setupMock: func(m *charge.MockRepository, c *charge.Charge) {
				m.EXPECT().Get(gomock.Any(), c.ID).Return(c, nil)
				m.EXPECT().FindSuccessor(gomock.Any(), c.ID).Return(nil, charge.ErrNotFound)
				m.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
		{
			name:   "UpdateFailsAfterInsertReportsPartialWrite",
			charge: weeklyCharge(),
			setupMock: func(m *charge.MockRepository, c *charge.Charge) {
				m.EXPECT().Get(gomock.Any(), c.ID).Return(c, nil)
				m.EXPECT().FindSuccessor(gomock.Any(), c.ID).Return(nil, charge.ErrNotFound)
				m.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, succ *charge.Charge) error {
						succ.ID = uuid.New()
						return nil
					})
				m.EXPECT().Update(gomock.Any(), c.ID, settlePatch()).Return(charge.ErrConflict)
			},
			wantErr:     charge.ErrConflict,
			wantPartial: true,
		},
		{
			name:   "UpdateConflictOnOneOff",
			charge: oneOffCharge(),
			setupMock: func(m *charge.MockRepository, c *charge.Charge) {
				m.EXPECT().Get(gomock.Any(), c.ID).Return(c, nil)
				m.EXPECT().Update(gomock.Any(), c.ID, settlePatch()).Return(charge.ErrConflict)
			},
			wantErr: charge.ErrConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := charge.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo, tt.charge)
			}

			pub := &recordingPublisher{}
			svc := scheduler.NewService(repo, scheduler.WithClock(clock), scheduler.WithPublisher(pub))

			got, err := svc.Settle(context.Background(), tt.charge.ID)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, got)
				assert.Empty(t, pub.types())

				if errors.Is(tt.wantErr, charge.ErrNotFound) || errors.Is(tt.wantErr, charge.ErrConflict) {
					assert.ErrorIs(t, err, tt.wantErr)
				}

				var partial *scheduler.PartialWriteError

				assert.Equal(t, tt.wantPartial, errors.As(err, &partial))

				if tt.wantPartial {
					assert.Equal(t, scheduler.OpSettle, partial.Op)
					assert.False(t, partial.ChargeWritten)
					assert.NotEqual(t, uuid.Nil, partial.SuccessorID)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantChanged, got.Changed)
			assert.Equal(t, charge.StatusSettled, got.Charge.Status)
			assert.Equal(t, tt.wantReused, got.SuccessorReused)

			if tt.wantSuccessorOn == nil {
				assert.Nil(t, got.Successor)
			} else {
				require.NotNil(t, got.Successor)
				assert.Equal(t, *tt.wantSuccessorOn, got.Successor.DueDate)
			}

			if tt.wantChanged {
				require.NotNil(t, got.Charge.SettledAt)
				assert.Equal(t, fixedNow, *got.Charge.SettledAt)
				assert.Equal(t, []events.Type{events.TypeSettled}, pub.types())
			} else {
				assert.Empty(t, pub.types())
			}
		})
	}
}

func TestService_SettleTransactional(t *testing.T) {
	type testCase struct {
		name      string
		charge    *charge.Charge
		setupMock func(tr *charge.MockTransactor, tx *charge.MockTx, c *charge.Charge)
		wantErr   bool
	}

	tests := []testCase{
		{
			name:   "CommitsUpdateAndSuccessorTogether",
			charge: weeklyCharge(),
			setupMock: func(tr *charge.MockTransactor, tx *charge.MockTx, c *charge.Charge) {
				tr.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				gomock.InOrder(
					tx.EXPECT().Update(gomock.Any(), c.ID, settlePatch()).Return(nil),
					tx.EXPECT().FindSuccessor(gomock.Any(), c.ID).Return(nil, charge.ErrNotFound),
					tx.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil),
					tx.EXPECT().Commit().Return(nil),
				)
				tx.EXPECT().Rollback().AnyTimes()
			},
		},
		{
			name:   "InsertFailureRollsBack",
			charge: weeklyCharge(),
			setupMock: func(tr *charge.MockTransactor, tx *charge.MockTx, c *charge.Charge) {
				tr.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().Update(gomock.Any(), c.ID, settlePatch()).Return(nil)
				tx.EXPECT().FindSuccessor(gomock.Any(), c.ID).Return(nil, charge.ErrNotFound)
				tx.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(errors.New("unique violation"))
				tx.EXPECT().Commit().Times(0)
				tx.EXPECT().Rollback().Times(1)
			},
			wantErr: true,
		},
		{
			name:   "ConflictSkipsSuccessor",
			charge: weeklyCharge(),
			setupMock: func(tr *charge.MockTransactor, tx *charge.MockTx, c *charge.Charge) {
				tr.EXPECT().Begin(gomock.Any()).Return(tx, nil)
				tx.EXPECT().Update(gomock.Any(), c.ID, settlePatch()).Return(charge.ErrConflict)
				tx.EXPECT().Rollback().Times(1)
			},
			wantErr: true,
		},
		{
			name:   "BeginFails",
			charge: weeklyCharge(),
			setupMock: func(tr *charge.MockTransactor, _ *charge.MockTx, _ *charge.Charge) {
				tr.EXPECT().Begin(gomock.Any()).Return(nil, errors.New("connection refused"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := charge.NewMockRepository(ctrl)
			tr := charge.NewMockTransactor(ctrl)
			tx := charge.NewMockTx(ctrl)

			repo.EXPECT().Get(gomock.Any(), tt.charge.ID).Return(tt.charge, nil)
			tt.setupMock(tr, tx, tt.charge)

			svc := scheduler.NewService(txRepo{repo, tr}, scheduler.WithClock(clock))

			got, err := svc.Settle(context.Background(), tt.charge.ID)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)

				var partial *scheduler.PartialWriteError

				assert.False(t, errors.As(err, &partial))

				return
			}

			require.NoError(t, err)
			assert.True(t, got.Changed)
			require.NotNil(t, got.Successor)
			assert.Equal(t, calendar.New(2024, time.March, 17), got.Successor.DueDate)
		})
	}
}

func TestService_Unsettle(t *testing.T) {
	pendingSuccessor := func(c *charge.Charge) *charge.Charge {
		s := c.Successor()
		s.ID = uuid.New()

		return s
	}

	type testCase struct {
		name          string
		policy        scheduler.SuccessorPolicy
		charge        *charge.Charge
		transactional bool
		setupMock     func(m *charge.MockRepository, tx *charge.MockTx, c *charge.Charge)
		wantChanged   bool
		wantRetracted bool
		wantPartial   bool
		wantErr       bool
	}

	tests := []testCase{
		{
			name:   "PendingIsNoOp",
			policy: scheduler.PolicyLeave,
			charge: weeklyCharge(),
			setupMock: func(m *charge.MockRepository, _ *charge.MockTx, c *charge.Charge) {
				m.EXPECT().Get(gomock.Any(), c.ID).Return(c, nil)
			},
		},
		{
			name:   "LeaveKeepsSuccessor",
			policy: scheduler.PolicyLeave,
			charge: settledCharge(),
			setupMock: func(m *charge.MockRepository, _ *charge.MockTx, c *charge.Charge) {
				m.EXPECT().Get(gomock.Any(), c.ID).Return(c, nil)
				m.EXPECT().Update(gomock.Any(), c.ID, unsettlePatch()).Return(nil)
				m.EXPECT().FindSuccessor(gomock.Any(), c.ID).Return(pendingSuccessor(c), nil)
				m.EXPECT().Delete(gomock.Any(), gomock.Any()).Times(0)
			},
			wantChanged: true,
		},
		{
			name:   "RetractDeletesPendingSuccessor",
			policy: scheduler.PolicyRetract,
			charge: settledCharge(),
			setupMock: func(m *charge.MockRepository, _ *charge.MockTx, c *charge.Charge) {
				succ := pendingSuccessor(c)

				m.EXPECT().Get(gomock.Any(), c.ID).Return(c, nil)
				m.EXPECT().Update(gomock.Any(), c.ID, unsettlePatch()).Return(nil)
				m.EXPECT().FindSuccessor(gomock.Any(), c.ID).Return(succ, nil)
				m.EXPECT().Delete(gomock.Any(), succ.ID).Return(nil)
			},
			wantChanged:   true,
			wantRetracted: true,
		},
		{
			name:   "RetractKeepsSettledSuccessor",
			policy: scheduler.PolicyRetract,
			charge: settledCharge(),
			setupMock: func(m *charge.MockRepository, _ *charge.MockTx, c *charge.Charge) {
				succ := pendingSuccessor(c)
				succ.Status = charge.StatusSettled
				succ.SettledAt = new(fixedNow)

				m.EXPECT().Get(gomock.Any(), c.ID).Return(c, nil)
				m.EXPECT().Update(gomock.Any(), c.ID, unsettlePatch()).Return(nil)
				m.EXPECT().FindSuccessor(gomock.Any(), c.ID).Return(succ, nil)
			},
			wantChanged: true,
		},
		{
			name:   "RetractDeleteFailureReportsPartialWrite",
			policy: scheduler.PolicyRetract,
			charge: settledCharge(),
			setupMock: func(m *charge.MockRepository, _ *charge.MockTx, c *charge.Charge) {
				succ := pendingSuccessor(c)

				m.EXPECT().Get(gomock.Any(), c.ID).Return(c, nil)
				m.EXPECT().Update(gomock.Any(), c.ID, unsettlePatch()).Return(nil)
				m.EXPECT().FindSuccessor(gomock.Any(), c.ID).Return(succ, nil)
				m.EXPECT().Delete(gomock.Any(), succ.ID).Return(errors.New("db error"))
			},
			wantErr:     true,
			wantPartial: true,
		},
		{
			name:          "RetractInTransaction",
			policy:        scheduler.PolicyRetract,
			charge:        settledCharge(),
			transactional: true,
			setupMock: func(m *charge.MockRepository, tx *charge.MockTx, c *charge.Charge) {
				succ := pendingSuccessor(c)

				m.EXPECT().Get(gomock.Any(), c.ID).Return(c, nil)
				gomock.InOrder(
					tx.EXPECT().Update(gomock.Any(), c.ID, unsettlePatch()).Return(nil),
					tx.EXPECT().FindSuccessor(gomock.Any(), c.ID).Return(succ, nil),
					tx.EXPECT().Delete(gomock.Any(), succ.ID).Return(nil),
					tx.EXPECT().Commit().Return(nil),
				)
				tx.EXPECT().Rollback().AnyTimes()
			},
			wantChanged:   true,
			wantRetracted: true,
		},
		{
			name:          "ConflictInTransaction",
			policy:        scheduler.PolicyLeave,
			charge:        settledCharge(),
			transactional: true,
			setupMock: func(m *charge.MockRepository, tx *charge.MockTx, c *charge.Charge) {
				m.EXPECT().Get(gomock.Any(), c.ID).Return(c, nil)
				tx.EXPECT().Update(gomock.Any(), c.ID, unsettlePatch()).Return(charge.ErrConflict)
				tx.EXPECT().Rollback().Times(1)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := charge.NewMockRepository(ctrl)
			tx := charge.NewMockTx(ctrl)
			tt.setupMock(repo, tx, tt.charge)

			var store charge.Repository = repo

			if tt.transactional {
				tr := charge.NewMockTransactor(ctrl)
				tr.EXPECT().Begin(gomock.Any()).Return(tx, nil).MaxTimes(1)
				store = txRepo{repo, tr}
			}

			pub := &recordingPublisher{}
			svc := scheduler.NewService(store,
				scheduler.WithClock(clock),
				scheduler.WithPublisher(pub),
				scheduler.WithSuccessorPolicy(tt.policy),
			)

			got, err := svc.Unsettle(context.Background(), tt.charge.ID)
			if tt.wantErr {
				require.Error(t, err)

				var partial *scheduler.PartialWriteError

				assert.Equal(t, tt.wantPartial, errors.As(err, &partial))

				if tt.wantPartial {
					assert.True(t, partial.ChargeWritten)
					assert.Equal(t, scheduler.OpUnsettle, partial.Op)
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantChanged, got.Changed)
			assert.Equal(t, tt.wantRetracted, got.Retracted)
			assert.Equal(t, charge.StatusPending, got.Charge.Status)
			assert.Nil(t, got.Charge.SettledAt)

			if tt.wantChanged {
				assert.Equal(t, []events.Type{events.TypeUnsettled}, pub.types())
			} else {
				assert.Empty(t, pub.types())
			}
		})
	}
}

func TestService_Delete(t *testing.T) {
	type testCase struct {
		name       string
		setupMock  func(m *charge.MockRepository, c *charge.Charge)
		wantErr    bool
		wantEvents []events.Type
	}

	tests := []testCase{
		{
			name: "Success",
			setupMock: func(m *charge.MockRepository, c *charge.Charge) {
				m.EXPECT().Get(gomock.Any(), c.ID).Return(c, nil)
				m.EXPECT().Delete(gomock.Any(), c.ID).Return(nil)
			},
			wantEvents: []events.Type{events.TypeDeleted},
		},
		{
			name: "MissingIsNotAnError",
			setupMock: func(m *charge.MockRepository, c *charge.Charge) {
				m.EXPECT().Get(gomock.Any(), c.ID).Return(nil, charge.ErrNotFound)
			},
		},
		{
			name: "RepoError",
			setupMock: func(m *charge.MockRepository, c *charge.Charge) {
				m.EXPECT().Get(gomock.Any(), c.ID).Return(c, nil)
				m.EXPECT().Delete(gomock.Any(), c.ID).Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			c := weeklyCharge()
			repo := charge.NewMockRepository(ctrl)
			tt.setupMock(repo, c)

			pub := &recordingPublisher{}
			svc := scheduler.NewService(repo, scheduler.WithPublisher(pub))

			err := svc.Delete(context.Background(), c.ID)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Empty(t, pub.types())

				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.wantEvents, pub.types())
		})
	}
}

func TestService_Create(t *testing.T) {
	type testCase struct {
		name      string
		params    charge.CreateParams
		setupMock func(m *charge.MockRepository)
		wantErr   error
	}

	valid := charge.CreateParams{
		ClientName: " Ana ",
		Reference:  "Aula",
		Amount:     decimal.RequireFromString("100.00"),
		DueDate:    calendar.New(2024, time.March, 10),
		Recurrence: recurrence.Rule{Recurring: true, Frequency: recurrence.Weekly},
	}

	tests := []testCase{
		{
			name:   "Success",
			params: valid,
			setupMock: func(m *charge.MockRepository) {
				m.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, c *charge.Charge) error {
						assert.Equal(t, "Ana", c.ClientName)
						assert.Equal(t, charge.StatusPending, c.Status)
						c.ID = uuid.New()

						return nil
					})
			},
		},
		{
			name:    "InvalidNeverReachesStore",
			params:  charge.CreateParams{Reference: "Aula", DueDate: valid.DueDate},
			wantErr: charge.ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := charge.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := scheduler.NewService(repo)

			got, err := svc.Create(context.Background(), tt.params)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)

				return
			}

			require.NoError(t, err)
			assert.NotEqual(t, uuid.Nil, got.ID)
		})
	}
}

func TestService_PublishFailureDoesNotFailSettle(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	c := oneOffCharge()
	repo := charge.NewMockRepository(ctrl)
	repo.EXPECT().Get(gomock.Any(), c.ID).Return(c, nil)
	repo.EXPECT().Update(gomock.Any(), c.ID, settlePatch()).Return(nil)

	pub := &recordingPublisher{err: errors.New("broker down")}
	svc := scheduler.NewService(repo, scheduler.WithClock(clock), scheduler.WithPublisher(pub))

	got, err := svc.Settle(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, got.Changed)
	assert.Len(t, pub.types(), 1)
}

func TestParseSuccessorPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    scheduler.SuccessorPolicy
		wantErr bool
	}{
		{in: "", want: scheduler.PolicyLeave},
		{in: "leave", want: scheduler.PolicyLeave},
		{in: " Retract ", want: scheduler.PolicyRetract},
		{in: "cascade", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := scheduler.ParseSuccessorPolicy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_Today(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	// 01:30 UTC on the 11th is still the 10th in São Paulo.
	svc := scheduler.NewService(nil,
		scheduler.WithLocation(loc),
		scheduler.WithClock(func() time.Time { return time.Date(2024, time.March, 11, 1, 30, 0, 0, time.UTC) }),
	)

	assert.Equal(t, calendar.New(2024, time.March, 10), svc.Today())
}
