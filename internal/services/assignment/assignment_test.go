package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/fithub/membership-service/internal/lib/apperr"
	"github.com/fithub/membership-service/internal/models"
	"github.com/fithub/membership-service/internal/services/notification"
	"github.com/fithub/membership-service/internal/storage/repository"
)

type memAssignments struct {
	rows   map[int64]models.PlanAssignment
	nextID int64
}

func (m *memAssignments) UpsertAssignment(_ context.Context, a models.PlanAssignment) (int64, error) {
	if prev, ok := m.rows[a.MemberID]; ok {
		a.ID = prev.ID
	} else {
		m.nextID++
		a.ID = m.nextID
	}
	m.rows[a.MemberID] = a
	return a.ID, nil
}

func (m *memAssignments) GetAssignment(_ context.Context, memberID int64) (*models.PlanAssignment, error) {
	a, ok := m.rows[memberID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &a, nil
}

func (m *memAssignments) DeleteAssignment(_ context.Context, memberID int64) (int64, error) {
	if _, ok := m.rows[memberID]; !ok {
		return 0, nil
	}
	delete(m.rows, memberID)
	return 1, nil
}

type catalogStub map[int64]models.Plan

func (c catalogStub) Get(_ context.Context, id int64) (*models.Plan, error) {
	p, ok := c[id]
	if !ok {
		return nil, apperr.New(apperr.NotFound, "Plan not found with id: %d", id)
	}
	return &p, nil
}

type MembersMock struct{ mock.Mock }

func (m *MembersMock) GetByID(ctx context.Context, id int64) (*models.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Member), args.Error(1)
}

type NotifierMock struct{ mock.Mock }

func (m *NotifierMock) Notify(ctx context.Context, ev models.NotificationEvent) notification.Result {
	m.Called(ctx, ev)
	return notification.Result{}
}

var (
	p1 = models.Plan{ID: 1, Name: "Strength 2w", Price: 0, DurationDays: 14}
	p2 = models.Plan{ID: 2, Name: "Cardio 4w", Price: 0, DurationDays: 28}
)

func newService(t *testing.T, today string) (*AssignmentService, *memAssignments, *NotifierMock) {
	t.Helper()
	repo := &memAssignments{rows: map[int64]models.PlanAssignment{}}
	members := new(MembersMock)
	members.On("GetByID", mock.Anything, int64(7)).
		Return(&models.Member{ID: 7, Name: "Bob", Phone: "+15550007"}, nil).Maybe()
	members.On("GetByID", mock.Anything, mock.Anything).Return(nil, errors.New("user not found")).Maybe()
	notifier := new(NotifierMock)
	notifier.On("Notify", mock.Anything, mock.Anything).Maybe()

	now, err := time.Parse(models.DateLayout, today)
	require.NoError(t, err)
	svc := NewAssignmentService(repo, catalogStub{p1.ID: p1, p2.ID: p2}, members, notifier,
		slog.New(slog.NewTextHandler(io.Discard, nil)), WithClock(func() time.Time { return now }))
	return svc, repo, notifier
}

func TestAssignPlan_Upsert(t *testing.T) {
	svc, repo, notifier := newService(t, "2025-01-05")
	ctx := context.Background()

	resp, err := svc.AssignPlan(ctx, 7, p1.ID, "2025-01-01")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01", resp.StartDate.String())
	assert.Equal(t, "2025-01-15", resp.EndDate.String())
	assert.False(t, resp.Expired)
	assert.Equal(t, 10, resp.DaysLeft)
	firstID := repo.rows[7].ID

	resp, err = svc.AssignPlan(ctx, 7, p2.ID, "2025-02-01")
	require.NoError(t, err)
	assert.Equal(t, p2.ID, resp.ID)
	assert.Equal(t, "2025-03-01", resp.EndDate.String())

	require.Len(t, repo.rows, 1)
	assert.Equal(t, firstID, repo.rows[7].ID)
	assert.Equal(t, p2.ID, repo.rows[7].Plan.ID)

	require.Len(t, notifier.Calls, 2)
	ev := notifier.Calls[1].Arguments.Get(1).(models.NotificationEvent)
	assert.Equal(t, models.NotificationPlanAssigned, ev.Type)
	assert.Equal(t, "Cardio 4w", ev.Params[models.ParamPlan])
	assert.Equal(t, "2025-02-01", ev.Params[models.ParamStart])
}

func TestAssignPlan_Errors(t *testing.T) {
	tests := []struct {
		name     string
		planID   int64
		start    string
		wantKind apperr.Kind
	}{
		{name: "неизвестный план", planID: 99, start: "2025-01-01", wantKind: apperr.NotFound},
		{name: "неверный формат даты", planID: p1.ID, start: "01-01-2025", wantKind: apperr.BadRequest},
		{name: "пустая дата", planID: p1.ID, start: "", wantKind: apperr.BadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, notifier := newService(t, "2025-01-05")
			_, err := svc.AssignPlan(context.Background(), 7, tt.planID, tt.start)
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, apperr.KindOf(err))
			assert.Empty(t, repo.rows)
			assert.Empty(t, notifier.Calls)
		})
	}
}

func TestAssignPlan_NotificationFailureIgnored(t *testing.T) {
	svc, repo, notifier := newService(t, "2025-01-05")

	resp, err := svc.AssignPlan(context.Background(), 8, p1.ID, "2025-01-01")
	require.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Len(t, repo.rows, 1)
	assert.Empty(t, notifier.Calls)
}

func TestGetPlanForMember(t *testing.T) {
	svc, _, _ := newService(t, "2025-01-20")
	ctx := context.Background()

	resp, err := svc.GetPlanForMember(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, resp)

	_, err = svc.AssignPlan(ctx, 7, p1.ID, "2025-01-01")
	require.NoError(t, err)

	resp, err = svc.GetPlanForMember(ctx, 7)
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "2025-01-15", resp.EndDate.String())
	assert.True(t, resp.Expired)
	assert.Zero(t, resp.DaysLeft)
}

func TestRemovePlanFromMember(t *testing.T) {
	svc, repo, _ := newService(t, "2025-01-05")
	ctx := context.Background()

	require.NoError(t, svc.RemovePlanFromMember(ctx, 7))

	_, err := svc.AssignPlan(ctx, 7, p1.ID, "2025-01-01")
	require.NoError(t, err)
	require.NoError(t, svc.RemovePlanFromMember(ctx, 7))
	assert.Empty(t, repo.rows)

	resp, err := svc.GetPlanForMember(ctx, 7)
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestGetPlanForMember_UsesServiceTimezone(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	tests := []struct {
		name        string
		now         time.Time
		wantExpired bool
		wantLeft    int
	}{
		// 2025-01-14 20:00Z это уже 15 января по Калькутте
		{name: "last day", now: time.Date(2025, 1, 14, 20, 0, 0, 0, time.UTC), wantLeft: 0},
		{name: "day after end", now: time.Date(2025, 1, 15, 20, 0, 0, 0, time.UTC), wantExpired: true},
		{name: "day before end", now: time.Date(2025, 1, 13, 20, 0, 0, 0, time.UTC), wantLeft: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &memAssignments{rows: map[int64]models.PlanAssignment{
				7: {ID: 1, MemberID: 7, Plan: p1, StartDate: models.NewDate(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))},
			}}
			now := tt.now.In(kolkata)
			svc := NewAssignmentService(repo, catalogStub{p1.ID: p1}, new(MembersMock), new(NotifierMock),
				slog.New(slog.NewTextHandler(io.Discard, nil)), WithClock(func() time.Time { return now }))

			resp, err := svc.GetPlanForMember(context.Background(), 7)
			require.NoError(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, "2025-01-15", resp.EndDate.String())
			assert.Equal(t, tt.wantExpired, resp.Expired)
			assert.Equal(t, tt.wantLeft, resp.DaysLeft)
		})
	}
}
