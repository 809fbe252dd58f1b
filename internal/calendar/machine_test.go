package calendar

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	"github.com/m04kA/SMC-BookingCalendar/internal/integrations/calendarapi"
	"github.com/m04kA/SMC-BookingCalendar/pkg/ptr"
	"github.com/m04kA/SMC-BookingCalendar/pkg/types"
)

func TestStateMachine_SelectMonth(t *testing.T) {
	c := newTestCalendar(t, newFakeAPI(), defaultScope())

	require.NoError(t, c.machine.SelectMonth(context.Background(), 2026, time.March))

	view := c.store.View()
	assert.Equal(t, PhaseMonthSelected, view.Phase)
	assert.False(t, view.MonthLoading)
	require.Len(t, view.Days, 31)
	assert.True(t, view.Days[1].Available)
	assert.Len(t, view.Days[1].Slots, 6)
	assert.False(t, view.Days[2].Open)
	assert.Len(t, view.Days[3].Slots, 2)
}

func TestStateMachine_SelectMonth_InvalidMonth(t *testing.T) {
	c := newTestCalendar(t, newFakeAPI(), defaultScope())

	err := c.machine.SelectMonth(context.Background(), 2026, 13)

	require.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, PhaseIdle, c.store.View().Phase)
}

func TestStateMachine_SelectMonth_KeepsDateInsideMonth(t *testing.T) {
	ctx := context.Background()
	c := newTestCalendar(t, newFakeAPI(), defaultScope())
	require.NoError(t, c.machine.SelectMonth(ctx, 2026, time.March))
	require.NoError(t, c.machine.SelectDay(ctx, march(2)))

	require.NoError(t, c.machine.SelectMonth(ctx, 2026, time.March))
	view := c.store.View()
	require.NotNil(t, view.Selection.Date)
	assert.Equal(t, march(2), *view.Selection.Date)

	require.NoError(t, c.machine.SelectMonth(ctx, 2026, time.April))
	view = c.store.View()
	assert.Nil(t, view.Selection.Date)
	assert.Nil(t, view.Selection.Time)
	assert.Equal(t, PhaseMonthSelected, view.Phase)
	assert.Len(t, view.Days, 30)
}

func TestStateMachine_SelectEmployee_ClearsDateAndTime(t *testing.T) {
	ctx := context.Background()

	t.Run("from time selected", func(t *testing.T) {
		c := newTestCalendar(t, newFakeAPI(), defaultScope())
		require.NoError(t, c.machine.SelectMonth(ctx, 2026, time.March))
		require.NoError(t, c.machine.SelectDay(ctx, march(2)))
		require.NoError(t, c.machine.SelectTime("10:00"))

		require.NoError(t, c.machine.SelectEmployee(ctx, ptr.Ptr(int64(7))))

		view := c.store.View()
		assert.Nil(t, view.Selection.Date)
		assert.Nil(t, view.Selection.Time)
		assert.Equal(t, int64(7), *view.Selection.EmployeeID)
		assert.Equal(t, PhaseMonthSelected, view.Phase)
		assert.Len(t, view.Days, 31)
	})

	t.Run("from idle", func(t *testing.T) {
		c := newTestCalendar(t, newFakeAPI(), defaultScope())

		require.NoError(t, c.machine.SelectEmployee(ctx, ptr.Ptr(int64(7))))

		view := c.store.View()
		assert.Nil(t, view.Selection.Date)
		assert.Nil(t, view.Selection.Time)
		assert.Equal(t, PhaseIdle, view.Phase)
		_, month, _ := c.api.counts()
		assert.Zero(t, month)
	})
}

func TestStateMachine_SelectEmployee_Rules(t *testing.T) {
	ctx := context.Background()
	scope := defaultScope()
	scope.AssignedEmployeeIDs = []int64{7, 8}
	scope.RequireEmployee = true
	c := newTestCalendar(t, newFakeAPI(), scope)
	require.NoError(t, c.machine.SelectMonth(ctx, 2026, time.March))

	require.ErrorIs(t, c.machine.SelectEmployee(ctx, ptr.Ptr(int64(9))), ErrEmployeeNotAssigned)
	require.ErrorIs(t, c.machine.SelectEmployee(ctx, nil), ErrEmployeeRequired)
	require.ErrorIs(t, c.machine.SelectDay(ctx, march(2)), ErrEmployeeRequired)

	require.NoError(t, c.machine.SelectEmployee(ctx, ptr.Ptr(int64(8))))
	require.NoError(t, c.machine.SelectDay(ctx, march(2)))
}

func TestStateMachine_SelectDay_RejectedLeavesStateUnchanged(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	api.book(march(9), "09:00", "12:00")
	c := newTestCalendar(t, api, defaultScope())
	require.NoError(t, c.machine.SelectMonth(ctx, 2026, time.March))
	require.NoError(t, c.machine.SelectDay(ctx, march(2)))
	require.NoError(t, c.machine.SelectTime("09:30"))

	before := c.store.View()

	tests := []struct {
		name    string
		date    time.Time
		wantErr error
	}{
		{name: "outside loaded month", date: time.Date(2026, time.April, 6, 0, 0, 0, 0, time.UTC), wantErr: ErrDayNotAvailable},
		{name: "closed weekday", date: march(3), wantErr: ErrScheduleUnavailable},
		{name: "fully booked", date: march(9), wantErr: ErrDayNotAvailable},
		{name: "weekday absent from schedule", date: march(5), wantErr: ErrScheduleUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.machine.SelectDay(ctx, tt.date)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, c.store.View())
		})
	}
}

func TestStateMachine_SelectDay_BeforeMonthLoaded(t *testing.T) {
	c := newTestCalendar(t, newFakeAPI(), defaultScope())

	err := c.machine.SelectDay(context.Background(), march(2))

	require.ErrorIs(t, err, ErrDayNotAvailable)
	assert.Equal(t, PhaseIdle, c.store.View().Phase)
}

func TestStateMachine_SelectDay_RefreshesDay(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	c := newTestCalendar(t, api, defaultScope())
	require.NoError(t, c.machine.SelectMonth(ctx, 2026, time.March))

	// Бронирование появилось после загрузки месяца
	api.book(march(2), "10:00", "10:30")
	require.NoError(t, c.machine.SelectDay(ctx, march(2)))

	view := c.store.View()
	assert.Equal(t, PhaseDaySelected, view.Phase)
	assert.False(t, view.DayLoading)
	assert.NotContains(t, view.Slots, types.TimeString("10:00"))
	assert.Len(t, view.Slots, 5)
	assert.Equal(t, view.Slots, view.Days[1].Slots)
}

func TestStateMachine_SelectTime(t *testing.T) {
	ctx := context.Background()
	c := newTestCalendar(t, newFakeAPI(), defaultScope())

	require.ErrorIs(t, c.machine.SelectTime("10:00"), ErrNoDaySelected)

	require.NoError(t, c.machine.SelectMonth(ctx, 2026, time.March))
	require.NoError(t, c.machine.SelectDay(ctx, march(2)))

	require.ErrorIs(t, c.machine.SelectTime("12:00"), ErrTimeNotAvailable)
	require.ErrorIs(t, c.machine.SelectTime("10:15"), ErrTimeNotAvailable)
	assert.Nil(t, c.store.View().Selection.Time)

	require.NoError(t, c.machine.SelectTime("11:30"))
	view := c.store.View()
	assert.Equal(t, PhaseTimeSelected, view.Phase)
	assert.Equal(t, types.TimeString("11:30"), *view.Selection.Time)

	// Новый день сбрасывает время
	require.NoError(t, c.machine.SelectDay(ctx, march(4)))
	assert.Nil(t, c.store.View().Selection.Time)
}

func TestStateMachine_StaleDayResponseDiscarded(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	api.book(march(9), "09:00", "09:30")
	c := newTestCalendar(t, api, defaultScope())
	require.NoError(t, c.machine.SelectMonth(ctx, 2026, time.March))

	gate := api.gate(march(2))
	firstDone := make(chan error, 1)
	go func() {
		firstDone <- c.machine.SelectDay(ctx, march(2))
	}()
	require.Equal(t, "2026-03-02", <-api.started)

	// Второй запрос отвечает раньше первого
	require.NoError(t, c.machine.SelectDay(ctx, march(9)))
	close(gate)
	require.NoError(t, <-firstDone)

	view := c.store.View()
	require.NotNil(t, view.Selection.Date)
	assert.Equal(t, march(9), *view.Selection.Date)
	assert.Equal(t, []types.TimeString{"09:30", "10:00", "10:30", "11:00", "11:30"}, view.Slots)
	assert.False(t, view.DayLoading)
	assert.NoError(t, view.Err)
}

func TestStateMachine_FetchTimeout(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	c := newTestCalendar(t, api, defaultScope(), WithFetchTimeout(30*time.Millisecond))
	require.NoError(t, c.machine.SelectMonth(ctx, 2026, time.March))

	api.gate(march(2))
	err := c.machine.SelectDay(ctx, march(2))

	require.ErrorIs(t, err, ErrFetchFailed)
	view := c.store.View()
	require.ErrorIs(t, view.Err, ErrFetchFailed)
	assert.False(t, view.DayLoading)
	// Таймаут - это ошибка загрузки, а не "нет слотов"
	assert.NotEmpty(t, view.Slots)

	api.ungate(march(2))
	require.NoError(t, c.machine.Retry(ctx))
	view = c.store.View()
	assert.NoError(t, view.Err)
	assert.Len(t, view.Slots, 6)
}

func TestStateMachine_MonthFetchFailureAndRetry(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	api.setIntervalsErr(errors.New("connection refused"))
	c := newTestCalendar(t, api, defaultScope())

	err := c.machine.SelectMonth(ctx, 2026, time.March)

	require.ErrorIs(t, err, ErrFetchFailed)
	view := c.store.View()
	require.ErrorIs(t, view.Err, ErrFetchFailed)
	assert.Nil(t, view.Days)
	assert.False(t, view.MonthLoading)

	api.setIntervalsErr(nil)
	require.NoError(t, c.machine.Retry(ctx))
	view = c.store.View()
	assert.NoError(t, view.Err)
	assert.Len(t, view.Days, 31)

	// Повторять больше нечего
	require.NoError(t, c.machine.Retry(ctx))
}

func TestStateMachine_ScheduleNotFoundMeansClosed(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	api.scheduleErr = calendarapi.ErrNotFound
	c := newTestCalendar(t, api, defaultScope())

	require.NoError(t, c.machine.SelectMonth(ctx, 2026, time.March))

	view := c.store.View()
	require.Len(t, view.Days, 31)
	for _, day := range view.Days {
		assert.False(t, day.Open)
	}
	require.ErrorIs(t, c.machine.SelectDay(ctx, march(2)), ErrScheduleUnavailable)
}

func TestStateMachine_ScheduleReusedWithinScope(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	c := newTestCalendar(t, api, defaultScope())

	require.NoError(t, c.machine.SelectMonth(ctx, 2026, time.March))
	require.NoError(t, c.machine.SelectMonth(ctx, 2026, time.April))
	schedule, month, _ := api.counts()
	assert.Equal(t, 1, schedule)
	assert.Equal(t, 2, month)

	require.NoError(t, c.machine.RefreshMonth(ctx))
	schedule, _, _ = api.counts()
	assert.Equal(t, 2, schedule)
}

func TestStateMachine_Reset(t *testing.T) {
	ctx := context.Background()
	c := newTestCalendar(t, newFakeAPI(), defaultScope())
	require.NoError(t, c.machine.SelectEmployee(ctx, ptr.Ptr(int64(3))))
	require.NoError(t, c.machine.SelectMonth(ctx, 2026, time.March))
	require.NoError(t, c.machine.SelectDay(ctx, march(2)))

	c.machine.Reset()

	view := c.store.View()
	assert.Equal(t, PhaseIdle, view.Phase)
	assert.Equal(t, domain.SelectionState{}, view.Selection)
	assert.Nil(t, view.Days)
	assert.Nil(t, view.Slots)
	assert.Zero(t, view.Year)
}

func TestStore_Subscribe(t *testing.T) {
	ctx := context.Background()
	c := newTestCalendar(t, newFakeAPI(), defaultScope())

	var views []View
	unsubscribe := c.store.Subscribe(func(v View) {
		views = append(views, v)
	})
	require.Len(t, views, 1)
	assert.Equal(t, PhaseIdle, views[0].Phase)

	require.NoError(t, c.machine.SelectMonth(ctx, 2026, time.March))
	require.GreaterOrEqual(t, len(views), 3)
	assert.True(t, views[1].MonthLoading)
	last := views[len(views)-1]
	assert.False(t, last.MonthLoading)
	assert.Len(t, last.Days, 31)
	for i := 1; i < len(views); i++ {
		assert.Greater(t, views[i].Version, views[i-1].Version)
	}

	// Снимок не разделяет память с хранилищем
	last.Days[1].Slots[0] = "00:00"
	assert.Equal(t, types.TimeString("09:00"), c.store.View().Days[1].Slots[0])

	unsubscribe()
	count := len(views)
	require.NoError(t, c.machine.SelectDay(ctx, march(2)))
	assert.Len(t, views, count)
}

func TestStateMachine_GetDayAvailability(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	api.book(time.Date(2026, time.April, 6, 0, 0, 0, 0, time.UTC), "09:00", "10:00")
	c := newTestCalendar(t, api, defaultScope())
	require.NoError(t, c.machine.SelectMonth(ctx, 2026, time.March))

	// Из индекса, без обращения к API
	_, _, daysBefore := api.counts()
	day, err := c.machine.GetDayAvailability(ctx, march(16))
	require.NoError(t, err)
	assert.Len(t, day.Slots, 6)
	_, _, daysAfter := api.counts()
	assert.Equal(t, daysBefore, daysAfter)

	// Другой месяц загружается, выбор не меняется
	day, err = c.machine.GetDayAvailability(ctx, time.Date(2026, time.April, 6, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"10:00", "10:30", "11:00", "11:30"}, day.Slots)
	view := c.store.View()
	assert.Equal(t, time.March, view.Month)
	assert.Nil(t, view.Selection.Date)

	// Повторный запрос берётся из кэша
	_, _, daysBefore = api.counts()
	_, err = c.machine.GetDayAvailability(ctx, time.Date(2026, time.April, 6, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, _, daysAfter = api.counts()
	assert.Equal(t, daysBefore, daysAfter)
}

func TestStateMachine_GetMonthAvailability(t *testing.T) {
	ctx := context.Background()
	api := newFakeAPI()
	c := newTestCalendar(t, api, defaultScope())
	require.NoError(t, c.machine.SelectMonth(ctx, 2026, time.March))

	days, err := c.machine.GetMonthAvailability(ctx, 2026, time.March)
	require.NoError(t, err)
	assert.Len(t, days, 31)

	days, err = c.machine.GetMonthAvailability(ctx, 2026, time.February)
	require.NoError(t, err)
	assert.Len(t, days, 28)
	// Февраль целиком в прошлом относительно часов теста
	for _, day := range days {
		assert.False(t, day.Available)
	}
	assert.Equal(t, time.March, c.store.View().Month)

	api.setIntervalsErr(errors.New("boom"))
	_, err = c.machine.GetMonthAvailability(ctx, 2026, time.May)
	require.ErrorIs(t, err, ErrFetchFailed)
}

func TestStateMachine_ReadyDaysFollowClock(t *testing.T) {
	ctx := context.Background()
	clock := &movingClock{now: time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)}
	api := newFakeAPI()
	c := newTestCalendar(t, api, defaultScope(), WithClock(clock))
	require.NoError(t, c.machine.SelectMonth(ctx, 2026, time.March))

	day, err := c.machine.GetDayAvailability(ctx, march(2))
	require.NoError(t, err)
	require.Len(t, day.Slots, 6)

	// День посчитан в 08:00; к 10:10 утренние слоты прошли
	clock.set(time.Date(2026, time.March, 2, 10, 10, 0, 0, time.UTC))
	_, _, daysBefore := api.counts()

	day, err = c.machine.GetDayAvailability(ctx, march(2))
	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"10:30", "11:00", "11:30"}, day.Slots)

	days, err := c.machine.GetMonthAvailability(ctx, 2026, time.March)
	require.NoError(t, err)
	assert.Equal(t, []types.TimeString{"10:30", "11:00", "11:30"}, days[1].Slots)

	// На следующий день вчерашние слоты больше не отдаются
	clock.set(time.Date(2026, time.March, 3, 8, 0, 0, 0, time.UTC))
	day, err = c.machine.GetDayAvailability(ctx, march(2))
	require.NoError(t, err)
	assert.Empty(t, day.Slots)
	assert.False(t, day.Available)

	_, _, daysAfter := api.counts()
	assert.Equal(t, daysBefore, daysAfter)
}
