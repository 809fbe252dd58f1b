package schedule

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-BookingCalendar/internal/domain"
	"github.com/m04kA/SMC-BookingCalendar/pkg/dbmetrics"
	"github.com/m04kA/SMC-BookingCalendar/pkg/psqlbuilder"
)

// Repository репозиторий недельных расписаний.
// Одна строка на день недели: business_id, employee_id (NULL - расписание бизнеса),
// weekday, enabled, ranges (jsonb)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Get получает расписание бизнеса (employeeID = nil) или сотрудника
func (r *Repository) Get(ctx context.Context, businessID int64, employeeID *int64) (*domain.WeeklySchedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("weekday", "enabled", "ranges", "updated_at").
		From("weekly_schedules").
		Where(squirrel.Eq{"business_id": businessID}).
		Where(ownerCondition(employeeID)).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Get - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: Get - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	schedule := &domain.WeeklySchedule{
		BusinessID: businessID,
		EmployeeID: employeeID,
		Days:       make(map[domain.Weekday]domain.DaySchedule, len(domain.Weekdays)),
	}

	found := false
	for rows.Next() {
		var (
			weekday   string
			enabled   bool
			raw       []byte
			updatedAt sql.NullTime
		)
		if err := rows.Scan(&weekday, &enabled, &raw, &updatedAt); err != nil {
			return nil, fmt.Errorf("%w: Get - scan row: %v", ErrScanRow, err)
		}

		ranges, err := decodeRanges(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: Get - decode ranges for %s: %v", ErrScanRow, weekday, err)
		}

		schedule.Days[domain.Weekday(weekday)] = domain.DaySchedule{Enabled: enabled, Ranges: ranges}
		if updatedAt.Time.After(schedule.UpdatedAt) {
			schedule.UpdatedAt = updatedAt.Time
		}
		found = true
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: Get - rows error: %v", ErrScanRow, err)
	}

	if !found {
		return nil, ErrScheduleNotFound
	}

	return schedule, nil
}

// Replace заменяет расписание целиком.
// Вызывается внутри транзакции: удаление и вставка должны быть атомарны
func (r *Repository) Replace(ctx context.Context, schedule *domain.WeeklySchedule) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	deleteQuery, deleteArgs, err := psqlbuilder.Delete("weekly_schedules").
		Where(squirrel.Eq{"business_id": schedule.BusinessID}).
		Where(ownerCondition(schedule.EmployeeID)).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Replace - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return fmt.Errorf("%w: Replace - execute delete: %v", ErrExecQuery, err)
	}

	if schedule.UpdatedAt.IsZero() {
		schedule.UpdatedAt = time.Now().UTC()
	}

	insert := psqlbuilder.Insert("weekly_schedules").
		Columns("business_id", "employee_id", "weekday", "enabled", "ranges", "updated_at")

	for _, day := range domain.Weekdays {
		ds := schedule.Days[day]
		raw, err := encodeRanges(ds.Ranges)
		if err != nil {
			return fmt.Errorf("%w: Replace - %s: %v", ErrEncodeRanges, day, err)
		}
		insert = insert.Values(schedule.BusinessID, schedule.EmployeeID, string(day), ds.Enabled, raw, schedule.UpdatedAt)
	}

	insertQuery, insertArgs, err := insert.ToSql()
	if err != nil {
		return fmt.Errorf("%w: Replace - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return fmt.Errorf("%w: Replace - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

func ownerCondition(employeeID *int64) squirrel.Sqlizer {
	if employeeID == nil {
		return squirrel.Eq{"employee_id": nil}
	}
	return squirrel.Eq{"employee_id": *employeeID}
}
