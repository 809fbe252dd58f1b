package schedule

import "github.com/m04kA/SMC-BookingCalendar/pkg/dbmetrics"

// DBExecutor общий интерфейс для *dbmetrics.DB и транзакций
type DBExecutor = dbmetrics.DBExecutor
