package calendar

// LogNotifier пишет уведомления в лог (консольный клиент, тесты)
type LogNotifier struct {
	logger Logger
}

// NewLogNotifier создает уведомитель поверх логгера
func NewLogNotifier(logger Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) ShowSuccess(message string) {
	n.logger.Info("notify: %s", message)
}

func (n *LogNotifier) ShowError(message string) {
	n.logger.Error("notify: %s", message)
}

func (n *LogNotifier) ShowWarning(message string) {
	n.logger.Warn("notify: %s", message)
}

// StaticSession сессия с фиксированным пользователем
type StaticSession struct {
	ID       int64
	UserRole string
}

func (s StaticSession) UserID() int64 {
	return s.ID
}

func (s StaticSession) Role() string {
	return s.UserRole
}
