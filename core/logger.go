package core

// Logger is the app-wide logging contract. Implementations live in services/logger.
//
// expected args: error, map[string]interface{} or any other context values
type Logger interface {
	Enable(enabled bool)
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, err error, args ...interface{})
}
