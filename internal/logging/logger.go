package logging

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel определяет уровни логирования
type LogLevel int

const (
	TRACE LogLevel = iota
	DEBUG
	INFO
	WARN
	ERROR
)

// String возвращает строковое представление уровня логирования
func (l LogLevel) String() string {
	switch l {
	case TRACE:
		return "TRACE"
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel разбирает уровень из конфигурации ("debug", "INFO", ...).
// Пустая строка означает INFO.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "TRACE":
		return TRACE, nil
	case "DEBUG":
		return DEBUG, nil
	case "", "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARN, nil
	case "ERROR":
		return ERROR, nil
	default:
		return INFO, fmt.Errorf("неизвестный уровень логирования: %q", s)
	}
}

// toZapLevel переводит наш уровень в уровень zap. TRACE пишется как DEBUG с префиксом.
func toZapLevel(l LogLevel) zapcore.Level {
	switch l {
	case TRACE, DEBUG:
		return zapcore.DebugLevel
	case WARN:
		return zapcore.WarnLevel
	case ERROR:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Logger представляет логгер компонента поверх zap
type Logger struct {
	component string
	sugar     *zap.SugaredLogger
	level     zap.AtomicLevel
	minLevel  LogLevel
}

// NewLogger создаёт логгер компонента с консольным выводом в stderr
func NewLogger(component string) (*Logger, error) {
	return newLoggerAt(component, INFO)
}

func newLoggerAt(component string, level LogLevel) (*Logger, error) {
	atom := zap.NewAtomicLevelAt(toZapLevel(level))

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")

	cfg := zap.Config{
		Level:             atom,
		Development:       false,
		DisableCaller:     true,
		DisableStacktrace: true,
		Encoding:          "console",
		EncoderConfig:     encCfg,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
	}

	zl, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("ошибка создания zap логгера: %w", err)
	}

	return &Logger{
		component: component,
		sugar:     zl.Named(component).Sugar(),
		level:     atom,
		minLevel:  level,
	}, nil
}

// nopLogger используется до вызова InitDefaultLogger (например, в тестах)
func nopLogger(component string) *Logger {
	return &Logger{
		component: component,
		sugar:     zap.NewNop().Sugar(),
		level:     zap.NewAtomicLevelAt(zapcore.InfoLevel),
		minLevel:  INFO,
	}
}

// Component возвращает имя компонента
func (l *Logger) Component() string {
	return l.component
}

// SetLevel меняет минимальный уровень логгера на лету
func (l *Logger) SetLevel(level LogLevel) {
	l.minLevel = level
	l.level.SetLevel(toZapLevel(level))
}

func (l *Logger) Trace(format string, args ...interface{}) {
	if l.minLevel > TRACE {
		return
	}
	l.sugar.Debugf("[TRACE] "+format, args...)
}

func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}

// Close сбрасывает буферы zap
func (l *Logger) Close() error {
	err := l.sugar.Sync()
	// stderr на linux не поддерживает fsync, это не ошибка
	if err != nil && strings.Contains(err.Error(), os.Stderr.Name()) {
		return nil
	}
	return err
}

// Глобальный логгер процесса
var (
	defaultMu     sync.RWMutex
	defaultLogger = nopLogger("default")
)

// InitDefaultLogger инициализирует глобальный логгер для указанного компонента
func InitDefaultLogger(component string) error {
	logger, err := NewLogger(component)
	if err != nil {
		return err
	}

	defaultMu.Lock()
	defaultLogger = logger
	defaultMu.Unlock()
	return nil
}

// CloseDefaultLogger сбрасывает буферы глобального логгера
func CloseDefaultLogger() {
	defaultMu.RLock()
	logger := defaultLogger
	defaultMu.RUnlock()
	_ = logger.Close()
}

// SetDefaultLevel меняет уровень глобального логгера
func SetDefaultLevel(level LogLevel) {
	current().SetLevel(level)
}

func current() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}

// Trace логирует сообщение уровня TRACE
func Trace(format string, args ...interface{}) { current().Trace(format, args...) }

// Debug логирует сообщение уровня DEBUG
func Debug(format string, args ...interface{}) { current().Debug(format, args...) }

// Info логирует сообщение уровня INFO
func Info(format string, args ...interface{}) { current().Info(format, args...) }

// Warn логирует сообщение уровня WARN
func Warn(format string, args ...interface{}) { current().Warn(format, args...) }

// Error логирует сообщение уровня ERROR
func Error(format string, args ...interface{}) { current().Error(format, args...) }

// LogChunkQuery логирует запрос статистики чанка
func LogChunkQuery(player string, chunkX, chunkY int) {
	Debug("Chunk query from %s: chunk(%d,%d)", player, chunkX, chunkY)
}
