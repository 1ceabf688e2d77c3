package util

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const LOG_BUFFER_SIZE = 1000

var ErrLogNotInitialized = errors.New("log object is not initialized yet")

const (
	LOG_LEVEL_ERROR = iota + 1
	LOG_LEVEL_WARN
	LOG_LEVEL_INFO
	LOG_LEVEL_DEBUG
)

// Logger hands entries to a single writer goroutine.
type Logger struct {
	mu                sync.RWMutex
	logBuffer         chan leveledEntry
	handle            *os.File
	wg                sync.WaitGroup
	loggerInitialized bool
	zapLogger         *zap.Logger
}

type leveledEntry struct {
	level  int
	msg    string
	fields []zap.Field
}

// Init opens (or creates) dir/logFileName and starts the writer.
func (m *Logger) Init(dir, logFileName string, level int, rewrite bool) error {
	CheckAndCreateLogFolder(dir)

	flags := os.O_RDWR | os.O_CREATE | os.O_APPEND
	if rewrite {
		flags = os.O_RDWR | os.O_CREATE | os.O_TRUNC
	}
	handle, err := os.OpenFile(filepath.Join(dir, logFileName), flags, 0666)
	if err != nil {
		return err
	}
	m.handle = handle
	m.start(zapcore.AddSync(handle), level)
	return nil
}

// InitWriter starts the logger on an arbitrary sink, e.g. os.Stderr or a test buffer.
func (m *Logger) InitWriter(w zapcore.WriteSyncer, level int) {
	m.start(w, level)
}

func (m *Logger) start(writer zapcore.WriteSyncer, level int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	config := zap.NewProductionEncoderConfig()
	config.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncodeLevel = zapcore.CapitalLevelEncoder
	encoder := zapcore.NewConsoleEncoder(config)

	m.zapLogger = zap.New(zapcore.NewCore(encoder, writer, ZapLevel(level)))
	m.logBuffer = make(chan leveledEntry, LOG_BUFFER_SIZE)

	m.wg.Add(1)
	go m.logWriter()

	m.loggerInitialized = true
}

func ZapLevel(level int) zapcore.Level {
	switch level {
	case LOG_LEVEL_ERROR:
		return zapcore.ErrorLevel
	case LOG_LEVEL_WARN:
		return zapcore.WarnLevel
	case LOG_LEVEL_DEBUG:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// ParseLevel maps a config string onto one of the LOG_LEVEL_* constants.
func ParseLevel(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LOG_LEVEL_ERROR, nil
	case "warn", "warning":
		return LOG_LEVEL_WARN, nil
	case "", "info":
		return LOG_LEVEL_INFO, nil
	case "debug":
		return LOG_LEVEL_DEBUG, nil
	}
	return 0, fmt.Errorf("unknown log level %q", s)
}

func (m *Logger) logWriter() {
	defer m.wg.Done()
	for entry := range m.logBuffer {
		switch entry.level {
		case LOG_LEVEL_ERROR:
			m.zapLogger.Error(entry.msg, entry.fields...)
		case LOG_LEVEL_WARN:
			m.zapLogger.Warn(entry.msg, entry.fields...)
		case LOG_LEVEL_DEBUG:
			m.zapLogger.Debug(entry.msg, entry.fields...)
		default:
			m.zapLogger.Info(entry.msg, entry.fields...)
		}
	}
	_ = m.zapLogger.Sync()
}

// Log queues one entry. A nil or uninitialized logger drops the entry and
// reports ErrLogNotInitialized.
func (m *Logger) Log(level int, msg string, fields ...zap.Field) error {
	if m == nil {
		return ErrLogNotInitialized
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.loggerInitialized {
		return ErrLogNotInitialized
	}
	m.logBuffer <- leveledEntry{level: level, msg: msg, fields: fields}
	return nil
}

func (m *Logger) Error(msg string, fields ...zap.Field) { m.Log(LOG_LEVEL_ERROR, msg, fields...) }
func (m *Logger) Warn(msg string, fields ...zap.Field)  { m.Log(LOG_LEVEL_WARN, msg, fields...) }
func (m *Logger) Info(msg string, fields ...zap.Field)  { m.Log(LOG_LEVEL_INFO, msg, fields...) }
func (m *Logger) Debug(msg string, fields ...zap.Field) { m.Log(LOG_LEVEL_DEBUG, msg, fields...) }

// DeInit flushes queued entries and closes the file, if any.
func (m *Logger) DeInit() {
	if m == nil {
		return
	}
	m.mu.Lock()
	if !m.loggerInitialized {
		m.mu.Unlock()
		return
	}
	m.loggerInitialized = false
	close(m.logBuffer)
	m.mu.Unlock()

	m.wg.Wait()

	if m.handle != nil {
		m.handle.Close()
		m.handle = nil
	}
}

func CheckAndCreateLogFolder(FolderNameWithPath string) {
	_, err := os.Stat(FolderNameWithPath)

	if os.IsNotExist(err) {
		err := os.MkdirAll(FolderNameWithPath, 0755)
		if err != nil {
			fmt.Println("Failed to create the log folder and Mkdir err :: ", err)
		}
	}
}
