package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type LogLevel string

const (
	LevelInfo  LogLevel = "info"
	LevelWarn  LogLevel = "warn"
	LevelError LogLevel = "error"
)

var severity = map[LogLevel]int{LevelInfo: 0, LevelWarn: 1, LevelError: 2}

// ParseLevel maps a LOG_LEVEL value to a level; unknown values mean info.
func ParseLevel(s string) LogLevel {
	switch LogLevel(strings.ToLower(strings.TrimSpace(s))) {
	case LevelWarn, "warning":
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

type LogEntry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     LogLevel               `json:"level"`
	UserID    *string                `json:"user_id,omitempty"`
	Action    string                 `json:"action"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Error     string                 `json:"error,omitempty"`
	Caller    string                 `json:"caller,omitempty"`
}

// Logger writes one JSON object per line. Entries below min are dropped.
type Logger struct {
	mu     sync.Mutex
	output io.Writer
	min    LogLevel
	color  bool
}

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
)

func New(output io.Writer, min LogLevel) *Logger {
	if output == nil {
		output = os.Stdout
	}
	return &Logger{output: output, min: min, color: output == os.Stdout}
}

// Init installs the process logger writing to stdout.
func Init(level string) {
	setGlobal(New(os.Stdout, ParseLevel(level)))
}

// SetOutput replaces the process logger with one that writes every level to
// output; tests use it to capture or discard entries.
func SetOutput(output io.Writer) {
	setGlobal(New(output, LevelInfo))
}

func setGlobal(l *Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}

func emit(level LogLevel, action string, userID *string, details map[string]interface{}, err error) {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l != nil {
		l.log(level, action, userID, details, err)
	}
}

func (l *Logger) log(level LogLevel, action string, userID *string, details map[string]interface{}, err error) {
	if severity[level] < severity[l.min] {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().UTC(),
		Level:     level,
		UserID:    userID,
		Action:    action,
		Details:   details,
		Caller:    caller(),
	}
	if err != nil {
		entry.Error = err.Error()
	}

	data, _ := json.Marshal(entry)

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.color {
		fmt.Fprintf(l.output, "%s\n", data)
		return
	}

	colorCode := "\033[36m"
	switch level {
	case LevelError:
		colorCode = "\033[31m"
	case LevelWarn:
		colorCode = "\033[33m"
	}
	fmt.Fprintf(l.output, "%s%s\033[0m\n", colorCode, data)
}

func Info(action string, details map[string]interface{}) {
	emit(LevelInfo, action, nil, details, nil)
}

func InfoWithUser(userID string, action string, details map[string]interface{}) {
	emit(LevelInfo, action, &userID, details, nil)
}

func Warn(action string, details map[string]interface{}) {
	emit(LevelWarn, action, nil, details, nil)
}

func WarnWithUser(userID string, action string, details map[string]interface{}) {
	emit(LevelWarn, action, &userID, details, nil)
}

func Error(action string, err error, details map[string]interface{}) {
	emit(LevelError, action, nil, details, err)
}

func ErrorWithUser(userID string, action string, err error, details map[string]interface{}) {
	emit(LevelError, action, &userID, details, err)
}

// GetUserIDFromContext returns the account id the auth middleware stored on
// the request, if any.
func GetUserIDFromContext(c *fiber.Ctx) *string {
	if id, ok := c.Locals("userID").(string); ok {
		return &id
	}
	return nil
}

// caller skips log, emit and the exported wrapper.
func caller() string {
	if _, file, line, ok := runtime.Caller(4); ok {
		return fmt.Sprintf("%s:%d", file, line)
	}
	return ""
}

var sensitiveParams = []string{"token", "id", "auth"}

// RedactedQuery renders the request query string with credential-bearing
// parameters masked. Bearer and session tokens travel in the query string.
func RedactedQuery(c *fiber.Ctx) string {
	args := c.Request().URI().QueryArgs()
	if args.Len() == 0 {
		return ""
	}

	masked := make(map[string]string)
	args.VisitAll(func(key, value []byte) {
		masked[string(key)] = string(value)
	})
	for _, name := range sensitiveParams {
		if _, ok := masked[name]; ok {
			masked[name] = "[REDACTED]"
		}
	}

	data, err := json.Marshal(masked)
	if err != nil {
		return ""
	}
	return string(data)
}

// BodySummary describes a request or response body by type and size without
// logging its contents, e.g. "image/png (48213 bytes)". A negative size means
// the body was streamed with no declared length.
func BodySummary(size int, contentType string) string {
	if size == 0 {
		return "empty"
	}
	kind := contentType
	if i := strings.IndexByte(kind, ';'); i >= 0 {
		kind = kind[:i]
	}
	if kind == "" {
		kind = "unknown"
	}
	if size < 0 {
		return kind + " (streamed)"
	}
	return fmt.Sprintf("%s (%d bytes)", kind, size)
}

func GenerateRequestID() string {
	return uuid.NewString()
}
