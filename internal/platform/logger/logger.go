package logger

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type Level int

const (
	Debug Level = iota
	Info
	Warn
	Error
)

func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return Debug
	case "info", "":
		return Info
	case "warn", "warning":
		return Warn
	case "error":
		return Error
	default:
		return Info
	}
}

func (l Level) String() string {
	switch l {
	case Debug:
		return "debug"
	case Info:
		return "info"
	case Warn:
		return "warn"
	case Error:
		return "error"
	default:
		return "info"
	}
}

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	default:
		return FormatText
	}
}

type Logger interface {
	With(fields map[string]any) Logger

	Debug(msg string, fields map[string]any)
	Info(msg string, fields map[string]any)
	Warn(msg string, fields map[string]any)
	Error(msg string, fields map[string]any)
}

// StdLogger escribe una línea por entrada, en texto (k=v ordenado) o JSON.
type StdLogger struct {
	mu     *sync.Mutex
	std    *log.Logger
	level  Level
	format Format
	base   map[string]any
}

type Options struct {
	Level  Level
	Format Format
	App    string

	// Output por defecto es os.Stdout.
	Output io.Writer
}

func New(opts Options) Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	base := map[string]any{}
	if app := strings.TrimSpace(opts.App); app != "" {
		base["app"] = app
	}

	format := opts.Format
	if format == "" {
		format = FormatText
	}

	return &StdLogger{
		mu:     &sync.Mutex{},
		std:    log.New(out, "", 0),
		level:  opts.Level,
		format: format,
		base:   base,
	}
}

// Nop descarta todo; útil en tests.
func Nop() Logger {
	return New(Options{Level: Error + 1, Output: io.Discard})
}

func (l *StdLogger) With(fields map[string]any) Logger {
	if len(fields) == 0 {
		return l
	}

	merged := make(map[string]any, len(l.base)+len(fields))
	for k, v := range l.base {
		merged[k] = v
	}
	for k, v := range fields {
		if strings.TrimSpace(k) == "" {
			continue
		}
		merged[k] = v
	}

	// comparte writer y mutex: las líneas de logs derivados no se intercalan
	return &StdLogger{
		mu:     l.mu,
		std:    l.std,
		level:  l.level,
		format: l.format,
		base:   merged,
	}
}

func (l *StdLogger) Debug(msg string, fields map[string]any) { l.log(Debug, msg, fields) }
func (l *StdLogger) Info(msg string, fields map[string]any)  { l.log(Info, msg, fields) }
func (l *StdLogger) Warn(msg string, fields map[string]any)  { l.log(Warn, msg, fields) }
func (l *StdLogger) Error(msg string, fields map[string]any) { l.log(Error, msg, fields) }

func (l *StdLogger) log(lvl Level, msg string, fields map[string]any) {
	if lvl < l.level {
		return
	}

	entry := map[string]any{
		"ts":    time.Now().Format(time.RFC3339Nano),
		"level": lvl.String(),
		"msg":   msg,
	}
	for k, v := range l.base {
		entry[k] = v
	}
	for k, v := range fields {
		if strings.TrimSpace(k) == "" {
			continue
		}
		if err, ok := v.(error); ok {
			v = err.Error()
		}
		entry[k] = v
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	switch l.format {
	case FormatJSON:
		b, _ := json.Marshal(entry)
		l.std.Println(string(b))
	default:
		l.std.Println(formatText(entry))
	}
}

type ctxKey struct{}

// WithContext guarda l en ctx; el middleware de requests deja ahí el logger
// ya marcado con el request_id.
func WithContext(ctx context.Context, l Logger) context.Context {
	if l == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext devuelve el logger del request, o fallback si no hay uno.
// Sin ninguno de los dos devuelve Nop.
func FromContext(ctx context.Context, fallback Logger) Logger {
	if ctx != nil {
		if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
			return l
		}
	}
	if fallback != nil {
		return fallback
	}
	return Nop()
}

// WithRequestID marca cada entrada con request_id; un id vacío no agrega nada.
func WithRequestID(l Logger, id string) Logger {
	if l == nil || strings.TrimSpace(id) == "" {
		return l
	}
	return l.With(map[string]any{"request_id": id})
}

func formatText(m map[string]any) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, m[k]))
	}
	return strings.Join(parts, " ")
}
