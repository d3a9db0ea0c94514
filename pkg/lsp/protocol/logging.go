package protocol

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/creachadair/jrpc2"
	"github.com/rs/zerolog"
	"github.com/walteh/twigls/pkg/debug"
)

// ApplyClientToZerolog returns a context whose logger writes to the client as
// window/logMessage notifications instead of the local console.
func ApplyClientToZerolog(ctx context.Context, client Notifier) context.Context {
	writer := NewLogWriter(ctx, client)

	parent := zerolog.Ctx(ctx)
	level := parent.GetLevel()

	return zerolog.New(writer).With().
		Str("lsp_role", "server").
		Logger().
		Level(level).
		Hook(debug.CustomTimeHook{WithColor: false}).
		Hook(debug.CustomCallerHook{WithColor: false}).
		WithContext(ctx)
}

func ApplyRequestToZerolog(ctx context.Context, req *jrpc2.Request) context.Context {
	ctx = zerolog.Ctx(ctx).With().Str("rpc_method", req.Method()).Str("rpc_id", req.ID()).Logger().WithContext(ctx)
	return ctx
}

// LogWriter turns zerolog JSON lines into window/logMessage notifications.
type LogWriter struct {
	mu     sync.Mutex
	client Notifier
	ctx    context.Context
}

func NewLogWriter(ctx context.Context, client Notifier) *LogWriter {
	return &LogWriter{client: client, ctx: ctx}
}

// Write implements io.Writer. Malformed lines and failed pushes are dropped so
// logging never fails a request.
func (w *LogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var entry map[string]any
	if err := json.Unmarshal(p, &entry); err != nil {
		return len(p), nil
	}

	params := &LogMessageParams{
		Type:    ParseMessageTypeFromZerolog(extractField(entry, zerolog.LevelFieldName, "info")),
		Message: formatEntry(extractField(entry, zerolog.MessageFieldName, ""), entry),
	}

	if w.client != nil {
		_ = w.client.Notify(w.ctx, "window/logMessage", params)
	}

	return len(p), nil
}

// formatEntry renders the remaining fields as sorted key=value pairs after msg.
func formatEntry(msg string, entry map[string]any) string {
	delete(entry, zerolog.TimestampFieldName)

	keys := make([]string, 0, len(entry))
	for k := range entry {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(msg)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry[k])
	}
	return b.String()
}

func extractField(entry map[string]any, key, defaultValue string) string {
	if v, ok := entry[key].(string); ok {
		delete(entry, key)
		return v
	}
	return defaultValue
}

// ParseMessageTypeFromZerolog converts zerolog level to LSP MessageType
func ParseMessageTypeFromZerolog(level string) MessageType {
	switch level {
	case "error", "fatal", "panic":
		return Error
	case "warn":
		return Warning
	case "info":
		return Info
	case "debug", "trace":
		return Debug
	default:
		return Log
	}
}
