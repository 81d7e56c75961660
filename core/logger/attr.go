package logger

import (
	"log/slog"
	"runtime"
	"strconv"
	"time"
)

// Helpers return an empty Attr for zero inputs where it makes sense, so that
// log.Info("msg", logger.Error(err)) needs no nil check. slog drops empty attrs.

// Group creates a group of attributes under a single key.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Error creates an "error" attribute. Returns empty Attr for nil errors.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Errors groups non-nil errors under "errors", keyed by their position.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Duration creates a "duration" attribute.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// Latency creates a "latency" attribute, used for request timings.
func Latency(d time.Duration) slog.Attr {
	return slog.Duration("latency", d)
}

// RequestID creates a "request_id" attribute.
func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

// MessageID creates a "message_id" attribute for outgoing mail.
func MessageID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("message_id", id)
}

func Method(method string) slog.Attr {
	return slog.String("method", method)
}

func Path(path string) slog.Attr {
	return slog.String("path", path)
}

func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

func ClientIP(ip string) slog.Attr {
	return slog.String("client_ip", ip)
}

func UserAgent(ua string) slog.Attr {
	return slog.String("user_agent", ua)
}

func BytesOut(n int64) slog.Attr {
	return slog.Int64("bytes_out", n)
}

// Component creates a "component" attribute naming the subsystem that logs.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

func Event(name string) slog.Attr {
	return slog.String("event", name)
}

// Transport creates a "transport" attribute naming a mail transport.
func Transport(name string) slog.Attr {
	return slog.String("transport", name)
}

// Recipients records how many addresses a message is sent to.
// Addresses themselves are not logged.
func Recipients(n int) slog.Attr {
	return slog.Int("recipients", n)
}

func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}

// Template creates a "template" attribute.
func Template(name string) slog.Attr {
	return slog.String("template", name)
}

func Key(key string, value any) slog.Attr {
	if value == nil {
		return slog.Attr{}
	}
	return slog.Any(key, value)
}

// Stack captures the current goroutine's stack trace.
func Stack() slog.Attr {
	const size = 64 << 10
	buf := make([]byte, size)
	buf = buf[:runtime.Stack(buf, false)]
	return slog.String("stack", string(buf))
}
