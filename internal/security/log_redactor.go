// Package security keeps provider credentials out of log output.
package security

import (
	"context"
	"log/slog"
	"regexp"
	"sort"
	"strings"
)

// RedactedPlaceholder replaces every secret found in log output.
const RedactedPlaceholder = "[REDACTED]"

// minLiteralSecret is the shortest configured secret redacted verbatim.
const minLiteralSecret = 8

type credentialPattern struct {
	re   *regexp.Regexp
	repl string
}

// credentialPatterns match the key formats of the supported vendors.
// Anthropic must precede OpenAI since both start with "sk-".
var credentialPatterns = []credentialPattern{
	// Anthropic keys: sk-ant-api03-...
	{regexp.MustCompile(`sk-ant-[a-zA-Z0-9_-]{20,}`), RedactedPlaceholder},
	// OpenAI keys: sk-..., sk-proj-..., sk-svcacct-...
	{regexp.MustCompile(`sk-(?:proj-|svcacct-)?[a-zA-Z0-9_-]{20,}`), RedactedPlaceholder},
	// Gemini keys: AIza...
	{regexp.MustCompile(`AIza[a-zA-Z0-9_-]{30,}`), RedactedPlaceholder},
	// Authorization headers
	{regexp.MustCompile(`Bearer\s+[a-zA-Z0-9._-]{20,}`), "Bearer " + RedactedPlaceholder},
	// Vendor key headers echoed in errors
	{regexp.MustCompile(`(?i)(x-api-key|x-goog-api-key)(["']?\s*[:=]\s*["']?)[^\s"',}]+`), "${1}${2}" + RedactedPlaceholder},
	// Keys in query strings
	{regexp.MustCompile(`([?&]key=)[a-zA-Z0-9_-]{20,}`), "${1}" + RedactedPlaceholder},
}

// sensitiveKeys are attribute keys whose values are always replaced.
var sensitiveKeys = []string{
	"authorization",
	"api_key",
	"apikey",
	"api-key",
	"secret",
	"password",
	"token",
	"credential",
}

// Redactor replaces credentials in strings.
type Redactor struct {
	literals []string
}

// NewRedactor creates a Redactor that also removes the given secrets verbatim,
// whatever their format.
func NewRedactor(secrets ...string) *Redactor {
	r := &Redactor{}
	for _, s := range secrets {
		s = strings.TrimSpace(s)
		if len(s) >= minLiteralSecret {
			r.literals = append(r.literals, s)
		}
	}
	// Longest first so a secret containing another is removed whole.
	sort.Slice(r.literals, func(i, j int) bool {
		return len(r.literals[i]) > len(r.literals[j])
	})
	return r
}

// Redact scans s for secrets and replaces them.
func (r *Redactor) Redact(s string) string {
	for _, lit := range r.literals {
		s = strings.ReplaceAll(s, lit, RedactedPlaceholder)
	}
	for _, p := range credentialPatterns {
		s = p.re.ReplaceAllString(s, p.repl)
	}
	return s
}

var defaultRedactor = NewRedactor()

// Redact removes credentials matching known vendor formats.
func Redact(s string) string {
	return defaultRedactor.Redact(s)
}

// RedactedHandler wraps an slog.Handler and redacts sensitive data from log records.
type RedactedHandler struct {
	inner    slog.Handler
	redactor *Redactor
}

// NewRedactedHandler wraps inner. Configured API keys passed as secrets are
// removed verbatim in addition to the known vendor formats.
func NewRedactedHandler(inner slog.Handler, secrets ...string) *RedactedHandler {
	return &RedactedHandler{inner: inner, redactor: NewRedactor(secrets...)}
}

// Enabled reports whether the handler handles records at the given level.
func (h *RedactedHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle redacts the message and every attribute before passing the record on.
func (h *RedactedHandler) Handle(ctx context.Context, r slog.Record) error {
	out := slog.NewRecord(r.Time, r.Level, h.redactor.Redact(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		out.AddAttrs(h.redactAttr(a))
		return true
	})
	return h.inner.Handle(ctx, out)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *RedactedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = h.redactAttr(a)
	}
	return &RedactedHandler{inner: h.inner.WithAttrs(redacted), redactor: h.redactor}
}

// WithGroup returns a new handler with the given group name.
func (h *RedactedHandler) WithGroup(name string) slog.Handler {
	return &RedactedHandler{inner: h.inner.WithGroup(name), redactor: h.redactor}
}

func (h *RedactedHandler) redactAttr(a slog.Attr) slog.Attr {
	if isSensitiveKey(strings.ToLower(a.Key)) {
		return slog.String(a.Key, RedactedPlaceholder)
	}

	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.String(a.Key, h.redactor.Redact(v.String()))
	case slog.KindGroup:
		group := v.Group()
		redacted := make([]any, len(group))
		for i, ga := range group {
			redacted[i] = h.redactAttr(ga)
		}
		return slog.Group(a.Key, redacted...)
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			return slog.String(a.Key, h.redactor.Redact(x.Error()))
		case []string:
			out := make([]string, len(x))
			for i, s := range x {
				out[i] = h.redactor.Redact(s)
			}
			return slog.Any(a.Key, out)
		}
	}
	return slog.Attr{Key: a.Key, Value: v}
}

// isSensitiveKey checks if an attribute key is known to contain sensitive data.
func isSensitiveKey(key string) bool {
	for _, k := range sensitiveKeys {
		if strings.Contains(key, k) {
			return true
		}
	}
	return false
}
