package records

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stderr).With().Timestamp().Str("component", "records").Logger()

// SetLogger replaces the package logger. Tests and embedding applications use
// this to redirect or silence store logging.
func SetLogger(l zerolog.Logger) {
	logger = l
}

// marshalContent serializes caller content for storage. A nil payload is
// stored as an empty object so the column never holds invalid JSON from us.
func marshalContent(content any) (string, error) {
	if content == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("failed to serialize record content: %w", err)
	}
	return string(raw), nil
}

// normalizeContent decodes a stored content column back into structured form.
// Upstream callers are inconsistent about whether they serialize before
// saving, so a JSON string whose payload itself parses as an object or array
// is unwrapped one level. Column text that cannot be decoded at all degrades
// to an empty object rather than an error; legacy rows may hold messy data
// and a read must never fail because of it.
func normalizeContent(stored string) any {
	trimmed := strings.TrimSpace(stored)
	if trimmed == "" {
		return map[string]any{}
	}

	var decoded any
	if err := json.Unmarshal([]byte(trimmed), &decoded); err != nil {
		logger.Warn().Err(err).Msg("malformed stored content, substituting empty object")
		return map[string]any{}
	}

	if inner, ok := decoded.(string); ok {
		var nested any
		if err := json.Unmarshal([]byte(inner), &nested); err == nil {
			switch nested.(type) {
			case map[string]any, []any:
				return nested
			}
		}
	}

	return decoded
}
