// Package adapters converts the source-specific payload of each inbound
// channel into the canonical ProcessEvent consumed by the unification
// engine. Adapters fail fast: a payload that cannot yield the required
// fields (FIN, process type, status) is rejected here, before any partial
// event reaches the engine.
package adapters

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrFINNotFound marks the email and legacy-webhook failure mode where no
// vehicle identifier could be extracted at all. It is surfaced distinctly
// because it usually means a malformed or unrelated message rather than a
// data-entry mistake.
var ErrFINNotFound = errors.New("FIN konnte nicht ermittelt werden")

// MissingFieldsError names every required field the payload failed to
// provide.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("required fields missing: %s", strings.Join(e.Fields, ", "))
}

// firstString resolves a logical field from an ordered list of candidate
// payload keys, first non-empty value wins. Numeric JSON values are
// stringified since Zapier is not consistent about types.
func firstString(payload map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := payload[k]
		if !ok || v == nil {
			continue
		}
		switch t := v.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				return s
			}
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64)
		case int:
			return strconv.Itoa(t)
		}
	}
	return ""
}

func parseIntField(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}
