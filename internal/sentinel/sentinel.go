// Package sentinel strips the out-of-band memory event from accumulated
// stream text. The backend appends at most one event after all display
// content, encoded as a newline-prefixed tagged JSON payload.
package sentinel

import (
	"encoding/json"
	"strings"

	"askmygarmin/internal/domain"
)

// Marker opens the control event; Terminator closes its payload.
const (
	Marker     = "\n[MEMORY_STORED:"
	Terminator = "]"
)

// Extract splits accumulated raw text into the display portion and, when the
// payload has fully arrived, the parsed memory event.
//
// The marker region is never visible: while the terminator is still in
// flight, and equally when the payload turns out to be malformed JSON,
// display text ends where the marker begins and the event is nil. A trailing
// fragment that could still grow into the marker on the next chunk is held
// back from display too.
func Extract(text string) (string, *domain.MemoryEvent) {
	at := strings.Index(text, Marker)
	if at < 0 {
		return trimMarkerPrefix(text), nil
	}

	display := text[:at]
	payload := text[at+len(Marker):]

	// The event trails all display content, so the last terminator closes it.
	// Searching from the end keeps "]" inside the JSON content harmless.
	end := strings.LastIndex(payload, Terminator)
	if end < 0 {
		return display, nil
	}

	var ev domain.MemoryEvent
	if err := json.Unmarshal([]byte(payload[:end]), &ev); err != nil {
		return display, nil
	}
	return display, &ev
}

// trimMarkerPrefix drops a suffix of text that is a proper prefix of the
// marker. Mid-stream the next chunk may complete it; at end of stream the
// loss is at most a trailing newline plus a partial bracket tag, which real
// answers do not end with.
func trimMarkerPrefix(text string) string {
	max := len(Marker) - 1
	if max > len(text) {
		max = len(text)
	}
	for n := max; n > 0; n-- {
		if strings.HasSuffix(text, Marker[:n]) {
			return text[:len(text)-n]
		}
	}
	return text
}

const annotationContentMax = 100

// Annotate formats a received event as the short human-readable note appended
// to the assistant message once the turn completes.
func Annotate(ev domain.MemoryEvent) string {
	action := ev.Action
	if action == "" {
		if ev.Updated {
			action = "memory updated"
		} else {
			action = "memory stored"
		}
	}
	content := ev.Content
	if len(content) > annotationContentMax {
		content = truncateRunes(content, annotationContentMax) + "…"
	}
	if content == "" {
		return "[" + action + ": " + ev.Key + "]"
	}
	return "[" + action + ": " + ev.Key + " — " + content + "]"
}

// truncateRunes cuts s to at most max bytes on a clean UTF-8 boundary.
func truncateRunes(s string, max int) string {
	end := 0
	for i := range s {
		if i > max {
			break
		}
		end = i
	}
	return s[:end]
}
