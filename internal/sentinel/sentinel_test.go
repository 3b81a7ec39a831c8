package sentinel

import (
	"strings"
	"testing"

	"askmygarmin/internal/domain"
)

func TestExtractNoMarker(t *testing.T) {
	text := "Your resting heart rate is trending down."
	display, ev := Extract(text)
	if display != text {
		t.Errorf("display = %q, want input unchanged", display)
	}
	if ev != nil {
		t.Errorf("event = %+v, want nil", ev)
	}
}

func TestExtractCompleteEvent(t *testing.T) {
	display, ev := Extract("Noted.\n[MEMORY_STORED:{\"action\":\"saved\",\"key\":\"goal\",\"content\":\"run a sub-4 marathon\",\"id\":\"m1\",\"updated\":false}]")
	if display != "Noted." {
		t.Errorf("display = %q, want %q", display, "Noted.")
	}
	if ev == nil {
		t.Fatal("expected event")
	}
	if ev.Action != "saved" || ev.Key != "goal" || ev.ID != "m1" || ev.Updated {
		t.Errorf("event = %+v", ev)
	}
}

func TestExtractTerminatorNotArrived(t *testing.T) {
	display, ev := Extract("Noted.\n[MEMORY_STORED:{\"action\":\"saved\"")
	if display != "Noted." {
		t.Errorf("display = %q, want text before marker", display)
	}
	if ev != nil {
		t.Errorf("event = %+v, want nil while payload incomplete", ev)
	}
}

func TestExtractMalformedPayload(t *testing.T) {
	display, ev := Extract("Noted.\n[MEMORY_STORED:not json at all]")
	if display != "Noted." {
		t.Errorf("display = %q, marker region must stay hidden", display)
	}
	if ev != nil {
		t.Errorf("event = %+v, want nil for malformed payload", ev)
	}
}

func TestExtractBracketInsideContent(t *testing.T) {
	display, ev := Extract("Done.\n[MEMORY_STORED:{\"action\":\"saved\",\"key\":\"note\",\"content\":\"pace [easy] run\",\"id\":\"m2\",\"updated\":true}]")
	if display != "Done." {
		t.Errorf("display = %q", display)
	}
	if ev == nil || ev.Content != "pace [easy] run" {
		t.Fatalf("event = %+v, want content with brackets intact", ev)
	}
}

// No prefix of the accumulated text may ever show any part of the marker,
// regardless of where a chunk boundary falls.
func TestExtractNeverLeaksMarkerMidStream(t *testing.T) {
	full := "All set.\n[MEMORY_STORED:{\"action\":\"saved\",\"key\":\"k\",\"content\":\"c\",\"id\":\"i\",\"updated\":false}]"
	for i := 0; i <= len(full); i++ {
		display, _ := Extract(full[:i])
		if strings.Contains(display, "[MEMORY_STORED") || strings.Contains(display, "\n[") {
			t.Fatalf("prefix of length %d leaked marker text: %q", i, display)
		}
	}
}

// Splitting the marker across chunks must converge on the same final result
// as receiving it whole: the mid-stream view hides the fragment, the final
// view parses the event.
func TestExtractChunkSplitEquivalence(t *testing.T) {
	first := "Answer text.\n[MEM"
	second := "ORY_STORED:{\"action\":\"saved\",\"key\":\"k\",\"content\":\"c\",\"id\":\"i\",\"updated\":false}]"

	midDisplay, midEv := Extract(first)
	if midDisplay != "Answer text." || midEv != nil {
		t.Fatalf("mid-stream = (%q, %+v), want fragment hidden and no event", midDisplay, midEv)
	}

	display, ev := Extract(first + second)
	if display != "Answer text." {
		t.Errorf("final display = %q", display)
	}
	if ev == nil || ev.Key != "k" {
		t.Errorf("final event = %+v", ev)
	}
}

func TestAnnotate(t *testing.T) {
	got := Annotate(domain.MemoryEvent{Action: "saved", Key: "goal", Content: "sub-4 marathon"})
	if got != "[saved: goal — sub-4 marathon]" {
		t.Errorf("annotation = %q", got)
	}
}

func TestAnnotateDefaultActions(t *testing.T) {
	stored := Annotate(domain.MemoryEvent{Key: "k", Content: "c"})
	if !strings.HasPrefix(stored, "[memory stored:") {
		t.Errorf("annotation = %q, want memory stored prefix", stored)
	}
	updated := Annotate(domain.MemoryEvent{Key: "k", Content: "c", Updated: true})
	if !strings.HasPrefix(updated, "[memory updated:") {
		t.Errorf("annotation = %q, want memory updated prefix", updated)
	}
}

func TestAnnotateTruncatesLongContent(t *testing.T) {
	long := strings.Repeat("x", 300)
	got := Annotate(domain.MemoryEvent{Action: "saved", Key: "k", Content: long})
	if !strings.HasSuffix(got, "…]") {
		t.Errorf("annotation = %q, want ellipsis before closing bracket", got)
	}
	if len(got) > 130 {
		t.Errorf("annotation length = %d, want truncated", len(got))
	}
}

func TestAnnotateEmptyContent(t *testing.T) {
	got := Annotate(domain.MemoryEvent{Action: "saved", Key: "goal"})
	if got != "[saved: goal]" {
		t.Errorf("annotation = %q", got)
	}
}
