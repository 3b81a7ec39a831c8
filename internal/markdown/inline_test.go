package markdown

import (
	"reflect"
	"testing"
)

func TestSpansPlainText(t *testing.T) {
	spans := Spans("nothing special here")
	want := []Span{{Kind: SpanText, Text: "nothing special here"}}
	if !reflect.DeepEqual(spans, want) {
		t.Errorf("spans = %+v, want %+v", spans, want)
	}
}

func TestSpansMarkers(t *testing.T) {
	tests := []struct {
		input string
		want  []Span
	}{
		{"**bold**", []Span{{Kind: SpanBold, Text: "bold"}}},
		{"__bold__", []Span{{Kind: SpanBold, Text: "bold"}}},
		{"*italic*", []Span{{Kind: SpanItalic, Text: "italic"}}},
		{"_italic_", []Span{{Kind: SpanItalic, Text: "italic"}}},
		{"`code`", []Span{{Kind: SpanCode, Text: "code"}}},
		{"[Garmin](https://garmin.com)", []Span{{Kind: SpanLink, Text: "Garmin", URL: "https://garmin.com"}}},
	}
	for _, tt := range tests {
		if got := Spans(tt.input); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Spans(%q) = %+v, want %+v", tt.input, got, tt.want)
		}
	}
}

func TestSpansMixedLine(t *testing.T) {
	spans := Spans("You ran **12 km** at `5:30` pace")
	want := []Span{
		{Kind: SpanText, Text: "You ran "},
		{Kind: SpanBold, Text: "12 km"},
		{Kind: SpanText, Text: " at "},
		{Kind: SpanCode, Text: "5:30"},
		{Kind: SpanText, Text: " pace"},
	}
	if !reflect.DeepEqual(spans, want) {
		t.Errorf("spans = %+v, want %+v", spans, want)
	}
}

func TestSpansUnmatchedMarkersPassThrough(t *testing.T) {
	for _, input := range []string{"**unterminated", "`no close", "[text](missing"} {
		spans := Spans(input)
		if len(spans) != 1 || spans[0].Kind != SpanText || spans[0].Text != input {
			t.Errorf("Spans(%q) = %+v, want single text span", input, spans)
		}
	}
}

// Italic needs two or more content characters so empty and one-character
// markers stay literal.
func TestSpansItalicMinimumWidth(t *testing.T) {
	for _, input := range []string{"**", "*x*", "__", "_x_"} {
		spans := Spans(input)
		for _, s := range spans {
			if s.Kind != SpanText {
				t.Errorf("Spans(%q) produced %+v, want only text spans", input, s)
			}
		}
	}
}
