package dialog

import (
	"reflect"
	"strings"
	"testing"
)

func TestPaginate_Empty(t *testing.T) {
	if pages := Paginate("", 30, 3); pages != nil {
		t.Errorf("Expected nil pages for empty input, got %v", pages)
	}
	if pages := Paginate("   \n\t ", 30, 3); pages != nil {
		t.Errorf("Expected nil pages for whitespace input, got %v", pages)
	}
}

func TestPaginate_SingleShortLine(t *testing.T) {
	pages := Paginate("Well met, traveler!", 30, 3)
	if len(pages) != 1 {
		t.Fatalf("Expected 1 page, got %d", len(pages))
	}
	if pages[0].String() != "Well met, traveler!" {
		t.Errorf("Unexpected page text: %q", pages[0])
	}
}

func TestPaginate_WrapsAndGroups(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog again and again until the sun sets over the western hills"
	pages := Paginate(text, 20, 2)

	if len(pages) < 2 {
		t.Fatalf("Expected multiple pages, got %d", len(pages))
	}

	for i, p := range pages {
		if p.LineCount() > 2 {
			t.Errorf("Page %d has %d lines, want <= 2", i, p.LineCount())
		}
		for _, line := range strings.Split(p.String(), "\n") {
			if len(line) > 20 {
				t.Errorf("Page %d line %q exceeds wrap width", i, line)
			}
		}
	}

	// No words lost or reordered.
	joined := strings.Join(strings.Fields(pagesToString(pages)), " ")
	if joined != text {
		t.Errorf("Reassembled text mismatch:\ngot  %q\nwant %q", joined, text)
	}
}

func TestPaginate_Deterministic(t *testing.T) {
	text := "One two three four five six seven eight nine ten eleven twelve"
	first := Paginate(text, 15, 3)
	for i := 0; i < 10; i++ {
		if got := Paginate(text, 15, 3); !reflect.DeepEqual(got, first) {
			t.Fatalf("Run %d differs: %v vs %v", i, got, first)
		}
	}
}

func TestPaginate_CollapsesNewlines(t *testing.T) {
	pages := Paginate("hello\nthere\n\nfriend", 30, 3)
	if len(pages) != 1 {
		t.Fatalf("Expected 1 page, got %d", len(pages))
	}
	if pages[0].String() != "hello there friend" {
		t.Errorf("Unexpected page text: %q", pages[0])
	}
}

func TestPaginate_DefaultsApplied(t *testing.T) {
	// Non-positive width and line count fall back to defaults rather than
	// producing degenerate output.
	pages := Paginate("a b c", 0, 0)
	if len(pages) != 1 || pages[0].String() != "a b c" {
		t.Errorf("Unexpected pages with defaults: %v", pages)
	}
}

func TestPage_Width(t *testing.T) {
	p := Page("short\na much longer line")
	if got := p.Width(); got != len("a much longer line") {
		t.Errorf("Width = %d, want %d", got, len("a much longer line"))
	}
}

func pagesToString(pages []Page) string {
	parts := make([]string, len(pages))
	for i, p := range pages {
		parts[i] = p.String()
	}
	return strings.Join(parts, "\n")
}
