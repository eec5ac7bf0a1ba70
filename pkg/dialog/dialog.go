package dialog

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
)

const (
	// DefaultWrapWidth is the column count used when the caller passes a
	// non-positive width.
	DefaultWrapWidth = 30

	// DefaultMaxLines is the line count per page used when the caller
	// passes a non-positive limit.
	DefaultMaxLines = 3
)

// Page is a single displayable chunk of dialog text. Pages are immutable;
// a new reply always produces a fresh page sequence.
type Page string

// String returns the page text.
func (p Page) String() string {
	return string(p)
}

// Width returns the display cell width of the widest line on the page.
// Useful for sizing the dialog surface around the text.
func (p Page) Width() int {
	w := 0
	for _, line := range strings.Split(string(p), "\n") {
		if lw := runewidth.StringWidth(line); lw > w {
			w = lw
		}
	}
	return w
}

// LineCount returns the number of lines on the page.
func (p Page) LineCount() int {
	if p == "" {
		return 0
	}
	return strings.Count(string(p), "\n") + 1
}

// Paginate word-wraps text to wrapWidth columns and groups the wrapped lines
// into pages of at most maxLines lines each, joined by newlines.
//
// The function is pure and deterministic: identical inputs always yield an
// identical page sequence. Empty or whitespace-only input yields nil, which
// callers must treat as "no dialogue".
func Paginate(text string, wrapWidth, maxLines int) []Page {
	if wrapWidth <= 0 {
		wrapWidth = DefaultWrapWidth
	}
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}

	// Collapse all whitespace runs, including embedded newlines, so the
	// wrapper sees one flowing paragraph.
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}

	wrapped := wordwrap.String(text, wrapWidth)
	lines := strings.Split(wrapped, "\n")

	pages := make([]Page, 0, (len(lines)+maxLines-1)/maxLines)
	for i := 0; i < len(lines); i += maxLines {
		end := i + maxLines
		if end > len(lines) {
			end = len(lines)
		}
		pages = append(pages, Page(strings.Join(lines[i:end], "\n")))
	}
	return pages
}
