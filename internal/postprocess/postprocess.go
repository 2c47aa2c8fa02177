// Package postprocess cleans recognized text and merges pages into the final
// document text. All functions are pure.
package postprocess

import (
	"regexp"
	"strings"

	"github.com/Pietr00ass/OCR-SG/internal/document"
)

var repeatedSpace = regexp.MustCompile(`[ \t]{2,}`)

// hyphenBreak matches a word split across a line break by a trailing hyphen,
// e.g. "infor-\nmation".
var hyphenBreak = regexp.MustCompile(`(\pL)-\n(\pL)`)

// CleanText trims lines, collapses repeated spaces and drops empty lines.
func CleanText(text string) string {
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(repeatedSpace.ReplaceAllString(line, " "))
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

// JoinHyphenated merges words split across line breaks by a trailing hyphen.
func JoinHyphenated(text string) string {
	return hyphenBreak.ReplaceAllString(text, "$1$2")
}

// MergePages joins page texts with blank-line separators.
func MergePages(pages []string) string {
	return strings.Join(pages, "\n\n")
}

// Finalize cleans each page text in place and fills the merged document
// text. When joinHyphens is set, hyphenated line breaks are merged before
// whitespace cleanup.
func Finalize(result *document.Result, joinHyphens bool) {
	for i := range result.Pages {
		text := result.Pages[i].Text
		if joinHyphens {
			text = JoinHyphenated(text)
		}
		result.Pages[i].Text = CleanText(text)
	}
	result.Text = MergePages(result.PageTexts())
}
