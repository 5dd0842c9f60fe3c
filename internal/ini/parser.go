// Package ini reads and patches CreamAPI-style configuration files without
// reformatting them. It is not a general INI parser: it knows two sections,
// [steam] and [dlc], and treats everything else as opaque text that must
// survive an edit untouched.
//
// Edits work on line ranges. Parse locates the [dlc] block, and the patch
// functions splice new lines into the original text, copying every other line
// verbatim.
package ini

import "regexp"

const (
	// PrimarySection holds scalar settings such as appid and unlockall.
	PrimarySection = "steam"
	// ListSection holds the id = name DLC entries.
	ListSection = "dlc"
	// CommentPrefix starts a comment line.
	CommentPrefix = ";"
	// Absent marks a span index that was never found.
	Absent = -1
)

var headerRe = regexp.MustCompile(`^\[(.+)\]$`)

// Span is the inclusive line range of the list section: its header line
// through the last line before the next header (or end of file).
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Found reports whether the list section exists.
func (s Span) Found() bool {
	return s.Start != Absent
}

// Document is the parsed view of a file.
type Document struct {
	Raw     string    `json:"raw"`
	Primary *FieldMap `json:"steam"`
	List    *FieldMap `json:"dlc"`
	Span    Span      `json:"span"`
}

// Parse scans raw once. It never fails: lines it cannot read are skipped and
// missing sections yield empty maps and an absent span.
//
// Only the first [dlc] block is tracked by the span. A second [dlc] block later
// in the file still contributes entries to List.
func Parse(raw string) Document {
	doc := Document{
		Raw:     raw,
		Primary: NewFieldMap(),
		List:    NewFieldMap(),
		Span:    Span{Start: Absent, End: Absent},
	}

	lines := SplitLines(raw)
	section := ""
	for i, line := range lines {
		if label, ok := sectionLabel(line); ok {
			section = label
			if section == ListSection && doc.Span.Start == Absent {
				doc.Span.Start = i
			} else if doc.Span.Start != Absent && doc.Span.End == Absent && section != ListSection {
				doc.Span.End = i - 1
			}
			continue
		}

		key, value, ok := splitField(line)
		if !ok {
			continue
		}
		switch section {
		case PrimarySection:
			doc.Primary.Set(key, value)
		case ListSection:
			doc.List.Set(key, value)
		}
	}

	// File ended inside the list section.
	if doc.Span.Start != Absent && doc.Span.End == Absent {
		doc.Span.End = len(lines) - 1
	}
	return doc
}
