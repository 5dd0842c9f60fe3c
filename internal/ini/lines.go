package ini

import "strings"

// Newline is the separator written after every line on output.
const Newline = "\n"

// SplitLines breaks raw text into lines. Both "\r\n" and "\n" end a line. A
// trailing line ending terminates the last line rather than starting an
// empty one, so "a\nb\n" and "a\nb" both yield two lines.
func SplitLines(raw string) []string {
	if raw == "" {
		return nil
	}
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(raw, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// JoinLines is the inverse of SplitLines: every line is followed by Newline.
func JoinLines(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString(Newline)
	}
	return b.String()
}

// sectionLabel reports whether line is a section header and returns its
// lower-cased label.
func sectionLabel(line string) (string, bool) {
	m := headerRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	return strings.ToLower(m[1]), true
}

// splitField extracts a key/value pair from a body line. Blank lines,
// comments and lines without '=' are not fields.
func splitField(line string) (key, value string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, CommentPrefix) {
		return "", "", false
	}
	idx := strings.Index(trimmed, "=")
	if idx < 0 {
		return "", "", false
	}
	return strings.TrimSpace(trimmed[:idx]), strings.TrimSpace(trimmed[idx+1:]), true
}

// FormatField renders a key/value pair the way the patcher writes it.
func FormatField(key, value string) string {
	return key + " = " + value
}

// FormatHeader renders a section header line.
func FormatHeader(label string) string {
	return "[" + label + "]"
}
