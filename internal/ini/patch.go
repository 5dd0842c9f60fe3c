package ini

// ListBlock renders the replacement [dlc] block: header, one line per entry in
// list order, then a blank line. Keys must not contain '=' or start with '['
// or ';': such a line would read back as a header, a comment or a different
// key, and a rewrite would no longer be idempotent.
func ListBlock(list *FieldMap) []string {
	block := make([]string, 0, list.Len()+2)
	block = append(block, FormatHeader(ListSection))
	list.Each(func(k, v string) {
		block = append(block, FormatField(k, v))
	})
	return append(block, "")
}

// ReplaceListBlock swaps the [dlc] block of raw for one rendered from list.
// The span is re-derived from raw itself so the splice always matches the text
// being patched. Lines outside the span are copied unchanged; when there is no
// [dlc] section the block is appended at the end. The key rules of ListBlock
// apply.
func ReplaceListBlock(raw string, list *FieldMap) string {
	lines := SplitLines(raw)
	span := Parse(raw).Span

	start, end := len(lines), len(lines)-1
	if span.Found() {
		start, end = span.Start, span.End
	}

	block := ListBlock(list)
	out := make([]string, 0, len(lines)-(end-start+1)+len(block))
	out = append(out, lines[:start]...)
	out = append(out, block...)
	out = append(out, lines[end+1:]...)
	return JoinLines(out)
}

// UpsertPrimaryField sets key in the [steam] section.
//
// The first matching key line inside [steam] is rewritten in place and later
// duplicates are left alone. Without a match the field is inserted directly
// below the first [steam] header. Without any [steam] header the document is
// prefixed with a blank line, the field line and then the header, in that
// order.
func UpsertPrimaryField(raw, key, value string) string {
	lines := SplitLines(raw)
	field := FormatField(key, value)

	section := ""
	header := Absent
	for i, line := range lines {
		if label, ok := sectionLabel(line); ok {
			section = label
			if section == PrimarySection && header == Absent {
				header = i
			}
			continue
		}
		if section != PrimarySection {
			continue
		}
		if k, _, ok := splitField(line); ok && k == key {
			lines[i] = field
			return JoinLines(lines)
		}
	}

	if header != Absent {
		out := make([]string, 0, len(lines)+1)
		out = append(out, lines[:header+1]...)
		out = append(out, field)
		out = append(out, lines[header+1:]...)
		return JoinLines(out)
	}

	out := make([]string, 0, len(lines)+3)
	out = append(out, "", field, FormatHeader(PrimarySection))
	out = append(out, lines...)
	return JoinLines(out)
}
