package ini

import (
	"encoding/json"
	"reflect"
	"testing"
)

const sample = "; cream api config\n" +
	"[steam]\n" +
	"appid = 480\n" +
	"unlockall = false\n" +
	"; extraprotection = true\n" +
	"\n" +
	"[steam_misc]\n" +
	"disableuserinterface = false\n" +
	"\n" +
	"[dlc]\n" +
	"110902 = Spacewar DLC 1\n" +
	";110903 = commented out\n" +
	"110904 = Spacewar DLC 2\n" +
	"\n" +
	"[DLC_Subscription]\n" +
	"keep = me\n"

func TestSplitJoinLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
		lines []string
		out   string
	}{
		{"empty", "", nil, ""},
		{"single_terminated", "a\n", []string{"a"}, "a\n"},
		{"unterminated", "a\nb", []string{"a", "b"}, "a\nb\n"},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}, "a\nb\n"},
		{"mixed", "a\r\nb\nc", []string{"a", "b", "c"}, "a\nb\nc\n"},
		{"blank_lines_kept", "a\n\n\nb\n", []string{"a", "", "", "b"}, "a\n\n\nb\n"},
		{"trailing_blank_line", "a\n\n", []string{"a", ""}, "a\n\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitLines(tt.input)
			if !reflect.DeepEqual(got, tt.lines) {
				t.Fatalf("SplitLines(%q) = %q, want %q", tt.input, got, tt.lines)
			}
			if out := JoinLines(got); out != tt.out {
				t.Fatalf("JoinLines = %q, want %q", out, tt.out)
			}
		})
	}
}

func TestParse(t *testing.T) {
	doc := Parse(sample)

	wantPrimary := map[string]string{"appid": "480", "unlockall": "false"}
	if got := doc.Primary.Map(); !reflect.DeepEqual(got, wantPrimary) {
		t.Errorf("primary = %v, want %v", got, wantPrimary)
	}
	wantList := []string{"110902", "110904"}
	if got := doc.List.Keys(); !reflect.DeepEqual(got, wantList) {
		t.Errorf("list keys = %v, want %v", got, wantList)
	}
	if v, _ := doc.List.Get("110904"); v != "Spacewar DLC 2" {
		t.Errorf("list[110904] = %q", v)
	}
	if doc.Span != (Span{Start: 9, End: 13}) {
		t.Errorf("span = %+v, want {9 13}", doc.Span)
	}
	if doc.Raw != sample {
		t.Errorf("raw not preserved")
	}
}

func TestParseMultiSectionBoundary(t *testing.T) {
	input := "[steam]\na=1\n[dlc]\n1 = X\n2 = Y\n[other]\nz=9\n"
	doc := Parse(input)

	if got, want := doc.List.Map(), map[string]string{"1": "X", "2": "Y"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("list = %v, want %v", got, want)
	}
	if doc.Span != (Span{Start: 2, End: 4}) {
		t.Fatalf("span = %+v, want {2 4}", doc.Span)
	}

	out := ReplaceListBlock(input, FieldMapOf("3", "Z"))
	want := "[steam]\na=1\n[dlc]\n3 = Z\n\n[other]\nz=9\n"
	if out != want {
		t.Fatalf("replace = %q, want %q", out, want)
	}
}

func TestParseEdgeCases(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		primary map[string]string
		list    map[string]string
		span    Span
	}{
		{
			name:    "empty",
			input:   "",
			primary: map[string]string{},
			list:    map[string]string{},
			span:    Span{Absent, Absent},
		},
		{
			name:    "garbage",
			input:   "no sections here\n=\n[unclosed\n",
			primary: map[string]string{},
			list:    map[string]string{},
			span:    Span{Absent, Absent},
		},
		{
			name:    "header_case_and_indent",
			input:   "  [STEAM]  \nappid=1\n\t[Dlc]\n 5 =  five  \n",
			primary: map[string]string{"appid": "1"},
			list:    map[string]string{"5": "five"},
			span:    Span{2, 3},
		},
		{
			name:    "duplicate_key_last_wins",
			input:   "[dlc]\n1 = a\n1 = b\n",
			primary: map[string]string{},
			list:    map[string]string{"1": "b"},
			span:    Span{0, 2},
		},
		{
			name:    "value_keeps_later_equals",
			input:   "[steam]\nurl = a=b=c\n",
			primary: map[string]string{"url": "a=b=c"},
			list:    map[string]string{},
			span:    Span{Absent, Absent},
		},
		{
			name:    "header_only_at_eof",
			input:   "[steam]\n[dlc]\n",
			primary: map[string]string{},
			list:    map[string]string{},
			span:    Span{1, 1},
		},
		{
			name:    "second_dlc_block_not_in_span",
			input:   "[dlc]\n1 = a\n[x]\n[dlc]\n2 = b\n",
			primary: map[string]string{},
			list:    map[string]string{"1": "a", "2": "b"},
			span:    Span{0, 1},
		},
		{
			name:    "fields_before_any_header_ignored",
			input:   "appid = 1\n[steam]\n",
			primary: map[string]string{},
			list:    map[string]string{},
			span:    Span{Absent, Absent},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse(tt.input)
			if got := doc.Primary.Map(); !reflect.DeepEqual(got, tt.primary) {
				t.Errorf("primary = %v, want %v", got, tt.primary)
			}
			if got := doc.List.Map(); !reflect.DeepEqual(got, tt.list) {
				t.Errorf("list = %v, want %v", got, tt.list)
			}
			if doc.Span != tt.span {
				t.Errorf("span = %+v, want %+v", doc.Span, tt.span)
			}
		})
	}
}

func TestCommentLinesSkipped(t *testing.T) {
	input := "[steam]\n;appid = 1\n  ; unlockall = true\n[dlc]\n;10 = hidden\n; 11 = also hidden\n12 = shown\n"
	doc := Parse(input)
	if doc.Primary.Len() != 0 {
		t.Errorf("primary = %v, want empty", doc.Primary.Map())
	}
	if got, want := doc.List.Map(), map[string]string{"12": "shown"}; !reflect.DeepEqual(got, want) {
		t.Errorf("list = %v, want %v", got, want)
	}
}

func TestReplaceListBlockFreshInsert(t *testing.T) {
	out := ReplaceListBlock("[steam]\nappid = 480\n", FieldMapOf("123", "Foo"))
	want := "[steam]\nappid = 480\n[dlc]\n123 = Foo\n\n"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestReplaceListBlockEmptyInput(t *testing.T) {
	out := ReplaceListBlock("", FieldMapOf("1", "One"))
	if want := "[dlc]\n1 = One\n\n"; out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestReplaceListBlockEmptyList(t *testing.T) {
	out := ReplaceListBlock("[dlc]\n1 = One\n[x]\n", NewFieldMap())
	if want := "[dlc]\n\n[x]\n"; out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestReplaceListBlockKeepsOrder(t *testing.T) {
	m := FieldMapOf("30", "c", "10", "a", "20", "b")
	out := ReplaceListBlock("", m)
	if want := "[dlc]\n30 = c\n10 = a\n20 = b\n\n"; out != want {
		t.Fatalf("got %q, want %q", out, want)
	}
}

func TestReplaceListBlockIdempotent(t *testing.T) {
	inputs := []string{
		sample,
		"",
		"[steam]\nappid = 480\n",
		"[dlc]\n1 = a",
		"[dlc]\n1 = a\n[x]\ny=1\n",
		"[steam]\r\nappid=1\r\n[dlc]\r\n1 = a\r\n",
	}
	maps := []*FieldMap{
		NewFieldMap(),
		FieldMapOf("1", "One"),
		FieldMapOf("9", "Nine", "2", "Two", "100", "Hundred"),
	}
	for _, in := range inputs {
		for _, m := range maps {
			once := ReplaceListBlock(in, m)
			twice := ReplaceListBlock(once, m)
			if once != twice {
				t.Errorf("not idempotent for %q / %v:\nonce  %q\ntwice %q", in, m.Map(), once, twice)
			}
		}
	}
}

func TestReplaceListBlockOutsideSpanUnchanged(t *testing.T) {
	before := SplitLines(sample)
	span := Parse(sample).Span
	out := SplitLines(ReplaceListBlock(sample, FieldMapOf("1", "a", "2", "b")))

	if !reflect.DeepEqual(out[:span.Start], before[:span.Start]) {
		t.Errorf("prefix changed:\n%q\n%q", out[:span.Start], before[:span.Start])
	}
	tailBefore := before[span.End+1:]
	tailAfter := out[len(out)-len(tailBefore):]
	if !reflect.DeepEqual(tailAfter, tailBefore) {
		t.Errorf("suffix changed:\n%q\n%q", tailAfter, tailBefore)
	}
}

func TestReplaceListBlockRoundTrip(t *testing.T) {
	m := FieldMapOf("110902", "Spacewar DLC 1", "42", "Answer = yes", "7", "")
	doc := Parse(ReplaceListBlock(sample, m))
	if !doc.List.Equal(m) {
		t.Fatalf("list = %v, want %v", doc.List.Map(), m.Map())
	}
	if got := doc.Primary.Map(); !reflect.DeepEqual(got, map[string]string{"appid": "480", "unlockall": "false"}) {
		t.Fatalf("primary changed: %v", got)
	}
}

func TestUpsertPrimaryField(t *testing.T) {
	tests := []struct {
		name  string
		input string
		key   string
		value string
		want  string
	}{
		{
			name:  "replace_in_place",
			input: "[steam]\nappid = 1\nunlockall = false\n",
			key:   "unlockall",
			value: "true",
			want:  "[steam]\nappid = 1\nunlockall = true\n",
		},
		{
			name:  "first_match_wins",
			input: "[steam]\nappid = 1\nappid = 2\n",
			key:   "appid",
			value: "480",
			want:  "[steam]\nappid = 480\nappid = 2\n",
		},
		{
			name:  "key_match_is_case_sensitive",
			input: "[steam]\nAppID = 1\n",
			key:   "appid",
			value: "480",
			want:  "[steam]\nappid = 480\nAppID = 1\n",
		},
		{
			name:  "other_sections_ignored",
			input: "[other]\nappid = 9\n[steam]\nx = 1\n",
			key:   "appid",
			value: "480",
			want:  "[other]\nappid = 9\n[steam]\nappid = 480\nx = 1\n",
		},
		{
			name:  "commented_key_not_matched",
			input: "[steam]\n;appid = 1\n",
			key:   "appid",
			value: "480",
			want:  "[steam]\nappid = 480\n;appid = 1\n",
		},
		{
			name:  "insert_below_header",
			input: "; top\n[Steam]\nunlockall = true\n\n[dlc]\n1 = a\n",
			key:   "appid",
			value: "480",
			want:  "; top\n[Steam]\nappid = 480\nunlockall = true\n\n[dlc]\n1 = a\n",
		},
		{
			name:  "no_primary_section",
			input: "[dlc]\n123 = Foo\n",
			key:   "appid",
			value: "480",
			want:  "\nappid = 480\n[steam]\n[dlc]\n123 = Foo\n",
		},
		{
			name:  "empty_document",
			input: "",
			key:   "appid",
			value: "480",
			want:  "\nappid = 480\n[steam]\n",
		},
		{
			name:  "second_steam_block_matched",
			input: "[steam]\na = 1\n[dlc]\n[steam]\nappid = 1\n",
			key:   "appid",
			value: "2",
			want:  "[steam]\na = 1\n[dlc]\n[steam]\nappid = 2\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UpsertPrimaryField(tt.input, tt.key, tt.value); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUpsertPrimaryFieldLeavesOtherLines(t *testing.T) {
	out := SplitLines(UpsertPrimaryField(sample, "appid", "730"))
	in := SplitLines(sample)
	if len(out) != len(in) {
		t.Fatalf("line count %d, want %d", len(out), len(in))
	}
	for i := range in {
		if i == 2 {
			if out[i] != "appid = 730" {
				t.Errorf("line 2 = %q", out[i])
			}
			continue
		}
		if out[i] != in[i] {
			t.Errorf("line %d changed: %q -> %q", i, in[i], out[i])
		}
	}
}

func TestFieldMap(t *testing.T) {
	m := NewFieldMap()
	m.Set("b", "2")
	m.Set("a", "1")
	m.Set("b", "22")
	if got := m.Keys(); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Fatalf("keys = %v", got)
	}
	if v, _ := m.Get("b"); v != "22" {
		t.Fatalf("b = %q", v)
	}
	m.Delete("b")
	m.Delete("missing")
	if m.Len() != 1 || m.Has("b") {
		t.Fatalf("after delete: %v", m.Map())
	}

	c := m.Clone()
	c.Set("z", "26")
	if m.Has("z") {
		t.Fatal("clone shares storage")
	}

	var zero FieldMap
	zero.Set("k", "v")
	if !zero.Has("k") {
		t.Fatal("zero value not usable")
	}
}

func TestFieldMapJSONKeepsOrder(t *testing.T) {
	m := FieldMapOf("9", "nine", "1", "one")
	b, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `{"9":"nine","1":"one"}` {
		t.Fatalf("marshal = %s", b)
	}

	var back FieldMap
	if err := json.Unmarshal([]byte(`{"3":"c","1":"a","2":"b"}`), &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := back.Keys(); !reflect.DeepEqual(got, []string{"3", "1", "2"}) {
		t.Fatalf("keys = %v", got)
	}
	if err := json.Unmarshal([]byte(`["x"]`), &back); err == nil {
		t.Fatal("expected error for array")
	}
}
