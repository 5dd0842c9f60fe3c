package report

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"dlcini/internal/ini"
	"dlcini/internal/service"
)

const body = "[steam]\nappid = 480\nunlockall = true\n\n[dlc]\n20 = Second\n10 = First\n\n[other]\nx = 1\n"

func load(raw string) service.Document {
	return service.Document{Path: "/games/spacewar/cream_api.ini", Document: ini.Parse(raw)}
}

func TestGenerate(t *testing.T) {
	out := Generate(load(body), false)
	for _, want := range []string{
		"File:       /games/spacewar/cream_api.ini",
		"appid",
		"unlock all: true",
		"[dlc] 2 entries",
		"Second",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Block location") {
		t.Errorf("non-verbose report has block location")
	}
	if strings.Index(out, "Second") > strings.Index(out, "First") {
		t.Errorf("entries not in file order")
	}
}

func TestGenerateVerbose(t *testing.T) {
	out := Generate(load(body), true)
	if !strings.Contains(out, "lines 5-8 of 10") {
		t.Fatalf("missing span:\n%s", out)
	}
	if !strings.Contains(out, ">    5 | [dlc]") || !strings.Contains(out, ">    8 | ") {
		t.Fatalf("missing context markers:\n%s", out)
	}

	none := Generate(load("[steam]\nappid = 1\n"), true)
	if !strings.Contains(none, "no [dlc] section") {
		t.Fatalf("missing absent note:\n%s", none)
	}
	empty := Generate(load(""), false)
	if !strings.Contains(empty, "section missing or empty") {
		t.Fatalf("missing empty note:\n%s", empty)
	}
}

func TestYAML(t *testing.T) {
	b, err := YAML(load(body))
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	var back struct {
		Path  string            `yaml:"path"`
		Steam map[string]string `yaml:"steam"`
		DLC   map[string]string `yaml:"dlc"`
		Span  struct {
			Start int `yaml:"start"`
			End   int `yaml:"end"`
		} `yaml:"span"`
	}
	if err := yaml.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v\n%s", err, b)
	}
	if back.Steam["appid"] != "480" || back.DLC["10"] != "First" || back.Span.Start != 4 || back.Span.End != 7 {
		t.Fatalf("unexpected %+v\n%s", back, b)
	}
	s := string(b)
	if strings.Index(s, "Second") > strings.Index(s, "First") {
		t.Fatalf("dlc order lost:\n%s", s)
	}
}
