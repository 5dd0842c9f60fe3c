// Package report renders a loaded document for the CLI: a plain text
// summary and a YAML dump.
package report

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"dlcini/internal/ini"
	"dlcini/internal/model"
	"dlcini/internal/service"
)

// Generate builds the text report. Verbose adds the raw lines around the
// [dlc] block boundaries.
func Generate(doc service.Document, verbose bool) string {
	var sb strings.Builder
	cfg := doc.Config()

	sb.WriteString("dlcini report\n")
	sb.WriteString("=============\n\n")
	fmt.Fprintf(&sb, "File:       %s\n", doc.Path)
	fmt.Fprintf(&sb, "Version:    %s\n\n", model.Version)

	sb.WriteString("[steam]\n")
	if doc.Primary.Len() == 0 {
		sb.WriteString("  (section missing or empty)\n")
	}
	doc.Primary.Each(func(k, v string) {
		fmt.Fprintf(&sb, "  %-20s %s\n", k, v)
	})
	icon := model.IconLocked
	if cfg.UnlockAll {
		icon = model.IconUnlocked
	}
	fmt.Fprintf(&sb, "  %s unlock all: %v\n\n", icon, cfg.UnlockAll)

	fmt.Fprintf(&sb, "[dlc] %d entries\n", len(cfg.Entries))
	for _, e := range cfg.Entries {
		fmt.Fprintf(&sb, "  %s %-10s %s\n", model.IconInFile, e.ID, e.Name)
	}

	if !verbose {
		return sb.String()
	}

	sb.WriteString("\nBlock location\n")
	sb.WriteString("--------------\n")
	if !doc.Span.Found() {
		sb.WriteString("  no [dlc] section; entries will be appended at end of file\n")
		return sb.String()
	}
	lines := ini.SplitLines(doc.Raw)
	fmt.Fprintf(&sb, "  lines %d-%d of %d\n", doc.Span.Start+1, doc.Span.End+1, len(lines))
	writeContext(&sb, "start", model.GetLineContext(lines, doc.Span.Start+1))
	writeContext(&sb, "end", model.GetLineContext(lines, doc.Span.End+1))
	return sb.String()
}

func writeContext(sb *strings.Builder, label string, c model.LineContext) {
	fmt.Fprintf(sb, "\n  %s:\n", label)
	if c.ErrorMsg != "" {
		fmt.Fprintf(sb, "    %s\n", c.ErrorMsg)
		return
	}
	row := func(n int, marker, text string) {
		fmt.Fprintf(sb, "  %s %4d | %s\n", marker, n, text)
	}
	if c.HasBefore2 {
		row(c.LineNumber-2, " ", c.Before2)
	}
	if c.HasBefore1 {
		row(c.LineNumber-1, " ", c.Before1)
	}
	row(c.LineNumber, ">", c.Target)
	if c.HasAfter1 {
		row(c.LineNumber+1, " ", c.After1)
	}
	if c.HasAfter2 {
		row(c.LineNumber+2, " ", c.After2)
	}
}

// YAML dumps the document as YAML, keeping file order inside each section.
func YAML(doc service.Document) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	addScalar(root, "path", doc.Path)
	addMap(root, ini.PrimarySection, doc.Primary)
	addMap(root, ini.ListSection, doc.List)

	span := &yaml.Node{Kind: yaml.MappingNode}
	span.Content = append(span.Content,
		scalar("start"), &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(doc.Span.Start)},
		scalar("end"), &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: fmt.Sprint(doc.Span.End)},
	)
	root.Content = append(root.Content, scalar("span"), span)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}

func addScalar(m *yaml.Node, k, v string) {
	m.Content = append(m.Content, scalar(k), scalar(v))
}

func addMap(m *yaml.Node, k string, fm *ini.FieldMap) {
	child := &yaml.Node{Kind: yaml.MappingNode}
	fm.Each(func(key, value string) {
		addScalar(child, key, value)
	})
	m.Content = append(m.Content, scalar(k), child)
}
