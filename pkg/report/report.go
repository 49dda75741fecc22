// Package report is the in-memory document model every tool renders through.
// A Document is an ordered list of sections; each section is an optional
// heading, an optional rule line, and body lines. Rendering happens once, at
// the end, so sections can be built and tested on their own.
package report

import (
	"strconv"
	"strings"
)

// Rule characters used under headings.
const (
	Double = "═"
	Single = "─"
)

// Default rule width for report and section headings.
const Width = 60

// Section is one block of a report.
type Section struct {
	Heading string
	Rule    string
	Width   int
	Lines   []string
}

// Line appends a body line.
func (s *Section) Line(text string) *Section {
	s.Lines = append(s.Lines, text)
	return s
}

// Blank appends an empty body line.
func (s *Section) Blank() *Section {
	return s.Line("")
}

// Capped appends items, showing at most limit of them followed by an overflow
// line in the given indent when items were dropped.
func (s *Section) Capped(items []string, limit int, prefix, overflowIndent string) *Section {
	for i, it := range items {
		if i == limit {
			break
		}
		s.Line(prefix + it)
	}
	if len(items) > limit {
		s.Line(overflowIndent + "... and " + strconv.Itoa(len(items)-limit) + " more")
	}
	return s
}

func (s *Section) render(sb *strings.Builder) {
	if s.Heading != "" {
		sb.WriteString(s.Heading)
		sb.WriteString("\n")
	}
	if s.Rule != "" && s.Width > 0 {
		sb.WriteString(strings.Repeat(s.Rule, s.Width))
		sb.WriteString("\n")
	}
	for _, l := range s.Lines {
		sb.WriteString(l)
		sb.WriteString("\n")
	}
}

// Document is an ordered list of sections.
type Document struct {
	Sections []*Section
}

// New starts a document whose first section is the title underlined with a
// full-width double rule and followed by a blank line.
func New(title string) *Document {
	d := &Document{}
	d.Section(title, Double, Width).Blank()
	return d
}

// Section appends and returns a new section.
func (d *Document) Section(heading, rule string, width int) *Section {
	s := &Section{Heading: heading, Rule: rule, Width: width}
	d.Sections = append(d.Sections, s)
	return s
}

// Sub appends a section with a full-width single rule.
func (d *Document) Sub(heading string) *Section {
	return d.Section(heading, Single, Width)
}

// Body appends an untitled section.
func (d *Document) Body() *Section {
	return d.Section("", "", 0)
}

// Render produces the final text.
func (d *Document) Render() string {
	var sb strings.Builder
	for _, s := range d.Sections {
		s.render(&sb)
	}
	return sb.String()
}
