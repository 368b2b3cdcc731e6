package core

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// MetaField is a single displayable metadata entry.
type MetaField struct {
	Key     string // canonical field name (e.g. "Make", "DateTimeOriginal")
	Value   string // string representation of the value
	Section string // EXIF section the field came from
}

// Metadata holds the full field listing for one file, as shown by the
// view command.
type Metadata struct {
	FilePath string
	Format   string
	Fields   []MetaField
}

// Printer handles all display output for the CLI.
type Printer struct {
	JSON   bool
	Writer io.Writer
}

// NewPrinter creates a default Printer writing to stdout.
func NewPrinter(jsonMode bool) *Printer {
	return &Printer{JSON: jsonMode, Writer: os.Stdout}
}

// PrintExtraction renders the reader's result for one file.
func (p *Printer) PrintExtraction(file string, ex Extraction) {
	if p.JSON {
		p.PrintJSON(struct {
			File             string `json:"file"`
			DateTaken        string `json:"dateTaken"`
			OriginalFileName string `json:"originalFileName"`
		}{file, ex.DateTaken, ex.OriginalFileName})
		return
	}
	fmt.Fprintf(p.Writer, "File         : %s\n", file)
	fmt.Fprintf(p.Writer, "Date taken   : %s\n", orNone(ex.DateTaken))
	fmt.Fprintf(p.Writer, "Original name: %s\n", orNone(ex.OriginalFileName))
}

// PrintMetadata renders a full field listing to the configured output.
func (p *Printer) PrintMetadata(m *Metadata) {
	if p.JSON {
		p.printMetadataJSON(m)
		return
	}
	p.printMetadataText(m)
}

func (p *Printer) printMetadataText(m *Metadata) {
	fmt.Fprintf(p.Writer, "File  : %s\n", m.FilePath)
	fmt.Fprintf(p.Writer, "Format: %s\n", m.Format)
	if len(m.Fields) == 0 {
		fmt.Fprintln(p.Writer, "(no metadata found)")
		return
	}
	fmt.Fprintln(p.Writer)

	// Group by section
	groups := make(map[string][]MetaField)
	order := []string{}
	seen := map[string]bool{}
	for _, f := range m.Fields {
		if !seen[f.Section] {
			seen[f.Section] = true
			order = append(order, f.Section)
		}
		groups[f.Section] = append(groups[f.Section], f)
	}

	for _, sec := range order {
		fmt.Fprintf(p.Writer, "── %s ──\n", sec)
		for _, f := range groups[sec] {
			fmt.Fprintf(p.Writer, "  %-30s %s\n", f.Key+":", f.Value)
		}
		fmt.Fprintln(p.Writer)
	}
}

func (p *Printer) printMetadataJSON(m *Metadata) {
	type jsonField struct {
		Key     string `json:"key"`
		Value   string `json:"value"`
		Section string `json:"section"`
	}
	type jsonOutput struct {
		FilePath string      `json:"file"`
		Format   string      `json:"format"`
		Fields   []jsonField `json:"fields"`
	}

	out := jsonOutput{
		FilePath: m.FilePath,
		Format:   m.Format,
	}
	for _, f := range m.Fields {
		out.Fields = append(out.Fields, jsonField{
			Key:     f.Key,
			Value:   f.Value,
			Section: f.Section,
		})
	}
	p.PrintJSON(out)
}

// PrintJSON renders any value as indented JSON.
func (p *Printer) PrintJSON(v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	fmt.Fprintln(p.Writer, string(b))
}

// PrintSuccess prints a success message.
func (p *Printer) PrintSuccess(msg string) {
	fmt.Fprintln(p.Writer, "✓ "+msg)
}

// PrintInfo prints an info line (suppressed in JSON mode).
func (p *Printer) PrintInfo(msg string) {
	if !p.JSON {
		fmt.Fprintln(p.Writer, msg)
	}
}

// PrintError prints an error to stderr.
func PrintError(msg string) {
	fmt.Fprintln(os.Stderr, "✗ Error: "+msg)
}

// ResolveOutPath returns dst if non-empty, otherwise src (in-place).
func ResolveOutPath(src, dst string) string {
	if dst == "" {
		return src
	}
	return dst
}

func orNone(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
