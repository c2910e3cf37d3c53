package core

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const maxHexBytes = 32

// Printer handles all display output for the CLI.
type Printer struct {
	JSON    bool
	Verbose bool
	Out     io.Writer
	Err     io.Writer
}

// NewPrinter creates a Printer. Colour follows fatih/color's terminal
// detection.
func NewPrinter(out, errOut io.Writer, jsonMode, verbose bool) *Printer {
	return &Printer{JSON: jsonMode, Verbose: verbose, Out: out, Err: errOut}
}

// PrintMetadata renders tags grouped by category.
func (p *Printer) PrintMetadata(m *Metadata) error {
	if p.JSON {
		return p.printJSON(metadataJSON(m))
	}
	p.header(m.FilePath, m.Format)
	if len(m.Fields) == 0 {
		fmt.Fprintln(p.Out, "No metadata found")
		return nil
	}
	tw := newTable("Category", "Tag", "Value")
	for _, f := range m.Fields {
		tw.AppendRow(table.Row{f.Category, f.Key, f.Value})
	}
	tw.SetColumnConfigs([]table.ColumnConfig{{Number: 1, AutoMerge: true}, {Number: 3, WidthMax: 80}})
	fmt.Fprintln(p.Out, tw.Render())
	return nil
}

// PrintFlat renders a name/value map sorted by name.
func (p *Printer) PrintFlat(file, format string, flat FlatMetadata) error {
	m := &Metadata{FilePath: file, Format: format}
	for _, name := range flat.Names() {
		m.Fields = append(m.Fields, MetaField{Key: name, Value: FormatValue(flat[name]), Category: format})
	}
	return p.PrintMetadata(m)
}

// PrintVideo renders a container probe result.
func (p *Printer) PrintVideo(rec VideoMetadataRecord) error {
	if p.JSON {
		return p.printJSON(rec)
	}
	p.header(rec.FileName, rec.MIMEType)
	tw := newTable("Property", "Value")
	tw.AppendRow(table.Row{"Size", humanize.IBytes(uint64(rec.FileSize))})
	if rec.FormatName != "" {
		tw.AppendRow(table.Row{"Container", rec.FormatName})
	}
	if rec.Duration != nil {
		tw.AppendRow(table.Row{"Duration", (time.Duration(*rec.Duration * float64(time.Second))).Round(time.Millisecond).String()})
	}
	if rec.Width != nil && rec.Height != nil {
		tw.AppendRow(table.Row{"Resolution", fmt.Sprintf("%dx%d", *rec.Width, *rec.Height)})
	}
	keys := make([]string, 0, len(rec.Tags))
	for k := range rec.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		tw.AppendRow(table.Row{"tag:" + k, rec.Tags[k]})
	}
	fmt.Fprintln(p.Out, tw.Render())
	return nil
}

// PrintTable renders rows under headers.
func (p *Printer) PrintTable(headers []string, rows [][]string) {
	tw := newTable(headers...)
	for _, r := range rows {
		row := make(table.Row, len(headers))
		for i := range row {
			if i < len(r) {
				row[i] = r[i]
			}
		}
		tw.AppendRow(row)
	}
	fmt.Fprintln(p.Out, tw.Render())
}

// PrintSuccess prints a success line.
func (p *Printer) PrintSuccess(format string, args ...any) {
	if p.JSON {
		return
	}
	color.New(color.FgHiGreen).Fprint(p.Out, "✓ ")
	fmt.Fprintf(p.Out, format+"\n", args...)
}

// PrintWarning prints a warning to the error stream.
func (p *Printer) PrintWarning(format string, args ...any) {
	color.New(color.FgHiYellow).Fprint(p.Err, "! ")
	fmt.Fprintf(p.Err, format+"\n", args...)
}

// PrintInfo prints an info line (suppressed in JSON mode).
func (p *Printer) PrintInfo(format string, args ...any) {
	if !p.JSON {
		fmt.Fprintf(p.Out, format+"\n", args...)
	}
}

// PrintJSON writes v as indented JSON.
func (p *Printer) PrintJSON(v any) error { return p.printJSON(v) }

func (p *Printer) header(file, format string) {
	bold := color.New(color.Bold)
	bold.Fprint(p.Out, "File  : ")
	fmt.Fprintln(p.Out, file)
	bold.Fprint(p.Out, "Format: ")
	fmt.Fprintln(p.Out, format)
}

func (p *Printer) printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(p.Out, string(b))
	return err
}

type jsonField struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	Category string `json:"category"`
}

type jsonMetadata struct {
	FilePath string      `json:"file"`
	Format   string      `json:"format"`
	Fields   []jsonField `json:"fields"`
}

func metadataJSON(m *Metadata) jsonMetadata {
	out := jsonMetadata{FilePath: m.FilePath, Format: m.Format, Fields: []jsonField{}}
	for _, f := range m.Fields {
		out.Fields = append(out.Fields, jsonField(f))
	}
	return out
}

func newTable(headers ...string) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	row := make(table.Row, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	tw.AppendHeader(row)
	tw.Style().Format.Header = text.FormatDefault
	return tw
}

// FormatValue renders a metadata value for display: nil as "N/A", bytes as
// hex, slices element by element, anything else via String or JSON.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return "N/A"
	case string:
		return t
	case []byte:
		if len(t) > maxHexBytes {
			return hex.EncodeToString(t[:maxHexBytes]) + fmt.Sprintf("… (%d bytes)", len(t))
		}
		return hex.EncodeToString(t)
	case fmt.Stringer:
		return t.String()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = FormatValue(rv.Index(i).Interface())
		}
		return strings.Join(parts, ", ")
	case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return fmt.Sprint(v)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
