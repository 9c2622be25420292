// Package export writes sampled distributions as Arrow IPC files, one
// float64 column per key, so external tools can plot or analyze them.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// DefaultBatchSize is the number of rows per record batch.
const DefaultBatchSize = 64 * 1024

// Table is a set of equally long float64 columns plus string metadata.
type Table struct {
	Columns  []string
	Rows     [][]float64 // Rows[i][j] is column j of row i
	Metadata map[string]string
}

// FromColumn builds a single-column table.
func FromColumn(name string, xs []float64) Table {
	rows := make([][]float64, len(xs))
	for i, x := range xs {
		rows[i] = []float64{x}
	}
	return Table{Columns: []string{name}, Rows: rows}
}

// UniqueColumns returns names with repeats renamed "name_2", "name_3" and so
// on, skipping any suffix already taken, so the result is a valid column set.
func UniqueColumns(names []string) []string {
	taken := make(map[string]bool, len(names))
	for _, n := range names {
		taken[n] = true
	}
	out := make([]string, len(names))
	seen := make(map[string]bool, len(names))
	for i, n := range names {
		if !seen[n] {
			seen[n] = true
			out[i] = n
			continue
		}
		for k := 2; ; k++ {
			c := n + "_" + strconv.Itoa(k)
			if !taken[c] {
				taken[c] = true
				out[i] = c
				break
			}
		}
	}
	return out
}

// Writer writes Tables in the Arrow IPC file format.
type Writer struct {
	mem       memory.Allocator
	batchSize int
}

// Option configures a Writer.
type Option func(*Writer)

// WithAllocator sets the Arrow memory allocator.
func WithAllocator(mem memory.Allocator) Option {
	return func(w *Writer) { w.mem = mem }
}

// WithBatchSize sets the rows per record batch. Values below 1 are ignored.
func WithBatchSize(n int) Option {
	return func(w *Writer) {
		if n > 0 {
			w.batchSize = n
		}
	}
}

// NewWriter creates a Writer.
func NewWriter(opts ...Option) *Writer {
	w := &Writer{mem: memory.DefaultAllocator, batchSize: DefaultBatchSize}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (t Table) validate() error {
	if len(t.Columns) == 0 {
		return errors.New("table has no columns")
	}
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if seen[c] {
			return fmt.Errorf("duplicate column %q", c)
		}
		seen[c] = true
	}
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d values, want %d", i, len(row), len(t.Columns))
		}
	}
	return nil
}

func (t Table) schema() *arrow.Schema {
	fields := make([]arrow.Field, len(t.Columns))
	for i, c := range t.Columns {
		fields[i] = arrow.Field{Name: c, Type: arrow.PrimitiveTypes.Float64}
	}
	if len(t.Metadata) == 0 {
		return arrow.NewSchema(fields, nil)
	}
	keys := make([]string, 0, len(t.Metadata))
	for k := range t.Metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = t.Metadata[k]
	}
	md := arrow.NewMetadata(keys, values)
	return arrow.NewSchema(fields, &md)
}

// Write encodes t to out.
func (w *Writer) Write(out io.Writer, t Table) error {
	if err := t.validate(); err != nil {
		return fmt.Errorf("invalid table: %w", err)
	}
	schema := t.schema()

	fw, err := ipc.NewFileWriter(out, ipc.WithSchema(schema), ipc.WithAllocator(w.mem))
	if err != nil {
		return fmt.Errorf("failed to create arrow writer: %w", err)
	}

	b := array.NewRecordBuilder(w.mem, schema)
	defer b.Release()

	for start := 0; start < len(t.Rows) || start == 0; start += w.batchSize {
		end := min(start+w.batchSize, len(t.Rows))
		for j := range t.Columns {
			col := b.Field(j).(*array.Float64Builder)
			col.Reserve(end - start)
			for _, row := range t.Rows[start:end] {
				col.Append(row[j])
			}
		}
		rec := b.NewRecord()
		err := fw.Write(rec)
		rec.Release()
		if err != nil {
			fw.Close()
			return fmt.Errorf("failed to write record batch: %w", err)
		}
		if end == len(t.Rows) {
			break
		}
	}

	if err := fw.Close(); err != nil {
		return fmt.Errorf("failed to finalize arrow file: %w", err)
	}
	return nil
}

// WriteFile encodes t to path, creating parent directories.
func (w *Writer) WriteFile(path string, t Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}
	if err := w.Write(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile decodes an Arrow IPC file written by Writer.
func ReadFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return Table{}, fmt.Errorf("failed to open export file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes an Arrow IPC file. Every column must be float64.
func Read(r ipc.ReadAtSeeker) (Table, error) {
	fr, err := ipc.NewFileReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("failed to open arrow file: %w", err)
	}
	defer fr.Close()

	schema := fr.Schema()
	t := Table{Columns: make([]string, schema.NumFields())}
	for i, f := range schema.Fields() {
		if f.Type.ID() != arrow.FLOAT64 {
			return Table{}, fmt.Errorf("column %q has type %s, want float64", f.Name, f.Type)
		}
		t.Columns[i] = f.Name
	}
	if md := schema.Metadata(); md.Len() > 0 {
		t.Metadata = make(map[string]string, md.Len())
		for i, k := range md.Keys() {
			t.Metadata[k] = md.Values()[i]
		}
	}

	for i := range fr.NumRecords() {
		rec, err := fr.Record(i)
		if err != nil {
			return Table{}, fmt.Errorf("failed to read record batch %d: %w", i, err)
		}
		cols := make([]*array.Float64, rec.NumCols())
		for j := range cols {
			cols[j] = rec.Column(j).(*array.Float64)
		}
		for r := range int(rec.NumRows()) {
			row := make([]float64, len(cols))
			for j, c := range cols {
				row[j] = c.Value(r)
			}
			t.Rows = append(t.Rows, row)
		}
	}
	return t, nil
}
