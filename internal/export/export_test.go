package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

func TestWriteRead_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		table     Table
		batchSize int
	}{
		{
			name:  "single column",
			table: FromColumn("value", []float64{0.5, -1.25, 3}),
		},
		{
			name: "joint with metadata",
			table: Table{
				Columns:  []string{"die_1", "die_2"},
				Rows:     [][]float64{{1, 6}, {3, 3}, {5, 2}, {6, 6}, {2, 4}},
				Metadata: map[string]string{"scenario": "dice", "seed": "42"},
			},
			batchSize: 2,
		},
		{
			name:  "empty",
			table: Table{Columns: []string{"value"}},
		},
		{
			name:      "exact batches",
			table:     FromColumn("x", []float64{1, 2, 3, 4}),
			batchSize: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(WithAllocator(memory.NewGoAllocator()), WithBatchSize(tt.batchSize))
			if err := w.Write(&buf, tt.table); err != nil {
				t.Fatalf("Write() error = %v", err)
			}

			got, err := Read(bytes.NewReader(buf.Bytes()))
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			assertTable(t, got, tt.table)
		})
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "dist.arrow")
	table := Table{
		Columns:  []string{"value"},
		Rows:     [][]float64{{1}, {2}},
		Metadata: map[string]string{"statistic": "distribution"},
	}
	if err := NewWriter().WriteFile(path, table); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	assertTable(t, got, table)
}

func TestWrite_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		table Table
	}{
		{"no columns", Table{}},
		{"duplicate column", Table{Columns: []string{"a", "a"}}},
		{"ragged row", Table{Columns: []string{"a", "b"}, Rows: [][]float64{{1, 2}, {3}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewWriter().Write(&buf, tt.table); err == nil {
				t.Error("expected an error")
			}
			if buf.Len() != 0 {
				t.Errorf("invalid table wrote %d bytes", buf.Len())
			}
		})
	}
}

func TestRead_NotArrow(t *testing.T) {
	if _, err := Read(bytes.NewReader([]byte("not an arrow file"))); err == nil {
		t.Error("expected an error for garbage input")
	}
}

func assertTable(t *testing.T, got, want Table) {
	t.Helper()
	if len(got.Columns) != len(want.Columns) {
		t.Fatalf("columns = %v, want %v", got.Columns, want.Columns)
	}
	for i := range want.Columns {
		if got.Columns[i] != want.Columns[i] {
			t.Errorf("column %d = %q, want %q", i, got.Columns[i], want.Columns[i])
		}
	}
	if len(got.Rows) != len(want.Rows) {
		t.Fatalf("rows = %d, want %d", len(got.Rows), len(want.Rows))
	}
	for i := range want.Rows {
		for j := range want.Rows[i] {
			if got.Rows[i][j] != want.Rows[i][j] {
				t.Errorf("row %d col %d = %v, want %v", i, j, got.Rows[i][j], want.Rows[i][j])
			}
		}
	}
	if len(got.Metadata) != len(want.Metadata) {
		t.Errorf("metadata = %v, want %v", got.Metadata, want.Metadata)
	}
	for k, v := range want.Metadata {
		if got.Metadata[k] != v {
			t.Errorf("metadata[%q] = %q, want %q", k, got.Metadata[k], v)
		}
	}
}

func TestUniqueColumns(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"distinct", []string{"die_1", "total"}, []string{"die_1", "total"}},
		{"repeat", []string{"heads", "heads"}, []string{"heads", "heads_2"}},
		{"three repeats", []string{"x", "x", "x"}, []string{"x", "x_2", "x_3"}},
		{"suffix already taken", []string{"x", "x", "x_2"}, []string{"x", "x_3", "x_2"}},
		{"empty", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UniqueColumns(tt.input)
			if len(got) != len(tt.want) {
				t.Fatalf("UniqueColumns(%q) = %q, want %q", tt.input, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("UniqueColumns(%q) = %q, want %q", tt.input, got, tt.want)
					break
				}
			}
			if len(got) == 0 {
				return
			}
			if err := (Table{Columns: got}).validate(); err != nil {
				t.Errorf("validate() = %v", err)
			}
		})
	}
}
