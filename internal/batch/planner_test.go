package batch

import (
	"reflect"
	"testing"
)

type fakeProgress map[int]bool

func (f fakeProgress) Has(row int) bool {
	return f[row]
}

func rowsUpTo(n int) fakeProgress {
	f := fakeProgress{}
	for i := 0; i < n; i++ {
		f[i] = true
	}
	return f
}

func TestPlan(t *testing.T) {
	tests := []struct {
		name      string
		totalRows int
		chunkSize int
		want      []Chunk
	}{
		{
			name:      "65 rows by 30",
			totalRows: 65,
			chunkSize: 30,
			want: []Chunk{
				{Index: 0, Start: 0, End: 30},
				{Index: 1, Start: 30, End: 60},
				{Index: 2, Start: 60, End: 65},
			},
		},
		{
			name:      "exact multiple",
			totalRows: 60,
			chunkSize: 30,
			want: []Chunk{
				{Index: 0, Start: 0, End: 30},
				{Index: 1, Start: 30, End: 60},
			},
		},
		{
			name:      "smaller than one chunk",
			totalRows: 4,
			chunkSize: 30,
			want:      []Chunk{{Index: 0, Start: 0, End: 4}},
		},
		{
			name:      "empty dataset",
			totalRows: 0,
			chunkSize: 30,
			want:      []Chunk{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Plan(tt.totalRows, tt.chunkSize)
			if err != nil {
				t.Fatalf("Plan() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Plan() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPlan_Partition(t *testing.T) {
	for n := 0; n <= 100; n++ {
		for c := 1; c <= 35; c++ {
			chunks, err := Plan(n, c)
			if err != nil {
				t.Fatalf("Plan(%d, %d) error = %v", n, c, err)
			}

			wantCount := (n + c - 1) / c
			if len(chunks) != wantCount {
				t.Fatalf("Plan(%d, %d) gave %d chunks, want %d", n, c, len(chunks), wantCount)
			}

			next := 0
			for i, chunk := range chunks {
				if chunk.Index != i {
					t.Fatalf("Plan(%d, %d): chunk %d has index %d", n, c, i, chunk.Index)
				}
				if chunk.Start != next {
					t.Fatalf("Plan(%d, %d): gap or overlap at chunk %d (start %d, want %d)", n, c, i, chunk.Start, next)
				}
				if chunk.Len() <= 0 || chunk.Len() > c {
					t.Fatalf("Plan(%d, %d): chunk %d has length %d", n, c, i, chunk.Len())
				}
				if i < len(chunks)-1 && chunk.Len() != c {
					t.Fatalf("Plan(%d, %d): non-final chunk %d is short", n, c, i)
				}
				next = chunk.End
			}
			if next != n {
				t.Fatalf("Plan(%d, %d) covers [0,%d), want [0,%d)", n, c, next, n)
			}
		}
	}
}

func TestPlan_InvalidInput(t *testing.T) {
	if _, err := Plan(10, 0); err == nil {
		t.Error("expected error for zero chunk size")
	}
	if _, err := Plan(10, -3); err == nil {
		t.Error("expected error for negative chunk size")
	}
	if _, err := Plan(-1, 30); err == nil {
		t.Error("expected error for negative row count")
	}
}

func TestChunkRows(t *testing.T) {
	chunk := Chunk{Index: 2, Start: 60, End: 65}

	if got := chunk.Rows(); !reflect.DeepEqual(got, []int{60, 61, 62, 63, 64}) {
		t.Errorf("Rows() = %v", got)
	}
	if chunk.String() != "chunk 2 [60,65)" {
		t.Errorf("String() = %q", chunk.String())
	}
}

func TestIsSatisfied(t *testing.T) {
	chunk := Chunk{Index: 1, Start: 30, End: 60}

	tests := []struct {
		name     string
		progress Progress
		want     bool
	}{
		{"nil progress", nil, false},
		{"empty progress", fakeProgress{}, false},
		{"all rows recorded", rowsUpTo(60), true},
		{"one row missing", func() fakeProgress { f := rowsUpTo(60); delete(f, 45); return f }(), false},
		{"only earlier rows", rowsUpTo(30), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSatisfied(chunk, tt.progress); got != tt.want {
				t.Errorf("IsSatisfied() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPending(t *testing.T) {
	chunks, _ := Plan(65, 30)

	// Rows 0..29 done, row 61 done, rest missing
	progress := rowsUpTo(30)
	progress[61] = true

	got := Pending(chunks, progress)
	want := []Chunk{
		{Index: 1, Start: 30, End: 60},
		{Index: 2, Start: 60, End: 65},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Pending() = %v, want %v", got, want)
	}

	if got := Pending(chunks, rowsUpTo(65)); len(got) != 0 {
		t.Errorf("Pending() with full progress = %v, want none", got)
	}
}
