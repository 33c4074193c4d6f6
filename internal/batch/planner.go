// Package batch partitions an ordered dataset into fixed-size chunks and
// works out which chunks still need provider calls.
package batch

import "fmt"

// DefaultChunkSize is the number of rows sent to the provider in one call;
// it respects the provider's batch ceiling.
const DefaultChunkSize = 30

// Chunk is the half-open row range [Start, End).
type Chunk struct {
	Index int
	Start int
	End   int
}

// Len returns the number of rows in the chunk.
func (c Chunk) Len() int {
	return c.End - c.Start
}

// Rows returns the row indices covered by the chunk.
func (c Chunk) Rows() []int {
	rows := make([]int, 0, c.Len())
	for i := c.Start; i < c.End; i++ {
		rows = append(rows, i)
	}
	return rows
}

func (c Chunk) String() string {
	return fmt.Sprintf("chunk %d [%d,%d)", c.Index, c.Start, c.End)
}

// Progress is the part of a language's checkpoint the planner needs.
type Progress interface {
	Has(row int) bool
}

// Plan splits [0, totalRows) into ceil(totalRows/chunkSize) consecutive
// chunks. Only the last chunk may be shorter.
func Plan(totalRows, chunkSize int) ([]Chunk, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if totalRows < 0 {
		return nil, fmt.Errorf("row count must not be negative, got %d", totalRows)
	}

	chunks := make([]Chunk, 0, (totalRows+chunkSize-1)/chunkSize)
	for start := 0; start < totalRows; start += chunkSize {
		end := min(start+chunkSize, totalRows)
		chunks = append(chunks, Chunk{Index: len(chunks), Start: start, End: end})
	}
	return chunks, nil
}

// IsSatisfied reports whether every row of the chunk is already recorded.
// Satisfied chunks need no provider calls.
func IsSatisfied(chunk Chunk, progress Progress) bool {
	if progress == nil {
		return false
	}
	for row := chunk.Start; row < chunk.End; row++ {
		if !progress.Has(row) {
			return false
		}
	}
	return true
}

// Pending returns the chunks that are not satisfied, in order.
func Pending(chunks []Chunk, progress Progress) []Chunk {
	var pending []Chunk
	for _, chunk := range chunks {
		if !IsSatisfied(chunk, progress) {
			pending = append(pending, chunk)
		}
	}
	return pending
}
