package importer

import (
	"slices"
	"testing"
)

func TestChunk(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		n, size    int
		wantChunks int
	}{
		{"empty", 0, 5, 0},
		{"exact multiple", 100, 50, 2},
		{"remainder", 101, 50, 3},
		{"smaller than size", 3, 20, 1},
		{"size one", 4, 1, 4},
		{"zero size", 7, 0, 1},
		{"negative size", 7, -3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			items := make([]int, tt.n)
			for i := range items {
				items[i] = i
			}

			chunks := Chunk(items, tt.size)
			if len(chunks) != tt.wantChunks {
				t.Fatalf("Chunk(%d, %d) = %d chunks, want %d", tt.n, tt.size, len(chunks), tt.wantChunks)
			}

			var joined []int
			for i, c := range chunks {
				if tt.size > 0 && len(c) > tt.size {
					t.Errorf("chunk %d has %d items, max %d", i, len(c), tt.size)
				}
				joined = append(joined, c...)
			}
			if tt.n > 0 && !slices.Equal(joined, items) {
				t.Errorf("concatenated chunks differ from input")
			}
		})
	}
}

func TestChunk_AppendDoesNotClobberNext(t *testing.T) {
	t.Parallel()

	items := []int{1, 2, 3, 4}
	chunks := Chunk(items, 2)
	_ = append(chunks[0], 99)

	if chunks[1][0] != 3 {
		t.Fatalf("appending to a chunk overwrote the next one: %v", chunks[1])
	}
}
