package post_test

import (
	"testing"

	postPort "contentstaging/internal/ports/post"

	"github.com/stretchr/testify/assert"
)

func TestUniqueIDs(t *testing.T) {
	tests := []struct {
		name  string
		lists [][]uint64
		want  []uint64
	}{
		{"no lists", nil, nil},
		{"single list", [][]uint64{{3, 1, 2}}, []uint64{3, 1, 2}},
		{"duplicates within a list", [][]uint64{{4, 4, 5}}, []uint64{4, 5}},
		{"overlap across lists", [][]uint64{{7, 8}, {8, 9, 7}}, []uint64{7, 8, 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, postPort.UniqueIDs(tt.lists...))
		})
	}
}

func TestUniqueIDs_DoesNotAliasInput(t *testing.T) {
	in := make([]uint64, 2, 8)
	in[0], in[1] = 1, 2

	out := postPort.UniqueIDs(in, []uint64{3})
	out[0] = 99

	assert.Equal(t, []uint64{1, 2}, in)
	assert.Equal(t, []uint64{1, 2, 0}, in[:3])
}
