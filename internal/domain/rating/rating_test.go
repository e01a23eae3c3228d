package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute(t *testing.T) {
	cases := []struct {
		name   string
		scores []int32
		want   *int32
	}{
		{"no reviews", nil, nil},
		{"single score", []int32{8}, ptr(8)},
		{"half rounds up", []int32{8, 5}, ptr(7)},
		{"plain mean", []int32{1, 2, 3}, ptr(2)},
		{"rounds down below half", []int32{7, 7, 8}, ptr(7)},
		{"all max", []int32{10, 10, 10}, ptr(10)},
		{"all min", []int32{1, 1}, ptr(1)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Compute(tc.scores)
			if tc.want == nil {
				assert.Nil(t, got)
				return
			}
			if assert.NotNil(t, got) {
				assert.Equal(t, *tc.want, *got)
			}
		})
	}
}

func TestComputeAfterRemoval(t *testing.T) {
	// Scores 8 then 5 average to 7; removing the 8 leaves 5.
	assert.Equal(t, int32(7), *Compute([]int32{8, 5}))
	assert.Equal(t, int32(5), *Compute([]int32{5}))
	assert.Nil(t, Compute([]int32{}))
}

func ptr(v int32) *int32 { return &v }
