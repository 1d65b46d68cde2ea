package playlist

import (
	"fmt"
	"testing"

	"github.com/e-dream-ai/dreamstream/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeDreams(n int) []model.Dream {
	dreams := make([]model.Dream, n)
	for i := range dreams {
		dreams[i] = model.Dream{ID: int64(i + 1), UUID: fmt.Sprintf("d-%d", i+1)}
	}
	return dreams
}

func TestGroup(t *testing.T) {
	t.Run("small runs stay individual", func(t *testing.T) {
		for n := 0; n <= 4; n++ {
			got := Group(makeDreams(n))
			assert.Len(t, got.Individual, n, "n=%d", n)
			assert.Empty(t, got.Thumbnails, "n=%d", n)
			assert.False(t, got.Overflow, "n=%d", n)
		}
	})

	t.Run("five items: one individual, four thumbnails", func(t *testing.T) {
		got := Group(makeDreams(5))
		require.Len(t, got.Individual, 1)
		require.Len(t, got.Thumbnails, 4)
		assert.Equal(t, int64(1), got.Individual[0].ID)
		assert.Equal(t, int64(2), got.Thumbnails[0].ID)
		assert.Equal(t, int64(5), got.Thumbnails[3].ID)
		assert.False(t, got.Overflow)
	})

	t.Run("individual count grows to three then caps", func(t *testing.T) {
		cases := map[int]int{5: 1, 6: 2, 7: 3, 8: 3, 9: 3, 20: 3}
		for n, individual := range cases {
			got := Group(makeDreams(n))
			assert.Len(t, got.Individual, individual, "n=%d", n)
			assert.Len(t, got.Thumbnails, 4, "n=%d", n)
		}
	})

	t.Run("thumbnails follow the individual items", func(t *testing.T) {
		got := Group(makeDreams(10))
		require.Len(t, got.Individual, 3)
		require.Len(t, got.Thumbnails, 4)
		assert.Equal(t, int64(3), got.Individual[2].ID)
		assert.Equal(t, int64(4), got.Thumbnails[0].ID)
		assert.Equal(t, int64(7), got.Thumbnails[3].ID)
	})

	t.Run("overflow appears above eight items", func(t *testing.T) {
		assert.False(t, Group(makeDreams(8)).Overflow)
		assert.True(t, Group(makeDreams(9)).Overflow)
		assert.True(t, Group(makeDreams(50)).Overflow)
	})

	t.Run("every shown item comes from the input in order", func(t *testing.T) {
		dreams := makeDreams(7)
		got := Group(dreams)

		shown := append(append([]model.Dream{}, got.Individual...), got.Thumbnails...)
		require.Len(t, shown, 7)
		for i, d := range shown {
			assert.Equal(t, dreams[i].ID, d.ID)
		}
	})
}
