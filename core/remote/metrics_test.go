package remote

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArbitrate(t *testing.T) {
	t.Run("desktop wins when active and reporting", func(t *testing.T) {
		got := Arbitrate(
			Signal{Active: true, FPS: 30, Duration: 12.5, CurrentTime: 3.2},
			Signal{Active: true, FPS: 60, Duration: 12.5, CurrentTime: 4.0},
		)
		assert.Equal(t, SourceDesktop, got.Source)
		assert.Equal(t, 30.0, got.FPS)
		assert.Equal(t, 3.2, got.CurrentTime)
	})

	t.Run("inactive desktop yields to web", func(t *testing.T) {
		got := Arbitrate(
			Signal{Active: false, FPS: 30, Duration: 10},
			Signal{FPS: 24, Duration: 8, CurrentTime: 1},
		)
		assert.Equal(t, SourceWeb, got.Source)
		assert.Equal(t, 24.0, got.FPS)
	})

	t.Run("active desktop with all zeros yields to web", func(t *testing.T) {
		// Startup race: the desktop connects before producing metrics.
		got := Arbitrate(
			Signal{Active: true},
			Signal{FPS: 24, Duration: 8, CurrentTime: 1},
		)
		assert.Equal(t, SourceWeb, got.Source)
	})

	t.Run("any single non-zero desktop field is enough", func(t *testing.T) {
		got := Arbitrate(
			Signal{Active: true, CurrentTime: 0.1},
			Signal{FPS: 24, Duration: 8},
		)
		assert.Equal(t, SourceDesktop, got.Source)
	})

	t.Run("non-finite values coerce to zero", func(t *testing.T) {
		got := Arbitrate(
			Signal{Active: true, FPS: math.NaN(), Duration: math.Inf(1), CurrentTime: math.Inf(-1)},
			Signal{FPS: 24, Duration: 8, CurrentTime: 1},
		)
		// All desktop numbers sanitized to zero, so web wins.
		assert.Equal(t, SourceWeb, got.Source)
		assert.Equal(t, 24.0, got.FPS)
	})

	t.Run("result fields are always finite", func(t *testing.T) {
		got := Arbitrate(
			Signal{Active: true, FPS: 30, Duration: math.NaN(), CurrentTime: 2},
			Signal{},
		)
		assert.Equal(t, SourceDesktop, got.Source)
		assert.Equal(t, 0.0, got.Duration)
		assert.False(t, math.IsNaN(got.Duration))
	})
}

func TestArbiterMemoization(t *testing.T) {
	a := NewArbiter()

	desktop := Signal{Active: true, FPS: 30, Duration: 10, CurrentTime: 2}
	web := Signal{FPS: 24, Duration: 8}

	first := a.Current(desktop, web)
	second := a.Current(desktop, web)
	assert.Equal(t, first, second)

	// A changed input recomputes.
	desktop.CurrentTime = 3
	third := a.Current(desktop, web)
	assert.NotEqual(t, first, third)
	assert.Equal(t, 3.0, third.CurrentTime)
}
