package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRobotPosition(t *testing.T) {
	tests := []struct {
		name        string
		x           float64
		y           float64
		heading     float64
		expectError bool
	}{
		{name: "Valid position", x: 10.5, y: 20.0, heading: 90.0, expectError: false},
		{name: "Valid origin", x: 0, y: 0, heading: 0, expectError: false},
		{name: "Valid max corner", x: 10000, y: 10000, heading: 359.9, expectError: false},
		{name: "Negative x rejected", x: -0.1, y: 0, heading: 0, expectError: true},
		{name: "X beyond bound rejected", x: 10000.1, y: 0, heading: 0, expectError: true},
		{name: "Negative y rejected", x: 0, y: -1, heading: 0, expectError: true},
		{name: "Heading 360 rejected", x: 0, y: 0, heading: 360, expectError: true},
		{name: "Negative heading rejected", x: 0, y: 0, heading: -1, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			position, err := NewRobotPosition(tt.x, tt.y, tt.heading)

			if tt.expectError {
				assert.Error(t, err)
				assert.True(t, IsInvalidArgument(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.x, position.X)
				assert.Equal(t, tt.y, position.Y)
				assert.Equal(t, tt.heading, position.Heading)
			}
		})
	}
}

func TestRobotPositionDistanceTo(t *testing.T) {
	a, err := NewRobotPosition(0, 0, 0)
	require.NoError(t, err)
	b, err := NewRobotPosition(3, 4, 0)
	require.NoError(t, err)

	assert.Equal(t, 5.0, a.DistanceTo(b))
	assert.Equal(t, 5.0, b.DistanceTo(a))
	assert.Equal(t, 0.0, a.DistanceTo(a))
}

func TestRobotPositionIsTooCloseTo(t *testing.T) {
	a, err := NewRobotPosition(0, 0, 0)
	require.NoError(t, err)
	b, err := NewRobotPosition(0, 0.5, 0)
	require.NoError(t, err)

	assert.True(t, a.IsTooCloseTo(b, 1.0))
	assert.False(t, a.IsTooCloseTo(b, 0.5))
	assert.False(t, a.IsTooCloseTo(b, 0.4))
}
