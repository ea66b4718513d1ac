package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBatteryLevel(t *testing.T) {
	tests := []struct {
		name        string
		percentage  int
		expectError bool
	}{
		{name: "Valid mid-range", percentage: 55, expectError: false},
		{name: "Valid zero", percentage: 0, expectError: false},
		{name: "Valid full", percentage: 100, expectError: false},
		{name: "Negative rejected", percentage: -1, expectError: true},
		{name: "Over 100 rejected", percentage: 101, expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			battery, err := NewBatteryLevel(tt.percentage)

			if tt.expectError {
				assert.Error(t, err)
				assert.True(t, IsInvalidArgument(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.percentage, battery.Percentage)
			}
		})
	}
}

func TestBatteryHealthStatus(t *testing.T) {
	tests := []struct {
		percentage int
		expected   BatteryHealthStatus
	}{
		{0, BatteryCritical},
		{10, BatteryCritical},
		{11, BatteryLow},
		{20, BatteryLow},
		{21, BatteryMarginal},
		{29, BatteryMarginal},
		{30, BatteryNormal},
		{79, BatteryNormal},
		{80, BatteryFull},
		{100, BatteryFull},
	}

	for _, tt := range tests {
		battery, err := NewBatteryLevel(tt.percentage)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, battery.HealthStatus(), "percentage %d", tt.percentage)
	}
}

func TestBatteryThresholds(t *testing.T) {
	tests := []struct {
		name              string
		percentage        int
		sufficientForTask bool
		needsCharging     bool
		needsEmergency    bool
		hasTravelBuffer   bool
	}{
		{name: "Critical", percentage: 5, sufficientForTask: false, needsCharging: true, needsEmergency: true, hasTravelBuffer: false},
		{name: "Emergency boundary", percentage: 10, sufficientForTask: false, needsCharging: true, needsEmergency: true, hasTravelBuffer: true},
		{name: "Low boundary", percentage: 20, sufficientForTask: false, needsCharging: true, needsEmergency: false, hasTravelBuffer: true},
		{name: "Above low", percentage: 21, sufficientForTask: false, needsCharging: false, needsEmergency: false, hasTravelBuffer: true},
		{name: "Task minimum boundary", percentage: 30, sufficientForTask: false, needsCharging: false, needsEmergency: false, hasTravelBuffer: true},
		{name: "Sufficient", percentage: 31, sufficientForTask: true, needsCharging: false, needsEmergency: false, hasTravelBuffer: true},
		{name: "Full", percentage: 100, sufficientForTask: true, needsCharging: false, needsEmergency: false, hasTravelBuffer: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			battery, err := NewBatteryLevel(tt.percentage)
			require.NoError(t, err)

			assert.Equal(t, tt.sufficientForTask, battery.IsSufficientForTask())
			assert.Equal(t, tt.needsCharging, battery.NeedsCharging())
			assert.Equal(t, tt.needsEmergency, battery.NeedsEmergencyCharging())
			assert.Equal(t, tt.hasTravelBuffer, battery.HasTravelBuffer())
		})
	}
}

func TestFullBattery(t *testing.T) {
	battery := FullBattery()
	assert.Equal(t, 100, battery.Percentage)
	assert.Equal(t, BatteryFull, battery.HealthStatus())
}
