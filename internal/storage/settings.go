package storage

type Setting struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description,omitempty"`
}

const (
	SettingOEETarget          = "oee_target"
	SettingAvailabilityTarget = "availability_target"
	SettingPerformanceTarget  = "performance_target"
	SettingQualityTarget      = "quality_target"
)

// DefaultTargets are used when a target setting was never saved. Percent, 0..100.
var DefaultTargets = map[string]float64{
	SettingOEETarget:          85,
	SettingAvailabilityTarget: 90,
	SettingPerformanceTarget:  95,
	SettingQualityTarget:      99,
}

type User struct {
	ID             int64  `json:"id"`
	Email          string `json:"email"`
	HashedPassword string `json:"-"`
	Role           string `json:"role"`
	IsPro          bool   `json:"is_pro"`
	IsActive       bool   `json:"is_active"`
}
