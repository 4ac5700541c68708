package manager

import (
	"excitond/internal/config"
	"excitond/internal/registry"
)

// PreflightCheck is the outcome of one startup check.
type PreflightCheck struct {
	Name   string `json:"name"`
	OK     bool   `json:"ok"`
	Detail string `json:"detail,omitempty"`
}

// Preflight loads and validates every registered preset. It does not mutate
// state and is safe to call at any time.
func (m *Manager) Preflight() []PreflightCheck {
	presets := m.ListPresets()
	checks := make([]PreflightCheck, 0, len(presets))
	for _, p := range presets {
		c := PreflightCheck{Name: "preset:" + p.ID, OK: true}
		cfg, err := registry.Load(p)
		if err == nil {
			err = config.ValidateExperiment(cfg)
		}
		if err != nil {
			c.OK = false
			c.Detail = err.Error()
		}
		checks = append(checks, c)
	}
	return checks
}
