package monitor

import "time"

// Status is the latest store check result.
type Status struct {
	StoreOK    bool      `json:"store_ok"`
	StoreError string    `json:"store_error,omitempty"`
	Driver     string    `json:"driver"`
	Tasks      int       `json:"tasks"`
	LastSave   time.Time `json:"last_save"`
	LastCheck  time.Time `json:"last_check"`
}

// Checked reports whether at least one check has run.
func (s Status) Checked() bool {
	return !s.LastCheck.IsZero()
}
