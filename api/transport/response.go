package transport

import (
	"encoding/json"
	"time"

	"github.com/fastygo/todolist/domain"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

// NewSuccess returns a success envelope.
func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope with optional metadata.
func NewError(code string, err interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Meta:   meta,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// ListMeta accompanies a task listing.
type ListMeta struct {
	Count int `json:"count"`
}

// Health is the body of the health endpoint.
type Health struct {
	Store     string     `json:"store"`
	Driver    string     `json:"driver"`
	Tasks     int        `json:"tasks"`
	LastSave  *time.Time `json:"lastSave"`
	LastCheck time.Time  `json:"lastCheck"`
	Error     string     `json:"error,omitempty"`
}

// TaskList wraps tasks so an empty collection still encodes as [].
func TaskList(tasks []domain.Task) []domain.Task {
	if tasks == nil {
		return []domain.Task{}
	}
	return tasks
}
