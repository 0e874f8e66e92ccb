package model

import (
	"encoding/json"
	"time"
)

const (
	InvocationPending = "pending"
	InvocationSuccess = "success"
	InvocationError   = "error"
)

// ToolInvocation records a single agent tool dispatch against the todo
// domain. Arguments and Result hold JSON for portability across drivers.
type ToolInvocation struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SessionID uint      `gorm:"not null;index" json:"session_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	ToolName  string    `gorm:"size:64;not null;index" json:"tool_name"`
	Arguments string    `gorm:"type:text" json:"arguments"`
	Result    string    `gorm:"type:text" json:"result"`
	Status    string    `gorm:"size:16;not null" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SetArguments stores the argument map as JSON; empty maps become "{}".
func (t *ToolInvocation) SetArguments(args map[string]any) {
	if len(args) == 0 {
		t.Arguments = "{}"
		return
	}
	b, _ := json.Marshal(args)
	t.Arguments = string(b)
}

// SetResult stores an arbitrary result value as JSON.
func (t *ToolInvocation) SetResult(result any) {
	if result == nil {
		t.Result = ""
		return
	}
	b, _ := json.Marshal(result)
	t.Result = string(b)
}
