package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types for audit logging
const (
	AuditEventTypeContentDelete = "content_delete"
	AuditEventTypeAccessDenied  = "access_denied"
)

// AuditActionDelete is the action recorded for confirmed deletes
const AuditActionDelete = "delete"

type AuditLog struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	EventType     string        `db:"event_type" json:"eventType"`
	ActorID       string        `db:"actor_id" json:"actorId"`
	ActorRole     string        `db:"actor_role" json:"actorRole"`
	ResourceType  string        `db:"resource_type" json:"resourceType"`
	ResourceID    *string       `db:"resource_id" json:"resourceId"`
	Action        string        `db:"action" json:"action"`
	Success       bool          `db:"success" json:"success"`
	FailureReason *string       `db:"failure_reason" json:"failureReason"`
	IPAddress     *string       `db:"ip_address" json:"ipAddress"`
	UserAgent     *string       `db:"user_agent" json:"userAgent"`
	Metadata      AuditMetadata `db:"metadata" json:"metadata"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
}

// AuditFilter narrows an audit log listing; empty fields match everything
type AuditFilter struct {
	Search       string
	ResourceType string
	Success      *bool
	Limit        int
	Offset       int
}

// AuditMetadata holds additional context for audit events
type AuditMetadata map[string]any

// NewDeleteMetadata describes a delete call made against the platform API
func NewDeleteMetadata(view string, upstreamStatus int, title string) AuditMetadata {
	m := AuditMetadata{
		"view":            view,
		"upstream_status": upstreamStatus,
	}
	if title != "" {
		m["title"] = title
	}
	return m
}

// Scan implements sql.Scanner for JSONB
func (am *AuditMetadata) Scan(value any) error {
	if value == nil {
		*am = make(AuditMetadata)
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return ErrBadRequest
	}

	m := make(map[string]any)
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	*am = AuditMetadata(m)
	return nil
}

// Value implements driver.Valuer for JSONB
func (am AuditMetadata) Value() (driver.Value, error) {
	if am == nil {
		return nil, nil
	}
	return json.Marshal(map[string]any(am))
}
