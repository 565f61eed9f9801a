package models

import "time"

// Session is the narrow row backing cookie sessions: an opaque JSON payload
// keyed by sid, with an indexed expiry for garbage-collection sweeps.
type Session struct {
	SID    string    `gorm:"column:sid;primaryKey" json:"sid"`
	Sess   string    `gorm:"column:sess;type:jsonb;not null" json:"sess"`
	Expire time.Time `gorm:"column:expire;not null;index:idx_session_expire" json:"expire"`
}

func (Session) TableName() string { return "sessions" }
