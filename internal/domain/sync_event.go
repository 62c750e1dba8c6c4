package domain

import "time"

// SyncEventType names the stage of a sweep an event reports
type SyncEventType string

const (
	SyncEventBrandStarted   SyncEventType = "brand_started"
	SyncEventBrandSucceeded SyncEventType = "brand_succeeded"
	SyncEventBrandFailed    SyncEventType = "brand_failed"
	SyncEventSweepCompleted SyncEventType = "sweep_completed"
)

// SyncEvent is published while brands are being synced
type SyncEvent struct {
	Type      SyncEventType `json:"type"`
	BrandID   string        `json:"brandId,omitempty"`
	BrandName string        `json:"brandName,omitempty"`
	Result    *SyncResult   `json:"result,omitempty"`
	Error     string        `json:"error,omitempty"`
	Brands    int           `json:"brands,omitempty"`
	Failed    int           `json:"failed,omitempty"`
	At        time.Time     `json:"at"`
}
