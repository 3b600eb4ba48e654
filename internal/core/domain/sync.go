package domain

import "time"

// SyncResult summarizes one completed reconciliation run for an external item.
type SyncResult struct {
	ItemID     string    `json:"itemID"`
	Added      int       `json:"added"`
	Modified   int       `json:"modified"`
	Removed    int       `json:"removed"`
	Pages      int       `json:"pages"`
	NextCursor string    `json:"nextCursor"`
	SyncedAt   time.Time `json:"syncedAt"`
}
