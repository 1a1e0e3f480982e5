package models

// Metadata keys used by the sync engine. Other collaborators (cleanup jobs,
// feature cursors) share the same table with their own keys.
const (
	MetaLastActivity    = "lastActivity"
	MetaLastLocalChange = "lastLocalChange"
	MetaSyncState       = "syncState"
)

// SyncState is the tri-state advisory sync flag.
type SyncState string

const (
	SyncIdle    SyncState = "idle"
	SyncSyncing SyncState = "syncing"
	SyncError   SyncState = "error"
)

// MetadataRow is a persisted key-value row. Value is a number, string or
// boolean; UpdatedAt is the epoch-millis write time of the row itself, which
// doubles as the staleness signal for the syncState flag.
type MetadataRow struct {
	Value     any    `json:"value"`
	ID        string `json:"id"`
	UpdatedAt int64  `json:"updatedAt"`
}
