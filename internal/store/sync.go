package store

import (
	"fmt"
	"sort"
	"time"
)

// SyncDataType names a data set whose last refresh time is tracked.
type SyncDataType string

const (
	SyncTypeQuotes SyncDataType = "quotes"
	SyncTypeSeed   SyncDataType = "seed"
)

// SyncStatus is the staleness state of one data set.
type SyncStatus struct {
	DataType     SyncDataType `json:"dataType"`
	LastSync     time.Time    `json:"lastSync"`
	IsStale      bool         `json:"isStale"`
	StaleMinutes int          `json:"staleMinutes"`
}

// SyncConfig holds per data type staleness thresholds, in minutes.
type SyncConfig struct {
	StaleThresholds map[SyncDataType]int
}

// DefaultSyncConfig returns default sync configuration.
func DefaultSyncConfig() *SyncConfig {
	return &SyncConfig{
		StaleThresholds: map[SyncDataType]int{
			SyncTypeQuotes: 15,
			SyncTypeSeed:   0, // never stale
		},
	}
}

// SyncManager tracks when watchlist quotes and demo data were last
// refreshed. It never refreshes anything itself.
type SyncManager struct {
	store  DataStore
	config *SyncConfig
	now    func() time.Time
}

// NewSyncManager creates a new sync manager.
func NewSyncManager(store DataStore, config *SyncConfig) *SyncManager {
	if config == nil {
		config = DefaultSyncConfig()
	}
	return &SyncManager{
		store:  store,
		config: config,
		now:    time.Now,
	}
}

// MarkSynced records the current time as the last refresh of dataType.
func (sm *SyncManager) MarkSynced(dataType SyncDataType) error {
	if err := sm.store.SetLastSync(dataType, sm.now()); err != nil {
		return fmt.Errorf("failed to mark %s as synced: %w", dataType, err)
	}
	return nil
}

// GetSyncStatus returns the sync status for a data type. A data type that
// has never been synced is stale unless its threshold is zero.
func (sm *SyncManager) GetSyncStatus(dataType SyncDataType) *SyncStatus {
	lastSync := sm.store.GetLastSync(dataType)
	threshold := sm.config.StaleThresholds[dataType]

	status := &SyncStatus{DataType: dataType, LastSync: lastSync}
	if lastSync.IsZero() {
		status.IsStale = threshold > 0
		return status
	}

	age := sm.now().Sub(lastSync)
	status.StaleMinutes = int(age.Minutes())
	status.IsStale = threshold > 0 && age > time.Duration(threshold)*time.Minute
	return status
}

// IsDataStale checks if a specific data type is stale.
func (sm *SyncManager) IsDataStale(dataType SyncDataType) bool {
	return sm.GetSyncStatus(dataType).IsStale
}

// GetAllSyncStatus returns sync status for all configured data types, by name.
func (sm *SyncManager) GetAllSyncStatus() []*SyncStatus {
	types := make([]SyncDataType, 0, len(sm.config.StaleThresholds))
	for dataType := range sm.config.StaleThresholds {
		types = append(types, dataType)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	statuses := make([]*SyncStatus, 0, len(types))
	for _, dataType := range types {
		statuses = append(statuses, sm.GetSyncStatus(dataType))
	}
	return statuses
}

// FormatSyncStatus returns a human-readable sync status string.
func FormatSyncStatus(status *SyncStatus) string {
	if status.LastSync.IsZero() {
		return fmt.Sprintf("%s: never synced", status.DataType)
	}

	timeStr := status.LastSync.Format("2006-01-02 15:04:05")
	if status.IsStale {
		return fmt.Sprintf("%s: stale (last sync: %s, %d min ago)", status.DataType, timeStr, status.StaleMinutes)
	}
	return fmt.Sprintf("%s: fresh (last sync: %s)", status.DataType, timeStr)
}
