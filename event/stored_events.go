package event

import "github.com/jinzhu/gorm"

var (
	EventPersistCreateFunc = eventPersistCreate
	MarkSyncedFunc         = MarkSynced
	LoadUnsyncedFunc       = LoadUnsynced
	MarkAttemptFailedFunc  = MarkAttemptFailed
)

func eventPersistCreate(record *EventRecord, db *gorm.DB) error {
	return db.Create(record).Error
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&EventRecord{}).Error
}

// MarkSynced flags a record once every handler accepted it.
func MarkSynced(record *EventRecord, db *gorm.DB) error {
	record.Synced = true
	return db.Model(&EventRecord{}).Where("id = ?", record.ID).UpdateColumn("synced", true).Error
}

// MarkAttemptFailed counts a redelivery some handler refused.
func MarkAttemptFailed(record *EventRecord, db *gorm.DB) error {
	record.Attempts++
	return db.Model(&EventRecord{}).Where("id = ?", record.ID).
		UpdateColumn("attempts", gorm.Expr("attempts + ?", 1)).Error
}

// LoadUnsynced returns records not yet accepted by every handler, least attempted first, then oldest first.
// Records that keep failing sink behind newer ones instead of filling every batch.
func LoadUnsynced(db *gorm.DB, limit int) ([]EventRecord, error) {
	var records []EventRecord
	if err := db.Where("synced = ?", false).Order("attempts ASC, timestamp ASC, id ASC").Limit(limit).Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
