package models

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Counter holds named monotonic sequences
type Counter struct {
	Name string `gorm:"primaryKey;size:100"`
	Seq  int    `gorm:"not null;default:0"`
}

// TableName overrides the table name for Counter
func (Counter) TableName() string {
	return "counters"
}

// EnsureCounter creates the named counter at zero if it does not exist
func EnsureCounter(db *gorm.DB, name string) error {
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&Counter{Name: name}).Error
}

// NextSequence increments the named counter and returns the new value.
// The increment is a single UPDATE so concurrent callers never observe the same value.
func NextSequence(tx *gorm.DB, name string) (int, error) {
	res := tx.Model(&Counter{}).Where("name = ?", name).UpdateColumn("seq", gorm.Expr("seq + ?", 1))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		if err := tx.Create(&Counter{Name: name, Seq: 1}).Error; err != nil {
			return 0, err
		}
		return 1, nil
	}

	var counter Counter
	if err := tx.Where("name = ?", name).First(&counter).Error; err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

// ClaimCounter moves the named counter from 0 to 1 and reports whether this caller did it
func ClaimCounter(db *gorm.DB, name string) (bool, error) {
	res := db.Model(&Counter{}).Where("name = ? AND seq = 0", name).UpdateColumn("seq", 1)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// ReleaseCounter returns a claimed counter to 0
func ReleaseCounter(db *gorm.DB, name string) error {
	return db.Model(&Counter{}).Where("name = ? AND seq = 1", name).UpdateColumn("seq", 0).Error
}
