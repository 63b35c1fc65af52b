package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Prophylaxie is a preventive-care record owned by one horse.
// Details holds the normalized JSON of the variant selected by Type.
type Prophylaxie struct {
	ID       string `gorm:"type:char(36);primaryKey" json:"_id"`
	HorseRef string `gorm:"column:horse;type:char(36);not null;index" json:"horse"`
	Horse    *Horse `gorm:"foreignKey:HorseRef" json:"horseInfo,omitempty"`

	Date         time.Time  `gorm:"not null;index" json:"date"`
	Type         string     `gorm:"size:50;not null;index" json:"type"`
	Details      JSON       `json:"details"`
	DateRappel   *time.Time `gorm:"index" json:"dateRappel"`
	Observations string     `gorm:"type:text" json:"observations"`

	Files datatypes.JSONSlice[string] `gorm:"column:files" json:"file"`

	IsRadie   bool `gorm:"not null;default:false;index" json:"isRadie"`
	IsMutated bool `gorm:"not null;default:false;index" json:"isMutated"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns the identifier
func (p *Prophylaxie) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for Prophylaxie
func (Prophylaxie) TableName() string {
	return "prophylaxies"
}

// DecodedDetails returns the typed details variant
func (p *Prophylaxie) DecodedDetails() (ProphylaxieDetails, error) {
	return DecodeProphylaxieDetails(p.Type, p.Details.JSON)
}
