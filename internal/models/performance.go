package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Competition types with extra required fields
const (
	CompetitionCSO   = "CSO"
	CompetitionAutre = "Autre"
	EpreuveAutre     = "autre"
)

// Performance is a competition result owned by one horse
type Performance struct {
	ID       string `gorm:"type:char(36);primaryKey" json:"_id"`
	HorseRef string `gorm:"column:horse;type:char(36);not null;index" json:"horse"`
	Horse    *Horse `gorm:"foreignKey:HorseRef" json:"horseInfo,omitempty"`

	Date            time.Time `gorm:"not null;index" json:"date"`
	CompetitionType string    `gorm:"size:100;not null;index" json:"competitionType"`
	Epreuve         string    `gorm:"size:255" json:"epreuve"`
	EpreuveCustom   string    `gorm:"size:255" json:"epreuveCustom"`
	CompetitionName string    `gorm:"size:255" json:"competitionName"`
	Lieu            string    `gorm:"size:255" json:"lieu"`
	Cavalier        string    `gorm:"size:255" json:"cavalier"`
	Classement      int       `json:"classement"`
	Resultat        string    `gorm:"size:255" json:"resultat"`
	Observations    string    `gorm:"type:text" json:"observations"`

	IsRadie   bool `gorm:"not null;default:false;index" json:"isRadie"`
	IsMutated bool `gorm:"not null;default:false;index" json:"isMutated"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns the identifier
func (p *Performance) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for Performance
func (Performance) TableName() string {
	return "performances"
}
