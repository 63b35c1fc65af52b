package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ComplementaryExam is one entry of a test's complementary-exam checklist
type ComplementaryExam struct {
	Name    string `json:"name"`
	Checked bool   `json:"checked"`
	Comment string `json:"comment"`
}

// Test is a medical consultation record owned by one horse
type Test struct {
	ID       string `gorm:"type:char(36);primaryKey" json:"_id"`
	HorseRef string `gorm:"column:horse;type:char(36);not null;index" json:"horse"`
	Horse    *Horse `gorm:"foreignKey:HorseRef" json:"horseInfo,omitempty"`

	Date           time.Time `gorm:"not null;index" json:"date"`
	Type           string    `gorm:"size:255;not null;index" json:"type"`
	Anamnese       string    `gorm:"type:text" json:"anamnese"`
	ExamenClinique string    `gorm:"type:text" json:"examenClinique"`
	Diagnostic     string    `gorm:"type:text" json:"diagnostic"`
	Traitement     string    `gorm:"type:text" json:"traitement"`
	Observations   string    `gorm:"type:text" json:"observations"`

	ExamensComplementaires datatypes.JSONSlice[ComplementaryExam] `json:"examensComplementaires"`

	DateDeGuerison *time.Time `json:"dateDeGuerison"`
	DateRappel     *time.Time `gorm:"index" json:"dateRappel"`

	Files datatypes.JSONSlice[string] `gorm:"column:files" json:"file"`

	// Copies of the owner's flags, maintained by the status workflow
	IsRadie   bool `gorm:"not null;default:false;index" json:"isRadie"`
	IsMutated bool `gorm:"not null;default:false;index" json:"isMutated"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns the identifier
func (t *Test) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// TableName overrides the table name for Test
func (Test) TableName() string {
	return "tests"
}
