package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Sex values
const (
	SexMale    = "Male"
	SexFemelle = "Femelle"
	SexHongre  = "Hongre"
)

// Health states (etat)
const (
	EtatMalade           = "malade"
	EtatSain             = "sain"
	EtatEnRetablissement = "en rétablissement"
)

// Radiation motifs
const (
	MotifMort       = "Mort"
	MotifEuthanasie = "Euthanasie"
	MotifCession    = "Cession"
	MotifVente      = "Vente"
	MotifAutre      = "Autre"
)

// HorseCounterName is the Counter row that numbers horses
const HorseCounterName = "horseId"

// HorseDisplayColumns is the subset of horse columns populated on dependent records
var HorseDisplayColumns = []string{
	"id", "horse_id", "matricule", "name", "race", "birth_date", "sex",
	"robe", "discipline", "etat", "is_radie", "is_mutated",
}

// Horse is the owning record of tests, performances and prophylaxies
type Horse struct {
	ID          string    `gorm:"type:char(36);primaryKey" json:"_id"`
	HorseID     int       `gorm:"uniqueIndex;not null" json:"horseId"`
	Matricule   string    `gorm:"size:100;index" json:"matricule"`
	Name        string    `gorm:"size:255;not null;index" json:"name"`
	Race        string    `gorm:"size:100;index" json:"race"`
	BirthDate   time.Time `gorm:"index" json:"birthDate"`
	Sex         string    `gorm:"size:20" json:"sex"`
	Robe        string    `gorm:"size:100;index" json:"robe"`
	Discipline  string    `gorm:"size:100;index" json:"discipline"`
	Etat        string    `gorm:"size:30;not null;default:sain;index" json:"etat"`
	Taille      string    `gorm:"size:30" json:"taille"`
	Provenance  string    `gorm:"size:255" json:"provenance"`
	Affectation string    `gorm:"size:255" json:"affectation"`

	// Lineage: a referenced horse or a free-text name
	FatherID   *string `gorm:"type:char(36);index" json:"father"`
	MotherID   *string `gorm:"type:char(36);index" json:"mother"`
	FatherText string  `gorm:"size:255" json:"fatherText"`
	MotherText string  `gorm:"size:255" json:"motherText"`
	Father     *Horse  `gorm:"foreignKey:FatherID" json:"fatherInfo,omitempty"`
	Mother     *Horse  `gorm:"foreignKey:MotherID" json:"motherInfo,omitempty"`

	// Radiation
	IsRadie          bool       `gorm:"not null;default:false;index" json:"isRadie"`
	Motifderadiation *string    `gorm:"size:30" json:"motifderadiation"`
	DateRadiation    *time.Time `json:"dateRadiation"`
	Cause            *string    `gorm:"type:text" json:"cause"`
	Motif            *string    `gorm:"type:text" json:"motif"`
	Reference        *string    `gorm:"size:255" json:"reference"`

	// Mutation
	IsMutated           bool       `gorm:"not null;default:false;index" json:"isMutated"`
	DateMutation        *time.Time `json:"dateMutation"`
	NouvelleAffectation *string    `gorm:"size:255" json:"nouvelleAffectation"`
	MutationReference   *string    `gorm:"size:255" json:"mutationReference"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns the identifier and, when absent, the next horse number
func (h *Horse) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.HorseID == 0 {
		seq, err := NextSequence(tx, HorseCounterName)
		if err != nil {
			return err
		}
		h.HorseID = seq
	}
	if h.Etat == "" {
		h.Etat = EtatSain
	}
	return nil
}

// TableName overrides the table name for Horse
func (Horse) TableName() string {
	return "horses"
}

// RetainsCause reports whether the radiation motif keeps the free-text cause
func RetainsCause(motif string) bool {
	return motif == MotifMort || motif == MotifEuthanasie
}

// RetainsMotif reports whether the radiation motif keeps the free-text motif
func RetainsMotif(motif string) bool {
	return motif == MotifCession || motif == MotifVente || motif == MotifAutre
}
