package services

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/localnerve/equirecords/internal/filters"
	"github.com/localnerve/equirecords/internal/metrics"
	"github.com/localnerve/equirecords/internal/models"
	"github.com/localnerve/equirecords/internal/types"
	"github.com/localnerve/equirecords/internal/utils"
)

// Horse categories
const (
	CategoryActifs = "actifs"
	CategoryRadies = "radies"
	CategoryMutes  = "mutes"
)

// HorseInput is the writable part of a horse
type HorseInput struct {
	HorseID     types.FlexInt  `json:"horseId"`
	Matricule   string         `json:"matricule"`
	Name        string         `json:"name" validate:"required"`
	Race        string         `json:"race"`
	BirthDate   types.FlexTime `json:"birthDate" validate:"required"`
	Sex         string         `json:"sex" validate:"horse_sex"`
	Robe        string         `json:"robe"`
	Discipline  string         `json:"discipline"`
	Etat        string         `json:"etat" validate:"horse_etat"`
	Taille      string         `json:"taille"`
	Provenance  string         `json:"provenance"`
	Affectation string         `json:"affectation"`
	Father      *string        `json:"father"`
	Mother      *string        `json:"mother"`
	FatherText  string         `json:"fatherText"`
	MotherText  string         `json:"motherText"`
}

func horseInputFrom(h *models.Horse) HorseInput {
	return HorseInput{
		HorseID:     types.FlexInt(h.HorseID),
		Matricule:   h.Matricule,
		Name:        h.Name,
		Race:        h.Race,
		BirthDate:   types.FlexTime{Time: h.BirthDate},
		Sex:         h.Sex,
		Robe:        h.Robe,
		Discipline:  h.Discipline,
		Etat:        h.Etat,
		Taille:      h.Taille,
		Provenance:  h.Provenance,
		Affectation: h.Affectation,
		Father:      h.FatherID,
		Mother:      h.MotherID,
		FatherText:  h.FatherText,
		MotherText:  h.MotherText,
	}
}

func (in HorseInput) apply(db *gorm.DB, h *models.Horse) error {
	father, err := parentRef(db, in.Father, h.ID, "father")
	if err != nil {
		return err
	}
	mother, err := parentRef(db, in.Mother, h.ID, "mother")
	if err != nil {
		return err
	}

	h.HorseID = in.HorseID.Int()
	h.Matricule = in.Matricule
	h.Name = in.Name
	h.Race = in.Race
	b := in.BirthDate.Time.UTC()
	h.BirthDate = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	h.Sex = in.Sex
	h.Robe = in.Robe
	h.Discipline = in.Discipline
	h.Etat = in.Etat
	h.Taille = in.Taille
	h.Provenance = in.Provenance
	h.Affectation = in.Affectation
	h.FatherID = father
	h.MotherID = mother
	h.FatherText = in.FatherText
	h.MotherText = in.MotherText
	return nil
}

// parentRef validates a lineage reference; empty means none
func parentRef(db *gorm.DB, ref *string, self, field string) (*string, error) {
	if ref == nil || *ref == "" {
		return nil, nil
	}
	id, err := utils.ParseID(*ref, field)
	if err != nil {
		return nil, err
	}
	if id == self {
		return nil, types.BadRequest("ValidationError", "a horse cannot be its own %s", field)
	}
	var count int64
	if err := db.Model(&models.Horse{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, types.NotFound("NotFound", "%s %s not found", field, id)
	}
	return &id, nil
}

// CreateHorse validates and inserts a horse; the horse number is assigned when absent
func CreateHorse(db *gorm.DB, body []byte) (*models.Horse, error) {
	var in HorseInput
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, types.BadRequest("ValidationError", "invalid request body: %v", err)
	}
	if _, err := utils.Validate(in); err != nil {
		return nil, err
	}

	horse := &models.Horse{}
	if err := in.apply(db, horse); err != nil {
		return nil, err
	}
	if err := db.Create(horse).Error; err != nil {
		return nil, err
	}
	return horse, nil
}

// ListHorses returns horses matching the filters, radiated ones only when q.All is set
func ListHorses(db *gorm.DB, q filters.Query, now time.Time) ([]models.Horse, error) {
	query, err := q.Horse.Apply(db.Model(&models.Horse{}), now)
	if err != nil {
		return nil, err
	}
	if !q.All {
		query = query.Where("horses.is_radie = ?", false)
	}

	horses := []models.Horse{}
	if err := query.Order("horses.horse_id ASC").Find(&horses).Error; err != nil {
		return nil, err
	}
	return horses, nil
}

// GetHorse returns a horse with its parents populated
func GetHorse(db *gorm.DB, id string) (*models.Horse, error) {
	var horse models.Horse
	parents := func(tx *gorm.DB) *gorm.DB { return tx.Select(models.HorseDisplayColumns) }
	err := db.Preload("Father", parents).Preload("Mother", parents).First(&horse, "id = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err, "horse", id)
	}
	return &horse, nil
}

// UpdateHorse merges body over the stored horse and saves it after validating the merged document.
// Status fields are only changed by the status operations.
func UpdateHorse(db *gorm.DB, id string, body []byte) (*models.Horse, error) {
	horse, err := findHorse(db, id)
	if err != nil {
		return nil, err
	}

	in := horseInputFrom(horse)
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, types.BadRequest("ValidationError", "invalid request body: %v", err)
	}
	if _, err := utils.Validate(in); err != nil {
		return nil, err
	}
	if in.HorseID.Int() == 0 {
		in.HorseID = types.FlexInt(horse.HorseID)
	}
	if err := in.apply(db, horse); err != nil {
		return nil, err
	}

	if err := db.Model(horse).Select(
		"horse_id", "matricule", "name", "race", "birth_date", "sex", "robe", "discipline", "etat",
		"taille", "provenance", "affectation", "father_id", "mother_id", "father_text", "mother_text",
	).Updates(horse).Error; err != nil {
		return nil, err
	}
	return GetHorse(db, id)
}

// DeleteHorse deletes a horse and its upload folder. Dependent records are kept.
func DeleteHorse(db *gorm.DB, store FileStore, id string) (*models.Horse, error) {
	horse, err := findHorse(db, id)
	if err != nil {
		return nil, err
	}
	if err := db.Delete(&models.Horse{}, "id = ?", id).Error; err != nil {
		return nil, err
	}

	if store != nil {
		if err := store.RemoveHorse(id); err != nil {
			metrics.FileCleanupFailures.Inc()
			zap.L().Warn("failed to remove horse folder", zap.String("horse", id), zap.Error(err))
		}
	}
	return horse, nil
}

// HorsesByCategory lists horses of a status or health category
func HorsesByCategory(db *gorm.DB, category string) ([]models.Horse, error) {
	query := db.Model(&models.Horse{})
	switch category {
	case CategoryActifs:
		query = query.Where("is_radie = ? AND is_mutated = ?", false, false)
	case CategoryRadies:
		query = query.Where("is_radie = ?", true)
	case CategoryMutes:
		query = query.Where("is_mutated = ?", true)
	case models.EtatMalade, models.EtatSain, models.EtatEnRetablissement:
		query = query.Where("etat = ? AND is_radie = ?", category, false)
	default:
		return nil, types.BadRequest("ValidationError", "unknown category %q", category)
	}

	horses := []models.Horse{}
	if err := query.Order("horse_id ASC").Find(&horses).Error; err != nil {
		return nil, err
	}
	return horses, nil
}

// resolveHorseIDs returns the ids of horses matching the horse filters.
// ok is false when no horse filter is set and records should not be restricted.
func resolveHorseIDs(db *gorm.DB, f filters.HorseFilter, now time.Time) (ids []string, ok bool, err error) {
	if !f.Active() {
		return nil, false, nil
	}
	query, err := f.Apply(db.Model(&models.Horse{}), now)
	if err != nil {
		return nil, true, err
	}
	ids = []string{}
	if err := query.Pluck("horses.id", &ids).Error; err != nil {
		return nil, true, err
	}
	return ids, true, nil
}
