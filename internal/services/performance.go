package services

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/localnerve/equirecords/internal/filters"
	"github.com/localnerve/equirecords/internal/models"
	"github.com/localnerve/equirecords/internal/types"
	"github.com/localnerve/equirecords/internal/utils"
)

// PerformanceInput is the writable part of a performance
type PerformanceInput struct {
	Horse           string         `json:"horse" validate:"required"`
	Date            types.FlexTime `json:"date" validate:"required"`
	CompetitionType string         `json:"competitionType" validate:"required"`
	Epreuve         string         `json:"epreuve" validate:"required_if=CompetitionType CSO"`
	EpreuveCustom   string         `json:"epreuveCustom" validate:"required_if=Epreuve autre"`
	CompetitionName string         `json:"competitionName" validate:"required_if=CompetitionType Autre"`
	Lieu            string         `json:"lieu"`
	Cavalier        string         `json:"cavalier"`
	Classement      types.FlexInt  `json:"classement"`
	Resultat        string         `json:"resultat"`
	Observations    string         `json:"observations"`
}

func performanceInputFrom(p *models.Performance) PerformanceInput {
	return PerformanceInput{
		Horse:           p.HorseRef,
		Date:            types.FlexTime{Time: p.Date},
		CompetitionType: p.CompetitionType,
		Epreuve:         p.Epreuve,
		EpreuveCustom:   p.EpreuveCustom,
		CompetitionName: p.CompetitionName,
		Lieu:            p.Lieu,
		Cavalier:        p.Cavalier,
		Classement:      types.FlexInt(p.Classement),
		Resultat:        p.Resultat,
		Observations:    p.Observations,
	}
}

func (in PerformanceInput) apply(db *gorm.DB, rec *models.Performance) error {
	if _, err := utils.Validate(in); err != nil {
		return err
	}
	if _, err := utils.ParseID(in.Horse, "horse"); err != nil {
		return err
	}
	horse, err := findHorse(db, in.Horse)
	if err != nil {
		return err
	}

	rec.HorseRef = horse.ID
	rec.Date = in.Date.Time
	rec.CompetitionType = in.CompetitionType
	rec.Epreuve = in.Epreuve
	rec.EpreuveCustom = ""
	if in.Epreuve == models.EpreuveAutre {
		rec.EpreuveCustom = in.EpreuveCustom
	}
	rec.CompetitionName = in.CompetitionName
	rec.Lieu = in.Lieu
	rec.Cavalier = in.Cavalier
	rec.Classement = in.Classement.Int()
	rec.Resultat = in.Resultat
	rec.Observations = in.Observations
	rec.IsRadie = horse.IsRadie
	rec.IsMutated = horse.IsMutated
	return nil
}

// CreatePerformance inserts a performance for an existing horse
func CreatePerformance(db *gorm.DB, body []byte) (*models.Performance, error) {
	var in PerformanceInput
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, types.BadRequest("ValidationError", "invalid request body: %v", err)
	}

	rec := &models.Performance{}
	if err := in.apply(db, rec); err != nil {
		return nil, err
	}
	if err := db.Create(rec).Error; err != nil {
		return nil, err
	}
	return GetPerformance(db, rec.ID)
}

// ListPerformances returns the performances matching the query
func ListPerformances(db *gorm.DB, q filters.Query, now time.Time) (ListResult[models.Performance], error) {
	return listRecords[models.Performance](db, "performances", q, now)
}

// GetPerformance returns one performance with its owner's display fields
func GetPerformance(db *gorm.DB, id string) (*models.Performance, error) {
	var rec models.Performance
	if err := withHorseDisplay(db).First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "performance", id)
	}
	return &rec, nil
}

// PerformancesByHorse returns the performances of a horse, newest first
func PerformancesByHorse(db *gorm.DB, horseID string) ([]models.Performance, error) {
	if _, err := findHorse(db, horseID); err != nil {
		return nil, err
	}
	recs := []models.Performance{}
	err := withHorseDisplay(db).Where("horse = ?", horseID).Order("date DESC").Find(&recs).Error
	return recs, err
}

// UpdatePerformance merges body over the stored performance and saves the validated result
func UpdatePerformance(db *gorm.DB, id string, body []byte) (*models.Performance, error) {
	var rec models.Performance
	if err := db.First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "performance", id)
	}

	in := performanceInputFrom(&rec)
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, types.BadRequest("ValidationError", "invalid request body: %v", err)
	}
	if err := in.apply(db, &rec); err != nil {
		return nil, err
	}
	if err := db.Save(&rec).Error; err != nil {
		return nil, err
	}
	return GetPerformance(db, id)
}

// DeletePerformance deletes a performance
func DeletePerformance(db *gorm.DB, id string) (*models.Performance, error) {
	var rec models.Performance
	if err := db.First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "performance", id)
	}
	if err := db.Delete(&models.Performance{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}
