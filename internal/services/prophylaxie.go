package services

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/localnerve/equirecords/internal/filters"
	"github.com/localnerve/equirecords/internal/models"
	"github.com/localnerve/equirecords/internal/types"
	"github.com/localnerve/equirecords/internal/utils"
)

// ProphylaxieInput is the writable part of a prophylaxie
type ProphylaxieInput struct {
	Horse        string                 `json:"horse" validate:"required"`
	Date         types.FlexTime         `json:"date" validate:"required"`
	Type         string                 `json:"type" validate:"required,prophylaxie_type"`
	Details      json.RawMessage        `json:"details"`
	DateRappel   types.FlexTime         `json:"dateRappel"`
	Observations string                 `json:"observations"`
	File         types.FlexList[string] `json:"file"`
}

func prophylaxieInputFrom(p *models.Prophylaxie) ProphylaxieInput {
	in := ProphylaxieInput{
		Horse:        p.HorseRef,
		Date:         types.FlexTime{Time: p.Date},
		Type:         p.Type,
		Details:      json.RawMessage(p.Details.JSON),
		Observations: p.Observations,
		File:         types.FlexList[string](p.Files),
	}
	if p.DateRappel != nil {
		in.DateRappel = types.FlexTime{Time: *p.DateRappel}
	}
	return in
}

func (in ProphylaxieInput) apply(db *gorm.DB, rec *models.Prophylaxie) error {
	if _, err := utils.Validate(in); err != nil {
		return err
	}
	if _, err := utils.ParseID(in.Horse, "horse"); err != nil {
		return err
	}
	if err := checkAfter("dateRappel", in.Date.Time, in.DateRappel.Ptr()); err != nil {
		return err
	}
	details, err := models.NormalizeProphylaxieDetails(in.Type, in.Details)
	if err != nil {
		return err
	}
	horse, err := findHorse(db, in.Horse)
	if err != nil {
		return err
	}

	rec.HorseRef = horse.ID
	rec.Date = in.Date.Time
	rec.Type = in.Type
	rec.Details = details
	rec.DateRappel = in.DateRappel.Ptr()
	rec.Observations = in.Observations
	rec.Files = datatypes.NewJSONSlice(in.File.Slice())
	rec.IsRadie = horse.IsRadie
	rec.IsMutated = horse.IsMutated
	return nil
}

// CreateProphylaxie inserts a prophylaxie for an existing horse; details are normalized for its type
func CreateProphylaxie(db *gorm.DB, body []byte) (*models.Prophylaxie, error) {
	var in ProphylaxieInput
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, types.BadRequest("ValidationError", "invalid request body: %v", err)
	}

	rec := &models.Prophylaxie{}
	if err := in.apply(db, rec); err != nil {
		return nil, err
	}
	if err := db.Create(rec).Error; err != nil {
		return nil, err
	}
	return GetProphylaxie(db, rec.ID)
}

// ListProphylaxies returns the prophylaxies matching the query.
// The disease filter is matched against the decoded vaccination details.
func ListProphylaxies(db *gorm.DB, q filters.Query, now time.Time) (ListResult[models.Prophylaxie], error) {
	result, err := listRecords[models.Prophylaxie](db, "prophylaxies", q, now)
	if err != nil || q.Record.Maladie == "" {
		return result, err
	}

	kept := result.Records[:0]
	for _, rec := range result.Records {
		details, err := rec.DecodedDetails()
		if err != nil {
			continue
		}
		if q.Record.MatchesMaladie(models.Maladies(details)) {
			kept = append(kept, rec)
		}
	}
	result.Records = kept
	return result, nil
}

// GetProphylaxie returns one prophylaxie with its owner's display fields
func GetProphylaxie(db *gorm.DB, id string) (*models.Prophylaxie, error) {
	var rec models.Prophylaxie
	if err := withHorseDisplay(db).First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "prophylaxie", id)
	}
	return &rec, nil
}

// ProphylaxiesByHorse returns the prophylaxies of a horse, newest first
func ProphylaxiesByHorse(db *gorm.DB, horseID string) ([]models.Prophylaxie, error) {
	if _, err := findHorse(db, horseID); err != nil {
		return nil, err
	}
	recs := []models.Prophylaxie{}
	err := withHorseDisplay(db).Where("horse = ?", horseID).Order("date DESC").Find(&recs).Error
	return recs, err
}

// UpdateProphylaxie merges body over the stored prophylaxie and saves the validated result
func UpdateProphylaxie(db *gorm.DB, id string, body []byte) (*models.Prophylaxie, error) {
	var rec models.Prophylaxie
	if err := db.First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "prophylaxie", id)
	}

	in := prophylaxieInputFrom(&rec)
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, types.BadRequest("ValidationError", "invalid request body: %v", err)
	}
	if err := in.apply(db, &rec); err != nil {
		return nil, err
	}
	if err := db.Save(&rec).Error; err != nil {
		return nil, err
	}
	return GetProphylaxie(db, id)
}

// DeleteProphylaxie deletes a prophylaxie, then removes its upload folder
func DeleteProphylaxie(db *gorm.DB, store FileStore, id string) (*models.Prophylaxie, error) {
	var rec models.Prophylaxie
	if err := db.First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "prophylaxie", id)
	}
	if err := db.Delete(&models.Prophylaxie{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	removeRecordFolder(store, rec.HorseRef, rec.Type, rec.Date, rec.Files, "prophylaxie", id)
	return &rec, nil
}
