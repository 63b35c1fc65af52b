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

// TestInput is the writable part of a test
type TestInput struct {
	Horse                  string                     `json:"horse" validate:"required"`
	Date                   types.FlexTime             `json:"date" validate:"required"`
	Type                   string                     `json:"type" validate:"required"`
	Anamnese               string                     `json:"anamnese"`
	ExamenClinique         string                     `json:"examenClinique"`
	Diagnostic             string                     `json:"diagnostic"`
	Traitement             string                     `json:"traitement"`
	Observations           string                     `json:"observations"`
	ExamensComplementaires []models.ComplementaryExam `json:"examensComplementaires"`
	DateDeGuerison         types.FlexTime             `json:"dateDeGuerison"`
	DateRappel             types.FlexTime             `json:"dateRappel"`
	File                   types.FlexList[string]     `json:"file"`
}

func testInputFrom(t *models.Test) TestInput {
	in := TestInput{
		Horse:                  t.HorseRef,
		Date:                   types.FlexTime{Time: t.Date},
		Type:                   t.Type,
		Anamnese:               t.Anamnese,
		ExamenClinique:         t.ExamenClinique,
		Diagnostic:             t.Diagnostic,
		Traitement:             t.Traitement,
		Observations:           t.Observations,
		ExamensComplementaires: t.ExamensComplementaires,
		File:                   types.FlexList[string](t.Files),
	}
	if t.DateDeGuerison != nil {
		in.DateDeGuerison = types.FlexTime{Time: *t.DateDeGuerison}
	}
	if t.DateRappel != nil {
		in.DateRappel = types.FlexTime{Time: *t.DateRappel}
	}
	return in
}

// apply validates the input and copies it onto rec, with the owner's flags
func (in TestInput) apply(db *gorm.DB, rec *models.Test) error {
	if _, err := utils.Validate(in); err != nil {
		return err
	}
	if _, err := utils.ParseID(in.Horse, "horse"); err != nil {
		return err
	}
	if err := checkAfter("dateDeGuerison", in.Date.Time, in.DateDeGuerison.Ptr()); err != nil {
		return err
	}
	if err := checkAfter("dateRappel", in.Date.Time, in.DateRappel.Ptr()); err != nil {
		return err
	}
	horse, err := findHorse(db, in.Horse)
	if err != nil {
		return err
	}

	rec.HorseRef = horse.ID
	rec.Date = in.Date.Time
	rec.Type = in.Type
	rec.Anamnese = in.Anamnese
	rec.ExamenClinique = in.ExamenClinique
	rec.Diagnostic = in.Diagnostic
	rec.Traitement = in.Traitement
	rec.Observations = in.Observations
	rec.ExamensComplementaires = datatypes.NewJSONSlice(in.ExamensComplementaires)
	rec.DateDeGuerison = in.DateDeGuerison.Ptr()
	rec.DateRappel = in.DateRappel.Ptr()
	rec.Files = datatypes.NewJSONSlice(in.File.Slice())
	rec.IsRadie = horse.IsRadie
	rec.IsMutated = horse.IsMutated
	return nil
}

// CreateTest inserts a test for an existing horse
func CreateTest(db *gorm.DB, body []byte) (*models.Test, error) {
	var in TestInput
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, types.BadRequest("ValidationError", "invalid request body: %v", err)
	}

	rec := &models.Test{}
	if err := in.apply(db, rec); err != nil {
		return nil, err
	}
	if err := db.Create(rec).Error; err != nil {
		return nil, err
	}
	return GetTest(db, rec.ID)
}

// ListTests returns the tests matching the query
func ListTests(db *gorm.DB, q filters.Query, now time.Time) (ListResult[models.Test], error) {
	return listRecords[models.Test](db, "tests", q, now)
}

// GetTest returns one test with its owner's display fields
func GetTest(db *gorm.DB, id string) (*models.Test, error) {
	var rec models.Test
	if err := withHorseDisplay(db).First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "test", id)
	}
	return &rec, nil
}

// TestsByHorse returns the tests of a horse, newest first
func TestsByHorse(db *gorm.DB, horseID string) ([]models.Test, error) {
	if _, err := findHorse(db, horseID); err != nil {
		return nil, err
	}
	recs := []models.Test{}
	err := withHorseDisplay(db).Where("horse = ?", horseID).Order("date DESC").Find(&recs).Error
	return recs, err
}

// UpdateTest merges body over the stored test and saves the validated result
func UpdateTest(db *gorm.DB, id string, body []byte) (*models.Test, error) {
	var rec models.Test
	if err := db.First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "test", id)
	}

	in := testInputFrom(&rec)
	if err := json.Unmarshal(body, &in); err != nil {
		return nil, types.BadRequest("ValidationError", "invalid request body: %v", err)
	}
	if err := in.apply(db, &rec); err != nil {
		return nil, err
	}
	if err := db.Save(&rec).Error; err != nil {
		return nil, err
	}
	return GetTest(db, id)
}

// DeleteTest deletes a test, then removes its upload folder
func DeleteTest(db *gorm.DB, store FileStore, id string) (*models.Test, error) {
	var rec models.Test
	if err := db.First(&rec, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "test", id)
	}
	if err := db.Delete(&models.Test{}, "id = ?", id).Error; err != nil {
		return nil, err
	}
	removeRecordFolder(store, rec.HorseRef, rec.Type, rec.Date, rec.Files, "test", id)
	return &rec, nil
}

// TestTypes returns the distinct test types on record, alphabetically
func TestTypes(db *gorm.DB) ([]string, error) {
	kinds := []string{}
	err := db.Model(&models.Test{}).Distinct("type").Where("type <> ?", "").Order("type ASC").Pluck("type", &kinds).Error
	return kinds, err
}
