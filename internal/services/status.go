// status.go
//
// An equine records REST service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of equirecords.
// equirecords is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// equirecords is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with equirecords.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/localnerve/equirecords/internal/cache"
	"github.com/localnerve/equirecords/internal/metrics"
	"github.com/localnerve/equirecords/internal/models"
	"github.com/localnerve/equirecords/internal/publish"
	"github.com/localnerve/equirecords/internal/types"
	"github.com/localnerve/equirecords/internal/utils"
)

// RadiateInput holds the radiation of a horse
type RadiateInput struct {
	DateRadiation    types.FlexTime `json:"dateRadiation" validate:"required"`
	Motifderadiation string         `json:"motifderadiation" validate:"required,radiation_motif"`
	Cause            *string        `json:"cause"`
	Motif            *string        `json:"motif"`
	Reference        string         `json:"reference" validate:"required"`
}

// MutateInput holds the transfer of a horse to a new assignment
type MutateInput struct {
	DateMutation        types.FlexTime `json:"dateMutation" validate:"required"`
	NouvelleAffectation string         `json:"nouvelleAffectation" validate:"required"`
	MutationReference   string         `json:"mutationReference" validate:"required"`
}

// dependents are the record tables carrying copies of the horse flags
var dependents = []interface{}{&models.Test{}, &models.Performance{}, &models.Prophylaxie{}}

// applyStatus updates the horse and propagates flag to every dependent record in one transaction.
// The horse row is locked for the duration so concurrent operations on it serialize.
func applyStatus(db *gorm.DB, op, id string, updates map[string]interface{}, flagColumn string, flag bool) (*models.Horse, error) {
	var horse models.Horse

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&horse, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "horse", id)
		}

		updates[flagColumn] = flag
		if err := tx.Model(&horse).Updates(updates).Error; err != nil {
			return err
		}

		for _, model := range dependents {
			if err := tx.Model(model).Where("horse = ?", id).Update(flagColumn, flag).Error; err != nil {
				return err
			}
		}

		return tx.First(&horse, "id = ?", id).Error
	})

	outcome := "ok"
	if err != nil {
		outcome = "error"
		if ce, ok := types.AsCustomError(err); ok && ce.Code < 500 {
			outcome = "rejected"
		}
	}
	metrics.StatusChangesTotal.WithLabelValues(op, outcome).Inc()

	if err != nil {
		return nil, err
	}
	return &horse, nil
}

// RadiateHorse marks a horse as radiated. The cause is kept for deaths only,
// the free-text motif for the other motifs.
func RadiateHorse(db *gorm.DB, id string, in RadiateInput) (*models.Horse, error) {
	if _, err := utils.Validate(in); err != nil {
		metrics.StatusChangesTotal.WithLabelValues(publish.OpRadiate, "rejected").Inc()
		return nil, err
	}

	var cause, motif *string
	if models.RetainsCause(in.Motifderadiation) {
		cause = in.Cause
	}
	if models.RetainsMotif(in.Motifderadiation) {
		motif = in.Motif
	}

	return applyStatus(db, publish.OpRadiate, id, map[string]interface{}{
		"date_radiation":   in.DateRadiation.Time,
		"motifderadiation": in.Motifderadiation,
		"cause":            cause,
		"motif":            motif,
		"reference":        in.Reference,
	}, "is_radie", true)
}

// CancelRadiation clears the radiation of a horse
func CancelRadiation(db *gorm.DB, id string) (*models.Horse, error) {
	return applyStatus(db, publish.OpCancelRadiation, id, map[string]interface{}{
		"date_radiation":   nil,
		"motifderadiation": nil,
		"cause":            nil,
		"motif":            nil,
		"reference":        nil,
	}, "is_radie", false)
}

// MutateHorse records the transfer of a horse
func MutateHorse(db *gorm.DB, id string, in MutateInput) (*models.Horse, error) {
	if _, err := utils.Validate(in); err != nil {
		metrics.StatusChangesTotal.WithLabelValues(publish.OpMutate, "rejected").Inc()
		return nil, err
	}

	return applyStatus(db, publish.OpMutate, id, map[string]interface{}{
		"date_mutation":        in.DateMutation.Time,
		"nouvelle_affectation": in.NouvelleAffectation,
		"mutation_reference":   in.MutationReference,
	}, "is_mutated", true)
}

// CancelMutation clears the transfer of a horse
func CancelMutation(db *gorm.DB, id string) (*models.Horse, error) {
	return applyStatus(db, publish.OpCancelMutation, id, map[string]interface{}{
		"date_mutation":        nil,
		"nouvelle_affectation": nil,
		"mutation_reference":   nil,
	}, "is_mutated", false)
}

// AfterStatusChange publishes the committed change and drops the cached dashboard.
// Failures are logged and never reach the caller.
func AfterStatusChange(ctx context.Context, pub publish.Publisher, c cache.Cache, op string, horse *models.Horse) {
	event := publish.StatusEvent{
		Operation: op,
		HorseID:   horse.ID,
		HorseNum:  horse.HorseID,
		IsRadie:   horse.IsRadie,
		IsMutated: horse.IsMutated,
		Timestamp: time.Now().UTC(),
	}
	if horse.Motifderadiation != nil {
		event.Motif = *horse.Motifderadiation
	}
	if horse.Reference != nil {
		event.Reference = *horse.Reference
	}

	if pub != nil {
		if err := pub.PublishStatus(ctx, event); err != nil {
			metrics.StatusEventsPublishFailures.Inc()
			zap.L().Warn("failed to publish status event",
				zap.String("operation", op),
				zap.String("horse", horse.ID),
				zap.Error(err),
			)
		}
	}
	InvalidateDashboard(ctx, c)
}

// RadiationDetails is the radiation part of a horse
type RadiationDetails struct {
	ID               string     `json:"_id"`
	HorseID          int        `json:"horseId"`
	Name             string     `json:"name"`
	Matricule        string     `json:"matricule"`
	IsRadie          bool       `json:"isRadie"`
	Motifderadiation *string    `json:"motifderadiation"`
	DateRadiation    *time.Time `json:"dateRadiation"`
	Cause            *string    `json:"cause"`
	Motif            *string    `json:"motif"`
	Reference        *string    `json:"reference"`
}

// MutationDetails is the transfer part of a horse
type MutationDetails struct {
	ID                  string     `json:"_id"`
	HorseID             int        `json:"horseId"`
	Name                string     `json:"name"`
	Matricule           string     `json:"matricule"`
	Affectation         string     `json:"affectation"`
	IsMutated           bool       `json:"isMutated"`
	DateMutation        *time.Time `json:"dateMutation"`
	NouvelleAffectation *string    `json:"nouvelleAffectation"`
	MutationReference   *string    `json:"mutationReference"`
}

// ListRadiatedHorses returns radiated horses, most recent radiation first
func ListRadiatedHorses(db *gorm.DB) ([]models.Horse, error) {
	horses := []models.Horse{}
	err := db.Where("is_radie = ?", true).Order("date_radiation DESC").Find(&horses).Error
	return horses, err
}

// ListMutatedHorses returns transferred horses, most recent transfer first
func ListMutatedHorses(db *gorm.DB) ([]models.Horse, error) {
	horses := []models.Horse{}
	err := db.Where("is_mutated = ?", true).Order("date_mutation DESC").Find(&horses).Error
	return horses, err
}

// GetRadiationDetails returns the radiation of a horse; 400 when it is not radiated
func GetRadiationDetails(db *gorm.DB, id string) (*RadiationDetails, error) {
	horse, err := findHorse(db, id)
	if err != nil {
		return nil, err
	}
	if !horse.IsRadie {
		return nil, types.BadRequest("StatusError", "horse %s is not radiated", id)
	}
	return &RadiationDetails{
		ID:               horse.ID,
		HorseID:          horse.HorseID,
		Name:             horse.Name,
		Matricule:        horse.Matricule,
		IsRadie:          horse.IsRadie,
		Motifderadiation: horse.Motifderadiation,
		DateRadiation:    horse.DateRadiation,
		Cause:            horse.Cause,
		Motif:            horse.Motif,
		Reference:        horse.Reference,
	}, nil
}

// GetMutationDetails returns the transfer of a horse; 400 when it is not transferred
func GetMutationDetails(db *gorm.DB, id string) (*MutationDetails, error) {
	horse, err := findHorse(db, id)
	if err != nil {
		return nil, err
	}
	if !horse.IsMutated {
		return nil, types.BadRequest("StatusError", "horse %s is not mutated", id)
	}
	return &MutationDetails{
		ID:                  horse.ID,
		HorseID:             horse.HorseID,
		Name:                horse.Name,
		Matricule:           horse.Matricule,
		Affectation:         horse.Affectation,
		IsMutated:           horse.IsMutated,
		DateMutation:        horse.DateMutation,
		NouvelleAffectation: horse.NouvelleAffectation,
		MutationReference:   horse.MutationReference,
	}, nil
}
