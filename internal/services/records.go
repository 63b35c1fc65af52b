// records.go
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
	"time"

	"gorm.io/gorm"

	"github.com/localnerve/equirecords/internal/filters"
	"github.com/localnerve/equirecords/internal/types"
)

// NoHorseMatchMessage accompanies the empty result of a horse-filtered list with no matching horse
const NoHorseMatchMessage = "No horse matches the given filters"

// ListResult is the outcome of a filtered record list
type ListResult[T any] struct {
	Records []T
	// Message is set when the horse filters matched no horse
	Message string
}

// listRecords resolves the horse filters, then queries table with the record filters, newest first
func listRecords[T any](db *gorm.DB, table string, q filters.Query, now time.Time) (ListResult[T], error) {
	result := ListResult[T]{Records: []T{}}

	ids, restricted, err := resolveHorseIDs(db, q.Horse, now)
	if err != nil {
		return result, err
	}
	if restricted && len(ids) == 0 {
		result.Message = NoHorseMatchMessage
		return result, nil
	}

	var model T
	query := q.Record.Apply(withHorseDisplay(db.Model(&model)), table)
	if restricted {
		query = query.Where(table+".horse IN ?", ids)
	}
	if err := query.Order(table + ".date DESC").Find(&result.Records).Error; err != nil {
		return result, err
	}
	return result, nil
}

// checkAfter rejects a follow-up date earlier than the record date
func checkAfter(field string, date time.Time, followUp *time.Time) error {
	if followUp != nil && followUp.Before(date) {
		return types.BadRequest("ValidationError", "%s must not be before date", field)
	}
	return nil
}
