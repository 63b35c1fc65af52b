// uploads.go
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
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/localnerve/equirecords/internal/models"
)

// DeleteFileInput names a stored file and, optionally, the record listing it
type DeleteFileInput struct {
	Path        string `json:"path" validate:"required"`
	Test        string `json:"test" validate:"omitempty,uuid"`
	Prophylaxie string `json:"prophylaxie" validate:"omitempty,uuid"`
}

// AttachProphylaxieFiles appends stored paths to a prophylaxie's documents
func AttachProphylaxieFiles(db *gorm.DB, id string, paths []string) (*models.Prophylaxie, error) {
	return updateProphylaxieFiles(db, id, func(files []string) []string {
		return append(files, paths...)
	})
}

// ReplaceProphylaxieFiles removes the listed paths from a prophylaxie and from disk, then appends added
func ReplaceProphylaxieFiles(db *gorm.DB, store FileStore, id string, remove, added []string) (*models.Prophylaxie, error) {
	drop := make(map[string]bool, len(remove))
	for _, p := range remove {
		drop[p] = true
	}

	rec, err := updateProphylaxieFiles(db, id, func(files []string) []string {
		kept := make([]string, 0, len(files)+len(added))
		for _, f := range files {
			if !drop[f] {
				kept = append(kept, f)
			}
		}
		return append(kept, added...)
	})
	if err != nil {
		return nil, err
	}

	for _, p := range remove {
		removeFile(store, p)
	}
	return rec, nil
}

func updateProphylaxieFiles(db *gorm.DB, id string, change func([]string) []string) (*models.Prophylaxie, error) {
	var rec models.Prophylaxie
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := forUpdate(tx).First(&rec, "id = ?", id).Error; err != nil {
			return notFoundOr(err, "prophylaxie", id)
		}
		files := change(append([]string{}, rec.Files...))
		return tx.Model(&rec).Update("files", datatypes.NewJSONSlice(files)).Error
	})
	if err != nil {
		return nil, err
	}
	return GetProphylaxie(db, id)
}

// DeleteFile removes a stored file and drops it from the named record's document list
func DeleteFile(db *gorm.DB, store FileStore, in DeleteFileInput) error {
	if err := store.Validate(in.Path); err != nil {
		return err
	}

	switch {
	case in.Test != "":
		var rec models.Test
		if err := db.First(&rec, "id = ?", in.Test).Error; err != nil {
			return notFoundOr(err, "test", in.Test)
		}
		if err := db.Model(&rec).Update("files", datatypes.NewJSONSlice(without(rec.Files, in.Path))).Error; err != nil {
			return err
		}
	case in.Prophylaxie != "":
		if _, err := updateProphylaxieFiles(db, in.Prophylaxie, func(files []string) []string {
			return without(files, in.Path)
		}); err != nil {
			return err
		}
	}

	removeFile(store, in.Path)
	return nil
}

func without(files []string, path string) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		if f != path {
			out = append(out, f)
		}
	}
	return out
}

func removeFile(store FileStore, path string) {
	if store == nil {
		return
	}
	if err := store.Remove(path); err != nil {
		zap.L().Warn("failed to remove file", zap.String("path", path), zap.Error(err))
	}
}
