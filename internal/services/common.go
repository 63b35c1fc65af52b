package services

import (
	"errors"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/localnerve/equirecords/internal/metrics"
	"github.com/localnerve/equirecords/internal/models"
	"github.com/localnerve/equirecords/internal/storage"
	"github.com/localnerve/equirecords/internal/types"
)

// FileStore removes uploaded documents from disk
type FileStore interface {
	// Validate rejects a path that is not an upload
	Validate(publicPath string) error
	Remove(publicPath string) error
	RemoveRecordFolder(horseID, publicPath string) error
	RemoveHorse(horseID string) error
}

// withHorseDisplay preloads the owner's display columns on a dependent record query
func withHorseDisplay(db *gorm.DB) *gorm.DB {
	return db.Preload("Horse", func(tx *gorm.DB) *gorm.DB {
		return tx.Select(models.HorseDisplayColumns)
	})
}

// forUpdate locks the selected rows on engines with SELECT ... FOR UPDATE
func forUpdate(tx *gorm.DB) *gorm.DB {
	switch tx.Dialector.Name() {
	case "mysql", "postgres":
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// notFoundOr maps gorm.ErrRecordNotFound to a 404 CustomError
func notFoundOr(err error, entity, id string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return types.NotFound("NotFound", "%s %s not found", entity, id)
	}
	return err
}

// findHorse loads a horse by id, 404 when absent
func findHorse(db *gorm.DB, id string) (*models.Horse, error) {
	var horse models.Horse
	if err := db.First(&horse, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "horse", id)
	}
	return &horse, nil
}

// removeRecordFolder removes the upload folder of a deleted record; failures are logged only.
// Files outside the record's own <horse>/<type>_<date> folder are removed one by one.
func removeRecordFolder(store FileStore, horseID, recordType string, date time.Time, files []string, kind, id string) {
	if store == nil || len(files) == 0 {
		return
	}

	folder := storage.PublicPrefix + "/" + storage.Folder(horseID, recordType, date) + "/"
	folderRemoved := false
	for _, f := range files {
		var err error
		switch {
		case path.Clean(f) != f || !strings.HasPrefix(f, folder):
			err = store.Remove(f)
		case folderRemoved:
			continue
		default:
			err = store.RemoveRecordFolder(horseID, f)
			folderRemoved = err == nil
		}
		if err != nil {
			metrics.FileCleanupFailures.Inc()
			zap.L().Warn("failed to remove record files",
				zap.String("kind", kind),
				zap.String("id", id),
				zap.String("path", f),
				zap.Error(err),
			)
		}
	}
}
