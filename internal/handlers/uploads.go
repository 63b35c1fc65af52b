package handlers

import (
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/localnerve/equirecords/internal/metrics"
	"github.com/localnerve/equirecords/internal/services"
	"github.com/localnerve/equirecords/internal/storage"
	"github.com/localnerve/equirecords/internal/types"
	"github.com/localnerve/equirecords/internal/utils"
)

// UploadHandler handles document uploads
type UploadHandler struct {
	DB    *gorm.DB
	Store *storage.Store
}

// saveAll stores every file of the form into folder and returns their public paths.
// Files already written are removed when a later one fails.
func (h *UploadHandler) saveAll(endpoint, folder string, files []*multipart.FileHeader) ([]string, error) {
	paths := make([]string, 0, len(files))
	for _, fh := range files {
		p, err := h.Store.Save(folder, fh)
		if err != nil {
			for _, done := range paths {
				_ = h.Store.Remove(done)
			}
			return nil, err
		}
		paths = append(paths, p)
	}
	metrics.UploadedFilesTotal.WithLabelValues(endpoint).Add(float64(len(paths)))
	return paths, nil
}

func multipartForm(c *fiber.Ctx) (*multipart.Form, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return nil, types.BadRequest("ValidationError", "invalid multipart form: %v", err)
	}
	return form, nil
}

// Upload handles POST /api/upload
// @Summary Upload record documents
// @Description Store files under the horse's folder for a record type and date; returns their public paths
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param horse formData string true "Horse ID"
// @Param type formData string true "Record type"
// @Param date formData string true "Record date"
// @Param files formData file true "Files"
// @Success 201 {object} utils.SuccessResponseStruct{data=[]string}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /upload [post]
func (h *UploadHandler) Upload(c *fiber.Ctx) error {
	form, err := multipartForm(c)
	if err != nil {
		return err
	}

	horseID, err := utils.ParseID(formValue(form.Value, "horse"), "horse")
	if err != nil {
		return err
	}
	recordType := formValue(form.Value, "type")
	if recordType == "" {
		return types.BadRequest("ValidationError", "type is required")
	}
	date, err := types.ParseFlexTime(formValue(form.Value, "date"))
	if err != nil {
		return types.BadRequest("ValidationError", "invalid date %q", formValue(form.Value, "date"))
	}
	files := form.File["files"]
	if len(files) == 0 {
		return types.BadRequest("ValidationError", "no files uploaded")
	}
	if _, err := services.GetHorse(h.DB, horseID); err != nil {
		return err
	}

	paths, err := h.saveAll("upload", storage.Folder(horseID, recordType, date), files)
	if err != nil {
		return err
	}
	return utils.MessageResponse(c, paths, "Files uploaded", fiber.StatusCreated)
}

// UploadProphylaxieDocument handles POST /api/upload-prophylaxie-document
// @Summary Attach documents to a prophylaxie
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param prophylaxie formData string true "Prophylaxie ID"
// @Param files formData file true "Files"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Prophylaxie}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /upload-prophylaxie-document [post]
func (h *UploadHandler) UploadProphylaxieDocument(c *fiber.Ctx) error {
	form, err := multipartForm(c)
	if err != nil {
		return err
	}
	id, err := utils.ParseID(formValue(form.Value, "prophylaxie"), "prophylaxie")
	if err != nil {
		return err
	}
	files := form.File["files"]
	if len(files) == 0 {
		return types.BadRequest("ValidationError", "no files uploaded")
	}

	rec, err := services.GetProphylaxie(h.DB, id)
	if err != nil {
		return err
	}
	paths, err := h.saveAll("upload-prophylaxie-document", storage.Folder(rec.HorseRef, rec.Type, rec.Date), files)
	if err != nil {
		return err
	}

	rec, err = services.AttachProphylaxieFiles(h.DB, id, paths)
	if err != nil {
		for _, p := range paths {
			_ = h.Store.Remove(p)
		}
		return err
	}
	return utils.MessageResponse(c, rec, "Documents attached", fiber.StatusOK)
}

// UpdateProphylaxieDocument handles POST /api/update-prophylaxie-document
// @Summary Replace documents of a prophylaxie
// @Description Remove the listed paths, then attach the uploaded files
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param prophylaxie formData string true "Prophylaxie ID"
// @Param remove formData string false "Paths to remove, comma-separated"
// @Param files formData file false "Files"
// @Success 200 {object} utils.SuccessResponseStruct{data=models.Prophylaxie}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /update-prophylaxie-document [post]
func (h *UploadHandler) UpdateProphylaxieDocument(c *fiber.Ctx) error {
	form, err := multipartForm(c)
	if err != nil {
		return err
	}
	id, err := utils.ParseID(formValue(form.Value, "prophylaxie"), "prophylaxie")
	if err != nil {
		return err
	}

	rec, err := services.GetProphylaxie(h.DB, id)
	if err != nil {
		return err
	}
	paths, err := h.saveAll("update-prophylaxie-document", storage.Folder(rec.HorseRef, rec.Type, rec.Date), form.File["files"])
	if err != nil {
		return err
	}

	rec, err = services.ReplaceProphylaxieFiles(h.DB, h.Store, id, formValues(form.Value, "remove"), paths)
	if err != nil {
		for _, p := range paths {
			_ = h.Store.Remove(p)
		}
		return err
	}
	return utils.MessageResponse(c, rec, "Documents updated", fiber.StatusOK)
}

// DeleteFile handles POST /api/deletefile
// @Summary Delete a document
// @Description Remove a stored file and drop it from the named test or prophylaxie
// @Tags Uploads
// @Accept json
// @Produce json
// @Param file body services.DeleteFileInput true "File"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /deletefile [post]
func (h *UploadHandler) DeleteFile(c *fiber.Ctx) error {
	in, err := utils.BindJSON[services.DeleteFileInput](c)
	if err != nil {
		return err
	}
	if err := services.DeleteFile(h.DB, h.Store, in); err != nil {
		return err
	}
	return utils.MessageResponse(c, nil, "File deleted", fiber.StatusOK)
}
