// files.go
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

package storage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/localnerve/equirecords/internal/types"
)

// PublicPrefix is the URL prefix under which stored files are served
const PublicPrefix = "/uploads"

var unsafeRun = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Store keeps uploaded documents under <root>/uploads/<horse>/<type>_<date>/
type Store struct {
	root string
}

// New creates the uploads directory under uploadDir and returns a Store over it
func New(uploadDir string) (*Store, error) {
	root, err := filepath.Abs(filepath.Join(uploadDir, "uploads"))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve upload dir: %w", err)
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &Store{root: root}, nil
}

// Root returns the absolute directory served under PublicPrefix
func (s *Store) Root() string {
	return s.root
}

// SanitizeSegment strips accents and replaces every run of characters outside [A-Za-z0-9_-] with an underscore
func SanitizeSegment(v string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, v)
	if err != nil {
		stripped = v
	}
	return unsafeRun.ReplaceAllString(strings.TrimSpace(stripped), "_")
}

// SanitizeFileName keeps the base name and extension of an uploaded file name, both sanitized
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	ext := filepath.Ext(name)
	base := SanitizeSegment(strings.TrimSuffix(name, ext))
	ext = SanitizeSegment(strings.TrimPrefix(ext, "."))
	if base == "" || base == "_" {
		base = "file"
	}
	if ext == "" {
		return base
	}
	return base + "." + ext
}

// Folder returns the relative folder of a record's documents
func Folder(horseID, recordType string, date time.Time) string {
	return path.Join(SanitizeSegment(horseID), SanitizeSegment(recordType)+"_"+date.UTC().Format("2006-01-02"))
}

// Save writes an uploaded file into folder under a unique name and returns its public path
func (s *Store) Save(folder string, fh *multipart.FileHeader) (string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	return s.Write(folder, fh.Filename, src)
}

// Write copies r into folder under a unique name derived from fileName and returns its public path
func (s *Store) Write(folder, fileName string, r io.Reader) (string, error) {
	rel := path.Join(folder, uuid.NewString()+"_"+SanitizeFileName(fileName))
	dst, err := s.resolve(rel)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		os.Remove(dst)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return PublicPrefix + "/" + rel, nil
}

// Remove deletes the file at a public path. A missing file is not an error.
func (s *Store) Remove(publicPath string) error {
	p, err := s.resolvePublic(publicPath)
	if err != nil {
		return err
	}
	return removeFile(p)
}

// RemoveRecordFolder deletes the <horse>/<type>_<date> folder holding the file at publicPath.
// A file that does not sit directly in a record folder of horseID is removed on its own.
func (s *Store) RemoveRecordFolder(horseID, publicPath string) error {
	p, err := s.resolvePublic(publicPath)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	rel, err := filepath.Rel(s.root, dir)
	if err != nil {
		return err
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) != 2 || parts[0] != SanitizeSegment(horseID) {
		return removeFile(p)
	}
	return os.RemoveAll(dir)
}

// Validate rejects a public path that is not an upload or escapes the upload directory
func (s *Store) Validate(publicPath string) error {
	_, err := s.resolvePublic(publicPath)
	return err
}

// RemoveHorse deletes every document of a horse
func (s *Store) RemoveHorse(horseID string) error {
	seg := SanitizeSegment(horseID)
	if seg == "" || seg == "_" {
		return types.BadRequest("ValidationError", "invalid horse id")
	}
	return os.RemoveAll(filepath.Join(s.root, seg))
}

func (s *Store) resolvePublic(publicPath string) (string, error) {
	rel := strings.TrimPrefix(publicPath, PublicPrefix+"/")
	if rel == publicPath {
		return "", types.BadRequest("ValidationError", "path %q is not an upload", publicPath)
	}
	return s.resolve(rel)
}

// resolve maps a relative upload path to the filesystem, rejecting paths that escape the root
func (s *Store) resolve(rel string) (string, error) {
	p := filepath.Join(s.root, filepath.FromSlash(rel))
	if !strings.HasPrefix(p, s.root+string(os.PathSeparator)) {
		return "", types.BadRequest("ValidationError", "path %q escapes the upload directory", rel)
	}
	return p, nil
}

func removeFile(p string) error {
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
