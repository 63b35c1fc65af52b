// handlers_test.go
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

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/localnerve/equirecords/internal/cache"
	"github.com/localnerve/equirecords/internal/handlers"
	"github.com/localnerve/equirecords/internal/middleware"
	"github.com/localnerve/equirecords/internal/models"
	"github.com/localnerve/equirecords/internal/publish"
	"github.com/localnerve/equirecords/internal/services"
	"github.com/localnerve/equirecords/internal/storage"
	"github.com/localnerve/equirecords/internal/testutil"
	"github.com/localnerve/equirecords/internal/utils"
)

var fixedNow = time.Date(2026, time.June, 15, 9, 0, 0, 0, time.UTC)

type recordingPublisher struct {
	events []publish.StatusEvent
}

func (p *recordingPublisher) PublishStatus(_ context.Context, e publish.StatusEvent) error {
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type env struct {
	app   *fiber.App
	db    *gorm.DB
	store *storage.Store
	pub   *recordingPublisher
}

// openGuard lets every request through
func openGuard(string) fiber.Handler {
	return func(c *fiber.Ctx) error { return c.Next() }
}

func setup(t *testing.T) *env {
	t.Helper()
	db := testutil.NewTestDB(t)
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)
	pub := &recordingPublisher{}

	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler})
	handlers.RegisterRoutes(app.Group("/api"), handlers.Deps{
		DB:        db,
		Store:     store,
		Cache:     cache.Noop{},
		Publisher: pub,
		Now:       func() time.Time { return fixedNow },
	}, openGuard)

	return &env{app: app, db: db, store: store, pub: pub}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Status  int             `json:"status"`
	Type    string          `json:"type"`
}

func (e *env) do(t *testing.T, method, target, body string) (int, envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return e.send(t, req)
}

func (e *env) send(t *testing.T, req *http.Request) (int, envelope) {
	t.Helper()
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	var out envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestHorseRoutes(t *testing.T) {
	e := setup(t)

	status, res := e.do(t, "POST", "/api/horse", `{"name":"Eclair","birthDate":"2018-04-02","sex":"Hongre"}`)
	require.Equal(t, fiber.StatusCreated, status)
	assert.True(t, res.Success)
	var horse models.Horse
	require.NoError(t, json.Unmarshal(res.Data, &horse))
	assert.Equal(t, 1, horse.HorseID)

	status, res = e.do(t, "GET", "/api/horse/"+horse.ID, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(res.Data), `"_id":"`+horse.ID+`"`)

	status, res = e.do(t, "PATCH", "/api/horse/"+horse.ID, `{"etat":"malade"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(res.Data), `"etat":"malade"`)

	status, res = e.do(t, "GET", "/api/horse/category/malade", "")
	require.Equal(t, fiber.StatusOK, status)
	var sick []models.Horse
	require.NoError(t, json.Unmarshal(res.Data, &sick))
	assert.Len(t, sick, 1)

	status, res = e.do(t, "GET", "/api/horse?ageRange=8-12", "")
	require.Equal(t, fiber.StatusOK, status)
	var young []models.Horse
	require.NoError(t, json.Unmarshal(res.Data, &young))
	assert.Len(t, young, 1)

	status, res = e.do(t, "DELETE", "/api/horse/"+horse.ID, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Horse deleted", res.Message)
}

func TestHorseRouteErrors(t *testing.T) {
	e := setup(t)

	status, res := e.do(t, "GET", "/api/horse/not-a-uuid", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.False(t, res.Success)
	assert.Equal(t, "ValidationError", res.Type)

	status, res = e.do(t, "GET", "/api/horse/7d9f1c1e-4f4b-4a53-9f0c-3d1b2f9a8e11", "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "NotFound", res.Type)

	status, _ = e.do(t, "POST", "/api/horse", `{"name":"Eclair"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = e.do(t, "GET", "/api/horse?ageRange=99", "")
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestStatusRoutes(t *testing.T) {
	e := setup(t)
	horse := testutil.CreateHorse(t, e.db, "Eclair")
	rec := testutil.CreateTest(t, e.db, horse, "Colique", testutil.Date(2026, time.January, 2))

	status, res := e.do(t, "POST", "/api/horse/"+horse.ID+"/radiate", `{"dateRadiation":"2026-03-01","motifderadiation":"Perdu","reference":"R"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Empty(t, e.pub.events)

	status, res = e.do(t, "POST", "/api/horse/"+horse.ID+"/radiate", `{"dateRadiation":"2026-03-01","motifderadiation":"Mort","cause":"colique","reference":"R-1"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "Horse radiated", res.Message)
	require.Len(t, e.pub.events, 1)
	assert.Equal(t, publish.OpRadiate, e.pub.events[0].Operation)

	got, err := services.GetTest(e.db, rec.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRadie)

	status, res = e.do(t, "GET", "/api/horse/"+horse.ID+"/radiation-details", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(res.Data), `"reference":"R-1"`)

	status, _ = e.do(t, "GET", "/api/horse/"+horse.ID+"/mutation-details", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = e.do(t, "POST", "/api/horse/"+horse.ID+"/cancel-radiation", "")
	require.Equal(t, fiber.StatusOK, status)
	require.Len(t, e.pub.events, 2)

	got, err = services.GetTest(e.db, rec.ID)
	require.NoError(t, err)
	assert.False(t, got.IsRadie)
}

func TestRecordRoutes(t *testing.T) {
	e := setup(t)
	horse := testutil.CreateHorse(t, e.db, "Eclair")

	status, res := e.do(t, "POST", "/api/test", `{"horse":"`+horse.ID+`","date":"2026-02-01","type":"Colique","dateRappel":"2026-03-10"}`)
	require.Equal(t, fiber.StatusCreated, status)
	var rec models.Test
	require.NoError(t, json.Unmarshal(res.Data, &rec))

	status, res = e.do(t, "GET", "/api/test?type=Colique", "")
	require.Equal(t, fiber.StatusOK, status)
	var list []models.Test
	require.NoError(t, json.Unmarshal(res.Data, &list))
	require.Len(t, list, 1)
	assert.Contains(t, string(res.Data), `"horseInfo"`)

	status, res = e.do(t, "GET", "/api/test?race=Inconnue", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, services.NoHorseMatchMessage, res.Message)
	assert.JSONEq(t, `[]`, string(res.Data))

	status, _ = e.do(t, "PUT", "/api/test?id="+rec.ID, `{"diagnostic":"spasmodique"}`)
	require.Equal(t, fiber.StatusOK, status)

	status, res = e.do(t, "GET", "/api/horse-test?horse="+horse.ID, "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(res.Data), "spasmodique")

	status, res = e.do(t, "GET", "/api/events?from=2026-03-01&to=2026-03-10", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[{"date":"2026-03-10","tests":1,"prophylaxies":0,"total":1}]`, string(res.Data))

	status, _ = e.do(t, "GET", "/api/horse-test", "")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = e.do(t, "DELETE", "/api/test?id="+rec.ID, "")
	require.Equal(t, fiber.StatusOK, status)
	status, _ = e.do(t, "GET", "/api/onetest/"+rec.ID, "")
	assert.Equal(t, fiber.StatusNotFound, status)

	status, res = e.do(t, "POST", "/api/prophylaxie", `{"horse":"`+horse.ID+`","date":"2026-02-01","type":"Vaccination","details":{"maladie":"Grippe"}}`)
	require.Equal(t, fiber.StatusCreated, status)
	assert.Contains(t, string(res.Data), `"maladies":["Grippe"]`)

	status, res = e.do(t, "GET", "/api/prophylaxie-types", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(res.Data), "Soins dentaires")

	status, _ = e.do(t, "POST", "/api/performance", `{"horse":"`+horse.ID+`","date":"2026-02-01","competitionType":"Autre"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestDashboardAndUsers(t *testing.T) {
	e := setup(t)
	testutil.CreateHorse(t, e.db, "Eclair")

	status, res := e.do(t, "GET", "/api/dashboard", "")
	require.Equal(t, fiber.StatusOK, status)
	var d services.Dashboard
	require.NoError(t, json.Unmarshal(res.Data, &d))
	assert.Equal(t, int64(1), d.TotalHorses)
	assert.Equal(t, 0.0, d.RadiationRatio)

	status, res = e.do(t, "GET", "/api/check-users", "")
	require.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `{"hasUsers":false}`, string(res.Data))
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, content := range files {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func diskPath(store *storage.Store, public string) string {
	return filepath.Join(store.Root(), filepath.FromSlash(strings.TrimPrefix(public, storage.PublicPrefix+"/")))
}

func TestUploadRoutes(t *testing.T) {
	e := setup(t)
	horse := testutil.CreateHorse(t, e.db, "Eclair")

	status, res := e.send(t, multipartRequest(t, "/api/upload", map[string]string{
		"horse": horse.ID,
		"type":  "Échographie tendon",
		"date":  "2026-02-01",
	}, map[string]string{"scan.pdf": "pdf-bytes"}))
	require.Equal(t, fiber.StatusCreated, status)

	var paths []string
	require.NoError(t, json.Unmarshal(res.Data, &paths))
	require.Len(t, paths, 1)
	assert.True(t, strings.HasPrefix(paths[0], "/uploads/"+horse.ID+"/Echographie_tendon_2026-02-01/"))
	content, err := os.ReadFile(diskPath(e.store, paths[0]))
	require.NoError(t, err)
	assert.Equal(t, "pdf-bytes", string(content))

	rec := testutil.CreateTest(t, e.db, horse, "Échographie tendon", testutil.Date(2026, time.February, 1), func(r *models.Test) {
		r.Files = paths
	})
	status, _ = e.do(t, "POST", "/api/deletefile", `{"path":"`+paths[0]+`","test":"`+rec.ID+`"}`)
	require.Equal(t, fiber.StatusOK, status)
	_, err = os.Stat(diskPath(e.store, paths[0]))
	assert.True(t, os.IsNotExist(err))

	status, _ = e.do(t, "POST", "/api/deletefile", `{"path":"/uploads/../../etc/passwd"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	proph := testutil.CreateProphylaxie(t, e.db, horse, models.ProphylaxieAutre, testutil.Date(2026, time.March, 1), `{}`)
	status, res = e.send(t, multipartRequest(t, "/api/upload-prophylaxie-document", map[string]string{
		"prophylaxie": proph.ID,
	}, map[string]string{"a.pdf": "a"}))
	require.Equal(t, fiber.StatusOK, status)
	var updated models.Prophylaxie
	require.NoError(t, json.Unmarshal(res.Data, &updated))
	require.Len(t, updated.Files, 1)
	first := updated.Files[0]

	status, res = e.send(t, multipartRequest(t, "/api/update-prophylaxie-document", map[string]string{
		"prophylaxie": proph.ID,
		"remove":      first,
	}, map[string]string{"b.pdf": "b"}))
	require.Equal(t, fiber.StatusOK, status)
	require.NoError(t, json.Unmarshal(res.Data, &updated))
	require.Len(t, updated.Files, 1)
	assert.NotEqual(t, first, updated.Files[0])
	_, err = os.Stat(diskPath(e.store, first))
	assert.True(t, os.IsNotExist(err))

	status, _ = e.send(t, multipartRequest(t, "/api/upload", map[string]string{
		"horse": horse.ID,
		"type":  "Colique",
		"date":  "2026-02-01",
	}, nil))
	assert.Equal(t, fiber.StatusBadRequest, status)
}

type noSessions struct{}

func (noSessions) Init(string, string) error { return nil }
func (noSessions) SignUp(string, string, []string) (*services.Identity, error) {
	return nil, assert.AnError
}
func (noSessions) Login(string, string) (*services.Identity, error) { return nil, assert.AnError }
func (noSessions) ValidateSession(string) (string, error)          { return "", assert.AnError }

func TestGuardedRoutes(t *testing.T) {
	db := testutil.NewTestDB(t)
	store, err := storage.New(t.TempDir())
	require.NoError(t, err)

	auth := noSessions{}
	app := fiber.New(fiber.Config{ErrorHandler: utils.ErrorHandler})
	handlers.RegisterRoutes(app.Group("/api"), handlers.Deps{
		DB:    db,
		Store: store,
		Cache: cache.Noop{},
		Auth:  auth,
	}, middleware.RequirePermission(db, auth))
	e := &env{app: app, db: db, store: store}

	status, res := e.do(t, "GET", "/api/horse", "")
	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "AuthError", res.Type)

	status, _ = e.do(t, "GET", "/api/check-users", "")
	assert.Equal(t, fiber.StatusOK, status)

	status, _ = e.do(t, "POST", "/api/signin", `{"email":"a@example.com","password":"secret1"}`)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}
