package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/equirecords/internal/models"
	"github.com/localnerve/equirecords/internal/testutil"
)

func TestProphylaxieFiles(t *testing.T) {
	db := testutil.NewTestDB(t)
	horse := testutil.CreateHorse(t, db, "Eclair")
	rec := testutil.CreateProphylaxie(t, db, horse, models.ProphylaxieAutre, testutil.Date(2026, time.March, 1), `{}`)

	updated, err := AttachProphylaxieFiles(db, rec.ID, []string{"/uploads/a.pdf", "/uploads/b.pdf"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/a.pdf", "/uploads/b.pdf"}, []string(updated.Files))

	store := &fakeStore{}
	updated, err = ReplaceProphylaxieFiles(db, store, rec.ID, []string{"/uploads/a.pdf"}, []string{"/uploads/c.pdf"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/b.pdf", "/uploads/c.pdf"}, []string(updated.Files))
	assert.Equal(t, []string{"/uploads/a.pdf"}, store.removed)

	_, err = AttachProphylaxieFiles(db, "7d9f1c1e-4f4b-4a53-9f0c-3d1b2f9a8e11", []string{"/uploads/x.pdf"})
	requireCode(t, err, 404)
}

func TestDeleteFile(t *testing.T) {
	db := testutil.NewTestDB(t)
	horse := testutil.CreateHorse(t, db, "Eclair")
	rec := testutil.CreateTest(t, db, horse, "Colique", testutil.Date(2026, time.March, 1), func(r *models.Test) {
		r.Files = []string{"/uploads/a.pdf", "/uploads/b.pdf"}
	})

	store := &fakeStore{}
	require.NoError(t, DeleteFile(db, store, DeleteFileInput{Path: "/uploads/a.pdf", Test: rec.ID}))
	assert.Equal(t, []string{"/uploads/a.pdf"}, store.removed)

	got, err := GetTest(db, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/b.pdf"}, []string(got.Files))

	require.NoError(t, DeleteFile(db, store, DeleteFileInput{Path: "/uploads/orphan.pdf"}))
	assert.Len(t, store.removed, 2)
}

func TestDeleteFileRejectedPathKeepsRecord(t *testing.T) {
	db := testutil.NewTestDB(t)
	horse := testutil.CreateHorse(t, db, "Eclair")
	rec := testutil.CreateTest(t, db, horse, "Colique", testutil.Date(2026, time.March, 1), func(r *models.Test) {
		r.Files = []string{"docs/a.pdf", "/uploads/b.pdf"}
	})
	proph := testutil.CreateProphylaxie(t, db, horse, models.ProphylaxieAutre, testutil.Date(2026, time.March, 1), `{}`, func(p *models.Prophylaxie) {
		p.Files = []string{"docs/a.pdf"}
	})

	store := &fakeStore{}
	err := DeleteFile(db, store, DeleteFileInput{Path: "docs/a.pdf", Test: rec.ID})
	requireCode(t, err, 400)
	err = DeleteFile(db, store, DeleteFileInput{Path: "docs/a.pdf", Prophylaxie: proph.ID})
	requireCode(t, err, 400)
	assert.Empty(t, store.removed)

	got, err := GetTest(db, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/a.pdf", "/uploads/b.pdf"}, []string(got.Files))

	gotProph, err := GetProphylaxie(db, proph.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/a.pdf"}, []string(gotProph.Files))
}
