package services

import (
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/equirecords/internal/filters"
	"github.com/localnerve/equirecords/internal/models"
	"github.com/localnerve/equirecords/internal/testutil"
)

func names(horses []models.Horse) []string {
	out := make([]string, len(horses))
	for i, h := range horses {
		out[i] = h.Name
	}
	return out
}

func parseQuery(t *testing.T, raw string) filters.Query {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	q, err := filters.Parse(values)
	require.NoError(t, err)
	return q
}

func TestCreateHorse(t *testing.T) {
	db := testutil.NewTestDB(t)

	horse, err := CreateHorse(db, []byte(`{"name":"Eclair","birthDate":"2018-04-02","sex":"Male","etat":"malade","race":"Barbe"}`))
	require.NoError(t, err)
	assert.NotEmpty(t, horse.ID)
	assert.Equal(t, 1, horse.HorseID)
	assert.Equal(t, models.EtatMalade, horse.Etat)
	assert.Equal(t, testutil.Date(2018, time.April, 2), horse.BirthDate.UTC())

	second, err := CreateHorse(db, []byte(`{"name":"Tonnerre","birthDate":"2019-01-01","horseId":"40"}`))
	require.NoError(t, err)
	assert.Equal(t, 40, second.HorseID)
	assert.Equal(t, models.EtatSain, second.Etat)
}

func TestCreateHorseValidation(t *testing.T) {
	db := testutil.NewTestDB(t)

	cases := map[string]string{
		"missing name":    `{"birthDate":"2018-04-02"}`,
		"missing birth":   `{"name":"Eclair"}`,
		"bad sex":         `{"name":"Eclair","birthDate":"2018-04-02","sex":"Licorne"}`,
		"bad etat":        `{"name":"Eclair","birthDate":"2018-04-02","etat":"perdu"}`,
		"malformed":       `{"name":`,
		"bad father id":   `{"name":"Eclair","birthDate":"2018-04-02","father":"nope"}`,
		"bad birth value": `{"name":"Eclair","birthDate":"yesterday"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := CreateHorse(db, []byte(body))
			requireCode(t, err, 400)
		})
	}

	_, err := CreateHorse(db, []byte(`{"name":"Eclair","birthDate":"2018-04-02","mother":"7d9f1c1e-4f4b-4a53-9f0c-3d1b2f9a8e11"}`))
	requireCode(t, err, 404)
}

func TestGetHorsePopulatesParents(t *testing.T) {
	db := testutil.NewTestDB(t)
	sire := testutil.CreateHorse(t, db, "Sire")

	foal, err := CreateHorse(db, []byte(`{"name":"Foal","birthDate":"2024-04-02","father":"`+sire.ID+`","motherText":"Belle"}`))
	require.NoError(t, err)

	got, err := GetHorse(db, foal.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Father)
	assert.Equal(t, "Sire", got.Father.Name)
	assert.Nil(t, got.Mother)
	assert.Equal(t, "Belle", got.MotherText)

	_, err = GetHorse(db, "7d9f1c1e-4f4b-4a53-9f0c-3d1b2f9a8e11")
	requireCode(t, err, 404)
}

func TestUpdateHorseMergesPartialBody(t *testing.T) {
	db := testutil.NewTestDB(t)
	horse := testutil.CreateHorse(t, db, "Eclair", func(h *models.Horse) { h.Provenance = "Haras" })

	updated, err := UpdateHorse(db, horse.ID, []byte(`{"etat":"en rétablissement"}`))
	require.NoError(t, err)
	assert.Equal(t, models.EtatEnRetablissement, updated.Etat)
	assert.Equal(t, "Eclair", updated.Name)
	assert.Equal(t, "Haras", updated.Provenance)
	assert.Equal(t, horse.HorseID, updated.HorseID)

	_, err = UpdateHorse(db, horse.ID, []byte(`{"name":""}`))
	requireCode(t, err, 400)

	_, err = UpdateHorse(db, horse.ID, []byte(`{"father":"`+horse.ID+`"}`))
	requireCode(t, err, 400)
}

func TestUpdateHorseKeepsStatus(t *testing.T) {
	db := testutil.NewTestDB(t)
	horse := testutil.CreateHorse(t, db, "Eclair")
	_, err := RadiateHorse(db, horse.ID, radiation(models.MotifMort))
	require.NoError(t, err)

	updated, err := UpdateHorse(db, horse.ID, []byte(`{"isRadie":false,"robe":"Gris"}`))
	require.NoError(t, err)
	assert.True(t, updated.IsRadie)
	assert.Equal(t, "Gris", updated.Robe)
}

func TestDeleteHorse(t *testing.T) {
	db := testutil.NewTestDB(t)
	horse := testutil.CreateHorse(t, db, "Eclair")
	test := testutil.CreateTest(t, db, horse, "Boiterie", testutil.Date(2026, time.January, 5))

	store := &fakeStore{failWith: errors.New("disk busy")}
	deleted, err := DeleteHorse(db, store, horse.ID)
	require.NoError(t, err)
	assert.Equal(t, horse.ID, deleted.ID)
	assert.Equal(t, []string{horse.ID}, store.horses)

	_, err = GetHorse(db, horse.ID)
	requireCode(t, err, 404)

	var count int64
	require.NoError(t, db.Model(&models.Test{}).Where("id = ?", test.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	_, err = DeleteHorse(db, store, horse.ID)
	requireCode(t, err, 404)
}

func TestListHorsesExcludesRadiatedUnlessAll(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateHorse(t, db, "Active")
	gone := testutil.CreateHorse(t, db, "Gone")
	_, err := RadiateHorse(db, gone.ID, radiation(models.MotifVente))
	require.NoError(t, err)

	horses, err := ListHorses(db, filters.Query{}, testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"Active"}, names(horses))

	horses, err = ListHorses(db, parseQuery(t, "all=true"), testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"Active", "Gone"}, names(horses))
}

func TestListHorsesAgeRange(t *testing.T) {
	db := testutil.NewTestDB(t)
	// testNow is 2026-06-15
	testutil.CreateHorse(t, db, "TwentyOne", func(h *models.Horse) { h.BirthDate = testutil.Date(2005, time.June, 15) })
	testutil.CreateHorse(t, db, "Twenty", func(h *models.Horse) { h.BirthDate = testutil.Date(2005, time.June, 16) })
	testutil.CreateHorse(t, db, "Thirty", func(h *models.Horse) { h.BirthDate = testutil.Date(1996, time.January, 1) })
	testutil.CreateHorse(t, db, "Four", func(h *models.Horse) { h.BirthDate = testutil.Date(2021, time.June, 16) })
	testutil.CreateHorse(t, db, "Five", func(h *models.Horse) { h.BirthDate = testutil.Date(2021, time.June, 15) })

	horses, err := ListHorses(db, parseQuery(t, "ageRange=>20"), testNow)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"TwentyOne", "Thirty"}, names(horses))

	horses, err = ListHorses(db, parseQuery(t, "ageRange=0-4"), testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"Four"}, names(horses))

	horses, err = ListHorses(db, parseQuery(t, "ageRange=5-7"), testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"Five"}, names(horses))
}

func TestListHorsesAgeRangeTimeOfDay(t *testing.T) {
	db := testutil.NewTestDB(t)
	created, err := CreateHorse(db, []byte(`{"name":"Morning","birthDate":"2005-06-15T10:00:00Z"}`))
	require.NoError(t, err)
	assert.Equal(t, testutil.Date(2005, time.June, 15), created.BirthDate.UTC())

	// rows written before birth dates were truncated
	testutil.CreateHorse(t, db, "Evening", func(h *models.Horse) {
		h.BirthDate = time.Date(2005, time.June, 15, 22, 30, 0, 0, time.UTC)
	})
	testutil.CreateHorse(t, db, "Tomorrow", func(h *models.Horse) {
		h.BirthDate = time.Date(2005, time.June, 16, 1, 0, 0, 0, time.UTC)
	})

	horses, err := ListHorses(db, parseQuery(t, "ageRange=>20"), testNow.Add(4*time.Hour))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Morning", "Evening"}, names(horses))

	horses, err = ListHorses(db, parseQuery(t, "ageRange=18-20"), testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tomorrow"}, names(horses))
}

func TestListHorsesFilters(t *testing.T) {
	db := testutil.NewTestDB(t)
	sire := testutil.CreateHorse(t, db, "Quaprice", func(h *models.Horse) { h.Race = "Selle Français" })
	testutil.CreateHorse(t, db, "Foal A", func(h *models.Horse) {
		h.FatherID = &sire.ID
		h.Provenance = "Haras du Pin"
	})
	testutil.CreateHorse(t, db, "Foal B", func(h *models.Horse) {
		h.FatherText = "Quaprice Bois Margot"
		h.Etat = models.EtatMalade
	})

	horses, err := ListHorses(db, parseQuery(t, "pere=quaprice"), testNow)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Foal A", "Foal B"}, names(horses))

	horses, err = ListHorses(db, parseQuery(t, "provenance=pin"), testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"Foal A"}, names(horses))

	horses, err = ListHorses(db, parseQuery(t, "etat=malade"), testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"Foal B"}, names(horses))

	horses, err = ListHorses(db, parseQuery(t, "race=Selle%20Fran%C3%A7ais"), testNow)
	require.NoError(t, err)
	assert.Equal(t, []string{"Quaprice"}, names(horses))

	horses, err = ListHorses(db, parseQuery(t, "search=M-Foal"), testNow)
	require.NoError(t, err)
	assert.Len(t, horses, 2)
}

func TestHorsesByCategory(t *testing.T) {
	db := testutil.NewTestDB(t)
	testutil.CreateHorse(t, db, "Sain")
	sick := testutil.CreateHorse(t, db, "Sick", func(h *models.Horse) { h.Etat = models.EtatMalade })
	gone := testutil.CreateHorse(t, db, "Gone", func(h *models.Horse) { h.Etat = models.EtatMalade })
	_, err := RadiateHorse(db, gone.ID, radiation(models.MotifMort))
	require.NoError(t, err)

	actifs, err := HorsesByCategory(db, CategoryActifs)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Sain", "Sick"}, names(actifs))

	radies, err := HorsesByCategory(db, CategoryRadies)
	require.NoError(t, err)
	assert.Equal(t, []string{"Gone"}, names(radies))

	malades, err := HorsesByCategory(db, models.EtatMalade)
	require.NoError(t, err)
	assert.Equal(t, []string{sick.Name}, names(malades))

	_, err = HorsesByCategory(db, "volants")
	requireCode(t, err, 400)
}
