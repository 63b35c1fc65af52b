package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/equirecords/internal/models"
	"github.com/localnerve/equirecords/internal/testutil"
)

func rappel(d time.Time) *time.Time { return &d }

func TestCalendarEvents(t *testing.T) {
	db := testutil.NewTestDB(t)
	horse := testutil.CreateHorse(t, db, "Eclair")
	gone := testutil.CreateHorse(t, db, "Gone", func(h *models.Horse) { h.IsRadie = true })

	testutil.CreateTest(t, db, horse, "Colique", testutil.Date(2026, time.March, 1), func(r *models.Test) {
		r.DateRappel = rappel(testutil.Date(2026, time.March, 10))
	})
	testutil.CreateProphylaxie(t, db, horse, models.ProphylaxieVaccination, testutil.Date(2026, time.March, 2), `{}`, func(p *models.Prophylaxie) {
		p.DateRappel = rappel(time.Date(2026, time.March, 10, 14, 30, 0, 0, time.UTC))
	})
	testutil.CreateTest(t, db, horse, "Boiterie", testutil.Date(2026, time.March, 3), func(r *models.Test) {
		r.DateRappel = rappel(testutil.Date(2026, time.April, 2))
	})
	testutil.CreateTest(t, db, gone, "Colique", testutil.Date(2026, time.March, 1), func(r *models.Test) {
		r.DateRappel = rappel(testutil.Date(2026, time.March, 10))
	})
	testutil.CreateTest(t, db, horse, "Sans rappel", testutil.Date(2026, time.March, 4))

	days, err := CalendarEvents(db, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []DayEvents{
		{Date: "2026-03-10", Tests: 1, Prophylaxies: 1, Total: 2},
		{Date: "2026-04-02", Tests: 1, Total: 1},
	}, days)

	days, err = CalendarEvents(db, testutil.Date(2026, time.April, 1), testutil.Date(2026, time.April, 30))
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, "2026-04-02", days[0].Date)

	_, err = CalendarEvents(db, testutil.Date(2026, time.April, 30), testutil.Date(2026, time.April, 1))
	requireCode(t, err, 400)
}

func TestDayReminders(t *testing.T) {
	db := testutil.NewTestDB(t)
	horse := testutil.CreateHorse(t, db, "Eclair")

	testutil.CreateProphylaxie(t, db, horse, models.ProphylaxieVaccination, testutil.Date(2026, time.March, 2), `{}`, func(p *models.Prophylaxie) {
		p.DateRappel = rappel(time.Date(2026, time.March, 10, 8, 0, 0, 0, time.UTC))
	})
	testutil.CreateTest(t, db, horse, "Colique", testutil.Date(2026, time.March, 1), func(r *models.Test) {
		r.DateRappel = rappel(time.Date(2026, time.March, 10, 16, 0, 0, 0, time.UTC))
	})
	testutil.CreateTest(t, db, horse, "Boiterie", testutil.Date(2026, time.March, 1), func(r *models.Test) {
		r.DateRappel = rappel(testutil.Date(2026, time.March, 11))
	})

	reminders, err := DayReminders(db, "2026-03-10")
	require.NoError(t, err)
	require.Len(t, reminders, 2)
	assert.Equal(t, KindProphylaxie, reminders[0].Kind)
	assert.Equal(t, KindTest, reminders[1].Kind)
	assert.Equal(t, "Colique", reminders[1].Type)
	require.NotNil(t, reminders[1].Horse)
	assert.Equal(t, "Eclair", reminders[1].Horse.Name)

	_, err = DayReminders(db, "10/03/2026")
	requireCode(t, err, 400)
}
