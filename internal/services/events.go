package services

import (
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/localnerve/equirecords/internal/models"
	"github.com/localnerve/equirecords/internal/types"
)

// Reminder kinds
const (
	KindTest        = "test"
	KindProphylaxie = "prophylaxie"
)

// DayEvents counts the reminders falling on one day
type DayEvents struct {
	Date         string `json:"date"`
	Tests        int    `json:"tests"`
	Prophylaxies int    `json:"prophylaxies"`
	Total        int    `json:"total"`
}

// Reminder is one follow-up due on a day
type Reminder struct {
	Kind       string        `json:"kind"`
	ID         string        `json:"id"`
	Type       string        `json:"type"`
	DateRappel time.Time     `json:"dateRappel"`
	Horse      *models.Horse `json:"horse"`
}

const dayLayout = "2006-01-02"

// CalendarEvents groups the reminders of non-radiated tests and prophylaxies per day in [from, to]
func CalendarEvents(db *gorm.DB, from, to time.Time) ([]DayEvents, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, types.BadRequest("ValidationError", "to must not be before from")
	}

	var testDates, prophylaxieDates []time.Time
	if err := reminderRange(db.Model(&models.Test{}), from, to).Pluck("date_rappel", &testDates).Error; err != nil {
		return nil, err
	}
	if err := reminderRange(db.Model(&models.Prophylaxie{}), from, to).Pluck("date_rappel", &prophylaxieDates).Error; err != nil {
		return nil, err
	}

	days := map[string]*DayEvents{}
	bucket := func(t time.Time) *DayEvents {
		key := t.UTC().Format(dayLayout)
		d, ok := days[key]
		if !ok {
			d = &DayEvents{Date: key}
			days[key] = d
		}
		d.Total++
		return d
	}
	for _, t := range testDates {
		bucket(t).Tests++
	}
	for _, t := range prophylaxieDates {
		bucket(t).Prophylaxies++
	}

	out := make([]DayEvents, 0, len(days))
	for _, d := range days {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// DayReminders lists the reminders due on day (YYYY-MM-DD)
func DayReminders(db *gorm.DB, day string) ([]Reminder, error) {
	start, err := time.Parse(dayLayout, day)
	if err != nil {
		return nil, types.BadRequest("ValidationError", "invalid date %q, expected YYYY-MM-DD", day)
	}
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)

	var tests []models.Test
	if err := reminderRange(withHorseDisplay(db).Model(&models.Test{}), start, end).Order("date_rappel ASC").Find(&tests).Error; err != nil {
		return nil, err
	}
	var prophylaxies []models.Prophylaxie
	if err := reminderRange(withHorseDisplay(db).Model(&models.Prophylaxie{}), start, end).Order("date_rappel ASC").Find(&prophylaxies).Error; err != nil {
		return nil, err
	}

	out := make([]Reminder, 0, len(tests)+len(prophylaxies))
	for _, t := range tests {
		out = append(out, Reminder{Kind: KindTest, ID: t.ID, Type: t.Type, DateRappel: *t.DateRappel, Horse: t.Horse})
	}
	for _, p := range prophylaxies {
		out = append(out, Reminder{Kind: KindProphylaxie, ID: p.ID, Type: p.Type, DateRappel: *p.DateRappel, Horse: p.Horse})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DateRappel.Before(out[j].DateRappel) })
	return out, nil
}

// reminderRange restricts a record query to non-radiated reminders within [from, to]; zero bounds are open
func reminderRange(query *gorm.DB, from, to time.Time) *gorm.DB {
	query = query.Where("date_rappel IS NOT NULL AND is_radie = ?", false)
	if !from.IsZero() {
		query = query.Where("date_rappel >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("date_rappel <= ?", to)
	}
	return query
}
