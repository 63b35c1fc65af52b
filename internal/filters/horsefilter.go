package filters

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// HorseFilter holds the horse attribute filters shared by the horse list and the record lists
type HorseFilter struct {
	Etat        string
	Race        string
	Robe        string
	Discipline  string
	AgeRange    string
	Pere        string
	Mere        string
	Taille      string
	Provenance  string
	Affectation string
	Search      string
}

// Active reports whether any horse attribute filter is set
func (f HorseFilter) Active() bool {
	return f != HorseFilter{}
}

// Apply adds the filter's conditions to a query over the horses table
func (f HorseFilter) Apply(db *gorm.DB, now time.Time) (*gorm.DB, error) {
	q := db
	if f.Etat != "" {
		q = q.Where("horses.etat = ?", f.Etat)
	}
	if f.Race != "" {
		q = q.Where("horses.race = ?", f.Race)
	}
	if f.Robe != "" {
		q = q.Where("horses.robe = ?", f.Robe)
	}
	if f.Discipline != "" {
		q = q.Where("horses.discipline = ?", f.Discipline)
	}
	if f.Taille != "" {
		q = q.Where("horses.taille = ?", f.Taille)
	}
	if f.Provenance != "" {
		q = q.Where("LOWER(horses.provenance) LIKE ?", likePattern(f.Provenance))
	}
	if f.Affectation != "" {
		q = q.Where("LOWER(horses.affectation) LIKE ?", likePattern(f.Affectation))
	}
	if f.Search != "" {
		p := likePattern(f.Search)
		q = q.Where("(LOWER(horses.name) LIKE ? OR LOWER(horses.matricule) LIKE ?)", p, p)
	}
	if f.Pere != "" {
		q = parentCondition(db, q, "father", f.Pere)
	}
	if f.Mere != "" {
		q = parentCondition(db, q, "mother", f.Mere)
	}
	if f.AgeRange != "" {
		r, err := AgeRangeToBirthDates(now, f.AgeRange)
		if err != nil {
			return nil, err
		}
		if r.From != nil {
			q = q.Where("horses.birth_date >= ?", *r.From)
		}
		// To is a calendar day; a birth date stored with a time of day still falls on it
		q = q.Where("horses.birth_date < ?", r.To.AddDate(0, 0, 1))
	}
	return q, nil
}

// parentCondition matches the referenced parent's name or the free-text fallback
func parentCondition(db, q *gorm.DB, parent, name string) *gorm.DB {
	p := likePattern(name)
	parents := db.Session(&gorm.Session{NewDB: true}).
		Table("horses AS parents").
		Select("parents.id").
		Where("LOWER(parents.name) LIKE ?", p)
	return q.Where("(horses."+parent+"_id IN (?) OR LOWER(horses."+parent+"_text) LIKE ?)", parents, p)
}

func likePattern(s string) string {
	return "%" + strings.ToLower(strings.TrimSpace(s)) + "%"
}
