package filters

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/localnerve/equirecords/internal/types"
)

// RecordFilter holds the filters applied to tests, performances and prophylaxies
type RecordFilter struct {
	StartDate *time.Time
	// EndDate is exclusive; a plain date is advanced to the next day
	EndDate *time.Time
	Types   []string

	// performances
	CompetitionType string
	Epreuve         string
	Lieu            string
	Cavalier        string

	// prophylaxies, matched against the vaccination diseases after decoding
	Maladie string

	IsRadie   *bool
	IsMutated *bool
}

// Query is the parsed form of a list request
type Query struct {
	Horse  HorseFilter
	Record RecordFilter
	// All includes radiated horses in the horse list
	All bool
}

// Parse reads the flat query parameters of a list request
func Parse(values url.Values) (Query, error) {
	var q Query

	q.Horse = HorseFilter{
		Etat:        values.Get("etat"),
		Race:        values.Get("race"),
		Robe:        values.Get("robe"),
		Discipline:  values.Get("discipline"),
		AgeRange:    values.Get("ageRange"),
		Pere:        values.Get("pere"),
		Mere:        values.Get("mere"),
		Taille:      values.Get("taille"),
		Provenance:  values.Get("provenance"),
		Affectation: values.Get("affectation"),
		Search:      values.Get("search"),
	}
	if q.Horse.AgeRange != "" {
		if _, ok := ageBuckets[q.Horse.AgeRange]; !ok {
			return q, types.BadRequest("ValidationError", "invalid ageRange %q", q.Horse.AgeRange)
		}
	}

	if s := values.Get("startDate"); s != "" {
		t, err := types.ParseFlexTime(s)
		if err != nil {
			return q, types.BadRequest("ValidationError", "invalid startDate %q", s)
		}
		q.Record.StartDate = &t
	}
	if s := values.Get("endDate"); s != "" {
		t, err := types.ParseFlexTime(s)
		if err != nil {
			return q, types.BadRequest("ValidationError", "invalid endDate %q", s)
		}
		if len(strings.TrimSpace(s)) == len("2006-01-02") {
			t = t.AddDate(0, 0, 1)
		} else {
			t = t.Add(time.Nanosecond)
		}
		q.Record.EndDate = &t
	}

	for _, v := range values["type"] {
		for _, t := range strings.Split(v, ",") {
			if t = strings.TrimSpace(t); t != "" {
				q.Record.Types = append(q.Record.Types, t)
			}
		}
	}

	q.Record.CompetitionType = values.Get("competitionType")
	q.Record.Epreuve = values.Get("epreuve")
	q.Record.Lieu = values.Get("lieu")
	q.Record.Cavalier = values.Get("cavalier")
	q.Record.Maladie = strings.TrimSpace(values.Get("maladie"))

	var err error
	if q.Record.IsRadie, err = parseBool(values, "isRadie"); err != nil {
		return q, err
	}
	if q.Record.IsMutated, err = parseBool(values, "isMutated"); err != nil {
		return q, err
	}
	if all, err := parseBool(values, "all"); err != nil {
		return q, err
	} else if all != nil {
		q.All = *all
	}

	return q, nil
}

func parseBool(values url.Values, key string) (*bool, error) {
	s := values.Get(key)
	if s == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil, types.BadRequest("ValidationError", "invalid %s %q", key, s)
	}
	return &b, nil
}

// Apply adds the record conditions to a query over table
func (f RecordFilter) Apply(db *gorm.DB, table string) *gorm.DB {
	q := db
	col := func(name string) string { return table + "." + name }

	if f.StartDate != nil {
		q = q.Where(col("date")+" >= ?", *f.StartDate)
	}
	if f.EndDate != nil {
		q = q.Where(col("date")+" < ?", *f.EndDate)
	}
	if len(f.Types) > 0 && table != "performances" {
		q = q.Where(col("type")+" IN ?", f.Types)
	}
	if table == "performances" {
		if f.CompetitionType != "" {
			q = q.Where(col("competition_type")+" = ?", f.CompetitionType)
		}
		if f.Epreuve != "" {
			q = q.Where(col("epreuve")+" = ?", f.Epreuve)
		}
		if f.Lieu != "" {
			q = q.Where("LOWER("+col("lieu")+") LIKE ?", likePattern(f.Lieu))
		}
		if f.Cavalier != "" {
			q = q.Where("LOWER("+col("cavalier")+") LIKE ?", likePattern(f.Cavalier))
		}
	}
	if f.IsRadie != nil {
		q = q.Where(col("is_radie")+" = ?", *f.IsRadie)
	}
	if f.IsMutated != nil {
		q = q.Where(col("is_mutated")+" = ?", *f.IsMutated)
	}
	return q
}

// MatchesMaladie reports whether the disease filter is unset or contained in maladies
func (f RecordFilter) MatchesMaladie(maladies []string) bool {
	if f.Maladie == "" {
		return true
	}
	want := strings.ToLower(f.Maladie)
	for _, m := range maladies {
		if strings.Contains(strings.ToLower(m), want) {
			return true
		}
	}
	return false
}
