package filters

import (
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/localnerve/equirecords/internal/types"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAgeRangeYoungest(t *testing.T) {
	now := date(2024, time.June, 10)

	r, err := AgeRangeToBirthDates(now, "0-4")
	require.NoError(t, err)
	require.NotNil(t, r.From)
	assert.Equal(t, date(2019, time.June, 11), *r.From)
	assert.Equal(t, now, r.To)
}

func TestAgeRangeTruncatesToDay(t *testing.T) {
	now := time.Date(2024, time.June, 10, 17, 45, 0, 0, time.UTC)

	r, err := AgeRangeToBirthDates(now, "5-7")
	require.NoError(t, err)
	assert.Equal(t, date(2016, time.June, 11), *r.From)
	assert.Equal(t, date(2019, time.June, 10), r.To)
}

func TestAgeRangeOpenEnded(t *testing.T) {
	now := date(2024, time.June, 10)

	r, err := AgeRangeToBirthDates(now, ">20")
	require.NoError(t, err)
	assert.Nil(t, r.From)
	assert.Equal(t, date(2003, time.June, 10), r.To)
}

func TestAgeRangeBucketsAreContiguous(t *testing.T) {
	now := date(2024, time.June, 10)
	pairs := [][2]string{{"0-4", "5-7"}, {"5-7", "8-12"}, {"8-12", "13-15"}, {"13-15", "16-18"}}

	for _, p := range pairs {
		younger, err := AgeRangeToBirthDates(now, p[0])
		require.NoError(t, err)
		older, err := AgeRangeToBirthDates(now, p[1])
		require.NoError(t, err)
		assert.Equal(t, younger.From.AddDate(0, 0, -1), older.To, p[0])
	}
}

func TestAgeRangeUnknownBucket(t *testing.T) {
	_, err := AgeRangeToBirthDates(time.Now(), "21-30")
	ce, ok := types.AsCustomError(err)
	require.True(t, ok)
	assert.Equal(t, 400, ce.Code)
}

func TestParse(t *testing.T) {
	values := url.Values{
		"etat":      {"malade"},
		"type":      {"Colique,Boiterie", " Toux "},
		"startDate": {"2024-01-01"},
		"endDate":   {"2024-01-31"},
		"isRadie":   {"false"},
		"maladie":   {"Grippe"},
	}

	q, err := Parse(values)
	require.NoError(t, err)

	assert.True(t, q.Horse.Active())
	assert.Equal(t, "malade", q.Horse.Etat)
	assert.Equal(t, []string{"Colique", "Boiterie", "Toux"}, q.Record.Types)
	assert.Equal(t, date(2024, time.January, 1), *q.Record.StartDate)
	assert.Equal(t, date(2024, time.February, 1), *q.Record.EndDate)
	require.NotNil(t, q.Record.IsRadie)
	assert.False(t, *q.Record.IsRadie)
	assert.Nil(t, q.Record.IsMutated)
	assert.False(t, q.All)
}

func TestParseRejectsInvalidValues(t *testing.T) {
	for _, values := range []url.Values{
		{"ageRange": {"100"}},
		{"startDate": {"yesterday"}},
		{"isMutated": {"maybe"}},
	} {
		_, err := Parse(values)
		assert.Error(t, err, values.Encode())
	}
}

func TestParseEmpty(t *testing.T) {
	q, err := Parse(url.Values{})
	require.NoError(t, err)
	assert.False(t, q.Horse.Active())
}

func TestMatchesMaladie(t *testing.T) {
	f := RecordFilter{Maladie: "grippe"}
	assert.True(t, f.MatchesMaladie([]string{"Tétanos", "Grippe équine"}))
	assert.False(t, f.MatchesMaladie([]string{"Tétanos"}))
	assert.True(t, RecordFilter{}.MatchesMaladie(nil))
}
