package spinclimate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseCadence(t *testing.T) {
	c, err := ParseCadence("1D")
	require.NoError(t, err)
	assert.Equal(t, Cadence{N: 1, Unit: UnitDay, text: "1D"}, c)

	c, err = ParseCadence("6H")
	require.NoError(t, err)
	assert.Equal(t, 6, c.N)
	assert.Equal(t, UnitHour, c.Unit)

	c, err = ParseCadence("MS")
	require.NoError(t, err)
	assert.Equal(t, 1, c.N)
	assert.Equal(t, UnitMonthStart, c.Unit)

	_, err = ParseCadence("1Q")
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = ParseCadence("0D")
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func Test_bins_monthly(t *testing.T) {
	c, _ := ParseCadence("1M")
	dates := makeDates(1980, 1980, 24*time.Hour)
	bins := c.bins(dates)

	require.Len(t, bins, 12)
	// 月末ラベル
	assert.Equal(t, time.Date(1980, 1, 31, 0, 0, 0, 0, time.UTC), bins[0].Label)
	assert.Equal(t, time.Date(1980, 2, 29, 0, 0, 0, 0, time.UTC), bins[1].Label)
	assert.Equal(t, 29, bins[1].Hi-bins[1].Lo)
	assert.Equal(t, len(dates), bins[11].Hi)
}

func Test_bins_gap(t *testing.T) {
	c, _ := ParseCadence("1D")
	dates := []time.Time{
		time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC),
		time.Date(2000, 1, 3, 6, 0, 0, 0, time.UTC),
	}
	bins := c.bins(dates)

	// 1月2日はデータが無いが区間として残る
	require.Len(t, bins, 3)
	assert.Equal(t, bin{Label: dates[0], Lo: 0, Hi: 2}, bins[0])
	assert.Equal(t, 2, bins[1].Lo)
	assert.Equal(t, 2, bins[1].Hi)
	assert.Equal(t, time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC), bins[2].Label)
}
