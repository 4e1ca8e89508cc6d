package spinclimate

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertBitIdentical(t *testing.T, expected []float64, actual []float64, msg string) {
	t.Helper()
	require.Len(t, actual, len(expected), msg)
	for i := range expected {
		if math.Float64bits(expected[i]) != math.Float64bits(actual[i]) {
			t.Fatalf("%s: row %d differs: %v != %v", msg, i, expected[i], actual[i])
		}
	}
}

func Test_WriteTable_ReadTable(t *testing.T) {
	tbl := hourlyCanonical()
	tbl.Columns[string(BDOT)][5] = math.NaN()

	buf := bytes.NewBuffer([]byte{})
	require.NoError(t, WriteTable(buf, tbl))

	got, err := ReadTable(buf)
	require.NoError(t, err)
	require.Equal(t, tbl.Len(), got.Len())
	for i := range tbl.Date {
		assert.True(t, tbl.Date[i].Equal(got.Date[i]), "row %d", i)
		assert.Equal(t, "UTC", got.Date[i].Location().String())
	}
	assert.Equal(t, tbl.Names(), got.Names())
	for _, name := range tbl.Names() {
		assertBitIdentical(t, tbl.Columns[name], got.Columns[name], name)
	}
}

// キャッシュから読み込んだ表のリサンプリング結果は元の表と一致する
func Test_SiteCache_ResampleIdentical(t *testing.T) {
	cache := SiteCache{Dir: filepath.Join(t.TempDir(), "cache"), Prefix: "MERRA2"}
	cell := Cell{Lat: 72.5, Lon: -38.75}
	tbl := hourlyCanonical()

	_, ok, err := cache.Load(cell)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Store(cell, tbl))
	cached, ok, err := cache.Load(cell)
	require.NoError(t, err)
	require.True(t, ok)

	r := resampler("1D", TInterpWeighted)
	want, err := r.Resample(tbl)
	require.NoError(t, err)
	got, err := r.Resample(cached)
	require.NoError(t, err)

	assert.Equal(t, want.Variables, got.Variables)
	assert.Equal(t, want.StepsPerYear, got.StepsPerYear)
	assert.Equal(t, want.BdotMeanIE, got.BdotMeanIE)
	assert.Equal(t, want.TMean, got.TMean)
	assertBitIdentical(t, want.DecDate, got.DecDate, "decdate")
	for _, v := range want.Variables {
		assertBitIdentical(t, want.Table.Columns[string(v)], got.Table.Columns[string(v)], string(v))
	}
}

// 既存のキャッシュは上書きしない
func Test_SiteCache_StoreExisting(t *testing.T) {
	cache := SiteCache{Dir: t.TempDir(), Prefix: "MAR"}
	cell := Cell{Lat: -75.1, Lon: 123.35}

	first := dailyCanonical(2000, 2000, 1, 250)
	require.NoError(t, cache.Store(cell, first))
	require.NoError(t, cache.Store(cell, dailyCanonical(2001, 2001, 2, 240)))

	got, ok, err := cache.Load(cell)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first.Len(), got.Len())
	assert.Equal(t, first.Columns[string(BDOT)], got.Columns[string(BDOT)])

	// 一時ファイルは残らない
	entries, err := os.ReadDir(cache.Dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func Test_SiteCache_Path(t *testing.T) {
	cache := SiteCache{Dir: "/tmp/clim", Prefix: "MERRA2"}
	assert.Equal(t, "/tmp/clim/MERRA2_CLIM_df_72.5_-38.75.msgpack.gz", cache.Path(Cell{Lat: 72.5, Lon: -38.75}))

	cache.Prefix = ""
	assert.Equal(t, "/tmp/clim/RCM_CLIM_df_-75_0.msgpack.gz", cache.Path(Cell{Lat: -75, Lon: 0}))
}

func Test_SiteCache_Corrupt(t *testing.T) {
	cache := SiteCache{Dir: t.TempDir(), Prefix: "MERRA2"}
	cell := Cell{Lat: 70, Lon: -40}
	require.NoError(t, os.WriteFile(cache.Path(cell), []byte("not a cache"), 0o644))

	_, ok, err := cache.Load(cell)
	assert.Error(t, err)
	assert.False(t, ok)
}

// キャッシュには正準化済みの表を保存し、2回目は読み込みを行わない
func Test_SiteCache_LoadOrStore(t *testing.T) {
	conf := DefaultConfig()
	h, err := conf.Harmonizer()
	require.NoError(t, err)
	cache := SiteCache{Dir: t.TempDir(), Prefix: conf.CacheKey()}
	cell := Cell{Lat: 72.5, Lon: -38.75}

	reads := 0
	read := func() (*Table, error) {
		reads++
		return merraDaily(1980, 1981, 10, 250), nil
	}

	first, err := cache.LoadOrStore(cell, h, read)
	require.NoError(t, err)
	assert.Equal(t, []string{"BDOT", "RAIN", "SMELT", "SUBLIM", "TSKIN"}, first.Names())

	second, err := cache.LoadOrStore(cell, h, read)
	require.NoError(t, err)
	assert.Equal(t, 1, reads)
	assert.Equal(t, first.Names(), second.Names())

	// 正準化済みの表からの結果は元の表からの結果と一致する
	conf.DesiredDepth = 50
	conf.SpinDateEnd = 1981
	want, err := MakeSpinFiles(merraDaily(1980, 1981, 10, 250), conf)
	require.NoError(t, err)
	got, err := MakeSpinFiles(second, conf)
	require.NoError(t, err)
	assert.Equal(t, want.Variables, got.Variables)
	assertBitIdentical(t, want.Time, got.Time, "time")
	for _, v := range want.Variables {
		assertBitIdentical(t, want.Values[string(v)], got.Values[string(v)], string(v))
	}

	_, err = SiteCache{Dir: t.TempDir()}.LoadOrStore(cell, h, func() (*Table, error) {
		return nil, os.ErrNotExist
	})
	assert.ErrorIs(t, err, os.ErrNotExist)
}
