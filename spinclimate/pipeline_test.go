package spinclimate

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// MERRA-2 の列名を持つ日別の表
func merraDaily(startYear int, endYear int, precsno float64, ts float64) *Table {
	tbl := NewTable(makeDates(startYear, endYear, 24*time.Hour))
	n := tbl.Len()
	tbl.Columns["PRECTOT"] = constant(n, precsno+1)
	tbl.Columns["PRECSNO"] = constant(n, precsno)
	tbl.Columns["TS"] = constant(n, ts)
	tbl.Columns["EVAP"] = constant(n, 0)
	tbl.Columns["SMELT"] = constant(n, 0)
	tbl.Columns["QV2M"] = constant(n, 0.001)
	return tbl
}

func Test_MakeSpinFiles(t *testing.T) {
	raw := merraDaily(1980, 1995, 10, 250)
	conf := DefaultConfig()
	conf.DesiredDepth = 200

	f, err := MakeSpinFiles(raw, conf)
	require.NoError(t, err)

	assert.Equal(t, []Variable{BDOT, RAIN, TSKIN, SUBLIM}, f.Variables)
	assert.Equal(t, 3, f.NumReps)
	assert.Equal(t, 3*5844, f.SpinRows)
	assert.Equal(t, 4*5844, len(f.Time))
	assert.Equal(t, 100.0, f.DepthS1)
	assert.Equal(t, 150.0, f.DepthS2)
	assert.InDelta(t, 365.25, f.StepsPerYear, 0.01)
	assert.InDelta(t, 1932.0, f.Time[0], 1e-9)

	assert.InDelta(t, 10*365.25/917, f.Values[string(BDOT)][0], 1e-4)
	assert.InDelta(t, 365.25/917, f.Values[string(RAIN)][0], 1e-4)
	assert.Equal(t, 0.0, f.Values[string(SUBLIM)][0])

	// 入力は変更されない
	assert.True(t, raw.Has("PRECTOT"))
	assert.False(t, raw.Has(string(BDOT)))
}

func Test_MakeSpinFiles_AutoDepth(t *testing.T) {
	// 約 0.23 m i.e./yr, 241 K
	raw := merraDaily(1980, 1995, 0.23*917/365.25, 241)
	conf := DefaultConfig()

	f, err := MakeSpinFiles(raw, conf)
	require.NoError(t, err)

	assert.Greater(t, f.TargetDepth, 200.0)
	assert.Less(t, f.TargetDepth, 350.0)
	assert.Greater(t, f.DepthS1, 0.0)
	assert.Less(t, f.DepthS1, f.DepthS2)
	assert.Less(t, f.DepthS2, f.TargetDepth)
	assert.Equal(t, f.NumReps*5844, f.SpinRows)
}

func Test_MakeSpinFiles_Melt(t *testing.T) {
	conf := DefaultConfig()
	conf.DesiredDepth = 50
	conf.Melt = true

	f, err := MakeSpinFiles(merraDaily(1980, 1995, 10, 250), conf)
	require.NoError(t, err)
	assert.Equal(t, []Variable{SMELT, BDOT, RAIN, TSKIN, SUBLIM}, f.Variables)
}

func Test_MakeSpinFiles_Errors(t *testing.T) {
	var se *StageError

	raw := merraDaily(1980, 1995, 10, 250)
	raw.Drop("TS")
	conf := DefaultConfig()
	conf.DesiredDepth = 200
	_, err := MakeSpinFiles(raw, conf)
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageResample, se.Stage)
	assert.True(t, errors.Is(err, ErrMissingVariable))

	// 暖かく堆積量の多い地点では 500 m 以内に rho_bottom へ届かない
	_, err = MakeSpinFiles(merraDaily(1980, 1995, 10, 250), DefaultConfig())
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageHorizon, se.Stage)
	assert.True(t, errors.Is(err, ErrUnreachableDensity))

	conf = DefaultConfig()
	conf.TimeRes = "bogus"
	_, err = MakeSpinFiles(merraDaily(1980, 1981, 10, 250), conf)
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageConfig, se.Stage)
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	conf = DefaultConfig()
	conf.DesiredDepth = 100
	conf.SpinDateStart = 2000
	conf.SpinDateEnd = 2005
	_, err = MakeSpinFiles(merraDaily(1980, 1985, 10, 250), conf)
	require.True(t, errors.As(err, &se))
	assert.Equal(t, StageSpinup, se.Stage)
	assert.True(t, errors.Is(err, ErrDegenerateRCI))
}

func Test_MakeSpinFilesWithModel(t *testing.T) {
	model := &linearModel{rate: 2}
	conf := DefaultConfig()
	conf.SpinDateStart = 1980
	conf.SpinDateEnd = 1981

	f, err := MakeSpinFilesWithModel(merraDaily(1980, 1981, 10, 250), conf, model)
	require.NoError(t, err)
	assert.Equal(t, 1, model.calls)
	// 350 + 2h = 916 => h = 283
	assert.Equal(t, 283.0, f.TargetDepth)
	assert.Equal(t, 50.0, f.DepthS1)
	assert.Equal(t, 150.0, f.DepthS2)
}
