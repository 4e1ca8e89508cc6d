package spinclimate

import (
	"fmt"
	"strings"

	"github.com/hhkbp2/go-logging"
)

const loggerName = "spinclimate"

// 単位変換 (value*Scale + Offset)
type Conversion struct {
	Scale  float64
	Offset float64
}

// RCMごとの列名と単位の対応
type SourceProfile struct {
	Name    string
	Renames map[string]Variable   // 元の列名 => 正準変数名
	Units   map[string]Conversion // 元の列名に対する単位変換 (名前変更前に適用)
	Derive  bool                  // PRECTOT, PRECSNO から RAIN, BDOT を導出する
	Inputs  []string              // 導出に使い、導出後に削除する列

	// 通常モードでは BDOT = Snowfall - Sublimation とし、両列を削除する
	Snowfall    string
	Sublimation string
}

// MERRA-2: 質量フラックスは kg/m2/step, 温度は K
var MERRA2 = SourceProfile{
	Name: "MERRA2",
	Renames: map[string]Variable{
		"TS":   TSKIN,
		"EVAP": SUBLIM,
	},
	Units:  map[string]Conversion{},
	Derive: true,
	Inputs: []string{"PRECTOT", "PRECSNO"},
}

// MAR: 質量フラックスは mmWE/step, 温度は ℃
var MAR = SourceProfile{
	Name: "MAR",
	Renames: map[string]Variable{
		"ME":  SMELT,
		"SF":  BDOT,
		"RF":  RAIN,
		"SU":  SUBLIM,
		"ST2": TSKIN,
		"TT":  T2m,
		"AL2": ALBEDO,
		"LHF": QL,
		"SHF": QH,
		"SWD": SWd,
		"LWD": LWd,
	},
	Units: map[string]Conversion{
		"ME":  {Scale: 917.0 / 1000.0},
		"SF":  {Scale: 917.0 / 1000.0},
		"RF":  {Scale: 917.0 / 1000.0},
		"SU":  {Scale: 917.0 / 1000.0},
		"ST2": {Scale: 1, Offset: 273.15},
		"TT":  {Scale: 1, Offset: 273.15},
	},
	Snowfall:    "SF",
	Sublimation: "SU",
}

// LookupSource はRCM名からプロファイルを返します。
func LookupSource(name string) (SourceProfile, error) {
	switch strings.ToUpper(name) {
	case "", "MERRA", "MERRA2":
		return MERRA2, nil
	case "MAR":
		return MAR, nil
	}
	return SourceProfile{}, fmt.Errorf("%w: unknown RCM source %q", ErrInvalidConfig, name)
}

// 変数名・単位の正準化
type Harmonizer struct {
	Profile SourceProfile
	SEB     bool

	// BDOT = PRECSNO + EVAP とする (既定は BDOT = PRECSNO)
	BdotIncludesEvap bool
}

// Harmonize はRCM固有の表から正準変数のみを持つ新しい表を作成します。
//
// 導出元の列が無い場合は導出を行わない。正準変数以外の列は削除する。
// SUBLIM が無い場合はゼロ列を補う。入力の表は変更しない。
func (h Harmonizer) Harmonize(raw *Table) *Table {
	logger := logging.GetLogger(loggerName)

	src := raw.Clone()

	// 単位変換
	for name, conv := range h.Profile.Units {
		col, ok := src.Columns[name]
		if !ok {
			continue
		}
		for i := range col {
			col[i] = col[i]*conv.Scale + conv.Offset
		}
	}

	// 降水の分離
	if h.Profile.Derive {
		prectot, okTot := src.Columns["PRECTOT"]
		precsno, okSno := src.Columns["PRECSNO"]
		if okTot && okSno {
			rain := make([]float64, len(prectot))
			bdot := make([]float64, len(precsno))
			evap, okEvap := src.Columns["EVAP"]
			for i := range prectot {
				rain[i] = prectot[i] - precsno[i]
				bdot[i] = precsno[i]
				if h.BdotIncludesEvap && okEvap {
					bdot[i] += evap[i]
				}
			}
			src.Columns[string(RAIN)] = rain
			src.Columns[string(BDOT)] = bdot
			for _, name := range h.Profile.Inputs {
				src.Drop(name)
			}
			if h.BdotIncludesEvap {
				src.Drop("EVAP")
			}
		}
	}

	// 正味の降雪 (SEBモードでは昇華量を別の列として残す)
	if !h.SEB && h.Profile.Snowfall != "" {
		sf, okSf := src.Columns[h.Profile.Snowfall]
		su, okSu := src.Columns[h.Profile.Sublimation]
		if okSf && okSu && !src.Has(string(BDOT)) {
			bdot := make([]float64, len(sf))
			for i := range sf {
				bdot[i] = sf[i] - su[i]
			}
			src.Columns[string(BDOT)] = bdot
			src.Drop(h.Profile.Snowfall)
			src.Drop(h.Profile.Sublimation)
		}
	}

	// 名前の変更 (既存の正準変数は上書きしない)
	for from, to := range h.Profile.Renames {
		col, ok := src.Columns[from]
		if !ok {
			continue
		}
		src.Drop(from)
		if src.Has(string(to)) {
			logger.Debugf("%s: %s already present, dropping %s", h.Profile.Name, to, from)
			continue
		}
		src.Columns[string(to)] = col
	}

	// 正準変数への射影
	out := NewTable(src.Date)
	for name, col := range src.Columns {
		if isCanonical(name, h.SEB) {
			out.Columns[name] = col
		}
	}

	if !out.Has(string(SUBLIM)) {
		out.Columns[string(SUBLIM)] = make([]float64, out.Len())
		logger.Warnf("SUBLIM not in climate table, using zeros")
	}

	return out
}
