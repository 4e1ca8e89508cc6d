package spinclimate

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// 実行設定
type Config struct {
	TimeRes       string  `yaml:"timeres"`       // リサンプリング間隔 (例: 1D, 1M)
	TInterp       TInterp `yaml:"tinterp"`       // mean, effective, weighted
	SpinDateStart float64 `yaml:"spin_date_st"`  // RCIの開始 (10進年)
	SpinDateEnd   float64 `yaml:"spin_date_end"` // RCIの終了 (10進年)
	Melt          bool    `yaml:"melt"`          // 融解を含める
	DesiredDepth  float64 `yaml:"desired_depth"` // 計算領域の深さ [m] (0は自動)
	SEB           bool    `yaml:"seb"`           // 表面エネルギー収支モード
	RhoBottom     float64 `yaml:"rho_bottom"`    // 計算領域の底の密度 [kg/m3]

	Source           string           `yaml:"source"`             // MERRA2, MAR
	HorizonDensities []float64        `yaml:"horizon_densities"`  // S1, S2 の密度 (未指定はモードの既定値)
	Accumulation     AccumulationMode `yaml:"accumulation"`       // auto, snowfall, snowfall+sublim
	BdotIncludesEvap bool             `yaml:"bdot_includes_evap"` // BDOT = PRECSNO + EVAP
	DepthMax         float64          `yaml:"depth_max"`          // 評価深度の最大値 [m]
	DepthStep        float64          `yaml:"depth_step"`         // 評価深度の間隔 [m]
	GridFile         string           `yaml:"grid_file"`          // 2次元格子の定義 (MARでは必須)

	Constants Constants `yaml:"constants"`
}

// DefaultConfig は既定の設定を返します。
func DefaultConfig() Config {
	return Config{
		TimeRes:       "1D",
		TInterp:       TInterpMean,
		SpinDateStart: 1980.0,
		SpinDateEnd:   1995.0,
		RhoBottom:     916,
		Source:        "MERRA2",
		Accumulation:  AccumAuto,
		DepthMax:      500,
		DepthStep:     1,
		Constants:     DefaultConstants(),
	}
}

// LoadConfig は既定の設定にYAMLファイルの内容を上書きして返します。
func LoadConfig(path string) (Config, error) {
	conf := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return conf, err
	}
	if err := yaml.Unmarshal(b, &conf); err != nil {
		return conf, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return conf, nil
}

// Horizons はS1, S2の密度を返します。
func (c Config) Horizons() [2]float64 {
	if len(c.HorizonDensities) == 2 {
		return [2]float64{c.HorizonDensities[0], c.HorizonDensities[1]}
	}
	if c.SEB {
		return DefaultSEBHorizonDensities
	}
	return DefaultHorizonDensities
}

// 文字列の設定値を解析した結果
type settings struct {
	Cadence      Cadence
	Source       SourceProfile
	Accumulation AccumulationMode
}

// Validate は設定値を確認します。
func (c Config) Validate() error {
	_, err := c.settings()
	return err
}

// Harmonizer は設定に対応する正準化の処理を返します。
func (c Config) Harmonizer() (Harmonizer, error) {
	st, err := c.settings()
	if err != nil {
		return Harmonizer{}, err
	}
	return Harmonizer{Profile: st.Source, SEB: c.SEB, BdotIncludesEvap: c.BdotIncludesEvap}, nil
}

// CacheKey はキャッシュファイル名の接頭辞を返します。
// 正準化の結果はモードによって異なるため、モードもキーに含める。
func (c Config) CacheKey() string {
	key := "RCM"
	if src, err := LookupSource(c.Source); err == nil {
		key = src.Name
	}
	if c.SEB {
		key += "_SEB"
	}
	if c.BdotIncludesEvap {
		key += "_EVAP"
	}
	return key
}

// Locator は格子点を探す方法を返します。
// GridFile が指定された場合はその2次元格子、無ければ MERRA-2 の格子を使う。
func (c Config) Locator() (Locator, error) {
	if c.GridFile != "" {
		g, err := LoadCurvilinearGrid(c.GridFile)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	src, err := LookupSource(c.Source)
	if err != nil {
		return nil, err
	}
	if src.Name != MERRA2.Name {
		return nil, fmt.Errorf("%w: %s needs grid_file to locate grid cells", ErrInvalidConfig, src.Name)
	}
	return MERRA2Grid, nil
}

func (c Config) settings() (settings, error) {
	cadence, err := ParseCadence(c.TimeRes)
	if err != nil {
		return settings{}, err
	}
	if _, err := ParseTInterp(string(c.TInterp)); err != nil {
		return settings{}, err
	}
	accum, err := ParseAccumulationMode(string(c.Accumulation))
	if err != nil {
		return settings{}, err
	}
	source, err := LookupSource(c.Source)
	if err != nil {
		return settings{}, err
	}
	if len(c.HorizonDensities) != 0 && len(c.HorizonDensities) != 2 {
		return settings{}, fmt.Errorf("%w: horizon_densities needs exactly two values", ErrInvalidConfig)
	}
	if c.DesiredDepth < 0 {
		return settings{}, fmt.Errorf("%w: desired_depth must not be negative", ErrInvalidConfig)
	}
	if c.DepthMax <= 0 || c.DepthStep <= 0 {
		return settings{}, fmt.Errorf("%w: depth_max and depth_step must be positive", ErrInvalidConfig)
	}
	if c.RhoBottom <= 0 || c.Constants.RhoIce <= 0 {
		return settings{}, fmt.Errorf("%w: densities must be positive", ErrInvalidConfig)
	}
	return settings{Cadence: cadence, Source: source, Accumulation: accum}, nil
}
