package spinclimate

import (
	"github.com/hhkbp2/go-logging"
)

// 処理段階
const (
	StageConfig    = "config"
	StageHarmonize = "harmonize"
	StageResample  = "resample"
	StageHorizon   = "horizon"
	StageSpinup    = "spinup"
)

// MakeSpinFiles はRCMの表から高密度化モデルの入力データを作成します。
//
// 正準化 => リサンプリング => 深度の決定 => スピンアップ系列の作成 の順に行う。
// いずれかの段階で失敗した場合は、その段階名を付けたエラーを返す。
//
// Args:
//
//	raw(*Table): RCMの列名を持つ表 (変更しない)
//	conf(Config): 実行設定
//
// Returns:
//
//	*Forcing: 入力データ (時刻, 各変数, StepsPerYear, DepthS1, DepthS2, TargetDepth)
func MakeSpinFiles(raw *Table, conf Config) (*Forcing, error) {
	return MakeSpinFilesWithModel(raw, conf, NewHerronLangway(conf.Constants))
}

// MakeSpinFilesWithModel は高密度化モデルを指定して MakeSpinFiles を行います。
func MakeSpinFilesWithModel(raw *Table, conf Config, model DensityModel) (*Forcing, error) {
	logger := logging.GetLogger(loggerName)

	st, err := conf.settings()
	if err != nil {
		return nil, &StageError{Stage: StageConfig, Err: err}
	}

	if err := raw.Validate(); err != nil {
		return nil, &StageError{Stage: StageHarmonize, Err: err}
	}

	logger.Infof("harmonizing %d rows (%s, SEB=%t)", raw.Len(), st.Source.Name, conf.SEB)
	clim := Harmonizer{
		Profile:          st.Source,
		SEB:              conf.SEB,
		BdotIncludesEvap: conf.BdotIncludesEvap,
	}.Harmonize(raw)

	res, err := Resampler{
		Cadence:      st.Cadence,
		TInterp:      conf.TInterp,
		SEB:          conf.SEB,
		Accumulation: st.Accumulation,
		Constants:    conf.Constants,
	}.Resample(clim)
	if err != nil {
		return nil, &StageError{Stage: StageResample, Err: err}
	}

	h, err := HorizonSolver{
		Model:            model,
		RhoSurface:       conf.Constants.RhoSurface,
		RhoBottom:        conf.RhoBottom,
		HorizonDensities: conf.Horizons(),
		Depth:            DepthGrid(conf.DepthMax, conf.DepthStep),
	}.Solve(res.TMean, res.BdotMeanIE, conf.DesiredDepth)
	if err != nil {
		return nil, &StageError{Stage: StageHorizon, Err: err}
	}

	forcing, err := SpinupSynthesizer{
		Constants:     conf.Constants,
		SpinDateStart: conf.SpinDateStart,
		SpinDateEnd:   conf.SpinDateEnd,
		Melt:          conf.Melt,
	}.Synthesize(res, h)
	if err != nil {
		return nil, &StageError{Stage: StageSpinup, Err: err}
	}
	return forcing, nil
}
