package spinclimate

// 正準変数名
type Variable string

const (
	BDOT   Variable = "BDOT"   // 固体降水(堆積)量 [kg/m2/step]
	SMELT  Variable = "SMELT"  // 表面融解量 [kg/m2/step]
	RAIN   Variable = "RAIN"   // 液体降水量 [kg/m2/step]
	SUBLIM Variable = "SUBLIM" // 昇華・蒸発量 [kg/m2/step]
	TSKIN  Variable = "TSKIN"  // 地表面温度 [K]
	SRHO   Variable = "SRHO"   // 表層密度 [kg/m3]

	// 表面エネルギー収支(SEB)モードのみ
	T2m    Variable = "T2m"    // 2m気温 [K]
	ALBEDO Variable = "ALBEDO" // アルベド [-]
	QL     Variable = "QL"     // 潜熱フラックス [W/m2]
	QH     Variable = "QH"     // 顕熱フラックス [W/m2]
	SWd    Variable = "SW_d"   // 下向き短波放射 [W/m2]
	LWd    Variable = "LW_d"   // 下向き長波放射 [W/m2]
	LWu    Variable = "LW_u"   // 上向き長波放射 [W/m2]
)

// 集計方法
type Aggregation int

const (
	AggSum Aggregation = iota
	AggMean
)

func (a Aggregation) String() string {
	if a == AggSum {
		return "sum"
	}
	return "mean"
}

// 通常モードの変数セット (出力列順)
var standardVariables = []Variable{SMELT, BDOT, RAIN, TSKIN, SUBLIM, SRHO}

// SEBモードの変数セット (SMELTは含まない)
var sebVariables = []Variable{BDOT, RAIN, TSKIN, T2m, ALBEDO, QL, QH, SUBLIM, SWd, LWd, LWu}

// 質量フラックス変数
var massVariables = map[Variable]bool{
	SMELT:  true,
	BDOT:   true,
	RAIN:   true,
	SUBLIM: true,
}

// CanonicalVariables はモードごとの正準変数セットを返します。
func CanonicalVariables(seb bool) []Variable {
	if seb {
		return append([]Variable{}, sebVariables...)
	}
	return append([]Variable{}, standardVariables...)
}

// IsMassFlux は質量フラックス(時間ステップあたりの質量)であるかを返します。
func (v Variable) IsMassFlux() bool {
	return massVariables[v]
}

// AggregationOf はリサンプリング時の集計方法を返します。
// フラックスは合計、温度・密度・エネルギー項は平均
func (v Variable) AggregationOf() Aggregation {
	if v.IsMassFlux() {
		return AggSum
	}
	return AggMean
}

func isCanonical(name string, seb bool) bool {
	vars := standardVariables
	if seb {
		vars = sebVariables
	}
	for _, v := range vars {
		if string(v) == name {
			return true
		}
	}
	return false
}
