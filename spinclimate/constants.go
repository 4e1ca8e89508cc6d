package spinclimate

// 物理定数
//
// 値渡しで各コンポーネントへ渡すため、呼び出し側で変更されることはない。
type Constants struct {
	RhoIce     float64 `yaml:"rho_ice"`     // 氷の密度 [kg/m3]
	RhoSurface float64 `yaml:"rho_surface"` // 解析モデルの表層密度 [kg/m3]
	ArrheniusQ float64 `yaml:"arrhenius_q"` // 活性化エネルギー [J/mol] (符号付き)
	GasR       float64 `yaml:"gas_r"`       // 気体定数 [J/mol/K]
}

// DefaultConstants は既定の物理定数を返します。
func DefaultConstants() Constants {
	return Constants{
		RhoIce:     917.0,
		RhoSurface: 350.0,
		ArrheniusQ: -59500.0,
		GasR:       8.314,
	}
}

// ToIceEquivalent は時間ステップあたりの質量フラックス [kg/m2/step] を
// 氷換算の年率 [m i.e./yr] に変換する係数を返します。
func (c Constants) ToIceEquivalent(stepsPerYear float64) float64 {
	return stepsPerYear / c.RhoIce
}
