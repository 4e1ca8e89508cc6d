package spinclimate

import "math"

// 深度-密度・年代の解析解を返す高密度化モデル
type DensityModel interface {
	// Profile は各深度 depth [m] における年代 [yr] と密度 [kg/m3] を返します。
	//   rho0: 表層密度 [kg/m3]
	//   temperature: 平均温度 [K]
	//   accumulation: 平均堆積量 [m i.e./yr]
	Profile(rho0 float64, depth []float64, temperature float64, accumulation float64) (age []float64, rho []float64)
}

// Herron and Langway (1980) の解析モデル
//
// 密度 550 kg/m3 までを第1段階、それ以深を第2段階とする。
type HerronLangway struct {
	RhoIce float64 // [kg/m3]
	GasR   float64 // [J/mol/K]
}

// NewHerronLangway は物理定数から解析モデルを作成します。
func NewHerronLangway(c Constants) HerronLangway {
	return HerronLangway{RhoIce: c.RhoIce, GasR: c.GasR}
}

func (m HerronLangway) Profile(rho0 float64, depth []float64, temperature float64, accumulation float64) ([]float64, []float64) {
	const rhoc = 550.0 // 臨界密度 [kg/m3]

	// 密度は g/cm3 で扱う
	ri := m.RhoIce / 1000
	rc := rhoc / 1000
	rs := rho0 / 1000

	// 速度式の堆積量は水換算 [m w.e./yr]
	a := accumulation * ri

	k0 := 11 * math.Exp(-10160/(m.GasR*temperature))
	k1 := 575 * math.Exp(-21400/(m.GasR*temperature))

	// 臨界密度に達する深度と年代
	h0c := 1 / (ri * k0) * (math.Log(rc/(ri-rc)) - math.Log(rs/(ri-rs)))
	t0c := 1 / (k0 * a) * math.Log((ri-rs)/(ri-rc))

	age := make([]float64, len(depth))
	rho := make([]float64, len(depth))
	for i, h := range depth {
		if h < h0c {
			z0 := math.Exp(ri*k0*h + math.Log(rs/(ri-rs)))
			r := ri * z0 / (1 + z0)
			rho[i] = 1000 * r
			age[i] = 1 / (k0 * a) * math.Log((ri-rs)/(ri-r))
		} else {
			z1 := math.Exp(ri*k1*(h-h0c)/math.Sqrt(a) + math.Log(rc/(ri-rc)))
			r := ri * z1 / (1 + z1)
			rho[i] = 1000 * r
			age[i] = 1/(k1*math.Sqrt(a))*math.Log((ri-rc)/(ri-r)) + t0c
		}
	}
	return age, rho
}
