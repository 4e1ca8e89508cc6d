package spinclimate

import (
	"fmt"
	"math"
	"sort"

	"github.com/hhkbp2/go-logging"
)

// スピンアップ系列の作成
//
// 参照気候期間(RCI) [SpinDateStart, SpinDateEnd] を過去方向へ繰り返し並べ、
// 観測期間の系列の前に連結する。
type SpinupSynthesizer struct {
	Constants     Constants
	SpinDateStart float64 // RCIの開始 (10進年)
	SpinDateEnd   float64 // RCIの終了 (10進年)
	Melt          bool    // false の場合 SMELT を出力しない
}

// 高密度化モデルへの入力
type Forcing struct {
	Time      []float64            // 10進年
	Values    map[string][]float64 // 質量フラックスは [m i.e./yr]
	Variables []Variable           // 出力列順

	StepsPerYear float64
	DepthS1      float64
	DepthS2      float64
	TargetDepth  float64

	NumReps  int // RCIの繰り返し回数
	SpinRows int // スピンアップ部分の行数
}

// RCILength はRCIの長さ [yr] を返します。
func (s SpinupSynthesizer) RCILength() float64 {
	return s.SpinDateEnd - s.SpinDateStart + 1
}

// NumReps は目標深度を満たすのに必要なRCIの繰り返し回数を返します。
// 最近接偶数への丸め。最小値は設けない。
func (s SpinupSynthesizer) NumReps(targetDepth float64, bdotMeanIE float64) int {
	return int(math.RoundToEven(targetDepth / bdotMeanIE / s.RCILength()))
}

// rciRange はRCIに含まれる行の範囲 [lo, hi) を返します。
func (s SpinupSynthesizer) rciRange(decdate []float64) (int, int, error) {
	rec := func(reason string) error {
		e := &DegenerateRCIError{Start: s.SpinDateStart, End: s.SpinDateEnd, Reason: reason}
		if len(decdate) > 0 {
			e.RecordStart = decdate[0]
			e.RecordEnd = decdate[len(decdate)-1]
		}
		return e
	}
	if !(s.RCILength() > 0) {
		return 0, 0, rec(fmt.Sprintf("length %g years", s.RCILength()))
	}
	lo := sort.SearchFloat64s(decdate, s.SpinDateStart)
	hi := sort.SearchFloat64s(decdate, s.SpinDateEnd+1)
	if hi <= lo {
		return 0, 0, rec("no rows within the record")
	}
	return lo, hi, nil
}

// Synthesize はスピンアップ系列と観測期間の系列を連結した入力データを作成します。
//
// Args:
//
//	res(*Resampled): リサンプリング結果 (変更しない)
//	h(Horizons): 深度
//
// Returns:
//
//	*Forcing: 時刻は狭義単調増加、スピンアップ部分はすべて観測期間より前
func (s SpinupSynthesizer) Synthesize(res *Resampled, h Horizons) (*Forcing, error) {
	logger := logging.GetLogger(loggerName)

	decdate := res.DecDate
	lo, hi, err := s.rciRange(decdate)
	if err != nil {
		return nil, err
	}
	if !(res.BdotMeanIE > 0) {
		return nil, fmt.Errorf("mean accumulation must be positive to size the spin up (got %g m i.e./yr)", res.BdotMeanIE)
	}

	rciLength := s.RCILength()
	numReps := s.NumReps(h.TargetDepth, res.BdotMeanIE)
	if numReps < 0 {
		numReps = 0
	}

	// RCIが記録の途中から始まる場合は、観測期間と重ならないよう整数年ずらす
	gap := 0.0
	if last := decdate[hi-1] - rciLength; numReps > 0 && last >= decdate[0] {
		gap = math.Floor(last-decdate[0]) + 1
	}

	nu := hi - lo
	spinRows := numReps * nu
	total := spinRows + len(decdate)

	times := make([]float64, 0, total)
	for k := 0; k < numReps; k++ {
		shift := -float64(numReps-k)*rciLength - gap
		for j := lo; j < hi; j++ {
			times = append(times, decdate[j]+shift)
		}
	}
	times = append(times, decdate...)

	for i := 1; i < len(times); i++ {
		if !(times[i] > times[i-1]) {
			return nil, fmt.Errorf("spin up time axis not strictly increasing at %d (%.6f, %.6f)", i, times[i-1], times[i])
		}
	}

	toIE := s.Constants.ToIceEquivalent(res.StepsPerYear)
	vars := []Variable{}
	values := map[string][]float64{}
	for _, v := range res.Variables {
		if v == SMELT && !s.Melt {
			continue
		}
		src := res.Table.Columns[string(v)]
		col := make([]float64, 0, total)
		for k := 0; k < numReps; k++ {
			col = append(col, src[lo:hi]...)
		}
		col = append(col, src...)
		if v.IsMassFlux() {
			for i := range col {
				col[i] *= toIE
			}
		}
		vars = append(vars, v)
		values[string(v)] = col
	}

	logger.Infof("RCI %g-%g (%g yr, %d rows) repeated %d times", s.SpinDateStart, s.SpinDateEnd, rciLength, nu, numReps)
	logger.Infof("forcing starts at %.4f, %d rows", times[0], len(times))

	return &Forcing{
		Time:         times,
		Values:       values,
		Variables:    vars,
		StepsPerYear: res.StepsPerYear,
		DepthS1:      h.DepthS1,
		DepthS2:      h.DepthS2,
		TargetDepth:  h.TargetDepth,
		NumReps:      numReps,
		SpinRows:     spinRows,
	}, nil
}
