package spinclimate

import (
	"bytes"
	"fmt"
	"strconv"
)

// CSV形式
//
// 1列目は10進年 (time)、以降は Variables の順。
func (f *Forcing) ToCSV(buf *bytes.Buffer) {
	buf.WriteString("time")
	for _, v := range f.Variables {
		buf.WriteString(",")
		buf.WriteString(string(v))
	}
	buf.WriteString("\n")

	writeFloat := func(v float64) {
		buf.WriteString(",")
		buf.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	for i := 0; i < len(f.Time); i++ {
		buf.WriteString(strconv.FormatFloat(f.Time[i], 'f', -1, 64))
		for _, v := range f.Variables {
			writeFloat(f.Values[string(v)][i])
		}
		buf.WriteString("\n")
	}
}

// Summary はスカラーの出力値を key=value 形式で返します。
func (f *Forcing) Summary() string {
	return fmt.Sprintf("steps_per_year=%g depth_S1=%g depth_S2=%g desired_depth=%g num_reps=%d spin_rows=%d",
		f.StepsPerYear, f.DepthS1, f.DepthS2, f.TargetDepth, f.NumReps, f.SpinRows)
}
