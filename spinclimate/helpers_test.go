package spinclimate

import (
	"time"
)

// startYear-01-01 から endYear-12-31 まで step 間隔の時刻
func makeDates(startYear int, endYear int, step time.Duration) []time.Time {
	start := time.Date(startYear, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(endYear+1, 1, 1, 0, 0, 0, 0, time.UTC)
	dates := []time.Time{}
	for d := start; d.Before(end); d = d.Add(step) {
		dates = append(dates, d)
	}
	return dates
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// 一定値の日別の正準化済みの表
func dailyCanonical(startYear int, endYear int, bdot float64, tskin float64) *Table {
	tbl := NewTable(makeDates(startYear, endYear, 24*time.Hour))
	tbl.Columns[string(BDOT)] = constant(tbl.Len(), bdot)
	tbl.Columns[string(TSKIN)] = constant(tbl.Len(), tskin)
	tbl.Columns[string(SUBLIM)] = constant(tbl.Len(), 0)
	return tbl
}
