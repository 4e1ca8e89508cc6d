package spinclimate

import (
	"math"
	"time"
)

// ToYearFraction は日時を10進年に変換します。
//
// 年内の経過秒数を、その年の総秒数で割った値を年に加える。
// 閏年は総秒数の違いとして扱われる。秒未満は切り捨てる。
func ToYearFraction(date time.Time) float64 {
	date = date.UTC()
	year := date.Year()
	startOfThisYear := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	startOfNextYear := time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC)

	yearElapsed := float64(date.Unix() - startOfThisYear.Unix())
	yearDuration := float64(startOfNextYear.Unix() - startOfThisYear.Unix())

	return float64(year) + yearElapsed/yearDuration
}

// DecYearToTime は10進年を日時(UTC)に変換します。
func DecYearToTime(decyear float64) time.Time {
	year := int(math.Floor(decyear))
	rem := decyear - float64(year)
	base := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	next := time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC)
	seconds := next.Sub(base).Seconds() * rem
	return base.Add(time.Duration(math.Round(seconds)) * time.Second)
}

// DecimalDates は日時のスライスを10進年のスライスに変換します。
func DecimalDates(dates []time.Time) []float64 {
	out := make([]float64, len(dates))
	for i, d := range dates {
		out[i] = ToYearFraction(d)
	}
	return out
}
