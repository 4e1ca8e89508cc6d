package spinclimate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// リサンプリング間隔の単位
type CadenceUnit int

const (
	UnitHour CadenceUnit = iota
	UnitDay
	UnitMonth // 月末ラベル
	UnitMonthStart
	UnitYear // 年末ラベル
	UnitYearStart
)

// リサンプリング間隔 (例: "1D", "6H", "1M", "MS", "1A")
type Cadence struct {
	N    int
	Unit CadenceUnit
	text string
}

var cadenceUnits = map[string]CadenceUnit{
	"H":  UnitHour,
	"D":  UnitDay,
	"M":  UnitMonth,
	"MS": UnitMonthStart,
	"A":  UnitYear,
	"Y":  UnitYear,
	"AS": UnitYearStart,
	"YS": UnitYearStart,
}

// ParseCadence はリサンプリング間隔の文字列を解析します。
func ParseCadence(s string) (Cadence, error) {
	text := strings.ToUpper(strings.TrimSpace(s))
	i := 0
	for i < len(text) && text[i] >= '0' && text[i] <= '9' {
		i++
	}
	n := 1
	if i > 0 {
		var err error
		n, err = strconv.Atoi(text[:i])
		if err != nil || n <= 0 {
			return Cadence{}, fmt.Errorf("%w: bad cadence multiplier in %q", ErrInvalidConfig, s)
		}
	}
	unit, ok := cadenceUnits[text[i:]]
	if !ok {
		return Cadence{}, fmt.Errorf("%w: unknown cadence unit in %q", ErrInvalidConfig, s)
	}
	return Cadence{N: n, Unit: unit, text: s}, nil
}

func (c Cadence) String() string {
	return c.text
}

// 最初の区間の開始時刻
func (c Cadence) origin(first time.Time) time.Time {
	first = first.UTC()
	switch c.Unit {
	case UnitHour, UnitDay:
		return time.Date(first.Year(), first.Month(), first.Day(), 0, 0, 0, 0, time.UTC)
	case UnitMonth, UnitMonthStart:
		return time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(first.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	}
}

// origin から k 番目の区間の開始時刻
func (c Cadence) binStart(origin time.Time, k int) time.Time {
	switch c.Unit {
	case UnitHour:
		return origin.Add(time.Duration(k*c.N) * time.Hour)
	case UnitDay:
		return origin.AddDate(0, 0, k*c.N)
	case UnitMonth, UnitMonthStart:
		return origin.AddDate(0, k*c.N, 0)
	default:
		return origin.AddDate(k*c.N, 0, 0)
	}
}

// 区間のラベル時刻
func (c Cadence) label(start time.Time, next time.Time) time.Time {
	switch c.Unit {
	case UnitMonth, UnitYear:
		return next.AddDate(0, 0, -1)
	default:
		return start
	}
}

// 集計区間
type bin struct {
	Label time.Time
	Lo    int // 含む
	Hi    int // 含まない
}

// bins は時刻インデックスを区間へ分割します。データの無い区間も含みます。
func (c Cadence) bins(date []time.Time) []bin {
	if len(date) == 0 {
		return nil
	}
	origin := c.origin(date[0])
	last := date[len(date)-1]

	out := []bin{}
	i := 0
	for k := 0; ; k++ {
		start := c.binStart(origin, k)
		if start.After(last) {
			break
		}
		next := c.binStart(origin, k+1)
		lo := i
		for i < len(date) && date[i].Before(next) {
			i++
		}
		out = append(out, bin{Label: c.label(start, next), Lo: lo, Hi: i})
	}
	return out
}
