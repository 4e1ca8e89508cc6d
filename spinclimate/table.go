package spinclimate

import (
	"fmt"
	"sort"
	"time"
)

// 時刻インデックス付きの表
//
// Date は狭義単調増加。Columns の各列は Date と同じ長さを持つ。
// 存在しない変数はキー自体が存在しない。
type Table struct {
	Date    []time.Time
	Columns map[string][]float64
}

// NewTable は空の列を持つ表を作成します。
func NewTable(date []time.Time) *Table {
	return &Table{
		Date:    date,
		Columns: map[string][]float64{},
	}
}

func (t *Table) Len() int {
	return len(t.Date)
}

func (t *Table) Has(name string) bool {
	_, ok := t.Columns[name]
	return ok
}

// Series は正準変数の列を返します。
func (t *Table) Series(v Variable) ([]float64, bool) {
	s, ok := t.Columns[string(v)]
	return s, ok
}

// Set は列を追加または置き換えます。
func (t *Table) Set(name string, values []float64) error {
	if len(values) != len(t.Date) {
		return fmt.Errorf("column %s has %d rows, index has %d", name, len(values), len(t.Date))
	}
	t.Columns[name] = values
	return nil
}

func (t *Table) Drop(name string) {
	delete(t.Columns, name)
}

// Names は列名を辞書順で返します。
func (t *Table) Names() []string {
	names := make([]string, 0, len(t.Columns))
	for k := range t.Columns {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Clone は深いコピーを返します。
func (t *Table) Clone() *Table {
	c := NewTable(append([]time.Time{}, t.Date...))
	for k, v := range t.Columns {
		c.Columns[k] = append([]float64{}, v...)
	}
	return c
}

// Validate は時刻インデックスの単調性と列の長さを確認します。
func (t *Table) Validate() error {
	for i := 1; i < len(t.Date); i++ {
		if !t.Date[i].After(t.Date[i-1]) {
			return fmt.Errorf("time index not strictly increasing at row %d (%s)", i, t.Date[i].Format("2006-01-02 15:04:05"))
		}
	}
	for k, v := range t.Columns {
		if len(v) != len(t.Date) {
			return fmt.Errorf("column %s has %d rows, index has %d", k, len(v), len(t.Date))
		}
	}
	return nil
}

// 開始日時 start から終了日時 end まで(両端を含む)のデータを抜き出して新しい表を作成します。
func (t *Table) Extract(start time.Time, end time.Time) *Table {
	startIndex := sort.Search(len(t.Date), func(i int) bool {
		return !t.Date[i].Before(start)
	})
	endIndex := sort.Search(len(t.Date), func(i int) bool {
		return t.Date[i].After(end)
	})
	if endIndex < startIndex {
		endIndex = startIndex
	}
	out := NewTable(append([]time.Time{}, t.Date[startIndex:endIndex]...))
	for k, v := range t.Columns {
		out.Columns[k] = append([]float64{}, v[startIndex:endIndex]...)
	}
	return out
}

// 開始年 startYear から終了年 endYear までのデータを抜き出して新しい表を作成します。
func (t *Table) ExtractYears(startYear int, endYear int) *Table {
	start := time.Date(startYear, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(endYear+1, 1, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
	return t.Extract(start, end)
}
