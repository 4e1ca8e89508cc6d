package spinclimate

import (
	"compress/gzip"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hhkbp2/go-logging"
)

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// LoadTableFile はCSVファイル(.csv または .csv.gz)から表を読み込みます。
func LoadTableFile(path string) (*Table, error) {
	logger := logging.GetLogger(loggerName)
	logger.Infof("reading climate table: %s", path)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gf, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		defer gf.Close()
		r = gf
	}

	tbl, err := ReadTableCSV(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tbl, nil
}

// ReadTableCSV は1列目を日時、2列目以降を数値とするCSVを読み込みます。
// 空欄および "NaN" は欠損値として扱います。
func ReadTableCSV(r io.Reader) (*Table, error) {
	csvReader := csv.NewReader(r)
	csvReader.ReuseRecord = true

	header, err := csvReader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) < 2 {
		return nil, fmt.Errorf("header needs a date column and at least one variable")
	}
	names := append([]string{}, header[1:]...)

	date := []time.Time{}
	cols := make([][]float64, len(names))
	for line := 2; ; line++ {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		d, err := parseDate(strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		date = append(date, d)
		for k := range names {
			s := strings.TrimSpace(row[k+1])
			if s == "" || strings.EqualFold(s, "nan") {
				cols[k] = append(cols[k], math.NaN())
				continue
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d, column %s: %w", line, names[k], err)
			}
			cols[k] = append(cols[k], v)
		}
	}

	tbl := NewTable(date)
	for k, name := range names {
		if cols[k] == nil {
			cols[k] = []float64{}
		}
		if err := tbl.Set(strings.TrimSpace(name), cols[k]); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}
