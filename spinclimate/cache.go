package spinclimate

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/hhkbp2/go-logging"
	"github.com/vmihailenco/msgpack/v5"
)

// 地点ごとの正準化済みの表のキャッシュ
//
// 格子点の座標をキーとして Dir 以下に gzip 圧縮した msgpack で保存する。
// 同じキーに対して複数のプロセスから同時に書き込まないこと。
type SiteCache struct {
	Dir    string
	Prefix string // ファイル名の接頭辞 (例: MERRA2)
}

type tableRecord struct {
	Date    []time.Time          `msgpack:"date"`
	Columns map[string][]float64 `msgpack:"columns"`
}

// Path は格子点 cell に対応するキャッシュファイルのパスを返します。
func (c SiteCache) Path(cell Cell) string {
	prefix := c.Prefix
	if prefix == "" {
		prefix = "RCM"
	}
	name := fmt.Sprintf("%s_CLIM_df_%s_%s.msgpack.gz", prefix,
		formatCoord(cell.Lat), formatCoord(cell.Lon))
	return filepath.Join(c.Dir, name)
}

// Load はキャッシュを読み込みます。存在しない場合は ok=false を返します。
func (c SiteCache) Load(cell Cell) (tbl *Table, ok bool, err error) {
	logger := logging.GetLogger(loggerName)

	path := c.Path(cell)
	if !fileExists(path) {
		return nil, false, nil
	}
	logger.Infof("cache found: %s", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()

	tbl, err = ReadTable(f)
	if err != nil {
		return nil, false, fmt.Errorf("cache %s: %w", path, err)
	}
	return tbl, true, nil
}

// Store は表をキャッシュへ書き込みます。既に存在する場合は何もしません。
func (c SiteCache) Store(cell Cell, tbl *Table) error {
	logger := logging.GetLogger(loggerName)

	path := c.Path(cell)
	if fileExists(path) {
		return nil
	}
	if err := os.MkdirAll(c.Dir, os.ModePerm); err != nil {
		return err
	}

	// 書き込み途中のファイルを残さないよう一時ファイルから移動する
	tmp, err := os.CreateTemp(c.Dir, ".cache-*")
	if err != nil {
		return err
	}
	if err := WriteTable(tmp, tbl); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	logger.Infof("cache written: %s", path)
	return nil
}

// LoadOrStore はキャッシュの正準化済みの表を返します。
//
// キャッシュが無い場合は read で読み込んだRCMの表を h で正準化し、保存してから返す。
//
// Args:
//
//	cell(Cell): 格子点
//	h(Harmonizer): 正準化の処理
//	read(func): RCMの表の読み込み
//
// Returns:
//
//	*Table: 正準化済みの表
func (c SiteCache) LoadOrStore(cell Cell, h Harmonizer, read func() (*Table, error)) (*Table, error) {
	tbl, ok, err := c.Load(cell)
	if err != nil {
		return nil, err
	}
	if ok {
		return tbl, nil
	}

	raw, err := read()
	if err != nil {
		return nil, err
	}
	if err := raw.Validate(); err != nil {
		return nil, err
	}
	tbl = h.Harmonize(raw)
	if err := c.Store(cell, tbl); err != nil {
		return nil, err
	}
	return tbl, nil
}

// WriteTable は表を gzip 圧縮した msgpack として書き込みます。
func WriteTable(w io.Writer, tbl *Table) error {
	gw := gzip.NewWriter(w)
	rec := tableRecord{Date: tbl.Date, Columns: tbl.Columns}
	if err := msgpack.NewEncoder(gw).Encode(&rec); err != nil {
		gw.Close()
		return err
	}
	return gw.Close()
}

// ReadTable は WriteTable で書き込んだ表を読み込みます。
func ReadTable(r io.Reader) (*Table, error) {
	gr, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer gr.Close()

	var rec tableRecord
	if err := msgpack.NewDecoder(gr).Decode(&rec); err != nil {
		return nil, err
	}
	tbl := NewTable(rec.Date)
	for i := range tbl.Date {
		tbl.Date[i] = tbl.Date[i].UTC()
	}
	for k, v := range rec.Columns {
		if err := tbl.Set(k, v); err != nil {
			return nil, err
		}
	}
	return tbl, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
