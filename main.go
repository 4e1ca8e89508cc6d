// spinclimate
package main

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"github.com/akamensky/argparse"
	"github.com/hhkbp2/go-logging"
	"github.com/udawtr/spinclimate-go/spinclimate"
)

func main() {
	// コマンドライン引数の処理
	parser := argparse.NewParser("spinclimate", "Creates firn model forcing with a spin up history from RCM output for a single site")

	input := parser.String("i", "input", &argparse.Options{
		Default: "",
		Help:    "RCMの地点データ (CSV, 1列目は日時)"})

	filename := parser.String("o", "output", &argparse.Options{
		Default: "",
		Help:    "保存ファイルパス"})

	configPath := parser.String("c", "config", &argparse.Options{
		Default: "",
		Help:    "設定ファイル (YAML)"})

	lat := parser.Float("", "lat", &argparse.Options{
		Default: math.NaN(),
		Help:    "推計対象地点の緯度（10進法）。指定した場合はキャッシュを使用する"})

	lon := parser.Float("", "lon", &argparse.Options{
		Default: math.NaN(),
		Help:    "推計対象地点の経度（10進法）"})

	cacheDir := parser.String("", "cache_dir", &argparse.Options{
		Default: ".clim_cache",
		Help:    "キャッシュの格納ディレクトリ"})

	source := parser.Selector("", "source", []string{"", "MERRA2", "MAR"}, &argparse.Options{
		Default: "",
		Help:    "RCMの種類"})

	timeres := parser.String("", "timeres", &argparse.Options{
		Default: "",
		Help:    "リサンプリング間隔 (例: 1D, 1M)"})

	tinterp := parser.Selector("", "tinterp", []string{"", "mean", "effective", "weighted"}, &argparse.Options{
		Default: "",
		Help:    "温度のリサンプリング方法"})

	spinDateSt := parser.Float("", "spin_date_st", &argparse.Options{
		Default: math.NaN(),
		Help:    "参照気候期間の開始 (10進年)"})

	spinDateEnd := parser.Float("", "spin_date_end", &argparse.Options{
		Default: math.NaN(),
		Help:    "参照気候期間の終了 (10進年)"})

	desiredDepth := parser.Float("", "desired_depth", &argparse.Options{
		Default: math.NaN(),
		Help:    "計算領域の深さ [m]"})

	rhoBottom := parser.Float("", "rho_bottom", &argparse.Options{
		Default: math.NaN(),
		Help:    "計算領域の底の密度 [kg/m3]"})

	melt := parser.Flag("", "melt", &argparse.Options{
		Help: "融解を含める"})

	seb := parser.Flag("", "seb", &argparse.Options{
		Help: "表面エネルギー収支モード"})

	gridFile := parser.String("", "grid", &argparse.Options{
		Default: "",
		Help:    "2次元格子の定義ファイル (CSV: i,j,lat,lon)。MARでは必須"})

	logLevel := parser.Selector("", "log", []string{"DEBUG", "INFO", "WARN", "ERROR", "CRITICAL"}, &argparse.Options{
		Default: "ERROR",
		Help:    "ログレベルの設定"})

	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(2)
	}

	// ログレベル設定
	logger := logging.GetLogger("spinclimate")
	switch *logLevel {
	case "DEBUG":
		logger.SetLevel(logging.LevelDebug)
	case "INFO":
		logger.SetLevel(logging.LevelInfo)
	case "WARN":
		logger.SetLevel(logging.LevelWarn)
	case "ERROR":
		logger.SetLevel(logging.LevelError)
	case "CRITICAL":
		logger.SetLevel(logging.LevelCritical)
	}

	// 設定
	conf := spinclimate.DefaultConfig()
	if *configPath != "" {
		conf, err = spinclimate.LoadConfig(*configPath)
		if err != nil {
			exitWithError(err)
		}
	}
	if *source != "" {
		conf.Source = *source
	}
	if *timeres != "" {
		conf.TimeRes = *timeres
	}
	if *tinterp != "" {
		conf.TInterp = spinclimate.TInterp(*tinterp)
	}
	overrideFloat(&conf.SpinDateStart, *spinDateSt)
	overrideFloat(&conf.SpinDateEnd, *spinDateEnd)
	overrideFloat(&conf.DesiredDepth, *desiredDepth)
	overrideFloat(&conf.RhoBottom, *rhoBottom)
	if *gridFile != "" {
		conf.GridFile = *gridFile
	}
	if *melt {
		conf.Melt = true
	}
	if *seb {
		conf.SEB = true
	}
	if err := conf.Validate(); err != nil {
		exitWithError(err)
	}

	raw, err := loadClimate(*input, *lat, *lon, *cacheDir, conf)
	if err != nil {
		exitWithError(err)
	}

	forcing, err := spinclimate.MakeSpinFiles(raw, conf)
	if err != nil {
		exitWithError(err)
	}

	// 保存
	buf := bytes.NewBuffer([]byte{})
	forcing.ToCSV(buf)

	if *filename == "" {
		fmt.Print(buf.String())
	} else {
		logger.Infof("CSV保存: %s", *filename)
		if err := os.WriteFile(*filename, buf.Bytes(), 0o644); err != nil {
			exitWithError(err)
		}
	}
	fmt.Fprintln(os.Stderr, forcing.Summary())

	logger.Infof("計算が終了しました")
}

// 地点データの読み込み
//
// 緯度経度が指定された場合は格子点をキーとしてキャッシュを参照し、
// 無ければ input を読み込み、正準化してキャッシュへ保存する。
func loadClimate(input string, lat float64, lon float64, cacheDir string, conf spinclimate.Config) (*spinclimate.Table, error) {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		if input == "" {
			return nil, fmt.Errorf("either --input or --lat/--lon is required")
		}
		return spinclimate.LoadTableFile(input)
	}

	locator, err := conf.Locator()
	if err != nil {
		return nil, err
	}
	cell, err := locator.Nearest(lat, lon)
	if err != nil {
		return nil, err
	}
	logger := logging.GetLogger("spinclimate")
	logger.Infof("lat_val: %g lon_val: %g", cell.Lat, cell.Lon)

	h, err := conf.Harmonizer()
	if err != nil {
		return nil, err
	}
	cache := spinclimate.SiteCache{Dir: cacheDir, Prefix: conf.CacheKey()}
	return cache.LoadOrStore(cell, h, func() (*spinclimate.Table, error) {
		if input == "" {
			return nil, fmt.Errorf("no cache for %g, %g and no --input given", cell.Lat, cell.Lon)
		}
		return spinclimate.LoadTableFile(input)
	})
}

func overrideFloat(dst *float64, v float64) {
	if !math.IsNaN(v) {
		*dst = v
	}
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
