package spinclimate

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/hhkbp2/go-logging"
)

// 格子点
type Cell struct {
	I   int     // 緯度方向(またはy方向)の番号
	J   int     // 経度方向(またはx方向)の番号
	Lat float64 // 格子点の緯度
	Lon float64 // 格子点の経度
}

// 推計対象地点に最も近い格子点を返す
type Locator interface {
	Nearest(lat float64, lon float64) (Cell, error)
}

// 等間隔の緯度経度格子
type RegularGrid struct {
	Lat0 float64 // 南端の緯度
	Lon0 float64 // 西端の経度
	DLat float64 // 緯度間隔
	DLon float64 // 経度間隔
	NLat int
	NLon int
}

// MERRA-2 の格子 (0.5° × 0.625°)
var MERRA2Grid = RegularGrid{Lat0: -90, Lon0: -180, DLat: 0.5, DLon: 0.625, NLat: 361, NLon: 576}

// Nearest は緯度・経度それぞれ最も近い格子点を返します。
func (g RegularGrid) Nearest(lat float64, lon float64) (Cell, error) {
	if lat < -90 || lat > 90 {
		return Cell{}, fmt.Errorf("latitude %g out of range", lat)
	}
	i := int(math.Round((lat - g.Lat0) / g.DLat))
	if i < 0 || i >= g.NLat {
		return Cell{}, fmt.Errorf("latitude %g outside grid", lat)
	}

	// 経度は周期的に扱う
	span := g.DLon * float64(g.NLon)
	x := math.Mod(lon-g.Lon0, 360)
	if x < 0 {
		x += 360
	}
	j := int(math.Round(x / g.DLon))
	if j >= g.NLon {
		if span >= 360-1e-9 {
			j = 0
		} else {
			return Cell{}, fmt.Errorf("longitude %g outside grid", lon)
		}
	}

	return Cell{
		I:   i,
		J:   j,
		Lat: roundCoord(g.Lat0 + float64(i)*g.DLat),
		Lon: roundCoord(g.Lon0 + float64(j)*g.DLon),
	}, nil
}

// 2次元の緯度経度を持つ格子 (MARなど)
type CurvilinearGrid struct {
	Lat [][]float64
	Lon [][]float64
}

// Nearest は楕円体上の距離が最も短い格子点を返します。
func (g CurvilinearGrid) Nearest(lat float64, lon float64) (Cell, error) {
	best := Cell{I: -1, J: -1}
	bestDist := math.Inf(1)
	for i := range g.Lat {
		if len(g.Lon) <= i || len(g.Lon[i]) != len(g.Lat[i]) {
			return Cell{}, errors.New("latitude and longitude arrays differ in shape")
		}
		for j := range g.Lat[i] {
			d, err := vincentyInverse(lat, lon, g.Lat[i][j], g.Lon[i][j])
			if err != nil {
				continue
			}
			if d < bestDist {
				bestDist = d
				best = Cell{I: i, J: j, Lat: g.Lat[i][j], Lon: g.Lon[i][j]}
			}
		}
	}
	if best.I < 0 {
		return Cell{}, errors.New("no grid cell found")
	}
	return best, nil
}

// LoadCurvilinearGrid は格子定義ファイル(CSV)を読み込みます。
func LoadCurvilinearGrid(path string) (CurvilinearGrid, error) {
	logger := logging.GetLogger(loggerName)
	logger.Infof("reading grid: %s", path)

	f, err := os.Open(path)
	if err != nil {
		return CurvilinearGrid{}, err
	}
	defer f.Close()

	g, err := ReadCurvilinearGrid(f)
	if err != nil {
		return CurvilinearGrid{}, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// ReadCurvilinearGrid は i,j,lat,lon の4列のCSVから2次元格子を作成します。
// 1行目はヘッダ。全ての (i, j) が1度ずつ現れること。
func ReadCurvilinearGrid(r io.Reader) (CurvilinearGrid, error) {
	csvReader := csv.NewReader(r)
	csvReader.FieldsPerRecord = 4

	if _, err := csvReader.Read(); err != nil {
		return CurvilinearGrid{}, fmt.Errorf("reading header: %w", err)
	}

	type point struct {
		i, j     int
		lat, lon float64
	}
	points := []point{}
	ni, nj := 0, 0
	for line := 2; ; line++ {
		row, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return CurvilinearGrid{}, err
		}
		var p point
		var errs [4]error
		p.i, errs[0] = strconv.Atoi(strings.TrimSpace(row[0]))
		p.j, errs[1] = strconv.Atoi(strings.TrimSpace(row[1]))
		p.lat, errs[2] = strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		p.lon, errs[3] = strconv.ParseFloat(strings.TrimSpace(row[3]), 64)
		for _, e := range errs {
			if e != nil {
				return CurvilinearGrid{}, fmt.Errorf("line %d: %w", line, e)
			}
		}
		if p.i < 0 || p.j < 0 {
			return CurvilinearGrid{}, fmt.Errorf("line %d: negative cell index", line)
		}
		if p.i+1 > ni {
			ni = p.i + 1
		}
		if p.j+1 > nj {
			nj = p.j + 1
		}
		points = append(points, p)
	}
	if len(points) != ni*nj {
		return CurvilinearGrid{}, fmt.Errorf("grid has %d cells, expected %d x %d", len(points), ni, nj)
	}

	g := CurvilinearGrid{Lat: make([][]float64, ni), Lon: make([][]float64, ni)}
	seen := make([][]bool, ni)
	for i := 0; i < ni; i++ {
		g.Lat[i] = make([]float64, nj)
		g.Lon[i] = make([]float64, nj)
		seen[i] = make([]bool, nj)
	}
	for _, p := range points {
		if seen[p.i][p.j] {
			return CurvilinearGrid{}, fmt.Errorf("cell (%d, %d) appears twice", p.i, p.j)
		}
		seen[p.i][p.j] = true
		g.Lat[p.i][p.j] = p.lat
		g.Lon[p.i][p.j] = p.lon
	}
	return g, nil
}

// 緯度経度差から距離を求めるvincenty法(逆解法)
// Args:
//
//	lat1(float64): 地点1の緯度（10進法）
//	lon1(float64): 地点1の経度（10進法）
//	lat2(float64): 地点2の緯度（10進法）
//	lon2(float64): 地点2の経度（10進法）
//
// Returns:
//
//	float64: 2点間の楕円体上の距離 [単位:m]
//
// Notes:
//
//	https://vldb.gsi.go.jp/sokuchi/surveycalc/surveycalc/bl2stf.html
func vincentyInverse(lat1 float64, lon1 float64, lat2 float64, lon2 float64) (float64, error) {
	// 反復計算の上限回数
	const iterationLimit = 10000

	// 差異が無ければ0.0を返す
	if math.Abs(lat1-lat2) < 1e-9 && math.Abs(lon1-lon2) < 1e-9 {
		return 0.0, nil
	}

	// 楕円体はGRS80の値
	a := 6378137.0         // 長軸半径
	f := 1 / 298.257222101 // 扁平率
	b := (1 - f) * a

	p1 := degreeToRad(lat1)
	p2 := degreeToRad(lat2)
	r1 := degreeToRad(lon1)
	r2 := degreeToRad(lon2)

	// 更成緯度(補助球上の緯度)
	U1 := math.Atan((1 - f) * math.Tan(p1))
	U2 := math.Atan((1 - f) * math.Tan(p2))

	sinU1 := math.Sin(U1)
	sinU2 := math.Sin(U2)
	cosU1 := math.Cos(U1)
	cosU2 := math.Cos(U2)

	// 2点間の経度差
	L := r2 - r1

	lambda := L
	var lambdaPrev, cos2A, sinS, cos2Sm, cosS, sigma float64
	converged := false
	for i := 0; i < iterationLimit; i++ {
		sinR := math.Sin(lambda)
		cosR := math.Cos(lambda)
		sinS = math.Sqrt(math.Pow(cosU2*sinR, 2) + math.Pow(cosU1*sinU2-sinU1*cosU2*cosR, 2))
		cosS = sinU1*sinU2 + cosU1*cosU2*cosR
		sigma = math.Atan2(sinS, cosS)
		sinA := cosU1 * cosU2 * sinR / sinS
		cos2A = 1 - math.Pow(sinA, 2)
		if cos2A == 0 {
			cos2Sm = 0 // 赤道上
		} else {
			cos2Sm = cosS - 2*sinU1*sinU2/cos2A
		}
		C := f / 16 * cos2A * (4 + f*(4-3*cos2A))

		lambdaPrev = lambda
		lambda = L + (1-C)*f*sinA*(sigma+C*sinS*(cos2Sm+C*cosS*(-1+2*math.Pow(cos2Sm, 2))))

		if math.Abs(lambda-lambdaPrev) <= 1e-12 {
			converged = true
			break
		}
	}
	if !converged {
		return 0, errors.New("vincenty: did not converge")
	}

	u2 := cos2A * (math.Pow(a, 2) - math.Pow(b, 2)) / (math.Pow(b, 2))
	A := 1 + u2/16384*(4096+u2*(-768+u2*(320-175*u2)))
	B := u2 / 1024 * (256 + u2*(-128+u2*(74-47*u2)))
	dS := B * sinS * (cos2Sm + B/4*(cosS*(-1+2*math.Pow(cos2Sm, 2))-B/6*cos2Sm*(-3+4*math.Pow(sinS, 2))*(-3+4*math.Pow(cos2Sm, 2))))

	// 2点間の楕円体上の距離
	return b * A * (sigma - dS), nil
}

func degreeToRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// 格子点座標の丸め (キャッシュのキーを安定させる)
func roundCoord(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
