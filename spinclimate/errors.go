package spinclimate

import (
	"errors"
	"fmt"
)

var (
	ErrMissingVariable    = errors.New("missing required variable")
	ErrUnreachableDensity = errors.New("density threshold not reached")
	ErrDegenerateRCI      = errors.New("degenerate reference climate interval")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// 選択したモードに必要な変数が存在しない
type MissingVariableError struct {
	Variable Variable
	Mode     string
}

func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("%s: %s is required in %s mode", ErrMissingVariable, e.Variable, e.Mode)
}

func (e *MissingVariableError) Is(target error) bool {
	return target == ErrMissingVariable
}

// 評価深度の範囲内で密度がしきい値に届かない
type UnreachableDensityError struct {
	Threshold  float64
	DepthMin   float64
	DepthMax   float64
	MaxDensity float64
}

func (e *UnreachableDensityError) Error() string {
	return fmt.Sprintf("%s: %.1f kg/m3 within depth grid [%g, %g] (max density %.2f kg/m3)",
		ErrUnreachableDensity, e.Threshold, e.DepthMin, e.DepthMax, e.MaxDensity)
}

func (e *UnreachableDensityError) Is(target error) bool {
	return target == ErrUnreachableDensity
}

// 参照気候期間(RCI)が不正
type DegenerateRCIError struct {
	Start       float64
	End         float64
	RecordStart float64
	RecordEnd   float64
	Reason      string
}

func (e *DegenerateRCIError) Error() string {
	return fmt.Sprintf("%s [%g, %g] (record %.4f-%.4f): %s",
		ErrDegenerateRCI, e.Start, e.End, e.RecordStart, e.RecordEnd, e.Reason)
}

func (e *DegenerateRCIError) Is(target error) bool {
	return target == ErrDegenerateRCI
}

// 処理段階を付加したエラー
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return e.Stage + ": " + e.Err.Error()
}

func (e *StageError) Unwrap() error {
	return e.Err
}
