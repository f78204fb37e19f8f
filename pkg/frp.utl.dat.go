/* Field Research Portal (FRP) is a component of the TerraLab Research Data Platform.
License:

	[PROPER LEGALESE HERE...]

	INTERIM LICENSE DESCRIPTION:
	In spirit, this license:
	1. Allows <Third Party> to use, modify, and / or distribute this software in perpetuity so long as <Third Party> understands:
		a. The software is provided as is without guarantee of additional support from TerraLab in any form.
		b. The software is provided as is without guarantee of exclusivity.

	2. Prohibits <Third Party> from taking any action which might interfere with TerraLab's right to use, modify and / or distribute this software in perpetuity.
*/

package pkg

import (
	"gonum.org/v1/gonum/stat" // go get gonum.org/v1/gonum/...
)

func MinMaxFloat32(slice []float32, margin float32) (float32, float32) {

	min := slice[0]
	max := slice[0]
	for _, v := range slice {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	span := max - min
	min -= span * margin
	max += span * margin
	return min, max
}

func MeanStdDev(iArr []float32) (mean, std float64) {
	var arr []float64

	for _, v := range iArr {
		arr = append(arr, float64(v))
	}

	return stat.MeanStdDev(arr, nil)
}

/* CHART-READY TIME SERIES ***********************************************************/

type TSXY struct {
	X []int64
	Y []float32
}

func (v TSXY) TSXs() []int64 {
	return v.X
}
func (v TSXY) TSYs() []float32 {
	return v.Y
}
func (v TSXY) MinMax(margin float32) (float32, float32) {
	return MinMaxFloat32(v.TSYs(), margin)
}
func (v TSXY) TSD(margin float32) TimeSeriesData {
	min, max := v.MinMax(margin)
	return TimeSeriesData{TSDPoints(v), min, max}
}

type TSValues interface {
	TSXs() []int64
	TSYs() []float32
}
type TSDPoint struct {
	X int64   `json:"x"`
	Y float32 `json:"y"`
}

func TSDPoints(v TSValues) []TSDPoint {
	xs, ys := v.TSXs(), v.TSYs()
	points := []TSDPoint{}
	for i, x := range xs {
		point := TSDPoint{}
		point.X = x
		point.Y = ys[i]
		points = append(points, point)
	}

	return points
}

type TimeSeriesData struct {
	Data []TSDPoint `json:"data"`
	Min  float32    `json:"min"`
	Max  float32    `json:"max"`
}
