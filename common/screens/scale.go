// SPDX-FileCopyrightText: 2018 - 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package screens

import (
	"math"
	"os"
	"path/filepath"

	"github.com/linuxdeepin/go-lib/keyfile"
	"github.com/linuxdeepin/go-lib/xdg/basedir"
	"golang.org/x/xerrors"
)

type monitorSizeInfo struct {
	width, height     uint16
	mmWidth, mmHeight uint32
}

func getForceScaleFactorFile() string {
	return filepath.Join(basedir.GetUserConfigDir(), "deepin/force-scale-factor.ini")
}

// GetForceScaleFactor 允许用户通过 force-scale-factor.ini 强制设置全局缩放
func GetForceScaleFactor() (float64, error) {
	return loadForceScaleFactor(getForceScaleFactorFile())
}

func loadForceScaleFactor(fileName string) (float64, error) {
	_, err := os.Stat(fileName)
	if err != nil {
		return 1.0, xerrors.Errorf("no valid force-scale-factor: %w", err)
	}
	kf := keyfile.NewKeyFile()
	err = kf.LoadFromFile(fileName)
	if err != nil {
		return 1.0, xerrors.Errorf("failed to load %s: %w", fileName, err)
	}
	forceScaleFactor, err := kf.GetFloat64("ForceScaleFactor", "scale")
	if err != nil {
		return 1.0, xerrors.Errorf("invalid forceScaleFactor: %w", err)
	}
	if forceScaleFactor < 1.0 || forceScaleFactor > 3.0 {
		return 1.0, xerrors.Errorf("invalid forceScaleFactor: %v", forceScaleFactor)
	}
	return forceScaleFactor, nil
}

// recommendedScaleFactor 取所有显示器推荐缩放比中的最小值
func recommendedScaleFactor(monitors []*monitorSizeInfo) float64 {
	if len(monitors) == 0 {
		return 1.0
	}

	minScaleFactor := 3.0
	for _, monitor := range monitors {
		scaleFactor := calcRecommendedScaleFactor(float64(monitor.width), float64(monitor.height),
			float64(monitor.mmWidth), float64(monitor.mmHeight))
		if minScaleFactor > scaleFactor {
			minScaleFactor = scaleFactor
		}
	}
	return minScaleFactor
}

// calcRecommendedScaleFactor 计算推荐的缩放比
func calcRecommendedScaleFactor(widthPx, heightPx, widthMm, heightMm float64) float64 {
	if widthMm == 0 || heightMm == 0 {
		return 1
	}

	lenPx := math.Hypot(widthPx, heightPx)
	lenMm := math.Hypot(widthMm, heightMm)

	lenPxStd := math.Hypot(1920, 1080)
	lenMmStd := math.Hypot(477, 268)

	const a = 0.00158
	fix := (lenMm - lenMmStd) * (lenPx / lenPxStd) * a
	scaleFactor := (lenPx/lenMm)/(lenPxStd/lenMmStd) + fix

	return toListedScaleFactor(scaleFactor)
}

func toListedScaleFactor(s float64) float64 {
	const (
		min  = 1.0
		max  = 3.0
		step = 0.25
	)
	if s <= min {
		return min
	} else if s >= max {
		return max
	}

	for i := min; i <= max; i += step {
		if i > s {
			ii := i - step
			d1 := s - ii
			d2 := i - s

			if d1 >= d2 {
				return i
			}
			return ii
		}
	}
	return max
}
