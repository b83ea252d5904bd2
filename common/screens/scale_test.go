// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package screens

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalcRecommendedScaleFactor(t *testing.T) {
	for _, rec := range []struct {
		widthPx  float64
		heightPx float64
		widthMm  float64
		heightMm float64
		expect   float64
	}{
		{1366, 768, 310, 147, 1},
		{1600, 900, 294, 166, 1},
		{1920, 1080, 344, 194, 1.25},
		{1920, 1080, 477, 268, 1},
		{1920, 1080, 0, 0, 1},
		{2160, 1440, 280, 180, 1.5},
		{3000, 2000, 290, 200, 2},
		{3840, 2160, 600, 340, 2},
		{3840, 2160, 344, 193, 2.25},
	} {
		factor := calcRecommendedScaleFactor(rec.widthPx, rec.heightPx, rec.widthMm, rec.heightMm)
		assert.Equal(t, rec.expect, factor, "%gx%g %gmm x %gmm",
			rec.widthPx, rec.heightPx, rec.widthMm, rec.heightMm)
	}
}

func Test_recommendedScaleFactor(t *testing.T) {
	assert.Equal(t, 1.0, recommendedScaleFactor(nil))
	monitors := []*monitorSizeInfo{
		{width: 3840, height: 2160, mmWidth: 600, mmHeight: 340},
		{width: 1920, height: 1080, mmWidth: 344, mmHeight: 194},
	}
	assert.Equal(t, 1.25, recommendedScaleFactor(monitors))
}

func Test_loadForceScaleFactor(t *testing.T) {
	dir := t.TempDir()

	_, err := loadForceScaleFactor(filepath.Join(dir, "missing.ini"))
	assert.Error(t, err)

	file := filepath.Join(dir, "force-scale-factor.ini")
	require.NoError(t, os.WriteFile(file, []byte("[ForceScaleFactor]\nscale=2\n"), 0644))
	v, err := loadForceScaleFactor(file)
	assert.NoError(t, err)
	assert.Equal(t, 2.0, v)

	require.NoError(t, os.WriteFile(file, []byte("[ForceScaleFactor]\nscale=5\n"), 0644))
	v, err = loadForceScaleFactor(file)
	assert.Error(t, err)
	assert.Equal(t, 1.0, v)
}
