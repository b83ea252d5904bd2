// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trayicon

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/linuxdeepin/go-lib/keyfile"
	"github.com/linuxdeepin/go-lib/xdg/basedir"
	"golang.org/x/xerrors"
)

const (
	configSection        = "Tray"
	configKeyIconSize    = "IconSize"
	configKeyScaleFactor = "ScaleFactor"
	configKeyEnabled     = "Enabled"
)

type Config struct {
	IconSize int
	// 0 表示自动获取缩放比
	ScaleFactor float64
	Enabled     bool
}

func DefaultConfig() *Config {
	return &Config{
		IconSize: defaultIconSize,
		Enabled:  true,
	}
}

func GetConfigFile() string {
	return filepath.Join(basedir.GetUserConfigDir(), "deepin/dde-dock/xembed-tray.ini")
}

// LoadConfig 读取配置文件，文件不存在时返回默认配置，非法的值会被忽略。
func LoadConfig(fileName string) (*Config, error) {
	cfg := DefaultConfig()
	_, err := os.Stat(fileName)
	if os.IsNotExist(err) {
		return cfg, nil
	}

	kf := keyfile.NewKeyFile()
	err = kf.LoadFromFile(fileName)
	if err != nil {
		return cfg, xerrors.Errorf("failed to load %s: %w", fileName, err)
	}

	value, err := kf.GetString(configSection, configKeyIconSize)
	if err == nil {
		iconSize, err := strconv.Atoi(value)
		if err != nil {
			iconSize = -1
		}
		if iconSize >= minIconSize && iconSize <= maxIconSize {
			cfg.IconSize = iconSize
		} else {
			logger.Warningf("invalid icon size %d, use %d", iconSize, defaultIconSize)
		}
	}

	scaleFactor, err := kf.GetFloat64(configSection, configKeyScaleFactor)
	if err == nil {
		if scaleFactor == 0 || (scaleFactor >= 1 && scaleFactor <= 3) {
			cfg.ScaleFactor = scaleFactor
		} else {
			logger.Warningf("invalid scale factor %v", scaleFactor)
		}
	}

	enabled, err := kf.GetBool(configSection, configKeyEnabled)
	if err == nil {
		cfg.Enabled = enabled
	}
	return cfg, nil
}
