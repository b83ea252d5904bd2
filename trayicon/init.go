// SPDX-FileCopyrightText: 2018 - 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trayicon

import (
	"time"

	"github.com/linuxdeepin/go-lib/log"

	"github.com/linuxdeepin/dde-dock/common/screens"
)

var logger = log.NewLogger("dde-dock/trayicon")

const (
	defaultIconSize = 20
	minIconSize     = 16
	maxIconSize     = 64

	refreshDelay     = 100 * time.Millisecond
	hoverDelay       = 100 * time.Millisecond
	passThroughDelay = 100 * time.Millisecond
)

const (
	propWMClass    = "WM_CLASS"
	propWinePrefix = "__wine_prefix"

	// wine 程序的 WM_CLASS 都是 explorer.exe，不能用来区分程序
	wineWMClass = "explorer.exe"

	xembedKeyPrefix = "window:"
)

// SetLogLevel 同时设置 screens 包的日志级别。
func SetLogLevel(level log.Priority) {
	logger.SetLogLevel(level)
	screens.SetLogLevel(level)
}
