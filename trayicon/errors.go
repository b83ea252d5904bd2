// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trayicon

import (
	"golang.org/x/xerrors"
)

// 窗口系统相关的错误都在本地处理，只记录日志，不会传给 dock 面板。
var (
	ErrConnectionUnavailable = xerrors.New("display connection unavailable")
	ErrGeometryUnavailable   = xerrors.New("window geometry unavailable")
	ErrCaptureFailed         = xerrors.New("capture window image failed")
	ErrPropertyMissing       = xerrors.New("window property missing")
)
