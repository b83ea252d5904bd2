// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trayicon

import (
	"os"

	x "github.com/linuxdeepin/go-x11-client"
)

// Backend 描述 X11 与 XWayland 会话之间的差异。
type Backend interface {
	Display() Display
	IsWayland() bool
	// ContainerOpacity 是写入容器窗口 _NET_WM_WINDOW_OPACITY 的值
	ContainerOpacity() uint32
	InputShapeSupported() bool
}

type x11Backend struct {
	display Display
}

func NewX11Backend(display Display) Backend {
	return &x11Backend{display: display}
}

func (b *x11Backend) Display() Display {
	return b.display
}

func (*x11Backend) IsWayland() bool {
	return false
}

func (*x11Backend) ContainerOpacity() uint32 {
	return 0
}

func (*x11Backend) InputShapeSupported() bool {
	return true
}

type xwaylandBackend struct {
	display Display
}

func NewXWaylandBackend(display Display) Backend {
	return &xwaylandBackend{display: display}
}

func (b *xwaylandBackend) Display() Display {
	return b.display
}

func (*xwaylandBackend) IsWayland() bool {
	return true
}

func (*xwaylandBackend) ContainerOpacity() uint32 {
	return 10
}

// 在 wayland 下修改 shape 会导致鼠标穿透到桌面
func (*xwaylandBackend) InputShapeSupported() bool {
	return false
}

// IsWaylandSession 通过 XDG_SESSION_TYPE 判断当前会话类型。
func IsWaylandSession() bool {
	return os.Getenv("XDG_SESSION_TYPE") == "wayland"
}

// NewBackend 连接 X server（wayland 会话下为 XWayland），并按会话类型选择后端。
func NewBackend(conn *x.Conn) Backend {
	xc := newXClient(conn)
	if IsWaylandSession() {
		return NewXWaylandBackend(xc)
	}
	return NewX11Backend(xc)
}
