// SPDX-FileCopyrightText: 2018 - 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trayicon

import (
	x "github.com/linuxdeepin/go-x11-client"

	"github.com/linuxdeepin/dde-dock/common/screens"
)

// HoverMoved 在鼠标于控件上移动时调用，触摸转换来的事件不要调用它。
func (icon *TrayIcon) HoverMoved() {
	if !icon.valid || icon.state.has(stateDestroyed) {
		return
	}
	icon.hoverTimer.Reset()
}

// forwardHover 把容器移到光标下面，让托盘程序收到 enter 事件，用来显示 tooltip。
func (icon *TrayIcon) forwardHover() {
	if !icon.valid || icon.state.has(stateDestroyed) || icon.widget == nil {
		return
	}
	cursor := icon.widget.CursorPos()
	if !icon.widget.Geometry().Contains(cursor) {
		return
	}

	p := icon.rawPosition(cursor)
	icon.configContainerPosition()
	icon.setPassThrough(false)
	icon.setWindowOnTop(true)

	d := icon.env.display()
	logError(d.FakeMotion(int16(p.X), int16(p.Y)))
	logError(d.Flush())

	icon.schedulePassThroughRestore()
}

// SendClick 在 (posX, posY) 处模拟一次鼠标点击，坐标是逻辑坐标。
func (icon *TrayIcon) SendClick(button uint8, posX, posY int) {
	if !icon.valid || icon.state.has(stateDestroyed) {
		return
	}
	d := icon.env.display()
	_, err := d.GetGeometry(icon.win)
	if err != nil {
		logger.Debugf("window %d is bad: %v", icon.win, err)
		return
	}

	icon.hoverTimer.Stop()

	p := icon.rawPosition(screens.Point{X: posX, Y: posY})
	icon.configContainerPosition()
	icon.setPassThrough(false)
	icon.setWindowOnTop(true)

	logError(d.FakeMotion(int16(p.X), int16(p.Y)))
	logError(d.Flush())
	logError(d.FakeButton(button, true))
	logError(d.Flush())
	logError(d.FakeButton(button, false))
	logError(d.Flush())

	icon.schedulePassThroughRestore()
}

func (icon *TrayIcon) rawPosition(p screens.Point) screens.Point {
	var list []screens.Screen
	if icon.env.screens != nil {
		list = icon.env.screens.Screens()
	}
	return screens.RawPosition(list, p, icon.env.devicePixelRatio())
}

// configContainerPosition 把 1x1 的容器移到光标处，托盘窗口移到容器的 (0,0)。
func (icon *TrayIcon) configContainerPosition() {
	var cursor screens.Point
	if icon.widget != nil {
		cursor = icon.widget.CursorPos()
	}
	p := icon.rawPosition(cursor)

	d := icon.env.display()
	logError(d.MoveResizeWindow(icon.container, int16(p.X), int16(p.Y), 1, 1))
	// 有些 wine 程序（QQ、TIM 等）的托盘窗口会跑到很远的位置
	logError(d.MoveWindow(icon.win, 0, 0))
	logError(d.Flush())
}

// setPassThrough 为 true 时容器不接收任何输入，事件穿透到下面的窗口。
func (icon *TrayIcon) setPassThrough(pass bool) {
	if !icon.env.backend.InputShapeSupported() {
		return
	}

	var rects []x.Rectangle
	if !pass {
		rects = []x.Rectangle{{X: 0, Y: 0, Width: 1, Height: 1}}
	}
	d := icon.env.display()
	logError(d.SetShapeRectangles(icon.container, rects))
	logError(d.Flush())
	icon.passThrough = pass
}

func (icon *TrayIcon) setWindowOnTop(top bool) {
	d := icon.env.display()
	logError(d.RaiseWindow(icon.container, top))
	logError(d.Flush())
}

func (icon *TrayIcon) schedulePassThroughRestore() {
	icon.state = icon.state.next(eventGestureStarted)
	icon.restoreTimer.Reset()
}

func (icon *TrayIcon) restorePassThrough() {
	if icon.state.has(stateDestroyed) {
		return
	}
	icon.setPassThrough(true)
	icon.state = icon.state.next(eventPassThroughRestored)
}

func logError(err error) {
	if err != nil {
		logger.Warning(err)
	}
}
