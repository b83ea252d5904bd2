// SPDX-FileCopyrightText: 2018 - 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trayicon

import (
	"bytes"
	"image"
	"image/png"

	"github.com/godbus/dbus/v5"
	"github.com/linuxdeepin/go-lib/dbusutil"
	x "github.com/linuxdeepin/go-x11-client"
	"golang.org/x/xerrors"

	"github.com/linuxdeepin/dde-dock/common/screens"
)

const (
	dbusServiceName = "org.deepin.dde.TrayManager1"
	dbusInterface   = dbusServiceName
	dbusPath        = "/org/deepin/dde/TrayManager1"
)

var (
	errIconNotFound  = xerrors.New("icon not found")
	errLoopStopped   = xerrors.New("tray manager stopped")
	errInvalidButton = xerrors.New("invalid mouse button")
)

func (*TrayManager) GetInterfaceName() string {
	return dbusInterface
}

// withItem 在 Loop 中查找 win 对应的图标并执行 fn。
func (m *TrayManager) withItem(win uint32, fn func(ti *trayItem)) error {
	var found bool
	ok := m.loop.Call(func() {
		ti := m.getItem(x.Window(win))
		if ti == nil {
			return
		}
		found = true
		fn(ti)
	})
	if !ok {
		return errLoopStopped
	}
	if !found {
		return errIconNotFound
	}
	return nil
}

// Manage方法获取系统托盘图标的管理权。
func (m *TrayManager) Manage() (ok bool, busErr *dbus.Error) {
	logger.Debug("call Manage by dbus")

	var err error
	if !m.loop.Call(func() {
		err = m.acquireSelection()
	}) {
		err = errLoopStopped
	}
	if err != nil {
		logger.Warning(err)
		return false, dbusutil.ToError(err)
	}
	return true, nil
}

// GetName返回传入的系统图标的窗口id的窗口名。
func (m *TrayManager) GetName(win uint32) (name string, busErr *dbus.Error) {
	err := m.withItem(win, func(ti *trayItem) {
		name = ti.icon.AppName()
	})
	return name, dbusutil.ToError(err)
}

// GetItemKey返回图标在 dock 配置中使用的 key。
func (m *TrayManager) GetItemKey(win uint32) (key string, busErr *dbus.Error) {
	err := m.withItem(win, func(ti *trayItem) {
		key = ti.icon.ItemKey()
	})
	return key, dbusutil.ToError(err)
}

// GetUniqueKey返回附加了序号的 key，同一程序的多个托盘窗口可以用它区分。
func (m *TrayManager) GetUniqueKey(win uint32) (key string, busErr *dbus.Error) {
	err := m.withItem(win, func(ti *trayItem) {
		key = ti.icon.UniqueKey()
	})
	return key, dbusutil.ToError(err)
}

func (m *TrayManager) GetTrayIcons() (icons []uint32, busErr *dbus.Error) {
	icons = make([]uint32, 0)
	for _, ti := range m.items() {
		icons = append(icons, uint32(ti.icon.win))
	}
	return icons, nil
}

// EnableNotification设置对应id的窗口是否可以通知。
func (m *TrayManager) EnableNotification(win uint32, enabled bool) *dbus.Error {
	err := m.withItem(win, func(ti *trayItem) {
		ti.icon.SetNotify(enabled)
	})
	return dbusutil.ToError(err)
}

func (m *TrayManager) SetItemGeometry(win uint32, posX, posY, width, height int32) *dbus.Error {
	err := m.withItem(win, func(ti *trayItem) {
		ti.item.setGeometry(screens.Rect{
			X:      int(posX),
			Y:      int(posY),
			Width:  int(width),
			Height: int(height),
		})
	})
	return dbusutil.ToError(err)
}

func (m *TrayManager) SetItemVisible(win uint32, visible bool) *dbus.Error {
	err := m.withItem(win, func(ti *trayItem) {
		wasVisible := ti.item.IsVisible()
		ti.item.setVisible(visible)
		if visible && !wasVisible {
			ti.icon.Show()
		}
	})
	return dbusutil.ToError(err)
}

// SendHover 通知鼠标在图标上移动到了 (posX, posY)。
func (m *TrayManager) SendHover(win uint32, posX, posY int32) *dbus.Error {
	err := m.withItem(win, func(ti *trayItem) {
		ti.item.setCursorPos(screens.Point{X: int(posX), Y: int(posY)})
		ti.icon.HoverMoved()
	})
	return dbusutil.ToError(err)
}

func (m *TrayManager) SendClick(win uint32, button uint8, posX, posY int32) *dbus.Error {
	if button == 0 {
		return dbusutil.ToError(errInvalidButton)
	}
	err := m.withItem(win, func(ti *trayItem) {
		ti.item.setCursorPos(screens.Point{X: int(posX), Y: int(posY)})
		ti.icon.SendClick(button, int(posX), int(posY))
	})
	return dbusutil.ToError(err)
}

// GetIcon 返回 PNG 格式的图标，还没有截图时返回空数据并请求刷新。
func (m *TrayManager) GetIcon(win uint32) (data []byte, ratio float64, busErr *dbus.Error) {
	var canvas *image.NRGBA
	err := m.withItem(win, func(ti *trayItem) {
		size := int(ti.icon.pixelSize())
		img := image.NewNRGBA(image.Rect(0, 0, size, size))
		if ti.icon.Paint(img) {
			canvas = img
			ratio = ti.icon.Image().DevicePixelRatio
		}
	})
	if err != nil {
		return nil, 0, dbusutil.ToError(err)
	}
	if canvas == nil {
		return []byte{}, 0, nil
	}

	var buf bytes.Buffer
	err = png.Encode(&buf, canvas)
	if err != nil {
		return nil, 0, dbusutil.ToError(err)
	}
	return buf.Bytes(), ratio, nil
}
