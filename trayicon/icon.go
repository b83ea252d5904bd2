// SPDX-FileCopyrightText: 2018 - 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trayicon

import (
	"math"
	"sync/atomic"

	x "github.com/linuxdeepin/go-x11-client"
	"golang.org/x/xerrors"

	"github.com/linuxdeepin/dde-dock/common/screens"
)

// iconEnv 是同一个 TrayManager 下所有图标共享的依赖。
type iconEnv struct {
	backend  Backend
	sched    Scheduler
	screens  screens.Provider
	host     Host
	registry *SuffixRegistry
	iconSize int
}

func (env *iconEnv) display() Display {
	if env.backend == nil {
		return nil
	}
	return env.backend.Display()
}

func (env *iconEnv) devicePixelRatio() float64 {
	if env.screens == nil {
		return 1
	}
	ratio := env.screens.DevicePixelRatio()
	if ratio <= 0 {
		return 1
	}
	return ratio
}

// TrayIcon 表示一个被嵌入到 dock 中的 XEmbed 托盘窗口。
// 除了 Image 之外的方法都只能在 Loop 中调用。
type TrayIcon struct {
	env    *iconEnv
	widget Widget

	win       x.Window
	container x.Window
	damage    uint32
	appName   string
	suffix    int
	pid       uint32

	image atomic.Pointer[IconImage]

	valid       bool
	passThrough bool
	notify      bool
	// 托盘窗口已经被销毁，不能再对它发送请求
	gone bool

	state        embedState
	refreshTimer Timer
	hoverTimer   Timer
	restoreTimer Timer
}

func newTrayIcon(env *iconEnv, win x.Window, widget Widget) *TrayIcon {
	icon := &TrayIcon{
		env:    env,
		widget: widget,
		win:    win,
		notify: true,
	}
	icon.appName = ResolveName(env.display(), win)
	if env.registry != nil {
		icon.suffix = env.registry.Register(icon.appName, win)
	}

	icon.wrap()
	icon.pid = icon.getWindowPid()

	icon.refreshTimer = env.sched.NewTimer(refreshDelay, icon.refreshIconImage)
	icon.hoverTimer = env.sched.NewTimer(hoverDelay, icon.forwardHover)
	icon.restoreTimer = env.sched.NewTimer(passThroughDelay, icon.restorePassThrough)

	icon.UpdateIcon()
	return icon
}

func (icon *TrayIcon) pixelSize() uint16 {
	return uint16(math.Round(float64(icon.env.iconSize) * icon.env.devicePixelRatio()))
}

func (icon *TrayIcon) wrap() {
	d := icon.env.display()
	if d == nil {
		logger.Warning(xerrors.Errorf("wrap window %d: %w", icon.win, ErrConnectionUnavailable))
		return
	}

	_, err := d.GetGeometry(icon.win)
	if err != nil {
		logger.Warning(err)
		return
	}

	size := icon.pixelSize()
	container, err := d.CreateContainer(size, size)
	if err != nil {
		logger.Warningf("create container for window %d failed: %v", icon.win, err)
		return
	}
	icon.container = container

	// 容器窗口只用来接收输入，内容由 dock 自己绘制
	err = d.SetWindowOpacity(container, icon.env.backend.ContainerOpacity())
	if err != nil {
		logger.Warning(err)
	}
	err = d.Flush()
	if err != nil {
		logger.Warning(err)
	}

	steps := []func() error{
		func() error { return d.MapWindow(container) },
		func() error { return d.ReparentWindow(icon.win, container, 0, 0) },
		// 在屏幕外渲染托盘窗口
		func() error { return d.RedirectWindow(icon.win) },
		// dock 退出后托盘窗口会被放回 root 窗口
		func() error { return d.AddToSaveSet(icon.win) },
		func() error { return d.ResizeWindow(icon.win, size, size) },
		func() error { return d.MapWindow(icon.win) },
		d.Flush,
	}
	for _, step := range steps {
		err = step()
		if err != nil {
			logger.Warning(err)
		}
	}

	icon.valid = true
	icon.setWindowOnTop(true)
	icon.setPassThrough(true)

	err = d.SelectWindowEvents(icon.win)
	if err != nil {
		logger.Warning(err)
	}
	icon.damage, err = d.CreateDamage(icon.win)
	if err != nil {
		logger.Warning(err)
	}
}

// resize 按当前的图标大小调整托盘窗口并重新截图。
func (icon *TrayIcon) resize() {
	if !icon.valid || icon.state.has(stateDestroyed) {
		return
	}
	size := icon.pixelSize()
	d := icon.env.display()
	logError(d.ResizeWindow(icon.win, size, size))
	logError(d.Flush())
	icon.UpdateIcon()
}

func (icon *TrayIcon) getWindowPid() uint32 {
	d := icon.env.display()
	if d == nil {
		return 0
	}
	pid, err := d.GetWMPid(icon.win)
	if err != nil {
		logger.Debugf("get pid of window %d failed: %v", icon.win, err)
		return 0
	}
	return pid
}

// Destroy 停止所有定时器并销毁容器窗口，之后的所有操作都不再生效。
// 托盘窗口仍然存在时先把它交还给根窗口，销毁容器不会连带销毁它。
func (icon *TrayIcon) Destroy() {
	if icon.state.has(stateDestroyed) {
		return
	}
	icon.refreshTimer.Stop()
	icon.hoverTimer.Stop()
	icon.restoreTimer.Stop()
	icon.state = icon.state.next(eventDestroyed)

	if icon.env.registry != nil {
		icon.env.registry.Unregister(icon.appName, icon.win)
	}

	d := icon.env.display()
	if d == nil || !icon.valid {
		return
	}
	// 窗口销毁时 damage 对象已经被 X server 释放
	if !icon.gone {
		if icon.damage != 0 {
			logError(d.DestroyDamage(icon.damage))
		}
		logError(d.UnmapWindow(icon.win))
		logError(d.ReparentWindow(icon.win, d.Root(), 0, 0))
	}
	err := d.DestroyWindow(icon.container)
	if err != nil {
		logger.Warning(err)
	}
	err = d.Flush()
	if err != nil {
		logger.Warning(err)
	}
}

func (icon *TrayIcon) markGone() {
	icon.gone = true
}

// Show 在控件显示出来时调用。
func (icon *TrayIcon) Show() {
	icon.UpdateIcon()
}

func (icon *TrayIcon) Window() x.Window {
	return icon.win
}

func (icon *TrayIcon) Container() x.Window {
	return icon.container
}

func (icon *TrayIcon) AppName() string {
	return icon.appName
}

func (icon *TrayIcon) Pid() uint32 {
	return icon.pid
}

func (icon *TrayIcon) IsValid() bool {
	return icon.valid
}

func (icon *TrayIcon) IsPassThrough() bool {
	return icon.passThrough
}

func (icon *TrayIcon) SetNotify(enabled bool) {
	icon.notify = enabled
}

func (icon *TrayIcon) ItemKey() string {
	return xembedKeyPrefix + icon.appName
}

// UniqueKey 在同名程序有多个托盘窗口时附加序号。
func (icon *TrayIcon) UniqueKey() string {
	return uniqueKey(icon.appName, icon.suffix)
}
