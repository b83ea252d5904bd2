// SPDX-FileCopyrightText: 2018 - 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trayicon

import (
	"sort"
	"sync"

	"github.com/linuxdeepin/go-lib/dbusutil"
	x "github.com/linuxdeepin/go-x11-client"
	"golang.org/x/xerrors"

	"github.com/linuxdeepin/dde-dock/common/screens"
)

//go:generate dbusutil-gen em -type TrayManager

type trayItem struct {
	icon *TrayIcon
	item *panelItem
}

// TrayManager 是系统托盘的管理者，负责接收 XEmbed 托盘窗口并为每个窗口创建 TrayIcon。
type TrayManager struct {
	service *dbusutil.Service
	loop    *Loop
	env     *iconEnv

	mutex sync.Mutex
	icons map[x.Window]*trayItem
	owner x.Window

	//nolint
	signals *struct {
		Inited struct{}
		Added  struct {
			id uint32
		}
		Removed struct {
			id uint32
		}
		Changed struct {
			id uint32
		}
		IconChanged struct {
			id uint32
		}
		NeedAttention struct {
			id uint32
		}
	}
}

type screenReloader interface {
	Reload()
}

func NewTrayManager(service *dbusutil.Service, loop *Loop, backend Backend,
	sched Scheduler, provider screens.Provider, cfg *Config) *TrayManager {
	m := newTrayManager(loop, backend, sched, provider, cfg, nil)
	m.service = service
	return m
}

// host 为 nil 时通过 D-Bus 信号通知面板。
func newTrayManager(loop *Loop, backend Backend, sched Scheduler,
	provider screens.Provider, cfg *Config, host Host) *TrayManager {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	m := &TrayManager{
		loop:  loop,
		icons: make(map[x.Window]*trayItem),
	}
	if host == nil {
		host = m
	}
	m.env = &iconEnv{
		backend:  backend,
		sched:    sched,
		screens:  provider,
		host:     host,
		registry: NewSuffixRegistry(),
		iconSize: cfg.IconSize,
	}
	return m
}

// Start 开始处理 X 事件。
func (m *TrayManager) Start() {
	d := m.env.display()
	if d == nil {
		return
	}
	go func() {
		for ev := range d.Events() {
			ev := ev
			m.loop.Post(func() {
				m.handleEvent(ev)
			})
		}
	}()
}

func (m *TrayManager) handleEvent(ev Event) {
	logger.Debugf("event %v window %d", ev.Type, ev.Window)
	switch ev.Type {
	case EventDockRequest:
		if !m.env.display().IsValidWindow(ev.Window) {
			logger.Warning("dock request from invalid window", ev.Window)
			return
		}
		m.embed(ev.Window)

	case EventDestroy:
		ti := m.getItem(ev.Window)
		if ti == nil {
			return
		}
		ti.icon.markGone()
		m.remove(ev.Window)

	case EventDamage:
		ti := m.getItem(ev.Window)
		if ti == nil {
			return
		}
		logError(m.env.display().SubtractDamage(ev.Damage))
		ti.icon.UpdateIcon()

	case EventConfigure, EventMap:
		ti := m.getItem(ev.Window)
		if ti != nil {
			ti.icon.UpdateIcon()
		}

	case EventScreenChange:
		if r, ok := m.env.screens.(screenReloader); ok {
			r.Reload()
		}
		for _, ti := range m.items() {
			ti.icon.UpdateIcon()
		}

	case EventSelectionClear:
		logger.Info("lost system tray selection, owner window:", ev.Window)
		if m.owner != 0 {
			// 选区已经属于别的程序，不能再清除选区，只销毁自己的窗口
			d := m.env.display()
			logError(d.DestroyWindow(m.owner))
			logError(d.Flush())
		}
		m.owner = 0
	}
}

func (m *TrayManager) getItem(win x.Window) *trayItem {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.icons[win]
}

func (m *TrayManager) items() []*trayItem {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	result := make([]*trayItem, 0, len(m.icons))
	for _, ti := range m.icons {
		result = append(result, ti)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].icon.win < result[j].icon.win
	})
	return result
}

func (m *TrayManager) embed(win x.Window) *TrayIcon {
	if ti := m.getItem(win); ti != nil {
		return ti.icon
	}

	item := newPanelItem(func() {
		m.emitSignal("Changed", win)
	})
	icon := newTrayIcon(m.env, win, item)
	if !icon.IsValid() {
		logger.Warningf("failed to embed window %d", win)
		icon.Destroy()
		return nil
	}
	logger.Infof("embed window %d, app %q, key %q, pid %d",
		win, icon.AppName(), icon.UniqueKey(), icon.Pid())

	m.mutex.Lock()
	m.icons[win] = &trayItem{icon: icon, item: item}
	m.mutex.Unlock()

	m.env.host.OnAdded(icon)
	return icon
}

func (m *TrayManager) remove(win x.Window) {
	m.mutex.Lock()
	ti, ok := m.icons[win]
	delete(m.icons, win)
	m.mutex.Unlock()
	if !ok {
		return
	}
	ti.icon.Destroy()
	m.env.host.OnRemoved(ti.icon)
}

// Embed 嵌入一个托盘窗口，嵌入失败时返回 nil，只能在 Loop 中调用。
func (m *TrayManager) Embed(win x.Window) *TrayIcon {
	return m.embed(win)
}

// Remove 移除托盘窗口，只能在 Loop 中调用。
func (m *TrayManager) Remove(win x.Window) {
	m.remove(win)
}

// applyConfig 在配置文件变化后调整图标大小，只能在 Loop 中调用。
func (m *TrayManager) applyConfig(cfg *Config) {
	if cfg.IconSize == m.env.iconSize {
		return
	}
	logger.Infof("icon size changed from %d to %d", m.env.iconSize, cfg.IconSize)
	m.env.iconSize = cfg.IconSize
	for _, ti := range m.items() {
		ti.icon.resize()
	}
}

func (m *TrayManager) acquireSelection() error {
	d := m.env.display()
	if d == nil {
		return ErrConnectionUnavailable
	}
	owner, err := d.AcquireTraySelection()
	if err != nil {
		return xerrors.Errorf("acquire system tray selection: %w", err)
	}
	m.owner = owner
	return nil
}

// Destroy 移除所有图标并释放托盘管理权，只能在 Loop 中调用。
func (m *TrayManager) Destroy() {
	for _, ti := range m.items() {
		m.remove(ti.icon.win)
	}
	d := m.env.display()
	if d == nil || m.owner == 0 {
		return
	}
	logError(d.ReleaseTraySelection(m.owner))
	logError(d.Flush())
	m.owner = 0
}

func (m *TrayManager) emitSignal(name string, win x.Window) {
	if m.service == nil {
		return
	}
	err := m.service.Emit(m, name, uint32(win))
	if err != nil {
		logger.Warning(err)
	}
}

func (m *TrayManager) OnIconChanged(icon *TrayIcon) {
	m.emitSignal("IconChanged", icon.win)
}

func (m *TrayManager) OnNeedsAttention(icon *TrayIcon) {
	m.emitSignal("NeedAttention", icon.win)
}

func (m *TrayManager) OnAdded(icon *TrayIcon) {
	m.emitSignal("Added", icon.win)
}

func (m *TrayManager) OnRemoved(icon *TrayIcon) {
	m.emitSignal("Removed", icon.win)
}
