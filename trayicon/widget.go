// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trayicon

import (
	"sync"

	"github.com/linuxdeepin/dde-dock/common/screens"
)

// Host 是 dock 面板一侧接收图标通知的对象。
type Host interface {
	OnIconChanged(icon *TrayIcon)
	OnNeedsAttention(icon *TrayIcon)
	OnAdded(icon *TrayIcon)
	OnRemoved(icon *TrayIcon)
}

// Widget 是面板中显示托盘图标的控件，坐标都是逻辑坐标。
type Widget interface {
	Geometry() screens.Rect
	CursorPos() screens.Point
	IsVisible() bool
	Update()
}

// panelItem 保存面板通过 D-Bus 告知的控件状态。
type panelItem struct {
	mu       sync.Mutex
	geometry screens.Rect
	cursor   screens.Point
	visible  bool
	onUpdate func()
}

func newPanelItem(onUpdate func()) *panelItem {
	return &panelItem{
		visible:  true,
		onUpdate: onUpdate,
	}
}

func (p *panelItem) Geometry() screens.Rect {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.geometry
}

func (p *panelItem) setGeometry(rect screens.Rect) {
	p.mu.Lock()
	p.geometry = rect
	p.mu.Unlock()
}

func (p *panelItem) CursorPos() screens.Point {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cursor
}

func (p *panelItem) setCursorPos(pos screens.Point) {
	p.mu.Lock()
	p.cursor = pos
	p.mu.Unlock()
}

func (p *panelItem) IsVisible() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible
}

func (p *panelItem) setVisible(visible bool) {
	p.mu.Lock()
	p.visible = visible
	p.mu.Unlock()
}

func (p *panelItem) Update() {
	if p.onUpdate != nil {
		p.onUpdate()
	}
}
