// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trayicon

import (
	x "github.com/linuxdeepin/go-x11-client"
)

type Geometry struct {
	X, Y          int16
	Width, Height uint16
	Depth         uint8
}

// RawImage 是 GetImage 返回的 ZPixmap 数据，每像素 4 字节。
type RawImage struct {
	Width, Height uint16
	Depth         uint8
	Data          []byte
}

// Display 封装 Tray 嵌入需要用到的 X 请求，方便在测试中替换。
type Display interface {
	Root() x.Window

	GetGeometry(win x.Window) (*Geometry, error)
	IsValidWindow(win x.Window) bool
	GetProperty(win x.Window, name string) ([]byte, error)
	GetWMPid(win x.Window) (uint32, error)

	CreateContainer(width, height uint16) (x.Window, error)
	DestroyWindow(win x.Window) error
	SetWindowOpacity(win x.Window, opacity uint32) error
	MapWindow(win x.Window) error
	UnmapWindow(win x.Window) error
	ReparentWindow(win, parent x.Window, posX, posY int16) error
	RedirectWindow(win x.Window) error
	AddToSaveSet(win x.Window) error
	SelectWindowEvents(win x.Window) error
	MoveResizeWindow(win x.Window, posX, posY int16, width, height uint16) error
	MoveWindow(win x.Window, posX, posY int16) error
	ResizeWindow(win x.Window, width, height uint16) error
	RaiseWindow(win x.Window, top bool) error
	SetShapeRectangles(win x.Window, rects []x.Rectangle) error

	SendExpose(win x.Window, width, height uint16) error
	GetImage(win x.Window, width, height uint16) (*RawImage, error)

	FakeMotion(rootX, rootY int16) error
	FakeButton(button uint8, press bool) error

	CreateDamage(win x.Window) (uint32, error)
	SubtractDamage(damage uint32) error
	DestroyDamage(damage uint32) error

	AcquireTraySelection() (x.Window, error)
	ReleaseTraySelection(owner x.Window) error
	Events() <-chan Event

	Flush() error
	Close()
}

type EventType int

const (
	EventDockRequest EventType = iota
	EventDestroy
	EventDamage
	EventConfigure
	EventMap
	EventScreenChange
	EventSelectionClear
)

func (t EventType) String() string {
	switch t {
	case EventDockRequest:
		return "DockRequest"
	case EventDestroy:
		return "Destroy"
	case EventDamage:
		return "Damage"
	case EventConfigure:
		return "Configure"
	case EventMap:
		return "Map"
	case EventScreenChange:
		return "ScreenChange"
	case EventSelectionClear:
		return "SelectionClear"
	}
	return "Unknown"
}

// Event 是从 X 事件翻译过来的、Tray 管理器关心的事件。
type Event struct {
	Type   EventType
	Window x.Window
	Damage uint32
}
