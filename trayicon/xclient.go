// SPDX-FileCopyrightText: 2018 - 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trayicon

import (
	"encoding/binary"

	x "github.com/linuxdeepin/go-x11-client"
	"github.com/linuxdeepin/go-x11-client/ext/composite"
	"github.com/linuxdeepin/go-x11-client/ext/damage"
	"github.com/linuxdeepin/go-x11-client/ext/randr"
	"github.com/linuxdeepin/go-x11-client/ext/test"
	"github.com/linuxdeepin/go-x11-client/util/wm/ewmh"
	"golang.org/x/xerrors"
)

// 协议常量，取值见 composite.xml、shape.xml、damage.xml 与 xproto.xml。
const (
	compositeRedirectManual = 1

	shapeOpSet        = 0
	shapeKindBounding = 0
	shapeKindInput    = 2

	clipOrderingYXBanded = 3

	backPixmapParentRelative = 1

	damageReportLevelNonEmpty = 3

	systemTrayRequestDock = 0
	systemTrayOrientHorz  = 0

	propertyReadLength = 100
)

type xClient struct {
	conn       *x.Conn
	root       x.Window
	rootVisual x.VisualID

	atomOpacity           x.Atom
	atomTraySelection     x.Atom
	atomTrayOpcode        x.Atom
	atomTrayVisual        x.Atom
	atomTrayOrientation   x.Atom
	atomManager           x.Atom
	atomVisualID          x.Atom
	damageFirstEvent      uint8
	randrFirstEvent       uint8
	traySelectionOwnerWin x.Window

	eventChan chan x.GenericEvent
	events    chan Event
}

func newXClient(conn *x.Conn) *xClient {
	screen := conn.GetDefaultScreen()
	xc := &xClient{
		conn:       conn,
		root:       screen.Root,
		rootVisual: screen.RootVisual,
		eventChan:  make(chan x.GenericEvent, 50),
		events:     make(chan Event, 50),
	}
	xc.initX()
	conn.AddEventChan(xc.eventChan)
	go xc.translateEvents()
	return xc
}

func (xc *xClient) initX() {
	conn := xc.conn
	_, err := damage.QueryVersion(conn, damage.MajorVersion, damage.MinorVersion).Reply(conn)
	if err != nil {
		logger.Warning(err)
	}

	_, err = composite.QueryVersion(conn, composite.MajorVersion, composite.MinorVersion).Reply(conn)
	if err != nil {
		logger.Warning(err)
	}

	xc.atomOpacity, _ = conn.GetAtom("_NET_WM_WINDOW_OPACITY")
	xc.atomTraySelection, _ = conn.GetAtom("_NET_SYSTEM_TRAY_S0")
	xc.atomTrayOpcode, _ = conn.GetAtom("_NET_SYSTEM_TRAY_OPCODE")
	xc.atomTrayVisual, _ = conn.GetAtom("_NET_SYSTEM_TRAY_VISUAL")
	xc.atomTrayOrientation, _ = conn.GetAtom("_NET_SYSTEM_TRAY_ORIENTATION")
	xc.atomManager, _ = conn.GetAtom("MANAGER")
	xc.atomVisualID, _ = conn.GetAtom("VISUALID")

	xc.damageFirstEvent = conn.GetExtensionData(damage.Ext()).FirstEvent
	xc.randrFirstEvent = conn.GetExtensionData(randr.Ext()).FirstEvent

	err = randr.SelectInputChecked(conn, xc.root, randr.NotifyMaskScreenChange).Check(conn)
	if err != nil {
		logger.Warning(err)
	}
}

func (xc *xClient) Root() x.Window {
	return xc.root
}

func (xc *xClient) GetGeometry(win x.Window) (*Geometry, error) {
	geo, err := x.GetGeometry(xc.conn, x.Drawable(win)).Reply(xc.conn)
	if err != nil {
		return nil, xerrors.Errorf("window %d: %w", win, ErrGeometryUnavailable)
	}
	return &Geometry{
		X:      geo.X,
		Y:      geo.Y,
		Width:  geo.Width,
		Height: geo.Height,
		Depth:  geo.Depth,
	}, nil
}

func (xc *xClient) IsValidWindow(win x.Window) bool {
	reply, err := x.GetWindowAttributes(xc.conn, win).Reply(xc.conn)
	return reply != nil && err == nil
}

func (xc *xClient) GetProperty(win x.Window, name string) ([]byte, error) {
	atom, err := xc.conn.GetAtom(name)
	if err != nil {
		return nil, err
	}
	reply, err := x.GetProperty(xc.conn, false, win, atom,
		x.GetPropertyTypeAny, 0, propertyReadLength).Reply(xc.conn)
	if err != nil {
		return nil, err
	}
	if reply.Format == 0 || len(reply.Value) == 0 {
		return nil, xerrors.Errorf("%s on window %d: %w", name, win, ErrPropertyMissing)
	}
	return reply.Value, nil
}

func (xc *xClient) GetWMPid(win x.Window) (uint32, error) {
	return ewmh.GetWMPid(xc.conn, win).Reply(xc.conn)
}

func (xc *xClient) allocWindowID() (x.Window, error) {
	xid, err := xc.conn.AllocID()
	if err != nil {
		return 0, err
	}
	return x.Window(xid), nil
}

func (xc *xClient) CreateContainer(width, height uint16) (x.Window, error) {
	wid, err := xc.allocWindowID()
	if err != nil {
		return 0, err
	}

	// ParentRelative 背景保证首次绘制前不会出现花屏，OverrideRedirect 绕过窗管。
	const mask = x.CWBackPixmap | x.CWOverrideRedirect
	err = x.CreateWindowChecked(xc.conn, 0, wid, xc.root,
		0, 0, width, height, 0,
		x.WindowClassInputOutput, xc.rootVisual,
		mask, []uint32{backPixmapParentRelative, 1}).Check(xc.conn)
	if err != nil {
		return 0, err
	}
	return wid, nil
}

func (xc *xClient) DestroyWindow(win x.Window) error {
	return x.DestroyWindowChecked(xc.conn, win).Check(xc.conn)
}

func (xc *xClient) SetWindowOpacity(win x.Window, opacity uint32) error {
	w := x.NewWriter()
	w.Write4b(opacity)
	return x.ChangePropertyChecked(xc.conn, x.PropModeReplace, win,
		xc.atomOpacity, x.AtomCardinal, 32, w.Bytes()).Check(xc.conn)
}

func (xc *xClient) UnmapWindow(win x.Window) error {
	x.UnmapWindow(xc.conn, win)
	return nil
}

func (xc *xClient) MapWindow(win x.Window) error {
	x.MapWindow(xc.conn, win)
	return nil
}

func (xc *xClient) ReparentWindow(win, parent x.Window, posX, posY int16) error {
	x.ReparentWindow(xc.conn, win, parent, posX, posY)
	return nil
}

func (xc *xClient) RedirectWindow(win x.Window) error {
	composite.RedirectWindow(xc.conn, win, compositeRedirectManual)
	return nil
}

func (xc *xClient) AddToSaveSet(win x.Window) error {
	x.ChangeSaveSet(xc.conn, x.SetModeInsert, win)
	return nil
}

func (xc *xClient) SelectWindowEvents(win x.Window) error {
	const eventMask = x.EventMaskStructureNotify
	return x.ChangeWindowAttributesChecked(xc.conn, win, x.CWEventMask,
		[]uint32{eventMask}).Check(xc.conn)
}

func (xc *xClient) MoveResizeWindow(win x.Window, posX, posY int16, width, height uint16) error {
	const mask = x.ConfigWindowX | x.ConfigWindowY | x.ConfigWindowWidth | x.ConfigWindowHeight
	x.ConfigureWindow(xc.conn, win, mask, []uint32{
		uint32(int32(posX)), uint32(int32(posY)), uint32(width), uint32(height),
	})
	return nil
}

func (xc *xClient) MoveWindow(win x.Window, posX, posY int16) error {
	const mask = x.ConfigWindowX | x.ConfigWindowY
	x.ConfigureWindow(xc.conn, win, mask, []uint32{uint32(int32(posX)), uint32(int32(posY))})
	return nil
}

func (xc *xClient) ResizeWindow(win x.Window, width, height uint16) error {
	const mask = x.ConfigWindowWidth | x.ConfigWindowHeight
	x.ConfigureWindow(xc.conn, win, mask, []uint32{uint32(width), uint32(height)})
	return nil
}

func (xc *xClient) RaiseWindow(win x.Window, top bool) error {
	var stackMode uint32 = x.StackModeBelow
	if top {
		stackMode = x.StackModeAbove
	}
	x.ConfigureWindow(xc.conn, win, x.ConfigWindowStackMode, []uint32{stackMode})
	return nil
}

func (xc *xClient) SetShapeRectangles(win x.Window, rects []x.Rectangle) error {
	shapeRectangles(xc.conn, shapeOpSet, shapeKindBounding, clipOrderingYXBanded, win, 0, 0, rects)
	shapeRectangles(xc.conn, shapeOpSet, shapeKindInput, clipOrderingYXBanded, win, 0, 0, rects)
	return nil
}

func (xc *xClient) SendExpose(win x.Window, width, height uint16) error {
	ev := encodeExposeEvent(win, width, height)
	return x.SendEventChecked(xc.conn, false, win, x.EventMaskVisibilityChange, ev).Check(xc.conn)
}

func (xc *xClient) GetImage(win x.Window, width, height uint16) (*RawImage, error) {
	pixmapId, err := xc.conn.AllocID()
	if err != nil {
		return nil, err
	}
	defer func() {
		err := xc.conn.FreeID(pixmapId)
		if err != nil {
			logger.Warning(err)
		}
	}()

	pixmap := x.Pixmap(pixmapId)
	err = composite.NameWindowPixmapChecked(xc.conn, win, pixmap).Check(xc.conn)
	if err != nil {
		return nil, xerrors.Errorf("name window pixmap: %w", ErrCaptureFailed)
	}
	defer x.FreePixmap(xc.conn, pixmap)

	img, err := x.GetImage(xc.conn, x.ImageFormatZPixmap, x.Drawable(pixmap),
		0, 0, width, height, (1<<32)-1).Reply(xc.conn)
	if err != nil {
		return nil, xerrors.Errorf("get image: %w", ErrCaptureFailed)
	}
	return &RawImage{
		Width:  width,
		Height: height,
		Depth:  img.Depth,
		Data:   img.Data,
	}, nil
}

func (xc *xClient) FakeMotion(rootX, rootY int16) error {
	test.FakeInput(xc.conn, x.MotionNotifyEventCode, 0, x.TimeCurrentTime, xc.root, rootX, rootY, 0)
	return nil
}

func (xc *xClient) FakeButton(button uint8, press bool) error {
	var code uint8 = x.ButtonReleaseEventCode
	if press {
		code = x.ButtonPressEventCode
	}
	test.FakeInput(xc.conn, code, button, x.TimeCurrentTime, 0, 0, 0, 0)
	return nil
}

func (xc *xClient) CreateDamage(win x.Window) (uint32, error) {
	xid, err := xc.conn.AllocID()
	if err != nil {
		return 0, err
	}
	err = damage.CreateChecked(xc.conn, damage.Damage(xid), x.Drawable(win),
		damageReportLevelNonEmpty).Check(xc.conn)
	if err != nil {
		return 0, err
	}
	return xid, nil
}

func (xc *xClient) SubtractDamage(d uint32) error {
	damageSubtract(xc.conn, damage.Damage(d), x.None, x.None)
	return nil
}

func (xc *xClient) DestroyDamage(d uint32) error {
	damage.Destroy(xc.conn, damage.Damage(d))
	return xc.conn.FreeID(d)
}

// findRGBAVisualID 优先返回 32 位深度的 visual，托盘客户端可以用它绘制透明图标。
func (xc *xClient) findRGBAVisualID() x.VisualID {
	screen := xc.conn.GetDefaultScreen()
	for _, dinfo := range screen.AllowedDepths {
		if dinfo.Depth == 32 {
			for _, vinfo := range dinfo.Visuals {
				return vinfo.Id
			}
		}
	}
	return screen.RootVisual
}

func (xc *xClient) AcquireTraySelection() (x.Window, error) {
	conn := xc.conn
	owner, err := x.GetSelectionOwner(conn, xc.atomTraySelection).Reply(conn)
	if err != nil {
		return 0, err
	}
	if owner.Owner != 0 && owner.Owner == xc.traySelectionOwnerWin {
		return owner.Owner, nil
	}

	wid, err := xc.allocWindowID()
	if err != nil {
		return 0, err
	}
	err = x.CreateWindowChecked(conn, 0, wid, xc.root,
		0, 0, 1, 1, 0,
		x.WindowClassInputOnly, x.CopyFromParent,
		x.CWEventMask, []uint32{x.EventMaskStructureNotify}).Check(conn)
	if err != nil {
		return 0, err
	}

	w := x.NewWriter()
	w.Write4b(uint32(xc.findRGBAVisualID()))
	err = x.ChangePropertyChecked(conn, x.PropModeReplace, wid,
		xc.atomTrayVisual, xc.atomVisualID, 32, w.Bytes()).Check(conn)
	if err != nil {
		logger.Warning(err)
	}
	w = x.NewWriter()
	w.Write4b(systemTrayOrientHorz)
	err = x.ChangePropertyChecked(conn, x.PropModeReplace, wid,
		xc.atomTrayOrientation, x.AtomCardinal, 32, w.Bytes()).Check(conn)
	if err != nil {
		logger.Warning(err)
	}

	err = x.SetSelectionOwnerChecked(conn, wid, xc.atomTraySelection,
		x.CurrentTime).Check(conn)
	if err != nil {
		return 0, err
	}
	owner, err = x.GetSelectionOwner(conn, xc.atomTraySelection).Reply(conn)
	if err != nil {
		return 0, err
	}
	if owner.Owner != wid {
		x.DestroyWindow(conn, wid)
		return 0, xerrors.Errorf("system tray already owned by window %d", owner.Owner)
	}
	xc.traySelectionOwnerWin = wid

	// 通知托盘客户端新的管理者出现了
	ev := encodeManagerEvent(xc.root, xc.atomManager, xc.atomTraySelection, wid)
	err = x.SendEventChecked(conn, false, xc.root, x.EventMaskStructureNotify, ev).Check(conn)
	if err != nil {
		return 0, err
	}
	return wid, nil
}

func (xc *xClient) ReleaseTraySelection(owner x.Window) error {
	if owner == 0 {
		return nil
	}
	if owner == xc.traySelectionOwnerWin {
		xc.traySelectionOwnerWin = 0
	}
	x.SetSelectionOwner(xc.conn, 0, xc.atomTraySelection, x.CurrentTime)
	return xc.DestroyWindow(owner)
}

func (xc *xClient) Events() <-chan Event {
	return xc.events
}

func (xc *xClient) translateEvents() {
	defer close(xc.events)
	for ev := range xc.eventChan {
		event, ok := xc.translateEvent(ev)
		if ok {
			xc.events <- event
		}
	}
}

func (xc *xClient) translateEvent(ev x.GenericEvent) (Event, bool) {
	code := ev.GetEventCode()
	switch code {
	case x.ClientMessageEventCode:
		data := []byte(ev)
		if len(data) < 32 || data[1] != 32 {
			return Event{}, false
		}
		msgType := x.Atom(binary.LittleEndian.Uint32(data[8:]))
		opcode := binary.LittleEndian.Uint32(data[16:])
		if msgType != xc.atomTrayOpcode || opcode != systemTrayRequestDock {
			return Event{}, false
		}
		win := x.Window(binary.LittleEndian.Uint32(data[20:]))
		return Event{Type: EventDockRequest, Window: win}, true

	case x.DestroyNotifyEventCode:
		event, err := x.NewDestroyNotifyEvent(ev)
		if err != nil {
			return Event{}, false
		}
		return Event{Type: EventDestroy, Window: event.Window}, true

	case x.ConfigureNotifyEventCode:
		event, err := x.NewConfigureNotifyEvent(ev)
		if err != nil {
			return Event{}, false
		}
		return Event{Type: EventConfigure, Window: event.Window}, true

	case x.MapNotifyEventCode:
		event, err := x.NewMapNotifyEvent(ev)
		if err != nil {
			return Event{}, false
		}
		return Event{Type: EventMap, Window: event.Window}, true

	case x.SelectionClearEventCode:
		event, err := x.NewSelectionClearEvent(ev)
		if err != nil || event.Selection != xc.atomTraySelection {
			return Event{}, false
		}
		return Event{Type: EventSelectionClear, Window: event.Owner}, true

	case damage.NotifyEventCode + xc.damageFirstEvent:
		event, err := damage.NewNotifyEvent(ev)
		if err != nil {
			return Event{}, false
		}
		return Event{Type: EventDamage, Window: x.Window(event.Drawable), Damage: uint32(event.Damage)}, true

	case randr.ScreenChangeNotifyEventCode + xc.randrFirstEvent:
		return Event{Type: EventScreenChange, Window: xc.root}, true
	}
	return Event{}, false
}

func (xc *xClient) Flush() error {
	return xc.conn.Flush()
}

func (xc *xClient) Close() {
	xc.conn.RemoveEventChan(xc.eventChan)
	close(xc.eventChan)
	xc.conn.Close()
}
