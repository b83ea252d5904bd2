// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trayicon

import (
	"fmt"
	"strings"
	"sync"
	"time"

	x "github.com/linuxdeepin/go-x11-client"

	"github.com/linuxdeepin/dde-dock/common/screens"
)

type fakeDisplay struct {
	mu sync.Mutex

	calls    []string
	windows  map[x.Window]Geometry
	props    map[x.Window]map[string][]byte
	pids     map[x.Window]uint32
	image    *RawImage
	imageErr error

	nextID      x.Window
	nextDamage  uint32
	createErr   error
	acquireErr  error
	selectionID x.Window
	events      chan Event
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{
		windows:     make(map[x.Window]Geometry),
		props:       make(map[x.Window]map[string][]byte),
		pids:        make(map[x.Window]uint32),
		nextID:      1000,
		nextDamage:  500,
		selectionID: 900,
		events:      make(chan Event, 10),
	}
}

func (d *fakeDisplay) addWindow(win x.Window, width, height uint16) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.windows[win] = Geometry{Width: width, Height: height, Depth: 32}
}

func (d *fakeDisplay) removeWindow(win x.Window) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.windows, win)
}

func (d *fakeDisplay) setProperty(win x.Window, name string, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.props[win] == nil {
		d.props[win] = make(map[string][]byte)
	}
	d.props[win][name] = []byte(value)
}

func (d *fakeDisplay) setImage(img *RawImage, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.image = img
	d.imageErr = err
}

func (d *fakeDisplay) record(format string, args ...interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

func (d *fakeDisplay) getCalls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	result := make([]string, len(d.calls))
	copy(result, d.calls)
	return result
}

func (d *fakeDisplay) resetCalls() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = nil
}

func (d *fakeDisplay) count(prefix string) int {
	n := 0
	for _, call := range d.getCalls() {
		if strings.HasPrefix(call, prefix) {
			n++
		}
	}
	return n
}

func (d *fakeDisplay) Root() x.Window {
	return 1
}

func (d *fakeDisplay) GetGeometry(win x.Window) (*Geometry, error) {
	d.record("GetGeometry(%d)", win)
	d.mu.Lock()
	defer d.mu.Unlock()
	geo, ok := d.windows[win]
	if !ok {
		return nil, ErrGeometryUnavailable
	}
	return &geo, nil
}

func (d *fakeDisplay) IsValidWindow(win x.Window) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.windows[win]
	return ok
}

func (d *fakeDisplay) GetProperty(win x.Window, name string) ([]byte, error) {
	d.record("GetProperty(%d,%s)", win, name)
	d.mu.Lock()
	defer d.mu.Unlock()
	value, ok := d.props[win][name]
	if !ok {
		return nil, ErrPropertyMissing
	}
	return value, nil
}

func (d *fakeDisplay) GetWMPid(win x.Window) (uint32, error) {
	d.record("GetWMPid(%d)", win)
	d.mu.Lock()
	defer d.mu.Unlock()
	pid, ok := d.pids[win]
	if !ok {
		return 0, ErrPropertyMissing
	}
	return pid, nil
}

func (d *fakeDisplay) CreateContainer(width, height uint16) (x.Window, error) {
	d.record("CreateContainer(%d,%d)", width, height)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.createErr != nil {
		return 0, d.createErr
	}
	win := d.nextID
	d.nextID++
	d.windows[win] = Geometry{Width: width, Height: height, Depth: 24}
	return win, nil
}

func (d *fakeDisplay) DestroyWindow(win x.Window) error {
	d.record("DestroyWindow(%d)", win)
	return nil
}

func (d *fakeDisplay) SetWindowOpacity(win x.Window, opacity uint32) error {
	d.record("SetWindowOpacity(%d,%d)", win, opacity)
	return nil
}

func (d *fakeDisplay) MapWindow(win x.Window) error {
	d.record("MapWindow(%d)", win)
	return nil
}

func (d *fakeDisplay) UnmapWindow(win x.Window) error {
	d.record("UnmapWindow(%d)", win)
	return nil
}

func (d *fakeDisplay) ReparentWindow(win, parent x.Window, posX, posY int16) error {
	d.record("ReparentWindow(%d,%d,%d,%d)", win, parent, posX, posY)
	return nil
}

func (d *fakeDisplay) RedirectWindow(win x.Window) error {
	d.record("RedirectWindow(%d)", win)
	return nil
}

func (d *fakeDisplay) AddToSaveSet(win x.Window) error {
	d.record("AddToSaveSet(%d)", win)
	return nil
}

func (d *fakeDisplay) SelectWindowEvents(win x.Window) error {
	d.record("SelectWindowEvents(%d)", win)
	return nil
}

func (d *fakeDisplay) MoveResizeWindow(win x.Window, posX, posY int16, width, height uint16) error {
	d.record("MoveResizeWindow(%d,%d,%d,%d,%d)", win, posX, posY, width, height)
	return nil
}

func (d *fakeDisplay) MoveWindow(win x.Window, posX, posY int16) error {
	d.record("MoveWindow(%d,%d,%d)", win, posX, posY)
	return nil
}

func (d *fakeDisplay) ResizeWindow(win x.Window, width, height uint16) error {
	d.record("ResizeWindow(%d,%d,%d)", win, width, height)
	return nil
}

func (d *fakeDisplay) RaiseWindow(win x.Window, top bool) error {
	d.record("RaiseWindow(%d,%v)", win, top)
	return nil
}

func (d *fakeDisplay) SetShapeRectangles(win x.Window, rects []x.Rectangle) error {
	d.record("SetShapeRectangles(%d,%d)", win, len(rects))
	return nil
}

func (d *fakeDisplay) SendExpose(win x.Window, width, height uint16) error {
	d.record("SendExpose(%d,%d,%d)", win, width, height)
	return nil
}

func (d *fakeDisplay) GetImage(win x.Window, width, height uint16) (*RawImage, error) {
	d.record("GetImage(%d,%d,%d)", win, width, height)
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.imageErr != nil {
		return nil, d.imageErr
	}
	if d.image == nil {
		return nil, ErrCaptureFailed
	}
	return d.image, nil
}

func (d *fakeDisplay) FakeMotion(rootX, rootY int16) error {
	d.record("FakeMotion(%d,%d)", rootX, rootY)
	return nil
}

func (d *fakeDisplay) FakeButton(button uint8, press bool) error {
	d.record("FakeButton(%d,%v)", button, press)
	return nil
}

func (d *fakeDisplay) CreateDamage(win x.Window) (uint32, error) {
	d.record("CreateDamage(%d)", win)
	d.mu.Lock()
	defer d.mu.Unlock()
	dmg := d.nextDamage
	d.nextDamage++
	return dmg, nil
}

func (d *fakeDisplay) SubtractDamage(damage uint32) error {
	d.record("SubtractDamage(%d)", damage)
	return nil
}

func (d *fakeDisplay) DestroyDamage(damage uint32) error {
	d.record("DestroyDamage(%d)", damage)
	return nil
}

func (d *fakeDisplay) AcquireTraySelection() (x.Window, error) {
	d.record("AcquireTraySelection")
	if d.acquireErr != nil {
		return 0, d.acquireErr
	}
	return d.selectionID, nil
}

func (d *fakeDisplay) ReleaseTraySelection(owner x.Window) error {
	d.record("ReleaseTraySelection(%d)", owner)
	return nil
}

func (d *fakeDisplay) Events() <-chan Event {
	return d.events
}

func (d *fakeDisplay) Flush() error {
	d.record("Flush")
	return nil
}

func (d *fakeDisplay) Close() {
	d.record("Close")
}

// fakeScheduler 只有在调用 Advance 时才会触发定时器，回调在调用者的 goroutine 中执行。
type fakeScheduler struct {
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	s        *fakeScheduler
	duration time.Duration
	fn       func()
	deadline time.Duration
	active   bool
}

func (s *fakeScheduler) NewTimer(d time.Duration, fn func()) Timer {
	t := &fakeTimer{s: s, duration: d, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

func (t *fakeTimer) Reset() {
	t.active = true
	t.deadline = t.s.now + t.duration
}

func (t *fakeTimer) Stop() {
	t.active = false
}

func (s *fakeScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		var next *fakeTimer
		for _, t := range s.timers {
			if t.active && t.deadline <= target && (next == nil || t.deadline < next.deadline) {
				next = t
			}
		}
		if next == nil {
			break
		}
		s.now = next.deadline
		next.active = false
		next.fn()
	}
	s.now = target
}

func (s *fakeScheduler) pending() int {
	n := 0
	for _, t := range s.timers {
		if t.active {
			n++
		}
	}
	return n
}

type fakeHost struct {
	mu        sync.Mutex
	changed   []x.Window
	attention []x.Window
	added     []x.Window
	removed   []x.Window
}

func (h *fakeHost) OnIconChanged(icon *TrayIcon) {
	h.mu.Lock()
	h.changed = append(h.changed, icon.Window())
	h.mu.Unlock()
}

func (h *fakeHost) OnNeedsAttention(icon *TrayIcon) {
	h.mu.Lock()
	h.attention = append(h.attention, icon.Window())
	h.mu.Unlock()
}

func (h *fakeHost) OnAdded(icon *TrayIcon) {
	h.mu.Lock()
	h.added = append(h.added, icon.Window())
	h.mu.Unlock()
}

func (h *fakeHost) OnRemoved(icon *TrayIcon) {
	h.mu.Lock()
	h.removed = append(h.removed, icon.Window())
	h.mu.Unlock()
}

type fakeWidget struct {
	geometry screens.Rect
	cursor   screens.Point
	visible  bool
	updates  int
}

func (w *fakeWidget) Geometry() screens.Rect {
	return w.geometry
}

func (w *fakeWidget) CursorPos() screens.Point {
	return w.cursor
}

func (w *fakeWidget) IsVisible() bool {
	return w.visible
}

func (w *fakeWidget) Update() {
	w.updates++
}

type fakeProvider struct {
	screens []screens.Screen
	ratio   float64
	reloads int
}

func (p *fakeProvider) Screens() []screens.Screen {
	return p.screens
}

func (p *fakeProvider) DevicePixelRatio() float64 {
	return p.ratio
}

func (p *fakeProvider) Reload() {
	p.reloads++
}

type testEnv struct {
	display  *fakeDisplay
	sched    *fakeScheduler
	host     *fakeHost
	provider *fakeProvider
	widget   *fakeWidget
	env      *iconEnv
}

const testWin x.Window = 100

func newTestEnv(ratio float64) *testEnv {
	te := &testEnv{
		display: newFakeDisplay(),
		sched:   &fakeScheduler{},
		host:    &fakeHost{},
		provider: &fakeProvider{
			screens: []screens.Screen{{
				Name:     "eDP-1",
				Geometry: screens.Rect{Width: 1920, Height: 1080},
				Primary:  true,
			}},
			ratio: ratio,
		},
		widget: &fakeWidget{
			geometry: screens.Rect{X: 10, Y: 1040, Width: 20, Height: 20},
			cursor:   screens.Point{X: 15, Y: 1045},
			visible:  true,
		},
	}
	te.env = &iconEnv{
		backend:  NewX11Backend(te.display),
		sched:    te.sched,
		screens:  te.provider,
		host:     te.host,
		registry: NewSuffixRegistry(),
		iconSize: defaultIconSize,
	}
	return te
}

func (te *testEnv) newIcon(win x.Window) *TrayIcon {
	return newTrayIcon(te.env, win, te.widget)
}

// bgraImage 生成纯色的 ZPixmap 数据
func bgraImage(width, height uint16, b, g, r, a byte) *RawImage {
	data := make([]byte, 0, int(width)*int(height)*4)
	for i := 0; i < int(width)*int(height); i++ {
		data = append(data, b, g, r, a)
	}
	return &RawImage{Width: width, Height: height, Depth: 32, Data: data}
}

func indexOf(calls []string, call string) int {
	for i, c := range calls {
		if c == call {
			return i
		}
	}
	return -1
}

func toUint32s(wins []x.Window) []uint32 {
	result := make([]uint32, 0, len(wins))
	for _, win := range wins {
		result = append(result, uint32(win))
	}
	return result
}
