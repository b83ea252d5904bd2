// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trayicon

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrayIcon_wrap(t *testing.T) {
	te := newTestEnv(1)
	te.display.addWindow(testWin, 48, 48)
	te.display.setProperty(testWin, propWMClass, "demo\x00Demo\x00")
	te.display.pids[testWin] = 4321

	icon := te.newIcon(testWin)
	require.True(t, icon.IsValid())
	assert.Equal(t, "demo", icon.AppName())
	assert.Equal(t, uint32(4321), icon.Pid())
	assert.EqualValues(t, 1000, icon.Container())
	assert.True(t, icon.IsPassThrough())

	assert.Equal(t, []string{
		"GetProperty(100,WM_CLASS)",
		"GetGeometry(100)",
		"CreateContainer(20,20)",
		"SetWindowOpacity(1000,0)",
		"Flush",
		"MapWindow(1000)",
		"ReparentWindow(100,1000,0,0)",
		"RedirectWindow(100)",
		"AddToSaveSet(100)",
		"ResizeWindow(100,20,20)",
		"MapWindow(100)",
		"Flush",
		"RaiseWindow(1000,true)",
		"Flush",
		"SetShapeRectangles(1000,0)",
		"Flush",
		"SelectWindowEvents(100)",
		"CreateDamage(100)",
		"GetWMPid(100)",
	}, te.display.getCalls())

	// 构造完成后会请求一次刷新
	assert.Equal(t, stateRefreshPending, icon.state)
	assert.Equal(t, 1, te.sched.pending())
}

func TestTrayIcon_wrapScaled(t *testing.T) {
	te := newTestEnv(1.5)
	te.display.addWindow(testWin, 900, 30)

	icon := te.newIcon(testWin)
	require.True(t, icon.IsValid())
	calls := te.display.getCalls()
	assert.Contains(t, calls, "CreateContainer(30,30)")
	assert.Contains(t, calls, "ResizeWindow(100,30,30)")
}

func TestTrayIcon_wrapXWayland(t *testing.T) {
	te := newTestEnv(1)
	te.env.backend = NewXWaylandBackend(te.display)
	te.display.addWindow(testWin, 20, 20)

	icon := te.newIcon(testWin)
	require.True(t, icon.IsValid())
	assert.Contains(t, te.display.getCalls(), "SetWindowOpacity(1000,10)")
	assert.Equal(t, 0, te.display.count("SetShapeRectangles"))
}

func TestTrayIcon_invalidWindow(t *testing.T) {
	te := newTestEnv(1)

	icon := te.newIcon(testWin)
	assert.False(t, icon.IsValid())
	assert.Equal(t, "100", icon.AppName())
	assert.Equal(t, 0, te.display.count("CreateContainer"))

	te.display.resetCalls()
	icon.UpdateIcon()
	icon.HoverMoved()
	icon.SendClick(1, 15, 1045)
	te.sched.Advance(time.Second)
	assert.Empty(t, te.display.getCalls())
	assert.Nil(t, icon.Image())
}

func TestTrayIcon_containerFailure(t *testing.T) {
	te := newTestEnv(1)
	te.display.addWindow(testWin, 20, 20)
	te.display.createErr = ErrConnectionUnavailable

	icon := te.newIcon(testWin)
	assert.False(t, icon.IsValid())
	assert.Equal(t, 0, te.display.count("ReparentWindow"))
}

func TestTrayIcon_noDisplay(t *testing.T) {
	te := newTestEnv(1)
	te.env.backend = NewX11Backend(nil)

	icon := te.newIcon(testWin)
	assert.False(t, icon.IsValid())
	assert.Equal(t, "100", icon.AppName())
	assert.Equal(t, uint32(0), icon.Pid())
	icon.Destroy()
}

func TestTrayIcon_Destroy(t *testing.T) {
	te := newTestEnv(1)
	te.display.addWindow(testWin, 20, 20)
	te.display.setImage(bgraImage(20, 20, 0, 0, 0xff, 0xff), nil)
	te.display.setProperty(testWin, propWMClass, "demo")

	icon := te.newIcon(testWin)
	icon.HoverMoved()
	icon.SendClick(1, 15, 1045)
	te.display.resetCalls()

	icon.Destroy()
	assert.Equal(t, stateDestroyed, icon.state)
	assert.Equal(t, 0, te.sched.pending())
	assert.Equal(t, []string{
		"DestroyDamage(500)",
		"UnmapWindow(100)",
		"ReparentWindow(100,1,0,0)",
		"DestroyWindow(1000)",
		"Flush",
	}, te.display.getCalls())

	_, ok := te.env.registry.Suffix("demo", testWin)
	assert.False(t, ok)

	te.display.resetCalls()
	te.sched.Advance(time.Second)
	icon.UpdateIcon()
	icon.HoverMoved()
	icon.SendClick(1, 15, 1045)
	icon.Destroy()
	te.sched.Advance(time.Second)
	assert.Empty(t, te.display.getCalls())
	assert.Nil(t, icon.Image())
}

func TestTrayIcon_DestroyGoneWindow(t *testing.T) {
	te := newTestEnv(1)
	te.display.addWindow(testWin, 20, 20)

	icon := te.newIcon(testWin)
	te.display.removeWindow(testWin)
	te.display.resetCalls()

	icon.markGone()
	icon.Destroy()
	assert.Equal(t, []string{"DestroyWindow(1000)", "Flush"}, te.display.getCalls())
	assert.Zero(t, te.display.count("ReparentWindow"))
}

func TestTrayIcon_keys(t *testing.T) {
	te := newTestEnv(1)
	te.display.addWindow(testWin, 20, 20)
	te.display.addWindow(testWin+1, 20, 20)
	te.display.addWindow(testWin+2, 20, 20)
	te.display.setProperty(testWin, propWMClass, "demo")
	te.display.setProperty(testWin+1, propWMClass, "demo")
	te.display.setProperty(testWin+2, propWMClass, "other")

	first := te.newIcon(testWin)
	second := te.newIcon(testWin + 1)
	other := te.newIcon(testWin + 2)

	assert.Equal(t, "window:demo", first.ItemKey())
	assert.Equal(t, "window:demo", second.ItemKey())
	assert.Equal(t, "window:demo", first.UniqueKey())
	assert.Equal(t, "window:demo_2", second.UniqueKey())
	assert.Equal(t, "window:other", other.UniqueKey())

	first.Destroy()
	third := te.newIcon(testWin)
	assert.Equal(t, "window:demo", third.UniqueKey())
}
