// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

// Package screens 提供屏幕几何信息、设备像素比，以及逻辑坐标到 X 原始坐标的转换。
package screens

import (
	"fmt"
	"math"
)

type Point struct {
	X, Y int
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Rect 为左上角加宽高，与 Qt 的 QRect 语义一致。
type Rect struct {
	X, Y          int
	Width, Height int
}

func (r Rect) TopLeft() Point {
	return Point{r.X, r.Y}
}

func (r Rect) Center() Point {
	return Point{r.X + r.Width/2, r.Y + r.Height/2}
}

func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Contains 判断点是否落在矩形内，右边界和下边界不包含在内。
func (r Rect) Contains(p Point) bool {
	if r.IsEmpty() {
		return false
	}
	return p.X >= r.X && p.X < r.X+r.Width &&
		p.Y >= r.Y && p.Y < r.Y+r.Height
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d%+d%+d", r.Width, r.Height, r.X, r.Y)
}

type Screen struct {
	Name     string
	Geometry Rect
	Primary  bool
}

// Provider 由显示后端实现，Tray 图标通过它获取屏幕布局和缩放。
type Provider interface {
	Screens() []Screen
	DevicePixelRatio() float64
}

// ScreenAt 返回包含 p 的屏幕几何，找不到时返回主屏，没有主屏时返回空矩形。
func ScreenAt(screens []Screen, p Point) Rect {
	var primary Rect
	for _, s := range screens {
		if s.Primary {
			primary = s.Geometry
			break
		}
	}
	for _, s := range screens {
		if s.Geometry.Contains(p) {
			return s.Geometry
		}
	}
	return primary
}

// RawPosition 把逻辑坐标转换为 X 的原始坐标：
// topLeft + (p - topLeft) * ratio，topLeft 取包含 p 的屏幕。
func RawPosition(screens []Screen, p Point, ratio float64) Point {
	tl := ScreenAt(screens, p).TopLeft()
	return Point{
		X: tl.X + round(p.X-tl.X, ratio),
		Y: tl.Y + round(p.Y-tl.Y, ratio),
	}
}

func round(v int, ratio float64) int {
	return int(math.Round(float64(v) * ratio))
}
