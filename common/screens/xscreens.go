// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package screens

import (
	"sync"

	"github.com/linuxdeepin/go-lib/log"
	x "github.com/linuxdeepin/go-x11-client"
	"github.com/linuxdeepin/go-x11-client/ext/randr"
)

var logger = log.NewLogger("dde-dock/screens")

// XProvider 通过 randr 获取屏幕布局，结果会被缓存，直到调用 Reload。
type XProvider struct {
	conn        *x.Conn
	forcedRatio float64

	mu       sync.Mutex
	screens  []Screen
	ratio    float64
	hasRandr bool
}

// NewXProvider 创建 XProvider，forcedRatio 大于 0 时忽略自动计算的缩放比。
func NewXProvider(conn *x.Conn, forcedRatio float64) *XProvider {
	p := &XProvider{
		conn:        conn,
		forcedRatio: forcedRatio,
		hasRandr:    hasRandr1d2(conn),
	}
	p.Reload()
	return p
}

func hasRandr1d2(conn *x.Conn) bool {
	randrVersion, err := randr.QueryVersion(conn, randr.MajorVersion, randr.MinorVersion).Reply(conn)
	if err != nil {
		logger.Warning(err)
		return false
	}
	logger.Debugf("randr version %d.%d", randrVersion.ServerMajorVersion, randrVersion.ServerMinorVersion)
	return randrVersion.ServerMajorVersion > 1 ||
		(randrVersion.ServerMajorVersion == 1 && randrVersion.ServerMinorVersion >= 2)
}

func (p *XProvider) Screens() []Screen {
	p.mu.Lock()
	defer p.mu.Unlock()
	result := make([]Screen, len(p.screens))
	copy(result, p.screens)
	return result
}

func (p *XProvider) DevicePixelRatio() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ratio
}

// Reload 重新读取屏幕布局和缩放比，在收到 randr 屏幕变化事件后调用。
func (p *XProvider) Reload() {
	screens, monitors := p.queryScreens()

	ratio := p.forcedRatio
	if ratio <= 0 {
		forceScaleFactor, err := GetForceScaleFactor()
		if err == nil {
			ratio = forceScaleFactor
		} else {
			logger.Debug(err)
			ratio = recommendedScaleFactor(monitors)
		}
	}

	logger.Debugf("screens: %v, device pixel ratio: %v", screens, ratio)
	p.mu.Lock()
	p.screens = screens
	p.ratio = ratio
	p.mu.Unlock()
}

func (p *XProvider) rootScreen() []Screen {
	screen := p.conn.GetDefaultScreen()
	return []Screen{{
		Name: "root",
		Geometry: Rect{
			Width:  int(screen.WidthInPixels),
			Height: int(screen.HeightInPixels),
		},
		Primary: true,
	}}
}

func (p *XProvider) queryScreens() ([]Screen, []*monitorSizeInfo) {
	if !p.hasRandr {
		return p.rootScreen(), nil
	}

	root := p.conn.GetDefaultScreen().Root
	resources, err := randr.GetScreenResources(p.conn, root).Reply(p.conn)
	if err != nil {
		logger.Warning("get screen resources failed:", err)
		return p.rootScreen(), nil
	}
	cfgTs := resources.ConfigTimestamp

	var primaryOutput randr.Output
	primaryReply, err := randr.GetOutputPrimary(p.conn, root).Reply(p.conn)
	if err == nil {
		primaryOutput = primaryReply.Output
	}

	var screens []Screen
	var monitors []*monitorSizeInfo
	for _, output := range resources.Outputs {
		outputInfo, err := randr.GetOutputInfo(p.conn, output, cfgTs).Reply(p.conn)
		if err != nil {
			logger.Warningf("get output %v info failed: %v", output, err)
			continue
		}
		if outputInfo.Connection != randr.ConnectionConnected || outputInfo.Crtc == 0 {
			continue
		}

		crtcInfo, err := randr.GetCrtcInfo(p.conn, outputInfo.Crtc, cfgTs).Reply(p.conn)
		if err != nil {
			logger.Warningf("get crtc %v info failed: %v", outputInfo.Crtc, err)
			continue
		}
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 {
			continue
		}

		screens = append(screens, Screen{
			Name: outputInfo.Name,
			Geometry: Rect{
				X:      int(crtcInfo.X),
				Y:      int(crtcInfo.Y),
				Width:  int(crtcInfo.Width),
				Height: int(crtcInfo.Height),
			},
			Primary: output == primaryOutput,
		})
		monitors = append(monitors, &monitorSizeInfo{
			mmWidth:  outputInfo.MmWidth,
			mmHeight: outputInfo.MmHeight,
			width:    crtcInfo.Width,
			height:   crtcInfo.Height,
		})
	}

	if len(screens) == 0 {
		return p.rootScreen(), nil
	}
	markPrimary(screens)
	return screens, monitors
}

// markPrimary 在没有设置主屏时把第一个屏幕当作主屏。
func markPrimary(screens []Screen) {
	for _, s := range screens {
		if s.Primary {
			return
		}
	}
	if len(screens) > 0 {
		screens[0].Primary = true
	}
}

func SetLogLevel(level log.Priority) {
	logger.SetLogLevel(level)
}
