// SPDX-FileCopyrightText: 2018 - 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trayicon

import (
	"os"

	"github.com/linuxdeepin/go-lib/dbusutil"
	x "github.com/linuxdeepin/go-x11-client"
	"golang.org/x/xerrors"

	"github.com/linuxdeepin/dde-dock/common/screens"
)

const moduleName = "trayicon"

type Daemon struct {
	cfg        *Config
	configFile string
	backend    Backend
	loop       *Loop
	manager    *TrayManager
	watcher    *configWatcher
}

// NewDaemon 创建 Daemon，configFile 为空时不监视配置文件。
func NewDaemon(cfg *Config, configFile string) *Daemon {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Daemon{cfg: cfg, configFile: configFile}
}

func (d *Daemon) Name() string {
	return moduleName
}

func (d *Daemon) isDisabled() bool {
	return os.Getenv("DDE_DISABLE_XEMBED_TRAY") == "1" || !d.cfg.Enabled
}

func (d *Daemon) Start(service *dbusutil.Service) (err error) {
	if d.isDisabled() {
		logger.Info("disable xembed tray")
		return nil
	}

	// wayland 会话下连接的是 XWayland
	conn, err := x.NewConn()
	if err != nil {
		return xerrors.Errorf("%v: %w", err, ErrConnectionUnavailable)
	}

	d.backend = NewBackend(conn)
	provider := screens.NewXProvider(conn, d.cfg.ScaleFactor)
	d.loop = NewLoop()
	go d.loop.Run()
	defer func() {
		if err != nil {
			logError(d.Stop())
		}
	}()

	d.manager = NewTrayManager(service, d.loop, d.backend,
		NewLoopScheduler(d.loop), provider, d.cfg)
	err = service.Export(dbusPath, d.manager)
	if err != nil {
		return err
	}
	d.manager.Start()

	if d.configFile != "" {
		d.watcher, err = newConfigWatcher(d.configFile, func(cfg *Config) {
			d.loop.Post(func() {
				d.manager.applyConfig(cfg)
			})
		})
		if err != nil {
			logger.Warning("failed to watch config file:", err)
		}
	}

	d.loop.Call(func() {
		err = d.manager.acquireSelection()
	})
	if err != nil {
		// 其他程序已经是托盘管理者，等待面板调用 Manage
		logger.Warning(err)
	}

	err = service.RequestName(dbusServiceName)
	if err != nil {
		return err
	}

	err = service.Emit(d.manager, "Inited")
	if err != nil {
		return err
	}
	logger.Infof("xembed tray started, xwayland: %v", d.backend.IsWayland())
	return nil
}

func (d *Daemon) Stop() error {
	if d.watcher != nil {
		d.watcher.stop()
		d.watcher = nil
	}
	if d.loop == nil {
		return nil
	}
	if d.manager != nil {
		d.loop.Call(d.manager.Destroy)
		d.manager = nil
	}
	d.loop.Stop()
	d.loop = nil
	if d.backend != nil {
		d.backend.Display().Close()
		d.backend = nil
	}
	return nil
}
