// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/godbus/dbus/v5"
	login1 "github.com/linuxdeepin/go-dbus-factory/system/org.freedesktop.login1"
	"github.com/linuxdeepin/go-lib/dbusutil"
	"github.com/linuxdeepin/go-lib/log"

	"github.com/linuxdeepin/dde-dock/trayicon"
)

var logger = log.NewLogger("dde-dock/dde-dock-tray")

var _options struct {
	verbose  bool
	logLevel string
	config   string
}

func isInShutdown() bool {
	bus, err := dbus.SystemBus()
	if err != nil {
		return false
	}

	manager := login1.NewManager(bus)

	val, err := manager.PreparingForShutdown().Get(0)
	if err != nil {
		return false
	}

	return val
}

func toLogLevel(name string) (log.Priority, error) {
	name = strings.ToLower(name)
	logLevel := log.LevelInfo
	var err error
	switch name {
	case "":
		logLevel = log.LevelInfo
	case "error":
		logLevel = log.LevelError
	case "warn":
		logLevel = log.LevelWarning
	case "info":
		logLevel = log.LevelInfo
	case "debug":
		logLevel = log.LevelDebug
	case "no":
		logLevel = log.LevelDisable
	default:
		err = fmt.Errorf("%s is not support", name)
	}

	return logLevel, err
}

func init() {
	// -v | -verbose
	const verboseUsage = "Show much more message, shorthand for --loglevel debug."
	flag.BoolVar(&_options.verbose, "v", false, verboseUsage)
	flag.BoolVar(&_options.verbose, "verbose", false, verboseUsage)

	// -l | -loglevel
	const logLevelUsage = "Set log level, possible value is error/warn/info/debug/no, info is default"
	flag.StringVar(&_options.logLevel, "l", "", logLevelUsage)
	flag.StringVar(&_options.logLevel, "loglevel", "", logLevelUsage)

	// -c | -config
	const configUsage = "Config file, default is $XDG_CONFIG_HOME/deepin/dde-dock/xembed-tray.ini"
	flag.StringVar(&_options.config, "c", "", configUsage)
	flag.StringVar(&_options.config, "config", "", configUsage)
}

func main() {
	flag.Parse()

	if _options.verbose {
		_options.logLevel = "debug"
	}
	logLevel, err := toLogLevel(_options.logLevel)
	if err != nil {
		logger.Warning("failed to parse loglevel:", err)
		os.Exit(1)
	}
	logger.SetLogLevel(logLevel)
	trayicon.SetLogLevel(logLevel)

	if isInShutdown() {
		logger.Warning("system is in shutdown, no need to run")
		os.Exit(1)
	}

	configFile := _options.config
	if configFile == "" {
		configFile = trayicon.GetConfigFile()
	}
	cfg, err := trayicon.LoadConfig(configFile)
	if err != nil {
		logger.Warning(err)
	}

	service, err := dbusutil.NewSessionService()
	if err != nil {
		logger.Fatal("failed to new session service:", err)
	}

	daemon := trayicon.NewDaemon(cfg, configFile)
	err = daemon.Start(service)
	if err != nil {
		logger.Fatal("failed to start tray daemon:", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("receive signal:", sig)
		err := daemon.Stop()
		if err != nil {
			logger.Warning(err)
		}
		service.Quit()
	}()
	service.Wait()
}
