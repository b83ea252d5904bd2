// SPDX-FileCopyrightText: 2018 - 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package dock

//go:generate go build -o target/ github.com/linuxdeepin/dde-dock/bin/dde-dock-tray
