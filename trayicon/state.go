// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trayicon

import (
	"strings"
)

// embedState 是图标的定时器状态，空集合表示 Idle。
type embedState uint8

const (
	stateRefreshPending embedState = 1 << iota
	stateForwardingActive
	stateDestroyed
)

type embedEvent int

const (
	eventRefreshRequested embedEvent = iota
	eventRefreshFired
	eventGestureStarted
	eventPassThroughRestored
	eventDestroyed
)

func (s embedState) next(ev embedEvent) embedState {
	if s.has(stateDestroyed) {
		return stateDestroyed
	}
	switch ev {
	case eventRefreshRequested:
		return s | stateRefreshPending
	case eventRefreshFired:
		return s &^ stateRefreshPending
	case eventGestureStarted:
		return s | stateForwardingActive
	case eventPassThroughRestored:
		return s &^ stateForwardingActive
	case eventDestroyed:
		return stateDestroyed
	}
	return s
}

func (s embedState) has(flag embedState) bool {
	return s&flag != 0
}

func (s embedState) String() string {
	if s == 0 {
		return "Idle"
	}
	if s.has(stateDestroyed) {
		return "Destroyed"
	}
	var parts []string
	if s.has(stateRefreshPending) {
		parts = append(parts, "RefreshPending")
	}
	if s.has(stateForwardingActive) {
		parts = append(parts, "ForwardingActive")
	}
	return strings.Join(parts, "|")
}
