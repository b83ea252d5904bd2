// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trayicon

import (
	"fmt"
	"sort"
	"sync"

	x "github.com/linuxdeepin/go-x11-client"
)

// SuffixRegistry 记录同名托盘窗口的序号，只用于生成区分用的 key。
type SuffixRegistry struct {
	mu   sync.Mutex
	apps map[string]map[x.Window]int
}

func NewSuffixRegistry() *SuffixRegistry {
	return &SuffixRegistry{
		apps: make(map[string]map[x.Window]int),
	}
}

// Register 返回窗口已有的序号，没有则分配最小的未使用序号，序号从 1 开始。
func (r *SuffixRegistry) Register(name string, win x.Window) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	wins, ok := r.apps[name]
	if !ok {
		wins = make(map[x.Window]int)
		r.apps[name] = wins
	}
	if suffix, ok := wins[win]; ok {
		return suffix
	}

	used := make([]int, 0, len(wins))
	for _, suffix := range wins {
		used = append(used, suffix)
	}
	sort.Ints(used)
	suffix := 1
	for _, s := range used {
		if s != suffix {
			break
		}
		suffix++
	}
	wins[win] = suffix
	return suffix
}

func (r *SuffixRegistry) Unregister(name string, win x.Window) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wins, ok := r.apps[name]
	if !ok {
		return
	}
	delete(wins, win)
	if len(wins) == 0 {
		delete(r.apps, name)
	}
}

func (r *SuffixRegistry) Suffix(name string, win x.Window) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	suffix, ok := r.apps[name][win]
	return suffix, ok
}

// uniqueKey 第一个窗口不带序号，与 ItemKey 相同。
func uniqueKey(name string, suffix int) string {
	if suffix <= 1 {
		return xembedKeyPrefix + name
	}
	return fmt.Sprintf("%s%s_%d", xembedKeyPrefix, name, suffix)
}
