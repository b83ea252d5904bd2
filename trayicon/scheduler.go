// SPDX-FileCopyrightText: 2023 UnionTech Software Technology Co., Ltd.
//
// SPDX-License-Identifier: GPL-3.0-or-later

package trayicon

import (
	"sync"
	"time"
)

// Loop 在单个 goroutine 中依次执行所有 X 请求和状态修改。
type Loop struct {
	funcs    chan func()
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewLoop() *Loop {
	return &Loop{
		funcs: make(chan func(), 64),
		quit:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

func (l *Loop) Run() {
	defer close(l.done)
	for {
		select {
		case fn := <-l.funcs:
			fn()
		case <-l.quit:
			return
		}
	}
}

// Post 把 fn 放入队列，不等待执行。
func (l *Loop) Post(fn func()) {
	select {
	case l.funcs <- fn:
	case <-l.quit:
	}
}

// Call 在 loop 中执行 fn 并等待其返回，不能在 loop goroutine 内调用。
func (l *Loop) Call(fn func()) bool {
	ch := make(chan struct{})
	select {
	case l.funcs <- func() {
		fn()
		close(ch)
	}:
	case <-l.quit:
		return false
	}
	select {
	case <-ch:
		return true
	case <-l.done:
		return false
	}
}

func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.quit)
	})
	<-l.done
}

// Timer 是单次定时器，Reset 重新开始计时。
type Timer interface {
	Reset()
	Stop()
}

type Scheduler interface {
	NewTimer(d time.Duration, fn func()) Timer
}

type loopScheduler struct {
	loop *Loop
}

// NewLoopScheduler 返回的定时器到期后把回调投递到 loop 中执行。
func NewLoopScheduler(loop *Loop) Scheduler {
	return &loopScheduler{loop: loop}
}

func (s *loopScheduler) NewTimer(d time.Duration, fn func()) Timer {
	return &loopTimer{
		loop:     s.loop,
		duration: d,
		fn:       fn,
	}
}

type loopTimer struct {
	loop     *Loop
	duration time.Duration
	fn       func()

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64
}

func (t *loopTimer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	gen := t.gen
	if t.timer != nil {
		t.timer.Stop()
	}
	t.timer = time.AfterFunc(t.duration, func() {
		t.loop.Post(func() {
			t.mu.Lock()
			// 已经被 Reset 或 Stop 过的到期回调直接丢弃
			current := t.gen == gen
			t.mu.Unlock()
			if current {
				t.fn()
			}
		})
	})
}

func (t *loopTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.gen++
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}
