package adminfeed

import (
	"sync"

	"storefront/internal/notify"
)

// 表示する通知の上限
const Capacity = 6

type State int

const (
	StateDisconnected State = iota
	StateIdle
	StatePending
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "connected-idle"
	case StatePending:
		return "connected-with-pending"
	default:
		return "disconnected"
	}
}

// Feed は管理画面の新着注文リスト。
// 新しい順に最大Capacity件だけ持ち、プロセスが終われば消える。
type Feed struct {
	mu        sync.Mutex
	connected bool
	items     []notify.OrderPlaced
	onChange  func()
}

func NewFeed() *Feed {
	return &Feed{items: make([]notify.OrderPlaced, 0, Capacity)}
}

// 状態が変わるたびに呼ばれる（ロック外）
func (f *Feed) OnChange(fn func()) {
	f.mu.Lock()
	f.onChange = fn
	f.mu.Unlock()
}

func (f *Feed) Connected() {
	f.update(func() bool {
		if f.connected {
			return false
		}
		f.connected = true
		return true
	})
}

// 切断。一覧はリロード(Reset)まで残す
func (f *Feed) Disconnected() {
	f.update(func() bool {
		if !f.connected {
			return false
		}
		f.connected = false
		return true
	})
}

// 先頭に追加して古いものを切り捨てる。未接続なら無視
func (f *Feed) Receive(ev notify.OrderPlaced) {
	f.update(func() bool {
		if !f.connected {
			return false
		}
		n := len(f.items) + 1
		if n > Capacity {
			n = Capacity
		}
		next := make([]notify.OrderPlaced, 0, Capacity)
		next = append(next, ev)
		next = append(next, f.items[:n-1]...)
		f.items = next
		return true
	})
}

// 詳細を開いた通知を消す
func (f *Feed) Dismiss(orderID int64) bool {
	removed := false
	f.update(func() bool {
		for i, it := range f.items {
			if it.OrderID == orderID {
				f.items = append(f.items[:i], f.items[i+1:]...)
				removed = true
				return true
			}
		}
		return false
	})
	return removed
}

// リロード相当
func (f *Feed) Reset() {
	f.update(func() bool {
		f.connected = false
		f.items = f.items[:0]
		return true
	})
}

func (f *Feed) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stateLocked()
}

func (f *Feed) stateLocked() State {
	switch {
	case !f.connected:
		return StateDisconnected
	case len(f.items) == 0:
		return StateIdle
	default:
		return StatePending
	}
}

// 新しい順のコピー
func (f *Feed) Pending() []notify.OrderPlaced {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]notify.OrderPlaced, len(f.items))
	copy(out, f.items)
	return out
}

func (f *Feed) update(mutate func() bool) {
	f.mu.Lock()
	changed := mutate()
	fn := f.onChange
	f.mu.Unlock()

	if changed && fn != nil {
		fn()
	}
}
