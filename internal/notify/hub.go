package notify

import (
	"sync"

	"storefront/internal/metrics"

	"github.com/sirupsen/logrus"
)

// Hub はプロセス内の管理者セッションへイベントを配る。
// 購読時点より前のイベントは届かない。
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
	log    *logrus.Entry
}

func NewHub(buffer int, log *logrus.Entry) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{
		subs:   make(map[uint64]*Subscription),
		buffer: buffer,
		log:    log.WithField("component", "notify.hub"),
	}
}

// Subscription は1セッション分の受信口
type Subscription struct {
	hub  *Hub
	id   uint64
	ch   chan OrderPlaced
	once sync.Once
}

// 届いた順に読める
func (s *Subscription) C() <-chan OrderPlaced { return s.ch }

// 購読解除。複数回呼んでもよい
func (s *Subscription) Close() {
	s.once.Do(func() { s.hub.remove(s.id) })
}

func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	s := &Subscription{
		hub: h,
		id:  h.nextID,
		ch:  make(chan OrderPlaced, h.buffer),
	}
	h.subs[s.id] = s
	metrics.AdminSessions.Inc()
	return s
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.subs[id]
	if !ok {
		return
	}
	delete(h.subs, id)
	close(s.ch)
	metrics.AdminSessions.Dec()
}

// Publish は今つながっている購読者全員に送る。待たない。
// バッファが詰まっている購読者にはそのイベントを落とす。
func (h *Hub) Publish(ev OrderPlaced) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if len(h.subs) == 0 {
		metrics.EventsDropped.WithLabelValues(metrics.DropNoSubscribers).Inc()
		h.log.WithField("order_id", ev.OrderID).Debug("no admin session connected, event dropped")
		return
	}

	for id, s := range h.subs {
		select {
		case s.ch <- ev:
		default:
			metrics.EventsDropped.WithLabelValues(metrics.DropBufferFull).Inc()
			h.log.WithFields(logrus.Fields{
				"order_id":     ev.OrderID,
				"subscription": id,
			}).Warn("admin session buffer full, event dropped")
		}
	}
	metrics.EventsPublished.WithLabelValues("local").Inc()
}

// 現在の購読数
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// 停止時に全購読を閉じる
func (h *Hub) Shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, s := range h.subs {
		delete(h.subs, id)
		close(s.ch)
		metrics.AdminSessions.Dec()
	}
}
