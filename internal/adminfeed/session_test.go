package adminfeed

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront/internal/notify"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

// Hubの購読をwebsocketに流すだけのテスト用サーバー
func newHubServer(t *testing.T, hub *notify.Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sub := hub.Subscribe()
		defer sub.Close()

		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					sub.Close()
					return
				}
			}
		}()

		for ev := range sub.C() {
			b, _ := json.Marshal(notify.NewOrderPlacedMessage(ev))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func startSession(t *testing.T, url string) (*Session, *Feed) {
	t.Helper()
	feed := NewFeed()
	s := NewSession(url, "", feed, discardLog())
	s.RetryDelay = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		_ = s.Close()
		<-done
	})
	return s, feed
}

func TestSession_TwoAdminsReceiveSameOrder(t *testing.T) {
	hub := notify.NewHub(16, discardLog())
	srv := newHubServer(t, hub)

	_, feedA := startSession(t, wsURL(srv))
	_, feedB := startSession(t, wsURL(srv))

	require.Eventually(t, func() bool { return hub.Len() == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(notify.OrderPlaced{OrderID: 11, TotalAmount: 250})

	for _, f := range []*Feed{feedA, feedB} {
		f := f
		require.Eventually(t, func() bool { return len(f.Pending()) == 1 }, 2*time.Second, 10*time.Millisecond)
		assert.Equal(t, int64(11), f.Pending()[0].OrderID)
		assert.Equal(t, StatePending, f.State())
	}
}

func TestSession_SevenOrdersKeepsLatestSix(t *testing.T) {
	hub := notify.NewHub(16, discardLog())
	srv := newHubServer(t, hub)

	_, feed := startSession(t, wsURL(srv))
	require.Eventually(t, func() bool { return hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	for i := int64(1); i <= 7; i++ {
		hub.Publish(notify.OrderPlaced{OrderID: i})
	}

	require.Eventually(t, func() bool {
		p := feed.Pending()
		return len(p) == 6 && p[0].OrderID == 7
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []int64{7, 6, 5, 4, 3, 2}, orderIDs(feed.Pending()))
}

func TestSession_LateAdminSeesNoEarlierOrder(t *testing.T) {
	hub := notify.NewHub(16, discardLog())
	srv := newHubServer(t, hub)

	_, early := startSession(t, wsURL(srv))
	require.Eventually(t, func() bool { return hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
	hub.Publish(notify.OrderPlaced{OrderID: 1})
	require.Eventually(t, func() bool { return len(early.Pending()) == 1 }, 2*time.Second, 10*time.Millisecond)

	_, late := startSession(t, wsURL(srv))
	require.Eventually(t, func() bool { return late.State() == StateIdle && hub.Len() == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.Publish(notify.OrderPlaced{OrderID: 2})
	require.Eventually(t, func() bool { return len(late.Pending()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(2), late.Pending()[0].OrderID)
}

func TestSession_ReconnectsAfterServerDrop(t *testing.T) {
	hub := notify.NewHub(16, discardLog())
	srv := newHubServer(t, hub)

	_, feed := startSession(t, wsURL(srv))
	require.Eventually(t, func() bool { return feed.State() == StateIdle }, 2*time.Second, 10*time.Millisecond)

	sawDisconnect := make(chan struct{}, 1)
	feed.OnChange(func() {
		if feed.State() == StateDisconnected {
			select {
			case sawDisconnect <- struct{}{}:
			default:
			}
		}
	})

	// サーバー側から全セッションを落とす
	hub.Shutdown()

	select {
	case <-sawDisconnect:
	case <-time.After(2 * time.Second):
		t.Fatal("session never observed the drop")
	}

	require.Eventually(t, func() bool { return feed.State() == StateIdle && hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)
}
