package adminfeed

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"storefront/internal/notify"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const defaultRetryDelay = 2 * time.Second

// Session は通知チャネルへの接続を1本だけ持つ。
// 切れたらRetryDelay後につなぎ直す。
type Session struct {
	URL        string
	Header     http.Header
	Feed       *Feed
	RetryDelay time.Duration
	Dialer     *websocket.Dialer

	log *logrus.Entry

	mu        sync.Mutex
	conn      *websocket.Conn
	done      chan struct{}
	closeOnce sync.Once
}

// tokenは管理者のアクセストークン
func NewSession(url string, token string, feed *Feed, log *logrus.Entry) *Session {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return &Session{
		URL:        url,
		Header:     h,
		Feed:       feed,
		RetryDelay: defaultRetryDelay,
		Dialer:     websocket.DefaultDialer,
		log:        log.WithField("component", "adminfeed.session"),
		done:       make(chan struct{}),
	}
}

// Run はctxがキャンセルされるかCloseされるまで接続を維持する
func (s *Session) Run(ctx context.Context) error {
	for {
		if err := s.runOnce(ctx); err != nil {
			s.log.WithError(err).Debug("notification channel down")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case <-time.After(s.RetryDelay):
		}
	}
}

// 1回分の接続。切断で戻る
func (s *Session) runOnce(ctx context.Context) error {
	conn, _, err := s.Dialer.DialContext(ctx, s.URL, s.Header)
	if err != nil {
		return errors.Wrap(err, "dial")
	}

	if !s.attach(conn) {
		conn.Close()
		return nil
	}
	defer s.detach()

	s.Feed.Connected()
	defer s.Feed.Disconnected()

	//ctx終了で読み取りを止める
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-stop:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return errors.Wrap(err, "read")
		}

		var msg notify.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			s.log.WithError(err).Warn("malformed frame ignored")
			continue
		}
		if msg.Event != notify.EventNewOrderPlaced {
			continue
		}
		s.Feed.Receive(msg.Data)
	}
}

func (s *Session) attach(conn *websocket.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
		return false
	default:
	}
	s.conn = conn
	return true
}

func (s *Session) detach() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
}

// Close は接続を閉じ、Runを終わらせる
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		close(s.done)
		if s.conn != nil {
			_ = s.conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second),
			)
			err = s.conn.Close()
		}
	})
	return err
}
