package handler

import (
	"net/http"
	"net/url"
	"time"

	"storefront/internal/notify"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

const (
	wsWriteWait    = 10 * time.Second
	wsMaxReadBytes = 512
)

// GET /ws/admin 管理者セッションへ注文イベントを流す
type AdminFeedHandler struct {
	hub          *notify.Hub
	pingInterval time.Duration
	upgrader     websocket.Upgrader
	log          *logrus.Entry
}

func NewAdminFeedHandler(hub *notify.Hub, pingInterval time.Duration, allowedOrigin string, log *logrus.Entry) *AdminFeedHandler {
	return &AdminFeedHandler{
		hub:          hub,
		pingInterval: pingInterval,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigin),
		},
		log: log.WithField("component", "handler.admin_feed"),
	}
}

// 認証とadminガードは呼び出し側のグループで済ませる
func (h *AdminFeedHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/admin", h.serve)
}

func (h *AdminFeedHandler) serve(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgraderがエラー応答を書いている
		h.log.WithError(err).Debug("websocket upgrade failed")
		return nil
	}

	userID, _ := getUserIDFromContext(c)
	log := h.log.WithField("user_id", userID)

	sub := h.hub.Subscribe()
	log.WithField("sessions", h.hub.Len()).Info("admin session connected")

	ticker := time.NewTicker(h.pingInterval)
	defer func() {
		ticker.Stop()
		sub.Close()
		_ = conn.Close()
		log.Info("admin session closed")
	}()

	done := h.readLoop(conn)

	for {
		select {
		case ev, open := <-sub.C():
			if !open {
				//サーバー停止
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutdown"),
					time.Now().Add(wsWriteWait))
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(notify.NewOrderPlacedMessage(ev)); err != nil {
				log.WithError(err).Debug("write failed")
				return nil
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				return nil
			}
		case <-done:
			return nil
		}
	}
}

// クライアントからのフレームは読み捨てる。pongで期限を延ばす
func (h *AdminFeedHandler) readLoop(conn *websocket.Conn) <-chan struct{} {
	done := make(chan struct{})
	pongWait := 2 * h.pingInterval

	conn.SetReadLimit(wsMaxReadBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
	return done
}

// Originが無い（ブラウザ以外）か、フロントのURLと一致するときだけ許可
func originChecker(allowed string) func(r *http.Request) bool {
	want, err := url.Parse(allowed)
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if allowed == "*" {
			return true
		}
		got, perr := url.Parse(origin)
		if err != nil || perr != nil {
			return false
		}
		return got.Scheme == want.Scheme && got.Host == want.Host
	}
}
