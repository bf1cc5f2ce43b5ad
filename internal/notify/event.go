package notify

import (
	"fmt"
	"time"
)

// websocketで流すイベント名
const EventNewOrderPlaced = "newOrderPlaced"

// 注文作成イベント（永続化しない）
type OrderPlaced struct {
	OrderID       int64     `json:"order_id"`
	UserID        int64     `json:"user_id"`
	TotalAmount   int64     `json:"total_amount"`
	OrderStatus   string    `json:"order_status"`
	PaymentMethod string    `json:"payment_method"`
	ItemCount     int       `json:"item_count"`
	CreatedAt     time.Time `json:"created_at"`
}

// クライアントへ送るフレーム
type Message struct {
	Event string      `json:"event"`
	Data  OrderPlaced `json:"data"`
}

func NewOrderPlacedMessage(ev OrderPlaced) Message {
	return Message{Event: EventNewOrderPlaced, Data: ev}
}

// Publisher は注文イベントの送り口。
// 呼び出し側をブロックせず、配送の成否も返さない。
type Publisher interface {
	Publish(ev OrderPlaced)
}

// ChannelError は通知経路の失敗。ログとメトリクスにだけ出す
type ChannelError struct {
	Op  string
	Err error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("notify channel %s: %v", e.Op, e.Err)
}

func (e *ChannelError) Unwrap() error { return e.Err }
