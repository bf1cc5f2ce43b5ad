package broker

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"storefront/internal/metrics"
	"storefront/internal/notify"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/streadway/amqp"
)

const (
	outboundQueueSize = 256
	reconnectDelay    = 2 * time.Second
)

var errNotConnected = errors.New("relay not connected")

type Config struct {
	URL      string
	Exchange string
}

// channelPublisher は *amqp.Channel のうちPublishだけ
type channelPublisher interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// link は1接続分（送信チャネル、受信キュー、切断通知）
type link struct {
	pub        channelPublisher
	deliveries <-chan amqp.Delivery
	closed     <-chan *amqp.Error
	close      func() error
}

type dialFunc func() (*link, error)

// Relay は注文イベントをfanout exchange経由で全インスタンスに配り、
// 受け取ったものをローカルのHubに流す。
// 配送保証はしない（非永続メッセージ、auto-ack）。
// 接続が切れている間や送信に失敗したイベントはローカルのHubにだけ流す。
type Relay struct {
	exchange string
	local    notify.Publisher
	log      *logrus.Entry

	dial       dialFunc
	retryDelay time.Duration

	mu   sync.RWMutex
	link *link // nilなら切断中

	cb       *gobreaker.CircuitBreaker
	outbound chan notify.OrderPlaced

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// Dial はRabbitMQに接続し、送信と受信のgoroutineを起動する。
// 初回接続の失敗だけはエラーで返す
func Dial(cfg Config, local notify.Publisher, log *logrus.Entry) (*Relay, error) {
	r := newRelay(cfg.Exchange, local, log)
	r.dial = func() (*link, error) { return dialLink(cfg) }

	l, err := r.dial()
	if err != nil {
		return nil, err
	}
	r.attach(l)
	r.start(l)

	r.log.WithField("exchange", cfg.Exchange).Info("order event relay connected")
	return r, nil
}

func dialLink(cfg Config) (*link, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, errors.Wrap(err, "dial rabbitmq")
	}

	pubCh, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "open publish channel")
	}

	err = pubCh.ExchangeDeclare(
		cfg.Exchange, // name
		"fanout",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "declare exchange")
	}

	subCh, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "open consume channel")
	}

	// インスタンスごとの使い捨てキュー（再接続のたびに作り直す）
	queue, err := subCh.QueueDeclare(
		"",    // name（サーバー採番）
		false, // durable
		true,  // delete when unused
		true,  // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "declare queue")
	}

	if err := subCh.QueueBind(queue.Name, "", cfg.Exchange, false, nil); err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "bind queue")
	}

	deliveries, err := subCh.Consume(
		queue.Name, // queue
		"",         // consumer
		true,       // auto-ack
		true,       // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "start consume")
	}

	return &link{
		pub:        pubCh,
		deliveries: deliveries,
		closed:     conn.NotifyClose(make(chan *amqp.Error, 1)),
		close: func() error {
			_ = subCh.Close()
			_ = pubCh.Close()
			return conn.Close()
		},
	}, nil
}

func newRelay(exchange string, local notify.Publisher, log *logrus.Entry) *Relay {
	r := &Relay{
		exchange:   exchange,
		local:      local,
		log:        log.WithField("component", "broker.relay"),
		retryDelay: reconnectDelay,
		outbound:   make(chan notify.OrderPlaced, outboundQueueSize),
		done:       make(chan struct{}),
	}
	r.cb = newBreaker(exchange, r.log)
	return r
}

func (r *Relay) start(l *link) {
	r.wg.Add(2)
	go r.publishLoop()
	go r.superviseLoop(l)
}

func newBreaker(name string, log *logrus.Entry) *gobreaker.CircuitBreaker {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(cbName string, from gobreaker.State, to gobreaker.State) {
			metrics.RelayBreakerState.Set(breakerStateValue(to))
			log.WithFields(logrus.Fields{
				"circuit": cbName,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("relay circuit breaker state changed")
		},
	})
	metrics.RelayBreakerState.Set(0)
	return cb
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateOpen:
		return 1
	case gobreaker.StateHalfOpen:
		return 2
	default:
		return 0
	}
}

func (r *Relay) attach(l *link) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.link = l
}

// 今の接続を外して閉じる
func (r *Relay) detach() {
	r.mu.Lock()
	l := r.link
	r.link = nil
	r.mu.Unlock()

	if l != nil && l.close != nil {
		if err := l.close(); err != nil && !errors.Is(err, amqp.ErrClosed) {
			r.log.WithError(err).Debug("close broken link")
		}
	}
}

func (r *Relay) publisher() channelPublisher {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.link == nil {
		return nil
	}
	return r.link.pub
}

// Connected は今brokerにつながっているか
func (r *Relay) Connected() bool {
	return r.publisher() != nil
}

// Publish はキューに積むだけで戻る。詰まっていたら捨てる
func (r *Relay) Publish(ev notify.OrderPlaced) {
	select {
	case <-r.done:
		metrics.EventsDropped.WithLabelValues(metrics.DropRelayQueue).Inc()
		return
	default:
	}

	select {
	case r.outbound <- ev:
	default:
		metrics.EventsDropped.WithLabelValues(metrics.DropRelayQueue).Inc()
		r.log.WithField("order_id", ev.OrderID).Warn("relay queue full, event dropped")
	}
}

func (r *Relay) publishLoop() {
	defer r.wg.Done()
	for {
		select {
		case ev := <-r.outbound:
			if err := r.send(ev); err != nil {
				// 他インスタンスには届かないが、自分の管理者には流す
				metrics.EventsDropped.WithLabelValues(metrics.DropBrokerError).Inc()
				r.log.WithError(err).WithField("order_id", ev.OrderID).Warn("order event not relayed, delivered locally")
				r.local.Publish(ev)
			}
		case <-r.done:
			return
		}
	}
}

// 1件送る。失敗はChannelErrorで返す
func (r *Relay) send(ev notify.OrderPlaced) error {
	pub := r.publisher()
	if pub == nil {
		return &notify.ChannelError{Op: "publish", Err: errNotConnected}
	}

	body, err := json.Marshal(ev)
	if err != nil {
		return &notify.ChannelError{Op: "encode", Err: err}
	}

	_, err = r.cb.Execute(func() (interface{}, error) {
		return nil, pub.Publish(
			r.exchange,
			"",
			false,
			false,
			amqp.Publishing{
				ContentType:  "application/json",
				Body:         body,
				DeliveryMode: amqp.Transient,
				Timestamp:    time.Now(),
				Type:         notify.EventNewOrderPlaced,
			},
		)
	})
	if err != nil {
		return &notify.ChannelError{Op: "publish", Err: err}
	}

	metrics.EventsPublished.WithLabelValues("broker").Inc()
	return nil
}

// 接続が切れたら外して、つながるまでretryDelayごとにダイヤルし直す
func (r *Relay) superviseLoop(l *link) {
	defer r.wg.Done()
	for {
		r.consume(l)
		r.detach()

		l = r.redial()
		if l == nil {
			return
		}
		r.attach(l)
		r.log.Info("order event relay reconnected")
	}
}

// linkが死ぬか停止するまで受信する
func (r *Relay) consume(l *link) {
	for {
		select {
		case msg, ok := <-l.deliveries:
			if !ok {
				r.log.Warn("relay delivery channel closed")
				return
			}
			r.deliver(msg.Body)
		case amqpErr, ok := <-l.closed:
			if ok && amqpErr != nil {
				r.log.WithError(amqpErr).Warn("rabbitmq connection lost")
			}
			return
		case <-r.done:
			return
		}
	}
}

// 停止したらnil
func (r *Relay) redial() *link {
	for {
		select {
		case <-r.done:
			return nil
		case <-time.After(r.retryDelay):
		}

		l, err := r.dial()
		if err != nil {
			r.log.WithError(err).Warn("rabbitmq reconnect failed")
			continue
		}

		select {
		case <-r.done:
			if l.close != nil {
				_ = l.close()
			}
			return nil
		default:
		}
		return l
	}
}

// 受信したイベントをローカルのHubへ
func (r *Relay) deliver(body []byte) {
	var ev notify.OrderPlaced
	if err := json.Unmarshal(body, &ev); err != nil {
		r.log.WithError(&notify.ChannelError{Op: "decode", Err: err}).Warn("malformed order event ignored")
		return
	}
	r.local.Publish(ev)
}

// Close はgoroutineを止めて接続を閉じる
func (r *Relay) Close(ctx context.Context) error {
	var closeErr error
	r.closeOnce.Do(func() {
		close(r.done)

		stopped := make(chan struct{})
		go func() {
			r.wg.Wait()
			close(stopped)
		}()
		select {
		case <-stopped:
		case <-ctx.Done():
			closeErr = ctx.Err()
		}

		r.detach()
	})
	return closeErr
}
