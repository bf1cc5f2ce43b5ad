package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"storefront/internal/adminfeed"
	"storefront/internal/logger"

	"github.com/sirupsen/logrus"
)

// 管理者向けの新着注文ビュー（端末版）
func main() {
	var (
		server = flag.String("server", envOr("STOREFRONT_URL", "http://localhost:8080"), "api base url")
		token  = flag.String("token", os.Getenv("ADMIN_TOKEN"), "admin access token")
	)
	flag.Parse()

	log := logrus.NewEntry(logger.Setup(envOr("APP_ENV", logger.EnvLocal)))
	if *token == "" {
		log.Fatal("admin token is required (-token or ADMIN_TOKEN)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feed := adminfeed.NewFeed()
	feed.OnChange(func() { render(os.Stdout, feed) })

	session := adminfeed.NewSession(wsURL(*server), *token, feed, log)
	defer session.Close()
	go func() {
		_ = session.Run(ctx)
	}()

	client := adminfeed.NewOrderClient(*server, *token)

	//注文IDを入力すると通知を消して詳細を出す
	lines := make(chan string)
	go readLines(os.Stdin, lines)

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			id, err := strconv.ParseInt(strings.TrimSpace(line), 10, 64)
			if err != nil {
				fmt.Println("enter an order id")
				continue
			}
			feed.Dismiss(id)
			o, err := client.Get(ctx, id)
			if err != nil {
				log.WithError(err).Warn("fetch order failed")
				continue
			}
			fmt.Printf("order #%d  %s  total=%d  items=%d  pay=%s/%s\n",
				o.ID, o.OrderStatus, o.TotalAmount, len(o.Items), o.PaymentMethod, o.PaymentStatus)
		}
	}
}

func render(w io.Writer, feed *adminfeed.Feed) {
	fmt.Fprintf(w, "[%s]\n", feed.State())
	for _, ev := range feed.Pending() {
		fmt.Fprintf(w, "  #%d  total=%d  items=%d  %s\n",
			ev.OrderID, ev.TotalAmount, ev.ItemCount, ev.CreatedAt.Format("15:04:05"))
	}
}

// http(s)://host → ws(s)://host/ws/admin
func wsURL(base string) string {
	base = strings.TrimRight(base, "/")
	switch {
	case strings.HasPrefix(base, "https://"):
		base = "wss://" + strings.TrimPrefix(base, "https://")
	case strings.HasPrefix(base, "http://"):
		base = "ws://" + strings.TrimPrefix(base, "http://")
	}
	return base + "/ws/admin"
}

func readLines(r io.Reader, out chan<- string) {
	defer close(out)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		out <- sc.Text()
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
