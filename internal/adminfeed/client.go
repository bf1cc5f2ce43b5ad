package adminfeed

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/usecase"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// OrderClient は通知から開く注文詳細をREST APIで取る
type OrderClient struct {
	http *resty.Client
}

func NewOrderClient(baseURL string, token string) *OrderClient {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(10 * time.Second).
		SetHeader("Accept", "application/json")
	if token != "" {
		c.SetAuthToken(token)
	}
	return &OrderClient{http: c}
}

type orderEnvelope struct {
	Success bool                `json:"success"`
	Data    usecase.OrderOutput `json:"data"`
	Message string              `json:"message"`
}

// GET /api/admin/orders/:id
func (c *OrderClient) Get(ctx context.Context, orderID int64) (usecase.OrderOutput, error) {
	var env orderEnvelope
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&env).
		SetError(&env).
		SetPathParam("id", fmt.Sprint(orderID)).
		Get("/api/admin/orders/{id}")
	if err != nil {
		return usecase.OrderOutput{}, errors.Wrap(err, "get order")
	}
	if resp.IsError() || !env.Success {
		return usecase.OrderOutput{}, errors.Errorf("get order %d: %d %s", orderID, resp.StatusCode(), env.Message)
	}
	return env.Data, nil
}
