package handler

import (
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/middleware"
	"storefront/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// 成功レスポンス
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
}

// データを返さない成功
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// 失敗レスポンス
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func respond(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, SuccessResponse{Success: true, Data: data})
}

func okMessage(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, MessageResponse{Success: true, Message: msg})
}

// handlerはusecaseのエラーをそのままreturnする
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, ErrorResponse{Success: false, Message: msg})
}

// NewHTTPErrorHandler はusecase/echoどちらのエラーも {success:false, message} にそろえる
func NewHTTPErrorHandler(log *logrus.Entry) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		msg := "internal error"

		if he, ok := usecase.AsHTTPError(err); ok {
			status = he.Status
			msg = he.Message
			//原因はログだけ
			if he.Err != nil {
				log.WithError(he.Err).WithFields(logrus.Fields{
					"status": status,
					"path":   c.Path(),
				}).Error("request failed")
			}
		} else {
			var ee *echo.HTTPError
			if errors.As(err, &ee) {
				status = ee.Code
				if m, isStr := ee.Message.(string); isStr {
					msg = m
				} else {
					msg = http.StatusText(status)
				}
			} else {
				log.WithError(err).WithField("path", c.Path()).Error("unhandled error")
			}
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = fail(c, status, msg)
	}
}

func getUserIDFromContext(c echo.Context) (int64, bool) {
	v := c.Get(middleware.CtxUserIDKey)
	if v == nil {
		return 0, false
	}

	id, ok := v.(int64)
	if !ok || id <= 0 {
		return 0, false
	}

	return id, true
}

// :id 系のパスパラメータ
func paramID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, usecase.ValidationError("invalid " + name)
	}
	return id, nil
}

// bind失敗は400
func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return usecase.ValidationError("invalid body")
	}
	return nil
}
