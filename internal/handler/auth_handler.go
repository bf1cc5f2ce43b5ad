package handler

import (
	"net/http"

	"storefront/internal/usecase"
	auth "storefront/internal/usecase/auth_usecase"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	registerUC *auth.RegisterUserUsecase // 会員登録usecase
	loginUC    *auth.LoginUsecase        // ログインusecase
	meUC       *auth.MeUsecase
	resetUC    *auth.PasswordResetUsecase
}

// DIコンストラクタ
func NewAuthHandler(
	registerUC *auth.RegisterUserUsecase,
	loginUC *auth.LoginUsecase,
	meUC *auth.MeUsecase,
	resetUC *auth.PasswordResetUsecase,
) *AuthHandler {
	return &AuthHandler{
		registerUC: registerUC,
		loginUC:    loginUC,
		meUC:       meUC,
		resetUC:    resetUC,
	}
}

// 認証不要のルート
func (h *AuthHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/forgot-password", h.ForgotPassword)
	g.GET("/reset-password/verify", h.VerifyResetToken)
	g.POST("/reset-password", h.ResetPassword)
}

// JWT必須のルート
func (h *AuthHandler) RegisterProtectedRoutes(g *echo.Group) {
	g.GET("/me", h.Me)
}

// RegisterはPOST /api/auth/registerのハンドラ
func (h *AuthHandler) Register(c echo.Context) error {
	var req auth.RegisterUserInput
	if err := bind(c, &req); err != nil {
		return err
	}

	out, err := h.registerUC.Execute(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, out)
}

// LoginはPOST /api/auth/login のハンドラ。
func (h *AuthHandler) Login(c echo.Context) error {
	var req auth.LoginInput
	if err := bind(c, &req); err != nil {
		return err
	}

	out, err := h.loginUC.Execute(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, out)
}

func (h *AuthHandler) Me(c echo.Context) error {
	userID, found := getUserIDFromContext(c)
	if !found {
		return usecase.UnauthorizedError()
	}

	user, err := h.meUC.Execute(c.Request().Context(), userID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, user)
}

// 登録の有無はレスポンスから分からない
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req auth.ForgotPasswordInput
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.resetUC.RequestReset(c.Request().Context(), req); err != nil {
		return err
	}
	return okMessage(c, "if the email is registered, a reset link has been sent")
}

func (h *AuthHandler) VerifyResetToken(c echo.Context) error {
	out, err := h.resetUC.Verify(c.Request().Context(), c.QueryParam("token"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, struct {
		Success bool   `json:"success"`
		Email   string `json:"email"`
	}{Success: true, Email: out.Email})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req auth.ResetPasswordInput
	if err := bind(c, &req); err != nil {
		return err
	}

	if err := h.resetUC.Reset(c.Request().Context(), req); err != nil {
		return err
	}
	return okMessage(c, "password updated")
}
