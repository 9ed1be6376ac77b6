// Package web は HTTP ルーティングと画面・API のハンドラーを提供します。
package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/yourusername/user-portal/internal/auth"
	"github.com/yourusername/user-portal/internal/users"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgTooManyAttempts    = "Too many failed login attempts. Please try again later."
	msgPasswordTooLong    = "Password is too long"
)

// Handler は画面系ハンドラーの依存関係をまとめた構造体です。
type Handler struct {
	auth     *auth.Service
	sessions *auth.SessionManager
	logger   *zap.Logger
	debug    bool
}

// Index は GET / のハンドラーです。RequireLogin の後ろに登録します。
func (h *Handler) Index(c *gin.Context) {
	message := "Welcome!"
	if identity, ok := auth.IdentityFrom(c).(auth.Authenticated); ok {
		message = "Welcome, " + identity.DisplayName() + "!"
	}
	h.renderPage(c, http.StatusOK, "index.html", "Home", gin.H{"message": message})
}

// RegisterForm は GET /register のハンドラーです。
func (h *Handler) RegisterForm(c *gin.Context) {
	h.renderPage(c, http.StatusOK, "register.html", "Register", gin.H{"form": registerForm{}})
}

// Register は POST /register のハンドラーです。
func (h *Handler) Register(c *gin.Context) {
	var form registerForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		form.Password = ""
		h.renderPage(c, http.StatusBadRequest, "register.html", "Register", gin.H{
			"form":   form,
			"errors": validationMessages(err),
		})
		return
	}
	form.trim()

	user, err := h.auth.Register(c.Request.Context(), auth.Registration{
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Mobile:    form.Mobile,
		Password:  form.Password,
	})
	if err != nil {
		var dup *users.DuplicateError
		switch {
		case errors.As(err, &dup):
			h.addFlash(c, duplicateMessage(dup.Field))
			c.Redirect(http.StatusFound, "/register")
		case errors.Is(err, auth.ErrPasswordTooLong):
			form.Password = ""
			h.renderPage(c, http.StatusBadRequest, "register.html", "Register", gin.H{
				"form":   form,
				"errors": []string{msgPasswordTooLong},
			})
		default:
			h.renderError(c, err)
		}
		return
	}

	h.logger.Info("user registered", zap.Uint("user_id", user.ID))
	c.Redirect(http.StatusFound, auth.LoginPath)
}

// LoginForm は GET /login のハンドラーです。
func (h *Handler) LoginForm(c *gin.Context) {
	h.renderPage(c, http.StatusOK, "login.html", "Log in", gin.H{"email": ""})
}

// Login は POST /login のハンドラーです。
// 認証に失敗した場合はリダイレクトせずにフォームを再表示します。
func (h *Handler) Login(c *gin.Context) {
	var form loginForm
	if err := c.ShouldBindWith(&form, binding.Form); err != nil {
		h.renderPage(c, http.StatusBadRequest, "login.html", "Log in", gin.H{
			"email":  form.Email,
			"errors": validationMessages(err),
		})
		return
	}

	user, err := h.auth.Authenticate(c.Request.Context(), c.ClientIP(), form.Email, form.Password)
	if err != nil {
		var locked *auth.LockedError
		switch {
		case errors.As(err, &locked):
			// Retry-After は秒数で返す
			c.Header("Retry-After", strconv.FormatInt(int64(locked.RetryAfter.Seconds()), 10))
			h.renderPage(c, http.StatusTooManyRequests, "login.html", "Log in", gin.H{
				"email":  form.Email,
				"errors": []string{msgTooManyAttempts},
			})
		case errors.Is(err, auth.ErrInvalidCredentials):
			h.renderPage(c, http.StatusOK, "login.html", "Log in", gin.H{
				"email":  form.Email,
				"errors": credentialMessages(err),
			})
		default:
			h.renderError(c, err)
		}
		return
	}

	if err := h.sessions.Login(c, user.ID); err != nil {
		h.renderError(c, err)
		return
	}
	h.logger.Info("user logged in", zap.Uint("user_id", user.ID))
	c.Redirect(http.StatusFound, "/")
}

// Logout は GET /logout のハンドラーです。
func (h *Handler) Logout(c *gin.Context) {
	identity, _ := auth.IdentityFrom(c).(auth.Authenticated)
	if err := h.sessions.Logout(c); err != nil {
		h.renderError(c, err)
		return
	}
	if identity.User != nil {
		h.logger.Info("user logged out", zap.Uint("user_id", identity.UserID()))
	}
	c.Redirect(http.StatusFound, "/")
}

// credentialMessages は認証失敗時の文言です。残り試行回数が分かる場合は併せて表示します。
func credentialMessages(err error) []string {
	messages := []string{msgInvalidCredentials}
	var credErr *auth.CredentialError
	if errors.As(err, &credErr) && credErr.RemainingAttempts > 0 {
		unit := "attempts"
		if credErr.RemainingAttempts == 1 {
			unit = "attempt"
		}
		messages = append(messages, fmt.Sprintf("%d %s remaining before login is temporarily locked.", credErr.RemainingAttempts, unit))
	}
	return messages
}
