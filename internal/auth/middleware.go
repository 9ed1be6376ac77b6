package auth

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// ContextIdentityKey は、ハンドラー間で認証状態を共有するためのキーです。
const ContextIdentityKey = "auth.identity"

// LoginPath は未ログイン時のリダイレクト先です。
const LoginPath = "/login"

// LoginRequiredMessage は未ログインでリダイレクトした際に表示するメッセージです。
const LoginRequiredMessage = "Please log in to access this page."

// LoadIdentity はセッションから認証状態を解決し、コンテキストに保存するミドルウェアです。
// ユーザー取得に失敗した場合は onError に応答を任せて処理を中断します。
// onError が nil の場合は本文なしの 500 を返します。
func (m *SessionManager) LoadIdentity(onError func(c *gin.Context, err error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := m.Current(c)
		if err != nil {
			if onError == nil {
				_ = c.Error(err)
				c.AbortWithStatus(http.StatusInternalServerError)
				return
			}
			c.Set(ContextIdentityKey, Anonymous{})
			onError(c, err)
			c.Abort()
			return
		}
		c.Set(ContextIdentityKey, identity)
		c.Next()
	}
}

// RequireLogin は未ログインのリクエストをログイン画面へリダイレクトするミドルウェアです。
// LoadIdentity の後に登録してください。
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IdentityFrom(c).IsAuthenticated() {
			c.Next()
			return
		}

		session := sessions.Default(c)
		session.AddFlash(LoginRequiredMessage)
		_ = session.Save()
		c.Redirect(http.StatusFound, LoginPath)
		c.Abort()
	}
}

// IdentityFrom はコンテキストに保存された認証状態を返します。未設定なら Anonymous です。
func IdentityFrom(c *gin.Context) Identity {
	if v, ok := c.Get(ContextIdentityKey); ok {
		if identity, ok := v.(Identity); ok {
			return identity
		}
	}
	return Anonymous{}
}
