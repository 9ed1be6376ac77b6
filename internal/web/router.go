package web

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/user-portal/internal/auth"
	"github.com/yourusername/user-portal/internal/config"
	"github.com/yourusername/user-portal/internal/logging"
)

// Dependencies はルーター構築に必要なサービス群です。
type Dependencies struct {
	Auth     *auth.Service
	Sessions *auth.SessionManager
	Logger   *zap.Logger
}

var validationsOnce struct {
	sync.Once
	err error
}

// NewRouter はミドルウェアとルーティングを設定した gin.Engine を返します。
// gin のモードは呼び出し側で事前に設定してください。
func NewRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if deps.Auth == nil || deps.Sessions == nil {
		return nil, errors.New("auth service and session manager are required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	validationsOnce.Do(func() {
		validationsOnce.err = registerValidations()
	})
	if validationsOnce.err != nil {
		return nil, validationsOnce.err
	}

	tmpl, err := loadTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	router := gin.New()
	// ログイン試行制限はクライアントIP単位のため、X-Forwarded-For は信用しない
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, err
	}
	router.Use(
		logging.Recovery(deps.Logger),
		logging.RequestID(),
		logging.RequestLogger(deps.Logger),
	)
	router.SetHTMLTemplate(tmpl)

	// セッションストアの設定（クッキー署名鍵は必須）
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   deps.Sessions.MaxAgeSeconds(),
		HttpOnly: true,
		Secure:   cfg.SessionCookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions(cfg.SessionCookieName, store))

	if cfg.CORSEnabled {
		corsMiddleware, err := newCORS(cfg)
		if err != nil {
			return nil, err
		}
		router.Use(corsMiddleware)
	}

	h := &Handler{
		auth:     deps.Auth,
		sessions: deps.Sessions,
		logger:   deps.Logger,
		debug:    cfg.Debug,
	}
	setupRoutes(router, h, deps.Sessions)
	return router, nil
}

func newCORS(cfg *config.Config) (gin.HandlerFunc, error) {
	corsConfig := cors.DefaultConfig()
	origins := cfg.AllowedOrigins()
	for _, origin := range origins {
		if origin == "*" {
			// ワイルドカード指定時はクッキーを伴うリクエストを許可しない
			corsConfig.AllowAllOrigins = true
			origins = nil
			break
		}
	}
	corsConfig.AllowOrigins = origins
	corsConfig.AllowCredentials = !corsConfig.AllowAllOrigins
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		logging.RequestIDHeader,
	}
	corsConfig.ExposeHeaders = []string{logging.RequestIDHeader}

	if err := corsConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid CORS config: %w", err)
	}
	return cors.New(corsConfig), nil
}

// setupRoutes は API と画面のルーティングを行います。
func setupRoutes(router *gin.Engine, h *Handler, sessionManager *auth.SessionManager) {
	// まずは誰でも叩けるヘルスチェックを登録
	router.GET("/health", handleHealth)

	api := router.Group("/api")
	{
		api.GET("/data", getData)
		api.POST("/data", postData)
	}

	pages := router.Group("/")
	pages.Use(sessionManager.LoadIdentity(h.renderError))
	{
		pages.GET("/register", h.RegisterForm)
		pages.POST("/register", h.Register)
		pages.GET("/login", h.LoginForm)
		pages.POST("/login", h.Login)

		protected := pages.Group("")
		protected.Use(auth.RequireLogin())
		{
			protected.GET("/", h.Index)
			protected.GET("/logout", h.Logout)
		}
	}
}
