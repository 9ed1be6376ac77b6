package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/user-portal/internal/users"
)

const (
	sessionKeyUser       = "user_id"
	sessionKeyToken      = "token"
	sessionKeyIssuedAt   = "issued_at"
	sessionKeyLastActive = "last_activity"
)

// UserLoader はセッションからユーザーを復元するための取得処理です。
type UserLoader interface {
	FindByID(ctx context.Context, id uint) (*users.User, error)
}

// SessionOptions はセッションの有効期限設定です。
type SessionOptions struct {
	MaxLifetime time.Duration
	IdleTimeout time.Duration
}

// SessionManager はクッキーセッション上のログイン状態を管理します。
// セッション本体の保存は gin-contrib/sessions のストア（署名付きクッキー）に任せます。
type SessionManager struct {
	users       UserLoader
	maxLifetime time.Duration
	idleTimeout time.Duration
	now         func() time.Time
}

// NewSessionManager は SessionManager を生成します。
func NewSessionManager(loader UserLoader, opts SessionOptions) *SessionManager {
	if opts.MaxLifetime <= 0 {
		opts.MaxLifetime = 12 * time.Hour
	}
	if opts.IdleTimeout <= 0 {
		opts.IdleTimeout = 30 * time.Minute
	}
	return &SessionManager{
		users:       loader,
		maxLifetime: opts.MaxLifetime,
		idleTimeout: opts.IdleTimeout,
		now:         time.Now,
	}
}

// MaxAgeSeconds はクッキーの MaxAge に利用する秒数を返します。
func (m *SessionManager) MaxAgeSeconds() int {
	return int(m.maxLifetime.Seconds())
}

// Login は userID にひも付く新しいセッションを発行します。
// 既存のセッション内容は破棄されます。
func (m *SessionManager) Login(c *gin.Context, userID uint) error {
	token, err := generateToken()
	if err != nil {
		return err
	}

	session := sessions.Default(c)
	now := m.now()
	session.Clear()
	session.Set(sessionKeyUser, userID)
	session.Set(sessionKeyToken, token)
	session.Set(sessionKeyIssuedAt, now.Unix())
	session.Set(sessionKeyLastActive, now.Unix())
	return session.Save()
}

// Logout はセッションを破棄します。
func (m *SessionManager) Logout(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	return session.Save()
}

// Current は現在のリクエストの認証状態を返します。
// セッションが無い、壊れている、期限切れ、またはユーザーが存在しない場合は Anonymous です。
// エラーはユーザー取得に失敗した場合のみ返します。
func (m *SessionManager) Current(c *gin.Context) (Identity, error) {
	session := sessions.Default(c)
	raw := session.Get(sessionKeyUser)
	if raw == nil {
		return Anonymous{}, nil
	}

	userID, ok := raw.(uint)
	token, _ := session.Get(sessionKeyToken).(string)
	if !ok || userID == 0 || token == "" {
		m.reset(session)
		return Anonymous{}, nil
	}

	now := m.now()
	issuedAt := readUnix(session.Get(sessionKeyIssuedAt))
	lastActive := readUnix(session.Get(sessionKeyLastActive))
	if issuedAt.IsZero() || now.Sub(issuedAt) > m.maxLifetime {
		m.reset(session)
		return Anonymous{}, nil
	}
	if lastActive.IsZero() || now.Sub(lastActive) > m.idleTimeout {
		m.reset(session)
		return Anonymous{}, nil
	}

	user, err := m.users.FindByID(c.Request.Context(), userID)
	if err != nil {
		return Anonymous{}, err
	}
	if user == nil {
		m.reset(session)
		return Anonymous{}, nil
	}

	session.Set(sessionKeyLastActive, now.Unix())
	_ = session.Save()
	return Authenticated{User: user}, nil
}

func (m *SessionManager) reset(session sessions.Session) {
	session.Clear()
	_ = session.Save()
}

func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func readUnix(v interface{}) time.Time {
	switch t := v.(type) {
	case int64:
		return time.Unix(t, 0)
	case int:
		return time.Unix(int64(t), 0)
	case float64:
		return time.Unix(int64(t), 0)
	default:
		return time.Time{}
	}
}
