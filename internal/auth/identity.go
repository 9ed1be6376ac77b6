package auth

import "github.com/yourusername/user-portal/internal/users"

// Identity はリクエスト元の認証状態です。Anonymous か Authenticated のいずれかです。
type Identity interface {
	IsAuthenticated() bool
}

// Anonymous は未ログインの状態を表します。
type Anonymous struct{}

func (Anonymous) IsAuthenticated() bool { return false }

// Authenticated はログイン済みの状態を表します。
type Authenticated struct {
	User *users.User
}

func (Authenticated) IsAuthenticated() bool { return true }

// DisplayName は画面表示用の名前（名）を返します。
func (a Authenticated) DisplayName() string {
	return a.User.FirstName
}

// UserID はログイン中ユーザーの ID を返します。
func (a Authenticated) UserID() uint {
	return a.User.ID
}
