// Package users は登録ユーザーの永続化（Credential Store）を提供します。
package users

import "time"

// User はシステムに登録されたアカウントを表します。
type User struct {
	// ID はユーザーの一意な識別子です。
	ID uint `gorm:"primaryKey"`

	// FirstName は表示名として使用します。同名ユーザーの登録は許可します。
	FirstName string `gorm:"size:80;not null"`

	LastName string `gorm:"size:80;not null"`

	// Email はログインに使用するメールアドレスです。
	// 全ユーザー間で一意である必要があります。
	Email string `gorm:"uniqueIndex:idx_users_email;size:120;not null"`

	// Mobile は携帯電話番号です。全ユーザー間で一意である必要があります。
	Mobile string `gorm:"uniqueIndex:idx_users_mobile;size:20;not null"`

	// PasswordHash は bcrypt でハッシュ化されたパスワードです。
	// 平文パスワードを保存してはなりません。
	PasswordHash string `gorm:"size:120;not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName は GORM が使用するテーブル名を返します。
func (User) TableName() string {
	return "users"
}
