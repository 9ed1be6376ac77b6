package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Store はユーザーの永続化操作を定義します。
type Store interface {
	Create(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uint) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

type gormStore struct {
	db *gorm.DB
}

// NewStore は GORM をバックエンドとする Store を生成します。
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// Create はユーザーを保存し、採番された ID を user に設定します。
// 一意制約に違反した場合は *DuplicateError を返します。
func (s *gormStore) Create(ctx context.Context, user *User) error {
	if user == nil {
		return errors.New("user is nil")
	}
	user.Email = NormalizeEmail(user.Email)
	user.Mobile = strings.TrimSpace(user.Mobile)

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if dup := asDuplicate(err); dup != nil {
			return dup
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByID は ID でユーザーを取得します。存在しない場合は nil, nil を返します。
func (s *gormStore) FindByID(ctx context.Context, id uint) (*User, error) {
	var user User
	if err := s.db.WithContext(ctx).Take(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// FindByEmail はメールアドレスでユーザーを取得します。存在しない場合は nil, nil を返します。
func (s *gormStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	var user User
	err := s.db.WithContext(ctx).Where("email = ?", NormalizeEmail(email)).Take(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// NormalizeEmail は比較用にメールアドレスを正規化します。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
