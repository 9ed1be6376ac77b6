package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/yourusername/user-portal/internal/users"
)

// Registration は新規登録の入力値です。
type Registration struct {
	FirstName string
	LastName  string
	Email     string
	Mobile    string
	Password  string
}

// Service は登録とログイン認証をまとめたサービスです。
type Service struct {
	users   users.Store
	hasher  Hasher
	limiter Limiter

	dummyOnce sync.Once
	dummyHash string
}

// NewService は Service を生成します。limiter が nil の場合は試行制限を行いません。
func NewService(store users.Store, hasher Hasher, limiter Limiter) *Service {
	return &Service{
		users:   store,
		hasher:  hasher,
		limiter: limiter,
	}
}

// Register はユーザーを登録します。
// メールアドレスは事前に確認しますが、最終的な一意性は DB の一意制約で保証します。
// パスワードが MaxPasswordBytes を超える場合は ErrPasswordTooLong を返します。
func (s *Service) Register(ctx context.Context, in Registration) (*users.User, error) {
	if len(in.Password) > MaxPasswordBytes {
		return nil, ErrPasswordTooLong
	}

	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &users.DuplicateError{Field: "email"}
	}

	hash, err := s.hasher.Hash(in.Password)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &users.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Mobile:       in.Mobile,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate はメールアドレスとパスワードを検証します。
// clientKey（通常はクライアントIP）ごとに失敗回数を数え、上限に達すると *LockedError を返します。
// 認証に失敗した場合は *CredentialError を返します。
func (s *Service) Authenticate(ctx context.Context, clientKey, email, password string) (*users.User, error) {
	if s.limiter != nil {
		retryAfter, err := s.limiter.Check(ctx, clientKey)
		if err != nil {
			return nil, err
		}
		if retryAfter > 0 {
			return nil, &LockedError{RetryAfter: retryAfter}
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if user == nil {
		// 存在しないメールアドレスでも応答時間をそろえる
		s.hasher.Verify(password, s.dummy())
		return nil, s.recordFailure(ctx, clientKey)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, s.recordFailure(ctx, clientKey)
	}

	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, clientKey); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *Service) recordFailure(ctx context.Context, clientKey string) error {
	if s.limiter == nil {
		return &CredentialError{RemainingAttempts: -1}
	}
	remaining, err := s.limiter.RecordFailure(ctx, clientKey)
	if err != nil {
		return err
	}
	return &CredentialError{RemainingAttempts: remaining}
}

func (s *Service) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("dummy-password-for-timing")
	})
	return s.dummyHash
}
