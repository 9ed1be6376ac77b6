package auth

import (
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials はメールアドレスまたはパスワードが一致しない場合に返されます。
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrTooManyAttempts はログイン失敗が続きロック中の場合に返されます。
	ErrTooManyAttempts = errors.New("too many failed login attempts")
	// ErrPasswordTooLong はパスワードが bcrypt の上限（72 バイト）を超える場合に返されます。
	ErrPasswordTooLong = errors.New("password is too long")
)

// LockedError はロック解除までの残り時間を保持します。
type LockedError struct {
	RetryAfter time.Duration
}

func (e *LockedError) Error() string {
	return ErrTooManyAttempts.Error()
}

func (e *LockedError) Is(target error) bool {
	return target == ErrTooManyAttempts
}

// CredentialError は認証失敗と残り試行回数を保持します。
type CredentialError struct {
	RemainingAttempts int
}

func (e *CredentialError) Error() string {
	return ErrInvalidCredentials.Error()
}

func (e *CredentialError) Is(target error) bool {
	return target == ErrInvalidCredentials
}
