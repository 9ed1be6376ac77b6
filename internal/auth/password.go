// Package auth はパスワード検証、セッション管理、ログイン試行制限を提供します。
package auth

import "golang.org/x/crypto/bcrypt"

// MaxPasswordBytes は bcrypt が受け付けるパスワードの最大バイト数です。
const MaxPasswordBytes = 72

// Hasher はパスワードの一方向ハッシュと照合を行います。
type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

// BcryptHasher は bcrypt による Hasher 実装です。ソルトはハッシュごとにランダムに生成されます。
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher は作業係数 cost の BcryptHasher を生成します。
// 範囲外の値は bcrypt の許容範囲に丸めます。
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
