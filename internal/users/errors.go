package users

import (
	"errors"
	"regexp"
	"strings"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// ErrDuplicate は一意制約違反を表すセンチネルエラーです。
var ErrDuplicate = errors.New("user already exists")

// DuplicateError は一意制約に違反したフィールドを保持します。
// errors.Is(err, ErrDuplicate) で判定できます。
type DuplicateError struct {
	Field string // "email" / "mobile"。特定できない場合は空
	Err   error
}

func (e *DuplicateError) Error() string {
	if e.Field == "" {
		return ErrDuplicate.Error()
	}
	return "user with this " + e.Field + " already exists"
}

// Is は ErrDuplicate との比較を可能にします。
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicate
}

func (e *DuplicateError) Unwrap() error {
	return e.Err
}

const mysqlDuplicateEntry = 1062

var uniqueColumns = []string{"email", "mobile"}

// sqlite: "UNIQUE constraint failed: users.email"
var sqliteUniqueRe = regexp.MustCompile(`UNIQUE constraint failed: \w+\.(\w+)`)

// asDuplicate はドライバ固有の一意制約違反を DuplicateError に変換します。
// 一意制約違反でなければ nil を返します。
func asDuplicate(err error) *DuplicateError {
	if err == nil {
		return nil
	}

	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return &DuplicateError{Field: columnFromMessage(myErr.Message), Err: err}
	}

	msg := err.Error()
	if m := sqliteUniqueRe.FindStringSubmatch(msg); m != nil {
		return &DuplicateError{Field: m[1], Err: err}
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return &DuplicateError{Field: columnFromMessage(msg), Err: err}
	}
	return nil
}

// columnFromMessage はインデックス名を含むメッセージから列名を推定します。
// mysql: "Duplicate entry 'a@b.c' for key 'users.idx_users_email'"
func columnFromMessage(msg string) string {
	for _, col := range uniqueColumns {
		if strings.Contains(msg, "idx_users_"+col) {
			return col
		}
	}
	return ""
}
