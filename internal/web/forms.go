package web

import (
	"errors"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/yourusername/user-portal/internal/auth"
)

type registerForm struct {
	FirstName string `form:"firstname" binding:"required,max=80"`
	LastName  string `form:"lastname" binding:"required,max=80"`
	Email     string `form:"email" binding:"required,email,max=120"`
	Mobile    string `form:"mobile" binding:"required,mobile"`
	// max は文字数で数えるため、bcrypt のバイト上限は passwordbytes で確認する
	Password string `form:"password" binding:"required,passwordbytes"`
}

func (f *registerForm) trim() {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
	f.Mobile = strings.TrimSpace(f.Mobile)
}

type loginForm struct {
	Email    string `form:"email" binding:"required"`
	Password string `form:"password" binding:"required"`
}

var mobileRe = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{2,19}$`)

func validateMobile(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= 20 && mobileRe.MatchString(fl.Field().String())
}

func validatePasswordBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= auth.MaxPasswordBytes
}

// registerValidations は gin のバリデータに独自ルールを登録します。
func registerValidations() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected validator engine")
	}
	if err := v.RegisterValidation("mobile", validateMobile); err != nil {
		return err
	}
	return v.RegisterValidation("passwordbytes", validatePasswordBytes)
}

var fieldLabels = map[string]string{
	"FirstName": "First name",
	"LastName":  "Last name",
	"Email":     "Email",
	"Mobile":    "Mobile number",
	"Password":  "Password",
}

// validationMessages はバインドエラーを画面表示用の文言に変換します。
func validationMessages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{"Invalid form submission"}
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		label := fieldLabels[fe.Field()]
		if label == "" {
			label = fe.Field()
		}
		switch fe.Tag() {
		case "required":
			messages = append(messages, label+" is required")
		case "email":
			messages = append(messages, label+" must be a valid email address")
		case "mobile":
			messages = append(messages, label+" must be a valid phone number")
		case "max", "passwordbytes":
			messages = append(messages, label+" is too long")
		default:
			messages = append(messages, label+" is invalid")
		}
	}
	return messages
}

func duplicateMessage(field string) string {
	switch field {
	case "email":
		return "Email address already exists"
	case "mobile":
		return "Mobile number already exists"
	default:
		return "An account with these details already exists"
	}
}
