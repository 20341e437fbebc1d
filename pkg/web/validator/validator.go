package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var once sync.Once

// Init 配置 gin 使用的校验器，可重复调用
func Init() {
	once.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			configure(v)
		}
	})
}

// New 创建与 gin 相同规则的独立校验器，供 service 层校验领域对象
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	configure(v)
	return v
}

// configure 字段名取 json tag，注册 startsletter
func configure(v *validator.Validate) {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("startsletter", StartsWithLetter)
}

// StartsWithLetter 首字符为字母
func StartsWithLetter(fl validator.FieldLevel) bool {
	return StartsLetter(fl.Field().String())
}

// StartsLetter 字符串首字符是否为 Unicode 字母
func StartsLetter(s string) bool {
	if s == "" {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsLetter(r)
}

// Message 将第一个校验错误转换为面向客户端的文本
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("Missing %s", fe.Field())
	case "startsletter":
		return fmt.Sprintf("%v contains invalid characters", fe.Value())
	default:
		return fmt.Sprintf("Invalid %s", fe.Field())
	}
}
