package service

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/dao"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/gateway"
	webvalidator "github.com/lk2023060901/recordhub/pkg/web/validator"
)

var (
	// ErrValidation 请求数据未通过校验，错误信息可直接返回给客户端
	ErrValidation = errors.New("validation failed")
	// ErrNotFound 目标记录不存在
	ErrNotFound = errors.New("Not found")
)

// Publisher 写入成功后的事件出口，gateway.Broadcaster 满足
type Publisher interface {
	Broadcast(ctx context.Context, e gateway.Event) int
}

var _ Publisher = (*gateway.Broadcaster)(nil)

// Clock 当前时间
type Clock func() time.Time

func invalid(msg string) error {
	return errors.Mark(errors.New(msg), ErrValidation)
}

func invalidf(format string, args ...any) error {
	return errors.Mark(errors.Newf(format, args...), ErrValidation)
}

// checkStruct 执行 validate 标签校验
func checkStruct(v *validator.Validate, obj any) error {
	if err := v.Struct(obj); err != nil {
		return invalid(webvalidator.Message(err))
	}
	return nil
}

// translate dao.ErrNotFound 转为 ErrNotFound
func translate(err error, op string) error {
	if errors.Is(err, dao.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, dao.ErrDuplicate) {
		return invalid("Duplicate key")
	}
	return errors.Wrap(err, op)
}
