package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/dao"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/gateway"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/model"
	"github.com/lk2023060901/recordhub/pkg/logger"
	webvalidator "github.com/lk2023060901/recordhub/pkg/web/validator"
)

// PersonService 人员读写，写入成功后广播
type PersonService struct {
	persons  dao.PersonDAO
	pub      Publisher
	validate *validator.Validate
	now      Clock
	logger   logger.Logger
}

// NewPersonService 创建人员服务
func NewPersonService(persons dao.PersonDAO, pub Publisher, l logger.Logger) *PersonService {
	return &PersonService{
		persons:  persons,
		pub:      pub,
		validate: webvalidator.New(),
		now:      time.Now,
		logger:   l.Named("service.person"),
	}
}

// List 列表
func (s *PersonService) List(ctx context.Context, q model.ListQuery) (*model.Page[model.PersonRow], error) {
	page, err := s.persons.List(ctx, q)
	if err != nil {
		return nil, translate(err, "list persons")
	}
	return page, nil
}

// Create 生成 ID 后保存并广播 PERSON_ADDED
func (s *PersonService) Create(ctx context.Context, p model.Person) (*model.Person, error) {
	p.ID = uuid.NewString()
	if err := s.check(p); err != nil {
		return nil, err
	}
	if err := s.persons.Create(ctx, &p); err != nil {
		return nil, translate(err, "create person")
	}
	s.logger.InfoContext(ctx, "person created", "person_id", p.ID)
	s.pub.Broadcast(ctx, gateway.NewEvent(gateway.EventPersonAdded, p))
	return &p, nil
}

// Update 部分更新，id 不存在返回 ErrNotFound
func (s *PersonService) Update(ctx context.Context, id string, patch model.PersonPatch) (*model.Person, error) {
	cur, err := s.persons.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "load person")
	}
	next := patch.Apply(*cur)
	if err := s.check(next); err != nil {
		return nil, err
	}
	if err := s.persons.Update(ctx, &next); err != nil {
		return nil, translate(err, "update person")
	}
	s.logger.InfoContext(ctx, "person updated", "person_id", id)
	s.pub.Broadcast(ctx, gateway.NewEvent(gateway.EventPersonUpdated, next))
	return &next, nil
}

// Delete 删除人员并从项目中移除，广播 PERSON_DELETED
func (s *PersonService) Delete(ctx context.Context, id string) (*model.Person, error) {
	deleted, err := s.persons.Delete(ctx, id)
	if err != nil {
		return nil, translate(err, "delete person")
	}
	s.logger.InfoContext(ctx, "person deleted", "person_id", id)
	s.pub.Broadcast(ctx, gateway.NewEvent(gateway.EventPersonDeleted, deleted))
	return deleted, nil
}

func (s *PersonService) check(p model.Person) error {
	if err := checkStruct(s.validate, p); err != nil {
		return err
	}
	if p.BirthDate.IsZero() {
		return invalid("Missing birthDate")
	}
	if p.BirthDate.After(s.now()) {
		return invalidf("%s is not a valid birth date", p.BirthDate)
	}
	return nil
}
