package dao

import (
	"context"

	"github.com/cockroachdb/errors"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/model"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("not found")

// ErrDuplicate 唯一键冲突
var ErrDuplicate = errors.New("duplicate key")

// UserDAO 登录账号
type UserDAO interface {
	List(ctx context.Context) ([]*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}

// PersonDAO 人员
type PersonDAO interface {
	List(ctx context.Context, q model.ListQuery) (*model.Page[model.PersonRow], error)
	Get(ctx context.Context, id string) (*model.Person, error)
	Create(ctx context.Context, p *model.Person) error
	// Update 整体覆盖，id 不存在返回 ErrNotFound
	Update(ctx context.Context, p *model.Person) error
	// Delete 同时从所有项目的 contractor_ids 中移除该人员，返回被删除的记录
	Delete(ctx context.Context, id string) (*model.Person, error)
}

// ProjectDAO 项目
type ProjectDAO interface {
	List(ctx context.Context, q model.ListQuery) (*model.Page[model.ProjectRow], error)
	All(ctx context.Context) ([]*model.Project, error)
	Get(ctx context.Context, id string) (*model.Project, error)
	Create(ctx context.Context, p *model.Project) error
	Update(ctx context.Context, p *model.Project) error
	// SetTasks 替换任务列表，返回更新后的项目
	SetTasks(ctx context.Context, id string, tasks []model.Task) (*model.Project, error)
	Delete(ctx context.Context, id string) (*model.Project, error)
}

// Set 一组同一存储驱动上的 DAO
type Set struct {
	Users    UserDAO
	Persons  PersonDAO
	Projects ProjectDAO
}

// 可排序字段，键为查询参数
var (
	personSortColumns = map[string]string{
		"firstName": "first_name",
		"lastName":  "last_name",
		"birthDate": "birth_date",
	}
	projectSortColumns = map[string]string{
		"name":      "name",
		"startDate": "start_date",
		"endDate":   "end_date",
	}
)
