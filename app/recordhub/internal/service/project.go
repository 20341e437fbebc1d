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

// ProjectService 项目与任务读写，写入成功后广播
type ProjectService struct {
	projects dao.ProjectDAO
	pub      Publisher
	validate *validator.Validate
	now      Clock
	logger   logger.Logger
}

// NewProjectService 创建项目服务
func NewProjectService(projects dao.ProjectDAO, pub Publisher, l logger.Logger) *ProjectService {
	return &ProjectService{
		projects: projects,
		pub:      pub,
		validate: webvalidator.New(),
		now:      time.Now,
		logger:   l.Named("service.project"),
	}
}

// List 列表
func (s *ProjectService) List(ctx context.Context, q model.ListQuery) (*model.Page[model.ProjectRow], error) {
	page, err := s.projects.List(ctx, q)
	if err != nil {
		return nil, translate(err, "list projects")
	}
	return page, nil
}

// Create 保存并广播 PROJECT_ADDED
func (s *ProjectService) Create(ctx context.Context, p model.Project) (*model.Project, error) {
	p.ID = uuid.NewString()
	assignTaskIDs(p.Tasks)
	p.Normalize()
	if err := s.check(p); err != nil {
		return nil, err
	}
	if err := s.projects.Create(ctx, &p); err != nil {
		return nil, translate(err, "create project")
	}
	s.logger.InfoContext(ctx, "project created", "project_id", p.ID)
	s.pub.Broadcast(ctx, gateway.NewEvent(gateway.EventProjectAdded, p))
	return &p, nil
}

// Update 部分更新并广播 PROJECT_UPDATED
func (s *ProjectService) Update(ctx context.Context, id string, patch model.ProjectPatch) (*model.Project, error) {
	cur, err := s.projects.Get(ctx, id)
	if err != nil {
		return nil, translate(err, "load project")
	}
	next := patch.Apply(*cur)
	assignTaskIDs(next.Tasks)
	next.Normalize()
	if err := s.check(next); err != nil {
		return nil, err
	}
	if err := s.projects.Update(ctx, &next); err != nil {
		return nil, translate(err, "update project")
	}
	s.logger.InfoContext(ctx, "project updated", "project_id", id)
	s.pub.Broadcast(ctx, gateway.NewEvent(gateway.EventProjectUpdated, next))
	return &next, nil
}

// Delete 删除并广播 PROJECT_DELETED
func (s *ProjectService) Delete(ctx context.Context, id string) (*model.Project, error) {
	deleted, err := s.projects.Delete(ctx, id)
	if err != nil {
		return nil, translate(err, "delete project")
	}
	s.logger.InfoContext(ctx, "project deleted", "project_id", id)
	s.pub.Broadcast(ctx, gateway.NewEvent(gateway.EventProjectDeleted, deleted))
	return deleted, nil
}

// Tasks 项目的任务列表
func (s *ProjectService) Tasks(ctx context.Context, projectID string) ([]model.Task, error) {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, translate(err, "load project")
	}
	return p.Tasks, nil
}

// SetTasks 替换任务列表，广播 TASKS_UPDATED，事件数据为更新后的项目
func (s *ProjectService) SetTasks(ctx context.Context, projectID string, tasks []model.Task) (*model.Project, error) {
	tasks = append([]model.Task{}, tasks...)
	assignTaskIDs(tasks)
	for i := range tasks {
		if tasks[i].AssignedPeople == nil {
			tasks[i].AssignedPeople = []string{}
		}
		if err := s.checkTask(tasks[i]); err != nil {
			return nil, err
		}
	}
	p, err := s.projects.SetTasks(ctx, projectID, tasks)
	if err != nil {
		return nil, translate(err, "set tasks")
	}
	s.logger.InfoContext(ctx, "project tasks replaced", "project_id", projectID, "tasks", len(tasks))
	s.pub.Broadcast(ctx, gateway.NewEvent(gateway.EventTasksUpdated, p))
	return p, nil
}

// Analysis 所有项目及任务的活跃状态
func (s *ProjectService) Analysis(ctx context.Context) ([]model.ProjectActivity, error) {
	all, err := s.projects.All(ctx)
	if err != nil {
		return nil, translate(err, "load projects")
	}
	now := s.now()
	out := make([]model.ProjectActivity, 0, len(all))
	for _, p := range all {
		out = append(out, p.ActivityAt(now))
	}
	return out, nil
}

// TaskAnalysis 单个项目任务的活跃状态
func (s *ProjectService) TaskAnalysis(ctx context.Context, projectID string) ([]model.TaskActivity, error) {
	p, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, translate(err, "load project")
	}
	now := s.now()
	out := make([]model.TaskActivity, 0, len(p.Tasks))
	for _, t := range p.Tasks {
		out = append(out, model.TaskActivityAt(t, now))
	}
	return out, nil
}

func (s *ProjectService) check(p model.Project) error {
	if err := checkStruct(s.validate, p); err != nil {
		return err
	}
	if p.StartDate.IsZero() {
		return invalid("Missing startDate")
	}
	for _, t := range p.Tasks {
		if err := s.checkTask(t); err != nil {
			return err
		}
	}
	return nil
}

func (s *ProjectService) checkTask(t model.Task) error {
	if err := checkStruct(s.validate, t); err != nil {
		return err
	}
	if t.StartDate.IsZero() {
		return invalid("Missing startDate")
	}
	return nil
}

func assignTaskIDs(tasks []model.Task) {
	for i := range tasks {
		if tasks[i].ID == "" {
			tasks[i].ID = uuid.NewString()
		}
	}
}
