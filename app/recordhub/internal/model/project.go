package model

import "time"

// Task 项目任务
type Task struct {
	ID             string   `json:"_id"`
	Name           string   `json:"name" validate:"required"`
	StartDate      Date     `json:"startDate"`
	EndDate        *Date    `json:"endDate,omitempty"`
	AssignedPeople []string `json:"assignedPeople"`
}

// Project 项目
type Project struct {
	ID            string   `json:"_id"`
	Name          string   `json:"name" validate:"required,startsletter"`
	StartDate     Date     `json:"startDate"`
	EndDate       *Date    `json:"endDate,omitempty"`
	ContractorIDs []string `json:"contractor_ids"`
	Tasks         []Task   `json:"tasks" validate:"dive"`
}

// Normalize 空切片统一为非 nil，保证 JSON 输出 []
func (p *Project) Normalize() {
	if p.ContractorIDs == nil {
		p.ContractorIDs = []string{}
	}
	if p.Tasks == nil {
		p.Tasks = []Task{}
	}
	for i := range p.Tasks {
		if p.Tasks[i].AssignedPeople == nil {
			p.Tasks[i].AssignedPeople = []string{}
		}
	}
}

// ProjectPatch 部分更新
type ProjectPatch struct {
	Name          *string   `json:"name"`
	StartDate     *Date     `json:"startDate"`
	EndDate       *Date     `json:"endDate"`
	ContractorIDs *[]string `json:"contractor_ids"`
	Tasks         *[]Task   `json:"tasks"`
}

// Apply 将 patch 应用到 p 的副本
func (pp ProjectPatch) Apply(p Project) Project {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.StartDate != nil {
		p.StartDate = *pp.StartDate
	}
	if pp.EndDate != nil {
		if pp.EndDate.IsZero() {
			p.EndDate = nil
		} else {
			end := *pp.EndDate
			p.EndDate = &end
		}
	}
	if pp.ContractorIDs != nil {
		p.ContractorIDs = append([]string(nil), (*pp.ContractorIDs)...)
	}
	if pp.Tasks != nil {
		p.Tasks = append([]Task(nil), (*pp.Tasks)...)
	}
	return p
}

// ProjectRow 列表项，附带承包人姓名缩写
type ProjectRow struct {
	Project
	Contractors []string `json:"contractors"`
}

// TaskActivity 分析视图中的任务
type TaskActivity struct {
	Task
	IsActive bool `json:"isActive"`
}

// ProjectActivity 分析视图中的项目
type ProjectActivity struct {
	ID        string         `json:"_id"`
	Name      string         `json:"name"`
	StartDate Date           `json:"startDate"`
	EndDate   *Date          `json:"endDate,omitempty"`
	IsActive  bool           `json:"isActive,omitempty"`
	Tasks     []TaskActivity `json:"tasks"`
}

// TaskActivityAt 未结束 (无结束日期或结束日期晚于 now) 的任务为活跃，结束日期报告为 now
func TaskActivityAt(t Task, now time.Time) TaskActivity {
	ta := TaskActivity{Task: t}
	if t.AssignedPeople == nil {
		ta.AssignedPeople = []string{}
	}
	if t.EndDate == nil || t.EndDate.After(now) {
		ta.IsActive = true
		if t.EndDate == nil {
			today := NewDate(now)
			ta.EndDate = &today
		}
	}
	return ta
}

// ActivityAt 项目及其任务的活跃状态
func (p Project) ActivityAt(now time.Time) ProjectActivity {
	pa := ProjectActivity{
		ID:        p.ID,
		Name:      p.Name,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Tasks:     make([]TaskActivity, 0, len(p.Tasks)),
	}
	if p.EndDate == nil || p.EndDate.After(now) {
		pa.IsActive = true
		if p.EndDate == nil {
			today := NewDate(now)
			pa.EndDate = &today
		}
	}
	for _, t := range p.Tasks {
		pa.Tasks = append(pa.Tasks, TaskActivityAt(t, now))
	}
	return pa
}
