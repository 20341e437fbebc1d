package dao

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/lk2023060901/recordhub/app/recordhub/internal/model"
)

// memoryDB 进程内存储，三张表共用一把锁以支持跨表删除
type memoryDB struct {
	mu       sync.RWMutex
	seq      int64
	users    map[string]*memUser
	persons  map[string]*memPerson
	projects map[string]*memProject
}

type memUser struct {
	seq int64
	v   model.User
}

type memPerson struct {
	seq int64
	v   model.Person
}

type memProject struct {
	seq int64
	v   model.Project
}

// NewMemorySet 创建内存存储的 DAO 集合
func NewMemorySet() *Set {
	db := &memoryDB{
		users:    make(map[string]*memUser),
		persons:  make(map[string]*memPerson),
		projects: make(map[string]*memProject),
	}
	return &Set{
		Users:    &memoryUsers{db: db},
		Persons:  &memoryPersons{db: db},
		Projects: &memoryProjects{db: db},
	}
}

func (db *memoryDB) next() int64 {
	db.seq++
	return db.seq
}

func cloneUser(u model.User) *model.User {
	u.Roles = append(model.RoleSet{}, u.Roles...)
	return &u
}

func cloneProject(p model.Project) *model.Project {
	p.ContractorIDs = append([]string{}, p.ContractorIDs...)
	tasks := make([]model.Task, len(p.Tasks))
	for i, t := range p.Tasks {
		t.AssignedPeople = append([]string{}, t.AssignedPeople...)
		if t.EndDate != nil {
			end := *t.EndDate
			t.EndDate = &end
		}
		tasks[i] = t
	}
	p.Tasks = tasks
	if p.EndDate != nil {
		end := *p.EndDate
		p.EndDate = &end
	}
	return &p
}

func paginate[T any](items []T, skip, limit int) []T {
	if skip > 0 {
		if skip >= len(items) {
			return []T{}
		}
		items = items[skip:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

type memoryUsers struct{ db *memoryDB }

func (m *memoryUsers) List(_ context.Context) ([]*model.User, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()
	rows := make([]*memUser, 0, len(m.db.users))
	for _, u := range m.db.users {
		rows = append(rows, u)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]*model.User, len(rows))
	for i, r := range rows {
		out[i] = cloneUser(r.v)
	}
	return out, nil
}

func (m *memoryUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()
	for _, u := range m.db.users {
		if u.v.Username == username {
			return cloneUser(u.v), nil
		}
	}
	return nil, ErrNotFound
}

func (m *memoryUsers) Create(_ context.Context, u *model.User) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	for _, x := range m.db.users {
		if x.v.Username == u.Username {
			return ErrDuplicate
		}
	}
	if _, ok := m.db.users[u.ID]; ok {
		return ErrDuplicate
	}
	m.db.users[u.ID] = &memUser{seq: m.db.next(), v: *cloneUser(*u)}
	return nil
}

type memoryPersons struct{ db *memoryDB }

func (m *memoryPersons) List(_ context.Context, q model.ListQuery) (*model.Page[model.PersonRow], error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()

	rows := make([]*memPerson, 0, len(m.db.persons))
	for _, p := range m.db.persons {
		if strings.Contains(p.v.FirstName, q.Search) || strings.Contains(p.v.LastName, q.Search) {
			rows = append(rows, p)
		}
	}
	less := personLess(q.Sort)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if less != nil {
			if c := less(a.v, b.v); c != 0 {
				return (c < 0) != q.Desc
			}
		}
		return a.seq < b.seq
	})

	total := len(rows)
	rows = paginate(rows, q.Skip, q.Limit)
	data := make([]model.PersonRow, 0, len(rows))
	for _, r := range rows {
		data = append(data, model.PersonRow{Person: r.v, Projects: m.projectCount(r.v.ID)})
	}
	return &model.Page[model.PersonRow]{Total: total, Data: data}, nil
}

func (m *memoryPersons) projectCount(id string) int {
	n := 0
	for _, p := range m.db.projects {
		for _, c := range p.v.ContractorIDs {
			if c == id {
				n++
				break
			}
		}
	}
	return n
}

func personLess(field string) func(a, b model.Person) int {
	if _, ok := personSortColumns[field]; !ok {
		return nil
	}
	return func(a, b model.Person) int {
		switch field {
		case "firstName":
			return strings.Compare(a.FirstName, b.FirstName)
		case "lastName":
			return strings.Compare(a.LastName, b.LastName)
		default:
			return a.BirthDate.Compare(b.BirthDate.Time)
		}
	}
}

func (m *memoryPersons) Get(_ context.Context, id string) (*model.Person, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()
	p, ok := m.db.persons[id]
	if !ok {
		return nil, ErrNotFound
	}
	v := p.v
	return &v, nil
}

func (m *memoryPersons) Create(_ context.Context, p *model.Person) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.persons[p.ID]; ok {
		return ErrDuplicate
	}
	m.db.persons[p.ID] = &memPerson{seq: m.db.next(), v: *p}
	return nil
}

func (m *memoryPersons) Update(_ context.Context, p *model.Person) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	row, ok := m.db.persons[p.ID]
	if !ok {
		return ErrNotFound
	}
	row.v = *p
	return nil
}

func (m *memoryPersons) Delete(_ context.Context, id string) (*model.Person, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	row, ok := m.db.persons[id]
	if !ok {
		return nil, ErrNotFound
	}
	for _, p := range m.db.projects {
		kept := p.v.ContractorIDs[:0]
		for _, c := range p.v.ContractorIDs {
			if c != id {
				kept = append(kept, c)
			}
		}
		p.v.ContractorIDs = kept
	}
	delete(m.db.persons, id)
	v := row.v
	return &v, nil
}

type memoryProjects struct{ db *memoryDB }

func (m *memoryProjects) List(_ context.Context, q model.ListQuery) (*model.Page[model.ProjectRow], error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()

	rows := make([]*memProject, 0, len(m.db.projects))
	for _, p := range m.db.projects {
		if strings.Contains(p.v.Name, q.Search) {
			rows = append(rows, p)
		}
	}
	less := projectLess(q.Sort)
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if less != nil {
			if c := less(a.v, b.v); c != 0 {
				return (c < 0) != q.Desc
			}
		}
		return a.seq < b.seq
	})

	total := len(rows)
	rows = paginate(rows, q.Skip, q.Limit)
	data := make([]model.ProjectRow, 0, len(rows))
	for _, r := range rows {
		row := model.ProjectRow{Project: *cloneProject(r.v), Contractors: []string{}}
		for _, id := range r.v.ContractorIDs {
			if pe, ok := m.db.persons[id]; ok {
				row.Contractors = append(row.Contractors, pe.v.Initials())
			}
		}
		row.Normalize()
		data = append(data, row)
	}
	return &model.Page[model.ProjectRow]{Total: total, Data: data}, nil
}

// 空结束日期排在最前
func projectLess(field string) func(a, b model.Project) int {
	if _, ok := projectSortColumns[field]; !ok {
		return nil
	}
	return func(a, b model.Project) int {
		switch field {
		case "name":
			return strings.Compare(a.Name, b.Name)
		case "startDate":
			return a.StartDate.Compare(b.StartDate.Time)
		default:
			switch {
			case a.EndDate == nil && b.EndDate == nil:
				return 0
			case a.EndDate == nil:
				return -1
			case b.EndDate == nil:
				return 1
			}
			return a.EndDate.Compare(b.EndDate.Time)
		}
	}
}

func (m *memoryProjects) All(_ context.Context) ([]*model.Project, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()
	rows := make([]*memProject, 0, len(m.db.projects))
	for _, p := range m.db.projects {
		rows = append(rows, p)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })
	out := make([]*model.Project, len(rows))
	for i, r := range rows {
		out[i] = cloneProject(r.v)
	}
	return out, nil
}

func (m *memoryProjects) Get(_ context.Context, id string) (*model.Project, error) {
	m.db.mu.RLock()
	defer m.db.mu.RUnlock()
	p, ok := m.db.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneProject(p.v), nil
}

func (m *memoryProjects) Create(_ context.Context, p *model.Project) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.projects[p.ID]; ok {
		return ErrDuplicate
	}
	m.db.projects[p.ID] = &memProject{seq: m.db.next(), v: *cloneProject(*p)}
	return nil
}

func (m *memoryProjects) Update(_ context.Context, p *model.Project) error {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	row, ok := m.db.projects[p.ID]
	if !ok {
		return ErrNotFound
	}
	row.v = *cloneProject(*p)
	return nil
}

func (m *memoryProjects) SetTasks(_ context.Context, id string, tasks []model.Task) (*model.Project, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	row, ok := m.db.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	next := row.v
	next.Tasks = tasks
	row.v = *cloneProject(next)
	return cloneProject(row.v), nil
}

func (m *memoryProjects) Delete(_ context.Context, id string) (*model.Project, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	row, ok := m.db.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.db.projects, id)
	return cloneProject(row.v), nil
}
