package dao

import (
	"context"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lk2023060901/recordhub/app/recordhub/internal/model"
	"github.com/lk2023060901/recordhub/pkg/database/postgres"
	"github.com/lk2023060901/recordhub/pkg/logger"
)

const uniqueViolation = "23505"

// txRunner 事务执行，*postgres.Client 满足
type txRunner interface {
	Querier() postgres.Querier
	WithTx(ctx context.Context, fn func(q postgres.Querier) error) error
}

// NewPostgresSet 创建 PostgreSQL 存储的 DAO 集合
func NewPostgresSet(client *postgres.Client, l logger.Logger) *Set {
	l = l.Named("dao")
	return &Set{
		Users:    &pgUsers{db: client, logger: l},
		Persons:  &pgPersons{db: client, logger: l},
		Projects: &pgProjects{db: client, logger: l},
	}
}

func translate(err error) error {
	if errors.Is(err, postgres.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrDuplicate
	}
	return err
}

func orderBy(b sq.SelectBuilder, columns map[string]string, q model.ListQuery) sq.SelectBuilder {
	col, ok := columns[q.Sort]
	if ok {
		dir := " ASC NULLS FIRST"
		if q.Desc {
			dir = " DESC NULLS LAST"
		}
		b = b.OrderBy(col + dir)
	}
	b = b.OrderBy("created_at", "id")
	if q.Skip > 0 {
		b = b.Offset(uint64(q.Skip))
	}
	if q.Limit > 0 {
		b = b.Limit(uint64(q.Limit))
	}
	return b
}

type userRow struct {
	ID           string  `db:"id"`
	Username     string  `db:"username"`
	PasswordHash string  `db:"password_hash"`
	Roles        []int32 `db:"roles"`
}

func (r *userRow) toModel() *model.User {
	u := &model.User{ID: r.ID, Username: r.Username, PasswordHash: r.PasswordHash, Roles: model.RoleSet{}}
	for _, role := range r.Roles {
		u.Roles = append(u.Roles, model.Role(role))
	}
	return u
}

var userColumns = []string{"id", "username", "password_hash", "roles"}

type pgUsers struct {
	db     txRunner
	logger logger.Logger
}

func (d *pgUsers) List(ctx context.Context) ([]*model.User, error) {
	rows, err := postgres.QueryAll[userRow](ctx, d.db.Querier(),
		postgres.Builder().Select(userColumns...).From("users").OrderBy("created_at", "id"))
	if err != nil {
		return nil, err
	}
	out := make([]*model.User, len(rows))
	for i, r := range rows {
		out[i] = r.toModel()
	}
	return out, nil
}

func (d *pgUsers) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	row, err := postgres.QueryOne[userRow](ctx, d.db.Querier(),
		postgres.Builder().Select(userColumns...).From("users").Where(sq.Eq{"username": username}))
	if err != nil {
		return nil, translate(err)
	}
	return row.toModel(), nil
}

func (d *pgUsers) Create(ctx context.Context, u *model.User) error {
	roles := make([]int32, len(u.Roles))
	for i, r := range u.Roles {
		roles[i] = int32(r)
	}
	_, err := postgres.Exec(ctx, d.db.Querier(), postgres.Builder().Insert("users").
		Columns(userColumns...).Values(u.ID, u.Username, u.PasswordHash, roles))
	return translate(err)
}

type personRow struct {
	ID        string    `db:"id"`
	FirstName string    `db:"first_name"`
	LastName  string    `db:"last_name"`
	BirthDate time.Time `db:"birth_date"`
	Projects  int64     `db:"projects"`
}

func (r *personRow) toModel() model.Person {
	return model.Person{ID: r.ID, FirstName: r.FirstName, LastName: r.LastName, BirthDate: model.NewDate(r.BirthDate)}
}

var personColumns = []string{"id", "first_name", "last_name", "birth_date"}

func personSearch(search string) sq.Sqlizer {
	return sq.Or{
		sq.Expr("strpos(first_name, ?) > 0", search),
		sq.Expr("strpos(last_name, ?) > 0", search),
	}
}

// personListQueries 列表与计数语句
func personListQueries(q model.ListQuery) (sq.SelectBuilder, sq.SelectBuilder) {
	where := personSearch(q.Search)
	cols := append(append([]string{}, personColumns...),
		"(SELECT COUNT(*) FROM projects p WHERE persons.id = ANY(p.contractor_ids)) AS projects")
	data := orderBy(postgres.Builder().Select(cols...).From("persons").Where(where), personSortColumns, q)
	count := postgres.Builder().Select("COUNT(*)").From("persons").Where(where)
	return data, count
}

type pgPersons struct {
	db     txRunner
	logger logger.Logger
}

func (d *pgPersons) List(ctx context.Context, q model.ListQuery) (*model.Page[model.PersonRow], error) {
	dataQ, countQ := personListQueries(q)
	total, err := postgres.Count(ctx, d.db.Querier(), countQ)
	if err != nil {
		return nil, err
	}
	rows, err := postgres.QueryAll[personRow](ctx, d.db.Querier(), dataQ)
	if err != nil {
		return nil, err
	}
	page := &model.Page[model.PersonRow]{Total: int(total), Data: make([]model.PersonRow, 0, len(rows))}
	for _, r := range rows {
		page.Data = append(page.Data, model.PersonRow{Person: r.toModel(), Projects: int(r.Projects)})
	}
	return page, nil
}

func (d *pgPersons) Get(ctx context.Context, id string) (*model.Person, error) {
	row, err := postgres.QueryOne[personRow](ctx, d.db.Querier(),
		postgres.Builder().Select(personColumns...).From("persons").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, translate(err)
	}
	p := row.toModel()
	return &p, nil
}

func (d *pgPersons) Create(ctx context.Context, p *model.Person) error {
	_, err := postgres.Exec(ctx, d.db.Querier(), postgres.Builder().Insert("persons").
		Columns(personColumns...).Values(p.ID, p.FirstName, p.LastName, p.BirthDate.Time))
	return translate(err)
}

func (d *pgPersons) Update(ctx context.Context, p *model.Person) error {
	n, err := postgres.Exec(ctx, d.db.Querier(), postgres.Builder().Update("persons").
		SetMap(map[string]any{
			"first_name": p.FirstName,
			"last_name":  p.LastName,
			"birth_date": p.BirthDate.Time,
		}).Where(sq.Eq{"id": p.ID}))
	if err != nil {
		return translate(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// personDeleteStatements 先从项目中移除人员再删除人员
func personDeleteStatements(id string) (sq.UpdateBuilder, sq.DeleteBuilder) {
	pull := postgres.Builder().Update("projects").
		Set("contractor_ids", sq.Expr("array_remove(contractor_ids, ?::text)", id)).
		Where(sq.Expr("?::text = ANY(contractor_ids)", id))
	del := postgres.Builder().Delete("persons").Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, first_name, last_name, birth_date")
	return pull, del
}

func (d *pgPersons) Delete(ctx context.Context, id string) (*model.Person, error) {
	pull, del := personDeleteStatements(id)
	var deleted *model.Person
	err := d.db.WithTx(ctx, func(q postgres.Querier) error {
		n, err := postgres.Exec(ctx, q, pull)
		if err != nil {
			return err
		}
		row, err := postgres.QueryOne[personRow](ctx, q, del)
		if err != nil {
			return err
		}
		p := row.toModel()
		deleted = &p
		d.logger.DebugContext(ctx, "person deleted", "person_id", id, "projects_updated", n)
		return nil
	})
	if err != nil {
		return nil, translate(err)
	}
	return deleted, nil
}

type projectRow struct {
	ID            string     `db:"id"`
	Name          string     `db:"name"`
	StartDate     time.Time  `db:"start_date"`
	EndDate       *time.Time `db:"end_date"`
	ContractorIDs []string   `db:"contractor_ids"`
	Tasks         []byte     `db:"tasks"`
	Contractors   []string   `db:"contractors"`
}

func (r *projectRow) toModel() (*model.Project, error) {
	p := &model.Project{
		ID:            r.ID,
		Name:          r.Name,
		StartDate:     model.NewDate(r.StartDate),
		ContractorIDs: r.ContractorIDs,
	}
	if r.EndDate != nil {
		end := model.NewDate(*r.EndDate)
		p.EndDate = &end
	}
	if len(r.Tasks) > 0 {
		if err := json.Unmarshal(r.Tasks, &p.Tasks); err != nil {
			return nil, errors.Wrapf(err, "decode tasks of project %s", r.ID)
		}
	}
	p.Normalize()
	return p, nil
}

var projectColumns = []string{"id", "name", "start_date", "end_date", "contractor_ids", "tasks"}

func nullableDate(d *model.Date) any {
	if d == nil {
		return nil
	}
	return d.Time
}

func encodeTasks(tasks []model.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	b, err := json.Marshal(tasks)
	return b, errors.Wrap(err, "encode tasks")
}

func projectListQueries(q model.ListQuery) (sq.SelectBuilder, sq.SelectBuilder) {
	where := sq.Expr("strpos(name, ?) > 0", q.Search)
	cols := append(append([]string{}, projectColumns...),
		"ARRAY(SELECT LEFT(pe.first_name, 1) || LEFT(pe.last_name, 1) FROM persons pe "+
			"WHERE pe.id = ANY(projects.contractor_ids) ORDER BY array_position(projects.contractor_ids, pe.id)) AS contractors")
	data := orderBy(postgres.Builder().Select(cols...).From("projects").Where(where), projectSortColumns, q)
	count := postgres.Builder().Select("COUNT(*)").From("projects").Where(where)
	return data, count
}

type pgProjects struct {
	db     txRunner
	logger logger.Logger
}

func (d *pgProjects) List(ctx context.Context, q model.ListQuery) (*model.Page[model.ProjectRow], error) {
	dataQ, countQ := projectListQueries(q)
	total, err := postgres.Count(ctx, d.db.Querier(), countQ)
	if err != nil {
		return nil, err
	}
	rows, err := postgres.QueryAll[projectRow](ctx, d.db.Querier(), dataQ)
	if err != nil {
		return nil, err
	}
	page := &model.Page[model.ProjectRow]{Total: int(total), Data: make([]model.ProjectRow, 0, len(rows))}
	for _, r := range rows {
		p, err := r.toModel()
		if err != nil {
			return nil, err
		}
		row := model.ProjectRow{Project: *p, Contractors: r.Contractors}
		if row.Contractors == nil {
			row.Contractors = []string{}
		}
		page.Data = append(page.Data, row)
	}
	return page, nil
}

func (d *pgProjects) All(ctx context.Context) ([]*model.Project, error) {
	rows, err := postgres.QueryAll[projectRow](ctx, d.db.Querier(),
		postgres.Builder().Select(projectColumns...).From("projects").OrderBy("created_at", "id"))
	if err != nil {
		return nil, err
	}
	out := make([]*model.Project, 0, len(rows))
	for _, r := range rows {
		p, err := r.toModel()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (d *pgProjects) Get(ctx context.Context, id string) (*model.Project, error) {
	row, err := postgres.QueryOne[projectRow](ctx, d.db.Querier(),
		postgres.Builder().Select(projectColumns...).From("projects").Where(sq.Eq{"id": id}))
	if err != nil {
		return nil, translate(err)
	}
	return row.toModel()
}

func (d *pgProjects) Create(ctx context.Context, p *model.Project) error {
	tasks, err := encodeTasks(p.Tasks)
	if err != nil {
		return err
	}
	_, err = postgres.Exec(ctx, d.db.Querier(), postgres.Builder().Insert("projects").
		Columns(projectColumns...).
		Values(p.ID, p.Name, p.StartDate.Time, nullableDate(p.EndDate), nonNil(p.ContractorIDs), tasks))
	return translate(err)
}

func (d *pgProjects) Update(ctx context.Context, p *model.Project) error {
	tasks, err := encodeTasks(p.Tasks)
	if err != nil {
		return err
	}
	n, err := postgres.Exec(ctx, d.db.Querier(), postgres.Builder().Update("projects").
		SetMap(map[string]any{
			"name":           p.Name,
			"start_date":     p.StartDate.Time,
			"end_date":       nullableDate(p.EndDate),
			"contractor_ids": nonNil(p.ContractorIDs),
			"tasks":          tasks,
		}).Where(sq.Eq{"id": p.ID}))
	if err != nil {
		return translate(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (d *pgProjects) SetTasks(ctx context.Context, id string, tasks []model.Task) (*model.Project, error) {
	encoded, err := encodeTasks(tasks)
	if err != nil {
		return nil, err
	}
	row, err := postgres.QueryOne[projectRow](ctx, d.db.Querier(), postgres.Builder().Update("projects").
		Set("tasks", encoded).Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, name, start_date, end_date, contractor_ids, tasks"))
	if err != nil {
		return nil, translate(err)
	}
	return row.toModel()
}

func (d *pgProjects) Delete(ctx context.Context, id string) (*model.Project, error) {
	row, err := postgres.QueryOne[projectRow](ctx, d.db.Querier(), postgres.Builder().Delete("projects").
		Where(sq.Eq{"id": id}).
		Suffix("RETURNING id, name, start_date, end_date, contractor_ids, tasks"))
	if err != nil {
		return nil, translate(err)
	}
	return row.toModel()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
