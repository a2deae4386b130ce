package repository

import (
	"context"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/fieldops/constants"
	"github.com/joseph-ayodele/fieldops/internal/common"
	"github.com/joseph-ayodele/fieldops/internal/entity"
)

const employeesTable = "employees"

var employeeColumns = []string{"id", "name", "hourly_rate", "role", "created_at"}

type EmployeeRepository interface {
	Create(ctx context.Context, name string, hourlyRate float64, role constants.EmployeeRole) (*entity.Employee, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Employee, error)
	List(ctx context.Context) ([]*entity.Employee, error)
}

type employeeRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewEmployeeRepository(db *DB, logger *slog.Logger) EmployeeRepository {
	return &employeeRepository{
		db:     db,
		logger: logger,
	}
}

func (r *employeeRepository) Create(ctx context.Context, name string, hourlyRate float64, role constants.EmployeeRole) (*entity.Employee, error) {
	e := &entity.Employee{
		ID:         uuid.New(),
		Name:       name,
		HourlyRate: hourlyRate,
		Role:       role,
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
	q, args := r.db.builder().Insert(employeesTable).
		Columns(employeeColumns...).
		Values(e.ID.String(), e.Name, e.HourlyRate, string(e.Role), toMillis(e.CreatedAt)).
		Query()
	if _, err := exec(ctx, r.db.Driver, q, args); err != nil {
		r.logger.Error("failed to create employee", "name", name, "error", err)
		return nil, common.DatabaseError("failed to create employee", err)
	}
	return e, nil
}

func (r *employeeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Employee, error) {
	q, args := r.db.builder().Select(employeeColumns...).
		From(entsql.Table(employeesTable)).
		Where(entsql.EQ("id", id.String())).
		Query()
	var out *entity.Employee
	err := query(ctx, r.db.Driver, q, args, func(rows *entsql.Rows) error {
		e, err := scanEmployee(rows)
		out = e
		return err
	})
	if err != nil {
		r.logger.Error("failed to get employee", "employee_id", id, "error", err)
		return nil, common.DatabaseError("failed to get employee", err)
	}
	if out == nil {
		return nil, common.NotFoundErrorf("employee %s not found", id)
	}
	return out, nil
}

func (r *employeeRepository) List(ctx context.Context) ([]*entity.Employee, error) {
	q, args := r.db.builder().Select(employeeColumns...).
		From(entsql.Table(employeesTable)).
		OrderBy("created_at", "id").
		Query()
	var out []*entity.Employee
	err := query(ctx, r.db.Driver, q, args, func(rows *entsql.Rows) error {
		e, err := scanEmployee(rows)
		if err == nil {
			out = append(out, e)
		}
		return err
	})
	if err != nil {
		r.logger.Error("failed to list employees", "error", err)
		return nil, common.DatabaseError("failed to list employees", err)
	}
	return out, nil
}

func scanEmployee(rows *entsql.Rows) (*entity.Employee, error) {
	var (
		e       entity.Employee
		id      string
		role    string
		created int64
	)
	if err := rows.Scan(&id, &e.Name, &e.HourlyRate, &role, &created); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	e.ID = parsed
	e.Role = constants.EmployeeRole(role)
	e.CreatedAt = fromMillis(created)
	return &e, nil
}
