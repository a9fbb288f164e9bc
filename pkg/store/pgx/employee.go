package pgx

import (
	"context"
	"errors"
	"fmt"

	"github.com/nwsirlp/skillgraph/pkg/common"
	"github.com/nwsirlp/skillgraph/pkg/store"

	pgxv5 "github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
)

const upsertEmployeeSQL = `
INSERT INTO employees (id, name, department, role, bio, years_experience, embedding)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (id) DO UPDATE
SET name             = EXCLUDED.name,
    department       = EXCLUDED.department,
    role             = EXCLUDED.role,
    bio              = EXCLUDED.bio,
    years_experience = EXCLUDED.years_experience,
    embedding        = COALESCE(EXCLUDED.embedding, employees.embedding);
`

const selectEmployeeSQL = `
SELECT id, name, department, role, bio, years_experience, embedding
FROM employees
WHERE id = $1;
`

const listEmployeesSQL = `
SELECT id, name, department, role, bio, years_experience, embedding
FROM employees
WHERE ($1 = '' OR department = $1)
  AND ($2 = '' OR role = $2)
ORDER BY seq;
`

const deleteEmployeeSQL = `
DELETE FROM employees WHERE id = $1;
`

// employeeUpsertChunk keeps bulk writes under the Postgres parameter limit.
const employeeUpsertChunk = 200

func embeddingParam(embedding []float32) any {
	if len(embedding) == 0 {
		return nil
	}
	return pgvector.NewVector(embedding)
}

func embeddingValue(v *pgvector.Vector) []float32 {
	if v == nil {
		return nil
	}
	return v.Slice()
}

func (s *Store) SaveEmployee(ctx context.Context, employee *common.Employee) error {
	if employee == nil || employee.ID == "" {
		return fmt.Errorf("employee id is empty")
	}

	_, err := s.conn.Exec(ctx, upsertEmployeeSQL,
		employee.ID,
		employee.Name,
		employee.Department,
		employee.Role,
		employee.Bio,
		employee.YearsExperience,
		embeddingParam(employee.Embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to save employee %s: %w", employee.ID, err)
	}
	return nil
}

func (s *Store) SaveEmployees(ctx context.Context, employees []common.Employee) error {
	return store.ChunkRange(len(employees), employeeUpsertChunk, func(start, end int) error {
		tx, err := s.conn.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback(ctx)

		for i := start; i < end; i++ {
			employee := employees[i]
			_, err := tx.Exec(ctx, upsertEmployeeSQL,
				employee.ID,
				employee.Name,
				employee.Department,
				employee.Role,
				employee.Bio,
				employee.YearsExperience,
				embeddingParam(employee.Embedding),
			)
			if err != nil {
				return fmt.Errorf("failed to save employee %s: %w", employee.ID, err)
			}
		}
		return tx.Commit(ctx)
	})
}

func scanEmployee(row pgxv5.Row) (*common.Employee, error) {
	var employee common.Employee
	var embedding *pgvector.Vector
	err := row.Scan(
		&employee.ID,
		&employee.Name,
		&employee.Department,
		&employee.Role,
		&employee.Bio,
		&employee.YearsExperience,
		&embedding,
	)
	if err != nil {
		return nil, err
	}
	employee.Embedding = embeddingValue(embedding)
	return &employee, nil
}

func (s *Store) GetEmployee(ctx context.Context, id string) (*common.Employee, error) {
	employee, err := scanEmployee(s.conn.QueryRow(ctx, selectEmployeeSQL, id))
	if err != nil {
		if errors.Is(err, pgxv5.ErrNoRows) {
			return nil, fmt.Errorf("employee %s: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get employee %s: %w", id, err)
	}
	return employee, nil
}

func (s *Store) ListEmployees(ctx context.Context, filter store.EmployeeFilter) ([]common.Employee, error) {
	rows, err := s.conn.Query(ctx, listEmployeesSQL, filter.Department, filter.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var out []common.Employee
	for rows.Next() {
		employee, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		out = append(out, *employee)
	}
	return out, rows.Err()
}

func (s *Store) DeleteEmployee(ctx context.Context, id string) error {
	tag, err := s.conn.Exec(ctx, deleteEmployeeSQL, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("employee %s: %w", id, store.ErrNotFound)
	}
	return nil
}
