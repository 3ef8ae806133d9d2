package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/onboardiq/onboardiq/internal/domain"
)

// OnboardingRepository persists employees and their onboarding tasks.
type OnboardingRepository struct {
	pool *pgxpool.Pool
}

func NewOnboardingRepository(pool *pgxpool.Pool) *OnboardingRepository {
	return &OnboardingRepository{pool: pool}
}

func (r *OnboardingRepository) CreateEmployee(ctx context.Context, emp *domain.Employee) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO employees (id, name, email, role, department, start_date, manager_email, overall_progress, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		emp.ID, emp.Name, emp.Email, emp.Role, emp.Department,
		emp.StartDate, emp.ManagerEmail, emp.OverallProgress, emp.CreatedAt,
	)
	return err
}

func (r *OnboardingRepository) GetEmployee(ctx context.Context, id string) (*domain.Employee, error) {
	var emp domain.Employee
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, email, role, department, start_date, manager_email, overall_progress, created_at
		 FROM employees WHERE id = $1`,
		id,
	).Scan(&emp.ID, &emp.Name, &emp.Email, &emp.Role, &emp.Department,
		&emp.StartDate, &emp.ManagerEmail, &emp.OverallProgress, &emp.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &emp, nil
}

func (r *OnboardingRepository) UpdateEmployeeProgress(ctx context.Context, id string, overallProgress int) error {
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE employees SET overall_progress = $1 WHERE id = $2`,
		overallProgress, id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrEmployeeNotFound
	}
	return nil
}

func (r *OnboardingRepository) CreateTasks(ctx context.Context, tasks []domain.OnboardingTask) error {
	for _, task := range tasks {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO onboarding_tasks (id, employee_id, title, duration_days, priority, status, progress_percentage, notes, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			task.ID, task.EmployeeID, task.Title, task.DurationDays, task.Priority,
			task.Status, task.ProgressPercentage, task.Notes, task.UpdatedAt,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *OnboardingRepository) ListTasks(ctx context.Context, employeeID string) ([]domain.OnboardingTask, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, employee_id, title, duration_days, priority, status, progress_percentage, notes, updated_at
		 FROM onboarding_tasks
		 WHERE employee_id = $1
		 ORDER BY updated_at, id`,
		employeeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.OnboardingTask
	for rows.Next() {
		var task domain.OnboardingTask
		if err := rows.Scan(&task.ID, &task.EmployeeID, &task.Title, &task.DurationDays,
			&task.Priority, &task.Status, &task.ProgressPercentage, &task.Notes, &task.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *OnboardingRepository) UpdateTask(ctx context.Context, task *domain.OnboardingTask) error {
	task.UpdatedAt = time.Now().UTC()
	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE onboarding_tasks
		 SET status = $1, progress_percentage = $2, notes = $3, updated_at = $4
		 WHERE id = $5 AND employee_id = $6`,
		task.Status, task.ProgressPercentage, task.Notes, task.UpdatedAt,
		task.ID, task.EmployeeID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrProgressNotFound
	}
	return nil
}
