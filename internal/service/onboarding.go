package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/onboardiq/onboardiq/internal/domain"
)

// OnboardingStore persists employees and their onboarding tasks.
type OnboardingStore interface {
	CreateEmployee(ctx context.Context, emp *domain.Employee) error
	GetEmployee(ctx context.Context, id string) (*domain.Employee, error)
	UpdateEmployeeProgress(ctx context.Context, id string, overallProgress int) error
	CreateTasks(ctx context.Context, tasks []domain.OnboardingTask) error
	ListTasks(ctx context.Context, employeeID string) ([]domain.OnboardingTask, error)
	UpdateTask(ctx context.Context, task *domain.OnboardingTask) error
}

// CreatePlanInput is the request to start onboarding a new employee.
type CreatePlanInput struct {
	Name         string
	Email        string
	Role         string
	Department   string
	StartDate    string
	ManagerEmail string
}

// OnboardingPlan is a created plan: the employee record plus the tasks
// instantiated from their role's blueprint.
type OnboardingPlan struct {
	Employee         *domain.Employee        `json:"employee"`
	DurationDays     int                     `json:"duration_days"`
	FocusAreas       []string                `json:"focus_areas"`
	MentorAssignment bool                    `json:"mentor_assignment"`
	Tasks            []domain.OnboardingTask `json:"tasks"`
}

// ProgressReport summarizes an employee's onboarding state.
type ProgressReport struct {
	Employee        *domain.Employee        `json:"employee"`
	Tasks           []domain.OnboardingTask `json:"tasks"`
	OverallProgress int                     `json:"overall_progress"`
	CompletedTasks  int                     `json:"completed_tasks"`
	TotalTasks      int                     `json:"total_tasks"`
}

// OnboardingService creates role-based onboarding plans and tracks
// progress through them.
type OnboardingService struct {
	store OnboardingStore
	now   func() time.Time
}

func NewOnboardingService(store OnboardingStore) *OnboardingService {
	return &OnboardingService{
		store: store,
		now:   time.Now,
	}
}

// CreatePlan registers an employee and instantiates the task list from
// their role's blueprint. Unknown roles fall back to the general plan.
func (s *OnboardingService) CreatePlan(ctx context.Context, input CreatePlanInput) (*OnboardingPlan, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "employee name is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "employee email is required")
	}

	now := s.now().UTC()
	emp := &domain.Employee{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.TrimSpace(input.Email),
		Role:         domain.ParseRole(input.Role),
		Department:   strings.TrimSpace(input.Department),
		StartDate:    strings.TrimSpace(input.StartDate),
		ManagerEmail: strings.TrimSpace(input.ManagerEmail),
		CreatedAt:    now,
	}
	if err := s.store.CreateEmployee(ctx, emp); err != nil {
		return nil, err
	}

	blueprint := domain.PlanForRole(emp.Role)
	tasks := make([]domain.OnboardingTask, 0, len(blueprint.Tasks))
	for i, tpl := range blueprint.Tasks {
		priority := "medium"
		if i == 0 {
			priority = "high"
		}
		tasks = append(tasks, domain.OnboardingTask{
			ID:           uuid.NewString(),
			EmployeeID:   emp.ID,
			Title:        tpl.Title,
			DurationDays: tpl.DurationDays,
			Priority:     priority,
			Status:       domain.TaskStatusPending,
			UpdatedAt:    now,
		})
	}
	if err := s.store.CreateTasks(ctx, tasks); err != nil {
		return nil, err
	}

	return &OnboardingPlan{
		Employee:         emp,
		DurationDays:     blueprint.DurationDays,
		FocusAreas:       blueprint.FocusAreas,
		MentorAssignment: blueprint.MentorAssignment,
		Tasks:            tasks,
	}, nil
}

// GetProgress returns the employee's tasks and overall progress.
func (s *OnboardingService) GetProgress(ctx context.Context, employeeID string) (*ProgressReport, error) {
	emp, err := s.store.GetEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.store.ListTasks(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	completed := 0
	for _, task := range tasks {
		if task.Status == domain.TaskStatusCompleted {
			completed++
		}
	}

	return &ProgressReport{
		Employee:        emp,
		Tasks:           tasks,
		OverallProgress: overallProgress(tasks),
		CompletedTasks:  completed,
		TotalTasks:      len(tasks),
	}, nil
}

// UpdateTaskInput is a progress update for one onboarding task.
type UpdateTaskInput struct {
	EmployeeID string
	TaskID     string
	Status     domain.TaskStatus
	Progress   int
	Notes      string
}

// UpdateProgress applies a task update and recomputes the employee's
// overall progress. Completing a task forces its progress to 100.
func (s *OnboardingService) UpdateProgress(ctx context.Context, input UpdateTaskInput) (*ProgressReport, error) {
	if !domain.IsValidTaskStatus(input.Status) {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "unknown task status")
	}
	if input.Progress < 0 || input.Progress > 100 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "task progress must be between 0 and 100")
	}

	if _, err := s.store.GetEmployee(ctx, input.EmployeeID); err != nil {
		return nil, err
	}

	progress := input.Progress
	if input.Status == domain.TaskStatusCompleted {
		progress = 100
	}

	task := &domain.OnboardingTask{
		ID:                 input.TaskID,
		EmployeeID:         input.EmployeeID,
		Status:             input.Status,
		ProgressPercentage: progress,
		Notes:              input.Notes,
	}
	if err := s.store.UpdateTask(ctx, task); err != nil {
		return nil, err
	}

	tasks, err := s.store.ListTasks(ctx, input.EmployeeID)
	if err != nil {
		return nil, err
	}
	overall := overallProgress(tasks)
	if err := s.store.UpdateEmployeeProgress(ctx, input.EmployeeID, overall); err != nil {
		return nil, err
	}

	return s.GetProgress(ctx, input.EmployeeID)
}

// overallProgress is the mean task progress, rounded down.
func overallProgress(tasks []domain.OnboardingTask) int {
	if len(tasks) == 0 {
		return 0
	}
	total := 0
	for _, task := range tasks {
		total += task.ProgressPercentage
	}
	return total / len(tasks)
}
