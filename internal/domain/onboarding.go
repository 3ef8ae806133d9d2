package domain

import (
	"strings"
	"time"
)

// Role is the enumerated set of onboarding roles a plan can target.
type Role string

const (
	RoleFrontendDeveloper Role = "frontend_developer"
	RoleBackendDeveloper  Role = "backend_developer"
	RoleDataAnalyst       Role = "data_analyst"
	RoleDevOpsEngineer    Role = "devops_engineer"
	RoleGeneral           Role = "general"
)

// roleAliases maps accepted spellings to their canonical role.
var roleAliases = map[string]Role{
	"frontend_developer": RoleFrontendDeveloper,
	"frontend developer": RoleFrontendDeveloper,
	"backend_developer":  RoleBackendDeveloper,
	"backend developer":  RoleBackendDeveloper,
	"data_analyst":       RoleDataAnalyst,
	"data analyst":       RoleDataAnalyst,
	"devops_engineer":    RoleDevOpsEngineer,
	"devops engineer":    RoleDevOpsEngineer,
	"general":            RoleGeneral,
}

// ParseRole resolves a free-form role string to a canonical Role,
// defaulting to RoleGeneral for anything unknown.
func ParseRole(s string) Role {
	if role, ok := roleAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return role
	}
	return RoleGeneral
}

// TaskTemplate is one step of a role's onboarding plan.
type TaskTemplate struct {
	Title        string `json:"title"`
	DurationDays int    `json:"duration_days"`
}

// PlanTemplate is the per-role onboarding plan blueprint.
type PlanTemplate struct {
	DurationDays     int            `json:"duration_days"`
	FocusAreas       []string       `json:"focus_areas"`
	MentorAssignment bool           `json:"mentor_assignment"`
	Tasks            []TaskTemplate `json:"tasks"`
}

var planTemplates = map[Role]PlanTemplate{
	RoleFrontendDeveloper: {
		DurationDays:     14,
		FocusAreas:       []string{"React", "TypeScript", "CSS", "Testing"},
		MentorAssignment: true,
		Tasks: []TaskTemplate{
			{Title: "Set up IDE and local environment", DurationDays: 1},
			{Title: "Project setup and dependency installation", DurationDays: 2},
			{Title: "Study the codebase and architecture", DurationDays: 3},
			{Title: "First pull request with a component", DurationDays: 5},
		},
	},
	RoleBackendDeveloper: {
		DurationDays:     16,
		FocusAreas:       []string{"APIs", "Database", "Testing"},
		MentorAssignment: true,
		Tasks: []TaskTemplate{
			{Title: "Set up the local server", DurationDays: 1},
			{Title: "Connect to the database", DurationDays: 2},
			{Title: "Study the API architecture", DurationDays: 3},
			{Title: "Ship a first endpoint", DurationDays: 7},
		},
	},
	RoleDataAnalyst: {
		DurationDays:     10,
		FocusAreas:       []string{"SQL", "BI Tools", "Statistics"},
		MentorAssignment: true,
		Tasks: []TaskTemplate{
			{Title: "Access data warehouse and dashboards", DurationDays: 1},
			{Title: "Review reporting conventions", DurationDays: 2},
			{Title: "First analysis project", DurationDays: 5},
		},
	},
	RoleDevOpsEngineer: {
		DurationDays:     14,
		FocusAreas:       []string{"CI/CD", "Kubernetes", "Monitoring"},
		MentorAssignment: true,
		Tasks: []TaskTemplate{
			{Title: "Access infrastructure accounts", DurationDays: 1},
			{Title: "Review deployment pipelines", DurationDays: 3},
			{Title: "First infrastructure change", DurationDays: 5},
		},
	},
}

// defaultPlanTemplate covers roles without a dedicated blueprint.
var defaultPlanTemplate = PlanTemplate{
	DurationDays:     14,
	FocusAreas:       []string{"General"},
	MentorAssignment: true,
	Tasks: []TaskTemplate{
		{Title: "Meet the company", DurationDays: 1},
		{Title: "Learn the processes", DurationDays: 2},
		{Title: "Initial training", DurationDays: 3},
	},
}

// PlanForRole returns the onboarding plan blueprint for a role.
func PlanForRole(role Role) PlanTemplate {
	if plan, ok := planTemplates[role]; ok {
		return plan
	}
	return defaultPlanTemplate
}

// TaskStatus tracks a single onboarding task.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// IsValidTaskStatus checks if a TaskStatus is a known variant.
func IsValidTaskStatus(s TaskStatus) bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

// Employee is a person going through onboarding.
type Employee struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            Role      `json:"role"`
	Department      string    `json:"department"`
	StartDate       string    `json:"start_date"`
	ManagerEmail    string    `json:"manager_email"`
	OverallProgress int       `json:"overall_progress"`
	CreatedAt       time.Time `json:"created_at"`
}

// OnboardingTask is a persisted task derived from a plan template.
type OnboardingTask struct {
	ID                 string     `json:"id"`
	EmployeeID         string     `json:"employee_id"`
	Title              string     `json:"title"`
	DurationDays       int        `json:"duration_days"`
	Priority           string     `json:"priority"`
	Status             TaskStatus `json:"status"`
	ProgressPercentage int        `json:"progress_percentage"`
	Notes              string     `json:"notes"`
	UpdatedAt          time.Time  `json:"updated_at"`
}
