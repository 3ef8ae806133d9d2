package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/onboardiq/onboardiq/internal/domain"
)

// DefaultPageLimit bounds how many rows are read per source category.
const DefaultPageLimit = 100

// KnowledgeSource reads bounded pages of rows from the external
// structured store, one category at a time.
type KnowledgeSource interface {
	ListCategory(ctx context.Context, category domain.RecordType, limit int) ([]map[string]string, error)
}

// categoryTemplate renders one source row into deterministic text and
// names the table the category is read from.
type categoryTemplate struct {
	table  string
	render func(row map[string]string) string
}

// sourceCategories is the ordered set of store categories the extractor
// reads. Order is fixed so extraction output is stable.
var sourceCategories = []domain.RecordType{
	domain.RecordTypeOrganization,
	domain.RecordTypeIntegration,
	domain.RecordTypeResource,
}

var categoryTemplates = map[domain.RecordType]categoryTemplate{
	domain.RecordTypeOrganization: {
		table: "organizations",
		render: func(row map[string]string) string {
			return fmt.Sprintf("Organization: %s\nDomain: %s\nPlan: %s\nStatus: %s\nCreated: %s",
				field(row, "name"), field(row, "domain"), field(row, "plan"),
				field(row, "status"), field(row, "created_at"))
		},
	},
	domain.RecordTypeIntegration: {
		table: "integrations",
		render: func(row map[string]string) string {
			return fmt.Sprintf("Integration: %s\nType: %s\nStatus: %s\nAuth type: %s\nLast synced: %s",
				field(row, "name"), field(row, "type"), field(row, "status"),
				field(row, "auth_type"), field(row, "last_sync_at"))
		},
	},
	domain.RecordTypeResource: {
		table: "resources",
		render: func(row map[string]string) string {
			return fmt.Sprintf("Resource: %s\nType: %s\nStatus: %s\nURL: %s\nLast synced: %s",
				field(row, "name"), field(row, "type"), field(row, "status"),
				field(row, "url"), field(row, "last_synced_at"))
		},
	},
}

// defaultTemplate covers categories without a dedicated renderer.
var defaultTemplate = categoryTemplate{
	table: "unknown",
	render: func(row map[string]string) string {
		return fmt.Sprintf("Record: %s", field(row, "name"))
	},
}

func templateFor(category domain.RecordType) categoryTemplate {
	if tpl, ok := categoryTemplates[category]; ok {
		return tpl
	}
	return defaultTemplate
}

func field(row map[string]string, key string) string {
	if v := strings.TrimSpace(row[key]); v != "" {
		return v
	}
	return "unknown"
}

// KnowledgeExtractor pulls rows from the knowledge store and normalizes
// them into text records, always followed by the built-in static guides.
type KnowledgeExtractor struct {
	source    KnowledgeSource
	pageLimit int
	now       func() time.Time
}

// NewKnowledgeExtractor creates a KnowledgeExtractor reading at most
// DefaultPageLimit rows per category.
func NewKnowledgeExtractor(source KnowledgeSource) *KnowledgeExtractor {
	return &KnowledgeExtractor{
		source:    source,
		pageLimit: DefaultPageLimit,
		now:       time.Now,
	}
}

// Extract reads every source category and renders each row into a
// knowledge record. A failing category is logged and skipped; only the
// store being entirely unreachable is an error. The static guides are
// always appended, so a successful extraction is never empty.
func (e *KnowledgeExtractor) Extract(ctx context.Context) ([]domain.KnowledgeRecord, error) {
	extractedAt := e.now().UTC()
	records := make([]domain.KnowledgeRecord, 0, 16)

	failed := 0
	var lastErr error
	for _, category := range sourceCategories {
		tpl := templateFor(category)

		rows, err := e.source.ListCategory(ctx, category, e.pageLimit)
		if err != nil {
			log.Printf("knowledge extraction: category %s failed, skipping: %v", category, err)
			failed++
			lastErr = err
			continue
		}

		for _, row := range rows {
			records = append(records, domain.KnowledgeRecord{
				Content:     tpl.render(row),
				Type:        category,
				SourceTable: tpl.table,
				SourceID:    row["id"],
				Name:        row["name"],
				ExtractedAt: extractedAt,
			})
		}
	}

	if failed == len(sourceCategories) {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeExternalService,
			"knowledge store unreachable", lastErr)
	}

	records = append(records, staticKnowledgeRecords(extractedAt)...)
	return records, nil
}

// staticKnowledgeRecords are the built-in guides every new employee needs,
// kept so the pipeline has content even with an empty store.
func staticKnowledgeRecords(extractedAt time.Time) []domain.KnowledgeRecord {
	guides := []struct {
		name    string
		content string
	}{
		{
			name: "onboarding_process",
			content: "Company onboarding process:\n" +
				"1. Day one - meet the team and learn the processes\n" +
				"2. Week 1 - set up the development environment\n" +
				"3. Week 2 - deep dive into the product architecture\n" +
				"4. Weeks 3-4 - first project and code review",
		},
		{
			name: "tech_stack",
			content: "Company technology stack:\n" +
				"- Frontend: React, TypeScript, Next.js\n" +
				"- Backend: Python, FastAPI, PostgreSQL\n" +
				"- Deploy: Docker, Kubernetes, AWS\n" +
				"- Documentation: Notion, Confluence\n" +
				"- Tasks: Jira, Linear",
		},
		{
			name: "code_review_process",
			content: "Code review process:\n" +
				"1. Open a pull request with a detailed description of the changes\n" +
				"2. Automated tests and CI/CD checks\n" +
				"3. At least two approvals from senior engineers\n" +
				"4. Resolve comments and merge to main",
		},
	}

	records := make([]domain.KnowledgeRecord, 0, len(guides))
	for _, g := range guides {
		records = append(records, domain.KnowledgeRecord{
			Content:     g.content,
			Type:        domain.RecordTypeStaticGuide,
			SourceTable: "system",
			Name:        g.name,
			ExtractedAt: extractedAt,
		})
	}
	return records
}
