package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/onboardiq/onboardiq/internal/domain"
)

// KnowledgeSourceRepository reads bounded pages of knowledge rows from
// the structured store, one category at a time.
type KnowledgeSourceRepository struct {
	pool *pgxpool.Pool
}

func NewKnowledgeSourceRepository(pool *pgxpool.Pool) *KnowledgeSourceRepository {
	return &KnowledgeSourceRepository{pool: pool}
}

var categoryQueries = map[domain.RecordType]string{
	domain.RecordTypeOrganization: `
		SELECT id, name, domain, plan, status, created_at
		FROM organizations
		ORDER BY created_at
		LIMIT $1`,
	domain.RecordTypeIntegration: `
		SELECT id, name, type, status, auth_type, last_sync_at
		FROM integrations
		ORDER BY created_at
		LIMIT $1`,
	domain.RecordTypeResource: `
		SELECT id, name, type, status, url, last_synced_at
		FROM resources
		ORDER BY created_at
		LIMIT $1`,
}

// ListCategory returns up to limit rows of a category as column-name
// keyed string maps. NULL columns come back as empty strings.
func (r *KnowledgeSourceRepository) ListCategory(ctx context.Context, category domain.RecordType, limit int) ([]map[string]string, error) {
	query, ok := categoryQueries[category]
	if !ok {
		return nil, fmt.Errorf("no source query for category %q", category)
	}

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	results := make([]map[string]string, 0, limit)
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}

		row := make(map[string]string, len(fields))
		for i, fd := range fields {
			row[fd.Name] = stringifyColumn(values[i])
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

func stringifyColumn(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	case [16]byte:
		return uuid.UUID(val).String()
	default:
		return fmt.Sprint(val)
	}
}
