package refdata

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"
)

// MissingIncidentRefs mines the incident table for keys that reference the
// descriptor's type but have no local row yet. The result is deduplicated
// and sorted for stable processing order.
func MissingIncidentRefs(ctx context.Context, db *gorm.DB, desc Descriptor) ([]string, error) {
	seen := make(map[string]struct{})
	for _, column := range desc.IncidentRefColumns {
		var keys []string
		err := db.WithContext(ctx).
			Table("incident").
			Where(fmt.Sprintf("%s IS NOT NULL AND %s <> ''", column, column)).
			Where(fmt.Sprintf("%s NOT IN (?)", column),
				db.Table(desc.Table).Select("sys_id")).
			Distinct().
			Pluck(column, &keys).Error
		if err != nil {
			return nil, fmt.Errorf("failed to mine incident.%s references: %w", column, err)
		}
		for _, k := range keys {
			seen[k] = struct{}{}
		}
	}

	missing := make([]string, 0, len(seen))
	for k := range seen {
		missing = append(missing, k)
	}
	sort.Strings(missing)
	return missing, nil
}
