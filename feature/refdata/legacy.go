package refdata

import (
	"sort"

	"ticket-etl/core/remote"
)

// ReferenceKeys translates the deprecated wide incident row shape, where
// reference fields carry embedded {"value", "link"} objects, into plain key
// sets per reference type. The result maps descriptor name to sorted unique
// keys and feeds the missing-reference backfill.
func ReferenceKeys(rows []remote.Row) map[string][]string {
	sets := make(map[string]map[string]struct{}, len(Descriptors))
	for _, desc := range Descriptors {
		sets[desc.Name] = make(map[string]struct{})
	}

	for _, row := range rows {
		for _, desc := range Descriptors {
			for _, column := range desc.IncidentRefColumns {
				key := flatten(row[column])
				if key == "" {
					continue
				}
				sets[desc.Name][key] = struct{}{}
			}
		}
	}

	result := make(map[string][]string, len(sets))
	for name, set := range sets {
		keys := make([]string, 0, len(set))
		for k := range set {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		result[name] = keys
	}
	return result
}
