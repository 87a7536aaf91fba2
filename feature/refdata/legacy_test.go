package refdata

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ticket-etl/core/remote"
)

func TestReferenceKeysFromWideRows(t *testing.T) {
	rows := []remote.Row{
		{
			"sys_id":      "i1",
			"opened_by":   map[string]any{"value": "u1", "link": "https://x/sys_user/u1"},
			"resolved_by": "u2",
			"caller_id":   "",
			"company":     map[string]any{"value": "c1"},
			"department":  "d1",
		},
		{
			"sys_id":    "i2",
			"opened_by": "u1",
			"company":   "c2",
		},
	}

	refs := ReferenceKeys(rows)

	assert.Equal(t, []string{"u1", "u2"}, refs[Users.Name])
	assert.Equal(t, []string{"c1", "c2"}, refs[Companies.Name])
	assert.Equal(t, []string{"d1"}, refs[Departments.Name])
}

func TestReferenceKeysEmpty(t *testing.T) {
	refs := ReferenceKeys(nil)

	assert.Empty(t, refs[Users.Name])
	assert.Empty(t, refs[Companies.Name])
	assert.Empty(t, refs[Departments.Name])
}
