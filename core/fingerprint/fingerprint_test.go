package fingerprint

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute_Deterministic(t *testing.T) {
	fields := map[string]string{
		"name":    "ACME Corp",
		"city":    "Lisbon",
		"active":  "true",
		"website": "https://acme.example",
	}

	first := Compute(fields)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Compute(fields))
	}
	assert.Len(t, first, 40) // sha1 hex
}

func TestCompute_OrderIndependent(t *testing.T) {
	// Maps built in different insertion orders must hash identically.
	a := map[string]string{}
	a["name"] = "ACME Corp"
	a["city"] = "Lisbon"
	a["phone"] = "+351 000 000 000"

	b := map[string]string{}
	b["phone"] = "+351 000 000 000"
	b["city"] = "Lisbon"
	b["name"] = "ACME Corp"

	assert.Equal(t, Compute(a), Compute(b))
}

func TestCompute_DomainFieldChange(t *testing.T) {
	base := map[string]string{"name": "ACME Corp", "city": "Lisbon"}
	changed := map[string]string{"name": "ACME Corp", "city": "Porto"}

	assert.NotEqual(t, Compute(base), Compute(changed))
}

func TestCompute_IgnoresBookkeepingFields(t *testing.T) {
	base := map[string]string{
		"name":           "ACME Corp",
		"sys_updated_on": "2024-01-01 10:00:00",
		"sys_created_on": "2020-01-01 10:00:00",
		"etl_hash":       "stale",
		"etl_updated_at": "2024-01-02 10:00:00",
	}
	touched := map[string]string{
		"name":           "ACME Corp",
		"sys_updated_on": "2024-06-30 23:59:59",
		"sys_created_on": "2020-01-01 10:00:00",
		"etl_hash":       "different",
		"etl_updated_at": "2024-07-01 00:00:01",
	}

	assert.Equal(t, Compute(base), Compute(touched))
}

func TestCompute_FieldBoundaries(t *testing.T) {
	// Adjacent key/value content must not collide.
	a := map[string]string{"ab": "c"}
	b := map[string]string{"a": "bc"}
	assert.NotEqual(t, Compute(a), Compute(b))

	// An empty value is distinct from an absent field.
	withEmpty := map[string]string{"name": "x", "city": ""}
	without := map[string]string{"name": "x"}
	assert.NotEqual(t, Compute(withEmpty), Compute(without))
}

func TestCompute_SpreadOverManyFields(t *testing.T) {
	// Flipping any single field out of many changes the digest.
	fields := map[string]string{}
	for i := 0; i < 20; i++ {
		fields[fmt.Sprintf("field_%02d", i)] = fmt.Sprintf("value_%02d", i)
	}
	base := Compute(fields)

	for i := 0; i < 20; i++ {
		key := fmt.Sprintf("field_%02d", i)
		saved := fields[key]
		fields[key] = saved + "!"
		assert.NotEqual(t, base, Compute(fields), "change to %s not detected", key)
		fields[key] = saved
	}
}
