package refdata

import "ticket-etl/feature/refdata/models"

// Descriptor binds one record type to its remote endpoint, local table and
// field projection.
type Descriptor struct {
	// Name identifies the type in CLI arguments, logs and status output.
	Name string
	// Endpoint is the remote table API endpoint.
	Endpoint string
	// Table is the local table name.
	Table string
	// Model is a zero value of the gorm model, used for migration.
	Model interface{}
	// Fields is the remote field projection.
	Fields []string
	// IncidentRefColumns lists incident columns referencing this type.
	IncidentRefColumns []string
}

// Users describes the sys_user reference type.
var Users = Descriptor{
	Name:     "users",
	Endpoint: "sys_user",
	Table:    "sys_user",
	Model:    &models.User{},
	Fields: []string{
		"sys_id",
		"user_name", "name", "first_name", "last_name", "middle_name",
		"email", "phone", "mobile_phone",
		"company", "department", "location", "manager", "title",
		"active", "locked_out", "web_service_access_only",
		"last_login", "last_login_time", "failed_attempts",
		"time_zone", "date_format", "time_format",
		"sys_created_on", "sys_created_by", "sys_updated_on", "sys_updated_by",
	},
	IncidentRefColumns: []string{"opened_by", "resolved_by", "caller_id"},
}

// Companies describes the core_company reference type.
var Companies = Descriptor{
	Name:     "companies",
	Endpoint: "core_company",
	Table:    "core_company",
	Model:    &models.Company{},
	Fields: []string{
		"sys_id",
		"name", "parent",
		"customer", "vendor", "manufacturer",
		"phone", "fax", "website",
		"street", "city", "state", "zip", "country",
		"federal_tax_id", "active",
		"sys_created_on", "sys_created_by", "sys_updated_on", "sys_updated_by",
	},
	IncidentRefColumns: []string{"company"},
}

// Departments describes the cmn_department reference type.
var Departments = Descriptor{
	Name:     "departments",
	Endpoint: "cmn_department",
	Table:    "cmn_department",
	Model:    &models.Department{},
	Fields: []string{
		"sys_id",
		"name", "id", "description",
		"dept_head", "parent", "company", "cost_center", "business_unit",
		"active",
		"sys_created_on", "sys_created_by", "sys_updated_on", "sys_updated_by",
	},
	IncidentRefColumns: []string{"department"},
}

// Descriptors lists every synchronized reference type in apply order. Users
// go last so company and department links resolve within one full run.
var Descriptors = []Descriptor{Companies, Departments, Users}

// DescriptorByName returns the descriptor for a CLI/API type name.
func DescriptorByName(name string) (Descriptor, bool) {
	for _, d := range Descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return Descriptor{}, false
}
