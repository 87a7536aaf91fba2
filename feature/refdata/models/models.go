package models

import "time"

// User mirrors the platform's sys_user table, plus local bookkeeping columns.
type User struct {
	SysID                string    `gorm:"column:sys_id;primaryKey;size:32"`
	UserName             string    `gorm:"column:user_name"`
	Name                 string    `gorm:"column:name"`
	FirstName            string    `gorm:"column:first_name"`
	LastName             string    `gorm:"column:last_name"`
	MiddleName           string    `gorm:"column:middle_name"`
	Email                string    `gorm:"column:email"`
	Phone                string    `gorm:"column:phone"`
	MobilePhone          string    `gorm:"column:mobile_phone"`
	Company              string    `gorm:"column:company;size:32;index"`
	Department           string    `gorm:"column:department;size:32;index"`
	Location             string    `gorm:"column:location"`
	Manager              string    `gorm:"column:manager;size:32"`
	Title                string    `gorm:"column:title"`
	Active               bool      `gorm:"column:active;index"`
	LockedOut            string    `gorm:"column:locked_out"`
	WebServiceAccessOnly string    `gorm:"column:web_service_access_only"`
	LastLogin            string    `gorm:"column:last_login"`
	LastLoginTime        string    `gorm:"column:last_login_time"`
	FailedAttempts       string    `gorm:"column:failed_attempts"`
	TimeZone             string    `gorm:"column:time_zone"`
	DateFormat           string    `gorm:"column:date_format"`
	TimeFormat           string    `gorm:"column:time_format"`
	SysCreatedBy         string    `gorm:"column:sys_created_by"`
	SysUpdatedBy         string    `gorm:"column:sys_updated_by"`
	SysCreatedOn         time.Time `gorm:"column:sys_created_on"`
	SysUpdatedOn         time.Time `gorm:"column:sys_updated_on;index"`
	EtlHash              string    `gorm:"column:etl_hash;size:40"`
	EtlCreatedAt         time.Time `gorm:"column:etl_created_at"`
	EtlUpdatedAt         time.Time `gorm:"column:etl_updated_at"`
}

func (User) TableName() string {
	return "sys_user"
}

// Company mirrors the platform's core_company table.
type Company struct {
	SysID        string    `gorm:"column:sys_id;primaryKey;size:32"`
	Name         string    `gorm:"column:name"`
	Parent       string    `gorm:"column:parent;size:32"`
	Customer     string    `gorm:"column:customer"`
	Vendor       string    `gorm:"column:vendor"`
	Manufacturer string    `gorm:"column:manufacturer"`
	Phone        string    `gorm:"column:phone"`
	Fax          string    `gorm:"column:fax"`
	Website      string    `gorm:"column:website"`
	Street       string    `gorm:"column:street"`
	City         string    `gorm:"column:city"`
	State        string    `gorm:"column:state"`
	Zip          string    `gorm:"column:zip"`
	Country      string    `gorm:"column:country"`
	FederalTaxID string    `gorm:"column:federal_tax_id"`
	Active       bool      `gorm:"column:active;index"`
	SysCreatedBy string    `gorm:"column:sys_created_by"`
	SysUpdatedBy string    `gorm:"column:sys_updated_by"`
	SysCreatedOn time.Time `gorm:"column:sys_created_on"`
	SysUpdatedOn time.Time `gorm:"column:sys_updated_on;index"`
	EtlHash      string    `gorm:"column:etl_hash;size:40"`
	EtlCreatedAt time.Time `gorm:"column:etl_created_at"`
	EtlUpdatedAt time.Time `gorm:"column:etl_updated_at"`
}

func (Company) TableName() string {
	return "core_company"
}

// Department mirrors the platform's cmn_department table. The platform does
// not deactivate departments, so active defaults to true on ingest.
type Department struct {
	SysID        string    `gorm:"column:sys_id;primaryKey;size:32"`
	Name         string    `gorm:"column:name"`
	ID           string    `gorm:"column:id"`
	Description  string    `gorm:"column:description"`
	DeptHead     string    `gorm:"column:dept_head;size:32"`
	Parent       string    `gorm:"column:parent;size:32"`
	Company      string    `gorm:"column:company;size:32;index"`
	CostCenter   string    `gorm:"column:cost_center;size:32"`
	BusinessUnit string    `gorm:"column:business_unit;size:32"`
	Active       bool      `gorm:"column:active;index"`
	SysCreatedBy string    `gorm:"column:sys_created_by"`
	SysUpdatedBy string    `gorm:"column:sys_updated_by"`
	SysCreatedOn time.Time `gorm:"column:sys_created_on"`
	SysUpdatedOn time.Time `gorm:"column:sys_updated_on;index"`
	EtlHash      string    `gorm:"column:etl_hash;size:40"`
	EtlCreatedAt time.Time `gorm:"column:etl_created_at"`
	EtlUpdatedAt time.Time `gorm:"column:etl_updated_at"`
}

func (Department) TableName() string {
	return "cmn_department"
}

// Incident is the minimal projection of the incident table used for
// reference mining. The ETL does not own this table; it only reads it.
type Incident struct {
	SysID      string `gorm:"column:sys_id;primaryKey;size:32"`
	OpenedBy   string `gorm:"column:opened_by;size:32"`
	ResolvedBy string `gorm:"column:resolved_by;size:32"`
	CallerID   string `gorm:"column:caller_id;size:32"`
	Company    string `gorm:"column:company;size:32"`
	Department string `gorm:"column:department;size:32"`
}

func (Incident) TableName() string {
	return "incident"
}
