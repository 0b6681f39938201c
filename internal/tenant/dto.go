package tenant

// DatabaseConfigDTO carries the connection parameters for a tenant database.
// Password arrives in plaintext over the management channel and is encrypted
// before it is stored.
type DatabaseConfigDTO struct {
	DatabaseName string `json:"database_name"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
}

type CreateTenantDTO struct {
	CompanyName string            `json:"company_name"`
	Email       string            `json:"email"`
	Subdomain   string            `json:"subdomain"`
	Database    DatabaseConfigDTO `json:"database"`
}

type ReconfigureDatabaseDTO struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// ValidationError represents a simple validation error from DTO validation.
type ValidationError struct {
	Msg string
}

func (v ValidationError) Error() string { return v.Msg }

func (d DatabaseConfigDTO) Validate() error {
	if d.DatabaseName == "" {
		return ValidationError{Msg: "database_name is required"}
	}
	if d.Host == "" {
		return ValidationError{Msg: "host is required"}
	}
	if d.Port <= 0 || d.Port > 65535 {
		return ValidationError{Msg: "port must be between 1 and 65535"}
	}
	if d.Username == "" {
		return ValidationError{Msg: "username is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}

func (d CreateTenantDTO) Validate() error {
	if d.CompanyName == "" {
		return ValidationError{Msg: "company_name is required"}
	}
	if d.Email == "" {
		return ValidationError{Msg: "email is required"}
	}
	if d.Subdomain == "" {
		return ValidationError{Msg: "subdomain is required"}
	}
	return d.Database.Validate()
}

func (d ReconfigureDatabaseDTO) Validate() error {
	if d.Host == "" {
		return ValidationError{Msg: "host is required"}
	}
	if d.Port <= 0 || d.Port > 65535 {
		return ValidationError{Msg: "port must be between 1 and 65535"}
	}
	if d.Username == "" {
		return ValidationError{Msg: "username is required"}
	}
	if d.Password == "" {
		return ValidationError{Msg: "password is required"}
	}
	return nil
}
