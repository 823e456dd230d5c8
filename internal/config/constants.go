package config

const (
	// DefaultDatabasePath is the default path for the application database
	DefaultDatabasePath = "./sei-import.db"

	DefaultBackendURL = "http://localhost:8000"

	// DefaultSourceDomain matches hosts such as sei.example.gov.br
	DefaultSourceDomain = "sei"
)
