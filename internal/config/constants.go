package config

const (
	// DefaultDatabasePath is the default path for the main application database
	DefaultDatabasePath = "./crudgate.db"

	DefaultTokenIssuer   = "https://fawapp.com"
	DefaultTokenAudience = "https://fawapp.com"
)
