package config

// EnvPrefix namespaces every environment variable consumed by the platform.
const EnvPrefix = "JOYMART"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN      = "JOYMART_DB_DSN"
	EnvDBHost     = "JOYMART_DB_HOST"
	EnvDBUser     = "JOYMART_DB_USER"
	EnvDBName     = "JOYMART_DB_NAME"
	EnvDBPassword = "JOYMART_DB_PASSWORD"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
