package config

// EnvPrefix is the envconfig prefix for every setting.
const EnvPrefix = "HOMESERVICE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "HOMESERVICE_DB_DSN"
	EnvDBHost = "HOMESERVICE_DB_HOST"
	EnvDBUser = "HOMESERVICE_DB_USER"
	EnvDBName = "HOMESERVICE_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
