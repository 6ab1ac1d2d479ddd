package config

// EnvPrefix is passed to envconfig.Process; individual fields carry
// fully-qualified envconfig tags so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "QRORDER_DB_DSN"
	EnvDBHost = "QRORDER_DB_HOST"
	EnvDBUser = "QRORDER_DB_USER"
	EnvDBName = "QRORDER_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
