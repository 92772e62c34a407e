package config

// EnvPrefix is passed to envconfig; individual fields carry explicit
// SMARTKUBIK_* names so the prefix stays informational.
const EnvPrefix = "smartkubik"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "production"
)

const (
	EnvAppEnv   = "SMARTKUBIK_APP_ENV"
	EnvPort     = "SMARTKUBIK_APP_PORT"
	EnvDBDSN    = "SMARTKUBIK_DB_DSN"
	EnvDBHost   = "SMARTKUBIK_DB_HOST"
	EnvDBUser   = "SMARTKUBIK_DB_USER"
	EnvDBName   = "SMARTKUBIK_DB_NAME"
	EnvRedisURL = "SMARTKUBIK_REDIS_URL"

	EnvJWTSecret = "SMARTKUBIK_JWT_SECRET"
	EnvJWTIssuer = "SMARTKUBIK_JWT_ISSUER"

	EnvGCPProjectID          = "SMARTKUBIK_GCP_PROJECT_ID"
	EnvPubSubSupplierTopic   = "SMARTKUBIK_PUBSUB_SUPPLIER_TOPIC"
	EnvPubSubSupplierSub     = "SMARTKUBIK_PUBSUB_SUPPLIER_SUBSCRIPTION"
	EnvClassifierDefault     = "SMARTKUBIK_CLASSIFIER_DEFAULT_REGIME"
	EnvClassifierDefaultFlag = "SMARTKUBIK_CLASSIFIER_DEFAULT_VOLATILE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
