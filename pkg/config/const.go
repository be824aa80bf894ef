package config

const (
	EnvPrefix = "PAY2U"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv = "PAY2U_APP_ENV"
	EnvPort   = "PAY2U_APP_PORT"

	EnvDBDSN  = "PAY2U_DB_DSN"
	EnvDBHost = "PAY2U_DB_HOST"
	EnvDBUser = "PAY2U_DB_USER"
	EnvDBName = "PAY2U_DB_NAME"

	EnvRedisURL = "PAY2U_REDIS_URL"

	EnvJWTSecret  = "PAY2U_JWT_SECRET"
	EnvJWTIssuer  = "PAY2U_JWT_ISSUER"
	EnvJWTExpMins = "PAY2U_JWT_EXPIRATION_MINUTES"

	EnvGCPProjectID = "PAY2U_GCP_PROJECT_ID"

	EnvPubSubBillingTopic = "PAY2U_PUBSUB_BILLING_TOPIC"
	EnvPubSubBillingSub   = "PAY2U_PUBSUB_BILLING_SUBSCRIPTION"
	EnvPubSubNotifyTopic  = "PAY2U_PUBSUB_NOTIFICATION_TOPIC"
	EnvPubSubNotifySub    = "PAY2U_PUBSUB_NOTIFICATION_SUBSCRIPTION"
)

// legacyDBEnvVars are required when no DSN is provided.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
