package config

const (
	EnvPrefix = "MARKETPLACE"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"

	TransportPubSub   = "pubsub"
	TransportRabbitMQ = "rabbitmq"

	SinkBigQuery   = "bigquery"
	SinkClickHouse = "clickhouse"
)

const (
	EnvAppEnv          = "MARKETPLACE_APP_ENV"
	EnvPort            = "MARKETPLACE_APP_PORT"
	EnvLogLevel        = "MARKETPLACE_LOG_LEVEL"
	EnvDBDSN           = "MARKETPLACE_DB_DSN"
	EnvDBDriver        = "MARKETPLACE_DB_DRIVER"
	EnvDBHost          = "MARKETPLACE_DB_HOST"
	EnvDBPort          = "MARKETPLACE_DB_PORT"
	EnvDBUser          = "MARKETPLACE_DB_USER"
	EnvDBPassword      = "MARKETPLACE_DB_PASSWORD"
	EnvDBName          = "MARKETPLACE_DB_NAME"
	EnvRedisURL        = "MARKETPLACE_REDIS_URL"
	EnvJWTSecret       = "MARKETPLACE_JWT_SECRET"
	EnvJWTIssuer       = "MARKETPLACE_JWT_ISSUER"
	EnvJWTExpMins      = "MARKETPLACE_JWT_EXPIRATION_MINUTES"
	EnvCORSOrigins     = "MARKETPLACE_CORS_ALLOWED_ORIGINS"
	EnvOutboxTransport = "MARKETPLACE_OUTBOX_TRANSPORT"
	EnvGCPProjectID    = "MARKETPLACE_GCP_PROJECT_ID"
	EnvSnapshotSink    = "MARKETPLACE_SNAPSHOT_SINK"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
