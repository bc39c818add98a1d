package config

import (
	"github.com/JaimeStill/docpages/pkg/cache"
	"github.com/JaimeStill/docpages/pkg/database"
	"github.com/JaimeStill/docpages/pkg/logging"
	"github.com/JaimeStill/docpages/pkg/middleware"
	"github.com/JaimeStill/docpages/pkg/openapi"
	"github.com/JaimeStill/docpages/pkg/pagination"
	"github.com/JaimeStill/docpages/pkg/queue"
	"github.com/JaimeStill/docpages/pkg/storage"
)

var databaseEnv = &database.Env{
	Host:            "DATABASE_HOST",
	Port:            "DATABASE_PORT",
	Name:            "DATABASE_NAME",
	User:            "DATABASE_USER",
	Password:        "DATABASE_PASSWORD",
	MaxOpenConns:    "DATABASE_MAX_OPEN_CONNS",
	MaxIdleConns:    "DATABASE_MAX_IDLE_CONNS",
	ConnMaxLifetime: "DATABASE_CONN_MAX_LIFETIME",
	ConnTimeout:     "DATABASE_CONN_TIMEOUT",
	SSLMode:         "DATABASE_SSL_MODE",
	AutoMigrate:     "DATABASE_AUTO_MIGRATE",
}

var storageEnv = &storage.Env{
	Provider:      "STORAGE_PROVIDER",
	BasePath:      "STORAGE_BASE_PATH",
	MaxUploadSize: "STORAGE_MAX_UPLOAD_SIZE",
}

var cacheEnv = &cache.Env{
	Enabled:  "CACHE_ENABLED",
	Addr:     "CACHE_ADDR",
	Password: "CACHE_PASSWORD",
	DB:       "CACHE_DB",
	TLS:      "CACHE_TLS",
	Prefix:   "CACHE_PREFIX",
	TTL:      "CACHE_TTL",
}

var queueEnv = &queue.Env{
	Provider:          "QUEUE_PROVIDER",
	QueueName:         "QUEUE_NAME",
	Region:            "QUEUE_REGION",
	Endpoint:          "QUEUE_ENDPOINT",
	DevMode:           "QUEUE_DEV_MODE",
	Capacity:          "QUEUE_CAPACITY",
	VisibilityTimeout: "QUEUE_VISIBILITY_TIMEOUT",
}

var loggingEnv = &logging.Env{
	Level:  "LOGGING_LEVEL",
	Format: "LOGGING_FORMAT",
}

var corsEnv = &middleware.CORSEnv{
	Enabled:          "API_CORS_ENABLED",
	Origins:          "API_CORS_ORIGINS",
	AllowedMethods:   "API_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "API_CORS_ALLOWED_HEADERS",
	AllowCredentials: "API_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "API_CORS_MAX_AGE",
}

var openAPIEnv = &openapi.Env{
	Title:       "API_OPENAPI_TITLE",
	Description: "API_OPENAPI_DESCRIPTION",
}

var paginationEnv = &pagination.Env{
	DefaultPageSize: "API_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "API_PAGINATION_MAX_PAGE_SIZE",
}
