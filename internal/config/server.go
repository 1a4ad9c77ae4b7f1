package config

import (
	"strings"
	"time"
)

// Port is the HTTP listen port.
func Port() string {
	return GetEnv("PORT", "8080")
}

// BaseURL is the externally visible origin used to build verification links.
func BaseURL() string {
	return strings.TrimRight(GetEnv("BASE_URL", "http://localhost:"+Port()), "/")
}

// LoginURL is where the form's "Login" link points.
func LoginURL() string {
	return GetEnv("LOGIN_URL", "/login")
}

// LogFile is the path of the JSON log file.
func LogFile() string {
	return GetEnv("LOG_FILE", "signup.log")
}

// CORSAllowedOrigins lists origins allowed to call the JSON API.
func CORSAllowedOrigins() []string {
	return GetList("CORS_ALLOWED_ORIGINS", "*")
}

// ServerReadTimeout returns the maximum duration for reading the entire request, including the body.
func ServerReadTimeout() time.Duration {
	return MustParseDuration("SERVER_READ_TIMEOUT", "10s")
}

// ServerReadHeaderTimeout returns the amount of time allowed to read request headers.
func ServerReadHeaderTimeout() time.Duration {
	return MustParseDuration("SERVER_READ_HEADER_TIMEOUT", "5s")
}

// ServerWriteTimeout returns the maximum duration before timing out writes of the response.
// A registration runs three provider calls in sequence, so this is generous.
func ServerWriteTimeout() time.Duration {
	return MustParseDuration("SERVER_WRITE_TIMEOUT", "45s")
}

// ServerIdleTimeout returns the maximum amount of time to wait for the next request when keep-alives are enabled.
func ServerIdleTimeout() time.Duration {
	return MustParseDuration("SERVER_IDLE_TIMEOUT", "60s")
}

// ServerShutdownTimeout bounds graceful shutdown.
func ServerShutdownTimeout() time.Duration {
	return MustParseDuration("SERVER_SHUTDOWN_TIMEOUT", "15s")
}

// MaxRequestBodyBytes returns the maximum allowed size of incoming request bodies.
// Supports raw integers (bytes) or human-friendly values like "2MB", "512KB".
func MaxRequestBodyBytes() int64 {
	val := GetEnv("MAX_REQUEST_BODY_BYTES", "64KB")
	n, err := parseBytes(val)
	if err != nil || n <= 0 {
		return 64 << 10
	}
	return n
}

// DBWorkerCount controls the number of DB workers.
func DBWorkerCount() int {
	return parseIntEnv("DB_WORKER_COUNT", 4)
}

// CryptoWorkerCount controls the number of password hashing workers.
func CryptoWorkerCount() int {
	return parseIntEnv("CRYPTO_WORKER_COUNT", 4)
}

// MailWorkerCount controls the number of outbound mail workers.
func MailWorkerCount() int {
	return parseIntEnv("MAIL_WORKER_COUNT", 2)
}

// WorkerQueueSize controls the queue size for each worker pool.
func WorkerQueueSize() int {
	return parseIntEnv("WORKER_QUEUE_SIZE", 1024)
}
