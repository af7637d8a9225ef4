package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	DBUrl             string
	SupabaseUrl       string
	SupabaseKey       string // public (anon) API key
	SupabaseJWTSecret string
	CookieSecure      bool
	// AppURL is the public base URL, used for password-reset redirects
	AppURL string
	// AllowedOrigins may call the JSON API from a browser
	AllowedOrigins []string
	// SessionIdleMinutes drops cached profiles of accounts idle this long
	SessionIdleMinutes int
	// Object storage (Supabase Storage S3 protocol)
	StorageS3Endpoint   string
	StorageRegion       string
	StorageAccessKeyID  string
	StorageSecretKey    string
	CVBucket            string
	ImageBucket         string
	MaxUploadBytes      int64
	SignedURLTTLSeconds int
	ImageMaxDimension   int
	ImageJPEGQuality    int
	ClamAVAddress       string
	UploadsPerMinute    int
	UploadsPerDay       int
	// Redis/Upstash Configuration
	UpstashRedisURL      string
	UpstashRedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds   int
	RateLimitLoginThreshold  int
	RateLimitGlobalThreshold int
	FailedLoginBlockMinutes  int
	FailedLoginMaxAttempts   int
}

func LoadConfig() (*Config, error) {
	// .env only exists locally; in production the platform injects the variables
	_ = godotenv.Load()

	supabaseURL := strings.TrimRight(getEnv("SUPABASE_URL", ""), "/")

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		DBUrl:              getEnv("DATABASE_URL", ""),
		SupabaseUrl:        supabaseURL,
		SupabaseKey:        getEnv("SUPABASE_ANON_KEY", getEnv("SUPABASE_KEY", "")),
		SupabaseJWTSecret:  getEnv("SUPABASE_JWT_SECRET", ""),
		CookieSecure:       getEnvBool("COOKIE_SECURE", os.Getenv("GIN_MODE") == "release"),
		AppURL:             strings.TrimRight(getEnv("APP_URL", "http://localhost:8080"), "/"),
		AllowedOrigins:     getEnvList("CORS_ALLOWED_ORIGINS"),
		SessionIdleMinutes: getEnvInt("SESSION_IDLE_MINUTES", 30),
		// Storage: private CV bucket, public image bucket
		StorageS3Endpoint:   strings.TrimRight(getEnv("STORAGE_S3_ENDPOINT", defaultS3Endpoint(supabaseURL)), "/"),
		StorageRegion:       getEnv("STORAGE_S3_REGION", "us-east-1"),
		StorageAccessKeyID:  getEnv("STORAGE_ACCESS_KEY_ID", ""),
		StorageSecretKey:    getEnv("STORAGE_SECRET_ACCESS_KEY", ""),
		CVBucket:            getEnv("CV_BUCKET", "cvs"),
		ImageBucket:         getEnv("IMAGE_BUCKET", "avatars"),
		MaxUploadBytes:      int64(getEnvInt("MAX_UPLOAD_BYTES", 10*1024*1024)),
		SignedURLTTLSeconds: getEnvInt("SIGNED_URL_TTL_SECONDS", 300),
		ImageMaxDimension:   getEnvInt("IMAGE_MAX_DIMENSION", 1200),
		ImageJPEGQuality:    getEnvInt("IMAGE_JPEG_QUALITY", 80),
		ClamAVAddress:       getEnv("CLAMAV_ADDRESS", ""),
		UploadsPerMinute:    getEnvInt("UPLOADS_PER_MINUTE", 10),
		UploadsPerDay:       getEnvInt("UPLOADS_PER_DAY", 50),
		// Redis/Upstash Configuration
		UpstashRedisURL:      getEnv("UPSTASH_REDIS_URL", ""),
		UpstashRedisPassword: getEnv("UPSTASH_REDIS_PASSWORD", ""),
		// Rate Limiting Configuration
		RateLimitWindowSeconds:   getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitLoginThreshold:  getEnvInt("RATE_LIMIT_LOGIN_THRESHOLD", 10),
		RateLimitGlobalThreshold: getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		FailedLoginBlockMinutes:  getEnvInt("FAILED_LOGIN_BLOCK_MINUTES", 15),
		FailedLoginMaxAttempts:   getEnvInt("FAILED_LOGIN_MAX_ATTEMPTS", 5),
	}

	if cfg.DBUrl == "" {
		log.Println("WARNING: DATABASE_URL is missing. Application may fail to connect.")
	}
	if cfg.SupabaseUrl == "" || cfg.SupabaseKey == "" {
		log.Println("WARNING: SUPABASE_URL or SUPABASE_ANON_KEY is missing. Sign-in will not work.")
	}
	if cfg.StorageAccessKeyID == "" {
		log.Println("WARNING: STORAGE_ACCESS_KEY_ID not configured. Uploads will fail.")
	}
	if cfg.UpstashRedisURL == "" {
		log.Println("WARNING: UPSTASH_REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

// PublicObjectURL builds the public URL of an object in a public bucket.
func (c *Config) PublicObjectURL(bucket, path string) string {
	return c.SupabaseUrl + "/storage/v1/object/public/" + bucket + "/" + path
}

// defaultS3Endpoint derives the Storage S3 endpoint from the project URL.
func defaultS3Endpoint(supabaseURL string) string {
	if supabaseURL == "" {
		return ""
	}
	return supabaseURL + "/storage/v1/s3"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvList splits a comma-separated variable, dropping empty entries
func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
