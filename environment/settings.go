package environment

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings are read from the environment (.env is loaded by main)
type Settings struct {
	AppEnv         string // DEV | PRD
	Port           string
	DBName         string
	AccessSecret   string
	CookieName     string
	UploadKey      string
	UseAnalytics   bool
	UseMailQueue   bool
	UseArchive     bool
	ContextTimeout time.Duration
	Wildcard       string
	TokenTTL       time.Duration
	ResendCooldown time.Duration
	LogLevel       string
	CORSOrigins    []string
}

func getenv(key string, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// comma separated, blanks are dropped
func getlist(key string) []string {
	var list []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			list = append(list, v)
		}
	}
	return list
}

// seconds or minutes, whatever unit the key uses
func getduration(key string, def int, unit time.Duration) time.Duration {
	n, err := strconv.Atoi(getenv(key, ""))
	if err != nil || n <= 0 {
		n = def
	}
	return time.Duration(n) * unit
}

// LoadSettings reads the settings and applies the defaults
func LoadSettings() Settings {
	return Settings{
		AppEnv:         getenv("APP_ENV", "DEV"),
		Port:           getenv("API_PORT", "3000"),
		DBName:         getenv("DB_NAME", "concordia-courses"),
		AccessSecret:   getenv("ACCESS_SECRET", ""),
		CookieName:     getenv("JWTCK_NAME", "session"),
		UploadKey:      getenv("UPLOAD_KEY", ""),
		UseAnalytics:   getenv("USE_ANALYTICS", "NO") == "YES",
		UseMailQueue:   getenv("MAIL_QUEUE_URL", "") != "",
		UseArchive:     getenv("ARCHIVE_ENDPOINT", "") != "",
		ContextTimeout: getduration("CONTEXT_TIMEOUT", 10, time.Second),
		Wildcard:       getenv("NOTIFICATION_WILDCARD", "any"),
		TokenTTL:       getduration("VERIFY_TOKEN_TTL_MIN", 15, time.Minute),
		ResendCooldown: getduration("RESEND_COOLDOWN_SEC", 60, time.Second),
		LogLevel:       getenv("LOG_LEVEL", "info"),
		CORSOrigins:    getlist("CORS_ORIGIN"),
	}
}
