package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port       string
	MongoURI   string
	MongoDB    string
	RedisAddr  string
	JWTSecret  []byte
	CORSOrigin string
	UploadDir  string
}

// Load reads .env if present, then the environment, filling defaults for
// anything unset.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found; using system environment")
	}

	cfg := Config{
		Port:       getenv("PORT", ":8080"),
		MongoURI:   getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:    getenv("MONGO_DB", "voyago"),
		RedisAddr:  getenv("REDIS_ADDR", "localhost:6379"),
		JWTSecret:  []byte(getenv("JWT_SECRET", "dev_secret_change_me")),
		CORSOrigin: getenv("CORS_ORIGIN", "http://localhost:5173"),
		UploadDir:  getenv("UPLOAD_DIR", "static/hotelpic"),
	}
	if cfg.Port[0] != ':' {
		cfg.Port = ":" + cfg.Port
	}
	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
