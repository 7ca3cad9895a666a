package config

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds everything the process needs from the environment: the managed
// backend's URL and privileged key, the storage bucket for product images and
// the listening port.
type Config struct {
	SupabaseURL string
	ServiceKey  string
	Bucket      string
	Port        string
}

// Load reads a .env file if one is present and collects the required
// variables. Every variable is required; missing backend credentials make the
// process useless, so the caller is expected to treat an error as fatal.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}

	cfg := Config{
		SupabaseURL: os.Getenv("SUPABASE_URL"),
		ServiceKey:  os.Getenv("SUPABASE_SERVICE_KEY"),
		Bucket:      os.Getenv("STORAGE_BUCKET"),
		Port:        os.Getenv("PORT"),
	}

	required := []struct {
		name  string
		value string
	}{
		{"SUPABASE_URL", cfg.SupabaseURL},
		{"SUPABASE_SERVICE_KEY", cfg.ServiceKey},
		{"STORAGE_BUCKET", cfg.Bucket},
		{"PORT", cfg.Port},
	}
	for _, v := range required {
		if v.value == "" {
			return Config{}, fmt.Errorf("missing required environment variable %s", v.name)
		}
	}
	return cfg, nil
}
