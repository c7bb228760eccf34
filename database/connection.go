package database

import (
	"fmt"
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

// Connect opens the PostgreSQL connection the session store runs on. On Cloud
// Run the instance connection name selects the Cloud SQL unix socket; anywhere
// else the DB_HOST/DB_PORT pair (defaulting to a local postgres) is used.
func Connect() {
	var err error

	DB, err = gorm.Open(postgres.Open(buildDSN()), &gorm.Config{})
	if err != nil {
		log.Printf("❌ Failed to connect to database: %v", err)
		panic(err)
	}

	log.Println("✅ Database connected successfully!")
}

func buildDSN() string {
	user := envOr("DB_USER", "postgres")
	pass := os.Getenv("DB_PASS")
	name := envOr("DB_NAME", "loanbot")

	if instance := os.Getenv("INSTANCE_CONNECTION_NAME"); instance != "" {
		log.Printf("Connecting to Cloud SQL via socket: %s", instance)
		return fmt.Sprintf("host=/cloudsql/%s user=%s password=%s dbname=%s sslmode=disable",
			instance, user, pass, name)
	}

	host := envOr("DB_HOST", "localhost")
	port := envOr("DB_PORT", "5432")
	log.Printf("Connecting to PostgreSQL at %s:%s", host, port)
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, pass, name)
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
