package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/digital-diary-api/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{Host: "db", Port: 5433, User: "diary", Password: "secret", Name: "journal", SSLMode: "disable"})
	assert.Equal(t, "host=db port=5433 user=diary password=secret dbname=journal sslmode=disable timezone=UTC application_name=digital-diary", dsn)
}
