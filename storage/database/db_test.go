package database

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oinstituto/atlas/core"
)

func TestDSN(t *testing.T) {
	conf := &core.Config{Database: core.DatabaseConfig{
		Host:          "db",
		Port:          "5432",
		User:          "atlas",
		Password:      "p@ss",
		AdminUser:     "postgres",
		AdminPassword: "root",
		Name:          "atlas",
		DisableTLS:    true,
	}}

	tests := []struct {
		name  string
		admin bool
		tls   bool
		want  string
	}{
		{"app user", false, false, "postgres://atlas:p%40ss@db:5432/atlas?sslmode=disable&timezone=utc"},
		{"admin user", true, false, "postgres://postgres:root@db:5432/atlas?sslmode=disable&timezone=utc"},
		{"tls", false, true, "postgres://atlas:p%40ss@db:5432/atlas?sslmode=require&timezone=utc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *conf
			c.Database.DisableTLS = !tt.tls
			assert.Equal(t, tt.want, DSN("atlas", tt.admin, &c))
		})
	}
}
