package storage

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDriverMatchesBuildMode(t *testing.T) {
	assert.Contains(t, sql.Drivers(), DriverName)
	switch BuildMode {
	case "cgo":
		assert.Equal(t, "sqlite3", DriverName)
	case "purego":
		assert.Equal(t, "sqlite", DriverName)
	default:
		t.Fatalf("unexpected build mode %q", BuildMode)
	}
}
