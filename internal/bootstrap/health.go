package bootstrap

import (
	"database/sql"

	httpapi "github.com/grayola/task-manager/internal/api/http"
)

// HealthChecks names the dependencies reported by /health. db serves every
// request; pool is the pgx pool that applies the schema.
func HealthChecks(db *sql.DB, pool, cache, objects httpapi.Pinger) map[string]httpapi.Pinger {
	checks := map[string]httpapi.Pinger{
		"db":      nil,
		"pool":    pool,
		"redis":   cache,
		"storage": objects,
	}
	if db != nil {
		checks["db"] = httpapi.PingFunc(db.PingContext)
	}
	return checks
}
