package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/forgo/handy/api/internal/database"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// isUniqueConstraintError checks if an error is a unique constraint violation
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "unique") ||
		strings.Contains(errStr, "duplicate") ||
		strings.Contains(errStr, "already exists")
}

// parseTime parses time from various formats
func parseTime(v interface{}) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
		if parsed, err := time.Parse(time.RFC3339Nano, t); err == nil {
			return parsed
		}
	case models.CustomDateTime:
		return t.Time
	case *models.CustomDateTime:
		if t != nil {
			return t.Time
		}
	}
	return time.Time{}
}

// extractQueryResults extracts query results array from SurrealDB response
func extractQueryResults(result interface{}) ([]interface{}, bool) {
	// Handle SurrealDB response format
	if results, ok := result.([]interface{}); ok {
		if len(results) > 0 {
			if firstResult, ok := results[0].(map[string]interface{}); ok {
				if resultArray, ok := firstResult["result"].([]interface{}); ok {
					return resultArray, true
				}
			}
			// Direct array format
			return results, true
		}
	}
	return nil, false
}

// BatchExecute executes multiple single-record writes in one round trip.
// Each statement commits on its own; callers supply only statements that are
// individually idempotent.
func BatchExecute(ctx context.Context, db database.Database, queries []struct {
	Query string
	Vars  map[string]interface{}
}) error {
	batch := database.NewBatch()
	for _, q := range queries {
		batch.Add(q.Query, q.Vars)
	}
	return batch.Execute(ctx, db)
}

// extractCount extracts count from SurrealDB count query result
func extractCount(result interface{}) int {
	if resp, ok := result.(map[string]interface{}); ok {
		if status, ok := resp["status"].(string); ok && status == "OK" {
			if resultData, ok := resp["result"].([]interface{}); ok && len(resultData) > 0 {
				if data, ok := resultData[0].(map[string]interface{}); ok {
					return extractCountValue(data["count"])
				}
			}
		}
		// Direct access
		return extractCountValue(resp["count"])
	}
	return 0
}

// extractCountValue converts various numeric types to int
func extractCountValue(v interface{}) int {
	switch c := v.(type) {
	case float64:
		return int(c)
	case float32:
		return int(c)
	case int:
		return c
	case int64:
		return int(c)
	case uint64:
		return int(c)
	}
	return 0
}

// getString extracts a string value from a map
func getString(m map[string]interface{}, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// getFloat extracts a float value from a map
func getFloat(m map[string]interface{}, key string) float64 {
	if v, ok := m[key].(float64); ok {
		return v
	}
	if v, ok := m[key].(float32); ok {
		return float64(v)
	}
	return 0
}

// getStringSlice extracts a string slice from a map
func getStringSlice(m map[string]interface{}, key string) []string {
	if v, ok := m[key].([]interface{}); ok {
		result := make([]string, 0, len(v))
		for _, item := range v {
			result = append(result, convertSurrealID(item))
		}
		return result
	}
	return nil
}

// convertSurrealID converts a SurrealDB ID (which may be a complex object) to a string
func convertSurrealID(id interface{}) string {
	// Already a string
	if str, ok := id.(string); ok {
		return str
	}

	// Handle models.RecordID from SurrealDB Go client
	if rid, ok := id.(models.RecordID); ok {
		return fmt.Sprintf("%s:%v", rid.Table, rid.ID)
	}
	if rid, ok := id.(*models.RecordID); ok && rid != nil {
		return fmt.Sprintf("%s:%v", rid.Table, rid.ID)
	}

	// Handle map format: {"tb": "account", "id": {"String": "demo"}} or similar
	if m, ok := id.(map[string]interface{}); ok {
		tb := ""
		idPart := ""

		// Get table name
		if t, ok := m["tb"].(string); ok {
			tb = t
		} else if t, ok := m["TB"].(string); ok {
			tb = t
		} else if t, ok := m["Table"].(string); ok {
			tb = t
		}

		// Get ID part - could be nested
		if idVal, ok := m["id"]; ok {
			idPart = extractIDValue(idVal)
		} else if idVal, ok := m["ID"]; ok {
			idPart = extractIDValue(idVal)
		}

		if tb != "" && idPart != "" {
			return tb + ":" + idPart
		}
		if idPart != "" {
			return idPart
		}
	}

	// Fallback: use fmt.Sprintf
	return fmt.Sprintf("%v", id)
}

// extractIDValue extracts the ID value which may be nested
func extractIDValue(val interface{}) string {
	if str, ok := val.(string); ok {
		return str
	}
	if m, ok := val.(map[string]interface{}); ok {
		// Check for {"String": "value"} format
		if s, ok := m["String"].(string); ok {
			return s
		}
		if s, ok := m["string"].(string); ok {
			return s
		}
	}
	return fmt.Sprintf("%v", val)
}

// normalizeRecordTimes rewrites SurrealDB datetime values in a result map to
// RFC 3339 strings so the map can round-trip through encoding/json.
func normalizeRecordTimes(data map[string]interface{}, keys ...string) {
	for _, key := range keys {
		if v, ok := data[key]; ok {
			if t := parseTime(v); !t.IsZero() {
				data[key] = t.Format(time.RFC3339Nano)
			}
		}
	}
}
