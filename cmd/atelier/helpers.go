package main

import (
	"path/filepath"
	"time"
)

// retentionAge converts a retention window in days to a duration.
func retentionAge(days int) time.Duration {
	if days <= 0 {
		return 0
	}
	return time.Duration(days) * 24 * time.Hour
}

// schemaDirOf returns the directory holding a root schema document.
func schemaDirOf(schemaRoot string) string {
	return filepath.Dir(schemaRoot)
}
