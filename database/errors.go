package database

import (
	"net/http"

	"github.com/KOMKZ/cpipeline/errcode"
)

const moduleCode = 12

var (
	ErrInvalidConfig = errcode.Register(errcode.New(moduleCode, 1, "database",
		"error.database.invalid_config", "invalid database config"))

	ErrRecordNotFound = errcode.Register(errcode.New(moduleCode, 2, "database",
		"error.database.record_not_found", "record not found", http.StatusNotFound))

	// ErrDuplicateKey primary key or unique key conflict
	ErrDuplicateKey = errcode.Register(errcode.New(moduleCode, 3, "database",
		"error.database.duplicate_key", "duplicate key", http.StatusConflict))

	ErrConnectionFailed = errcode.Register(errcode.New(moduleCode, 4, "database",
		"error.database.connection_failed", "database connection failed", http.StatusServiceUnavailable))

	ErrInstanceNotFound = errcode.Register(errcode.New(moduleCode, 5, "database",
		"error.database.instance_not_found", "database instance not found"))

	ErrQueryFailed = errcode.Register(errcode.New(moduleCode, 6, "database",
		"error.database.query_failed", "database query failed"))
)
