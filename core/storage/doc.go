// Package storage provides object storage access backed by Minio.
//
// The snapshot archive writes compressed page payloads through the Client
// interface so tests can substitute a mock. Configuration follows the usual
// STORAGE_* environment variables.
package storage
