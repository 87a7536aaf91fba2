// Package archive stores raw page snapshots in object storage.
//
// Each fetched page is serialized to JSON, gzip-compressed and uploaded
// under a per-run key prefix. Raw and compressed sizes are reported back so
// execution records can track compression ratios.
package archive
