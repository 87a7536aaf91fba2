// Package executions exposes the execution ledger over HTTP and the CLI.
//
// It reads recent runs and resolves the derived metrics (success rate,
// average API time, compression ratio) that the ledger stores only as raw
// counters.
package executions
