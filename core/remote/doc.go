// Package remote provides the HTTP client for the ticketing platform's REST
// table API.
//
// It issues paginated, filterable table queries and batched key lookups. The
// client distinguishes transient failures (network errors, 429, 5xx) from
// permanent ones (auth, other 4xx): transient failures are retried with
// exponential backoff a bounded number of times, permanent failures surface
// immediately so a run can abort without useless retries.
//
// # Operations
//
//   - FetchPage: one page of a table query (sysparm_limit/sysparm_offset).
//   - FetchByKeys: chunked OR-joined key lookups for reference backfill.
//
// Every HTTP attempt can be observed through OnCall, which the execution
// ledger uses for API metrics.
package remote
