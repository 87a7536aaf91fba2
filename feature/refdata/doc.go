// Package refdata binds the synchronization engine to the concrete
// reference types: users, companies and departments.
//
// Each type is described by a Descriptor naming its remote endpoint, local
// table and field projection. SourceAdapter maps raw API rows (including
// nested reference objects) to records with computed fingerprints;
// StoreAdapter persists them through gorm with transactional batch upserts.
// The Service orchestrates full and incremental runs, incident reference
// backfills and status reporting, recording every run in the execution
// ledger.
package refdata
