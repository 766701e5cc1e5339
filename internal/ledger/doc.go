// Package ledger implements the append-only issuance ledger. Every successful
// issue and return appends one immutable record to the activity_log table;
// records are never updated or deleted, and a bigserial sequence number gives
// them a single total order. The full record travels as a JSONB payload so the
// book title survives later catalog deletions.
package ledger
