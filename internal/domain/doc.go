// Package domain contains the core entities of the progress engine: per-item
// progress records, the immutable review ledger entries, study session
// summaries and the per-user study streak. It is independent of storage and
// delivery concerns.
package domain
