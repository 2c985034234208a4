// Package catalog provides the business logic for the vehicle inventory catalog.
//
// This package contains all domain logic independent of any storage engine or
// transport layer. It can be used by web handlers, CLI tools, or tests without
// modification.
//
// # Architecture
//
// The package is organized around four pieces:
//
//   - Field coercion: turns loosely typed spreadsheet cells into typed values
//     using fixed default policies (see [Float], [NullableFloat], [CoerceRow]).
//   - Category resolution: maps public category slugs to the legacy free-text
//     labels stored on records (see [Resolve], [DisplayName]).
//   - Predicate building: composes a storage-agnostic boolean expression tree
//     from a slug and request filters (see [Builder.Build], [ParseFilterSpec]).
//   - Import reconciliation: folds a row set into storage writes keyed by the
//     natural key and reports aggregate statistics (see [Reconciler.ImportRows]).
//
// Storage is consumed through the narrow [Store] interface. Implementations live
// in internal/storage and translate [Predicate] trees into their own query
// language.
//
// # Price on request
//
// A listing whose price is unset or zero is "price on request". It is carried as
// [OnRequest] and stays visible under every price filter:
//
//	price BETWEEN from AND to  OR  price IS NULL  OR  price = 0
//
// # Error Handling
//
// Malformed cells, unknown slugs and unparsable filter bounds are never errors;
// they degrade to defaults. Row-level storage failures are counted in
// [ImportStats] and logged. Technical errors are mapped to user-facing messages
// with [MapError].
package catalog
