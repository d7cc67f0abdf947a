// Package core implements the catalog import pipeline.
//
// An import turns one CSV or spreadsheet file into rows of the categories,
// products and reviews tables. It is independent of any transport: the web
// server and the catalogctl CLI both drive it through [Importer.Import] or
// the limited [Service.Import].
//
// # Pipeline
//
// The stages run strictly in sequence, each consuming the full output of the
// previous one:
//
//  1. [Decode] reads the header row and turns every data row into a
//     [RawRecord] keyed by lower-cased column name.
//  2. [Validate] checks required fields and value domains, collecting every
//     violation of a row into one [RowError].
//  3. [Resolve] deduplicates categories by name and products by
//     (name, category) using maps owned by that single call.
//  4. [Commit] writes the resolved batch inside one transaction of a
//     database.Gateway and rolls back on any failure.
//
// # Error Handling
//
// Fatal conditions are sentinel errors checked with errors.Is:
// [ErrUnsupportedFormat], [ErrMalformedInput], [ErrEmptyBatch] and
// [ErrCommitFailed]. None of them leave rows behind. Row level problems are
// not errors; they are returned in [ImportResult.RowErrors] next to the counts
// of what was committed.
//
// Technical errors are mapped to user-friendly messages using [MapError].
package core
