// Package assets provides the types and functions to track a personal list of
// assets and value them in a single display currency.
//
// The core functionalities include:
//   - Asset Management: creating, editing, deleting and reordering assets held
//     in a Collection, the only writer of the underlying Store.
//   - Currency Conversion: a stateless Convert function working on immutable
//     RateTable snapshots, with a fallback table when the remote source fails.
//   - Data Persistence: a Store contract keyed by immutable identifiers, with
//     an in-memory implementation and a human-readable JSONL file
//     implementation.
//   - Views: a pure projection of the collection into a display currency, with
//     a running total.
//
// This package serves as the foundational logic for the `atr` command-line
// tool.
package assets
