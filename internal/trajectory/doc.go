// Package trajectory holds the in-memory time series produced by the
// external multi-agent simulator and the ingestion pipeline that feeds it.
//
// The simulator writes one JSON object per snapshot, separated by ",\n":
//
//	{"time": 0.0, "state": {"agents": [[7, 10], [3, 10]], "target": [3, 10]}},
//	{"time": 0.1, "states": {"agents": [[6.6, 10], [3, 10]], "target": [3, 10]}},
//
// Older simulator versions name the state object "states"; [DecodeFragment]
// accepts both and the rest of the package only sees [Snapshot].
//
//   - [Store]: owns the Series, reloads or tail-merges it, notifies observers
//   - [ParseLog]: lenient parse of raw log text into a [Batch]
//   - [Placeholder]: small built-in trajectory shown before any load
//
// # Thread Safety
//
// Store methods are safe for concurrent use. Ingestion calls are serialised;
// observers run synchronously inside the ingesting call and must not ingest.
package trajectory
