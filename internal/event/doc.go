// Package event provides the normalized meeting event schema shared by the
// extractor, the sinks and the calendar exporter.
//
// Every event carries a deterministic ID built from its spider name, meeting
// name and start time, so repeated runs over the same page produce the same
// identifiers and sinks can upsert instead of duplicating. Snapshots record
// the known meetings and a change log of what moved between runs.
package event
