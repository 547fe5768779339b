// Package simplemedia provides the publishing pipeline and engagement
// analytics for a media-sharing backend.
//
// A single Service orchestrates uploads to an object storage Gateway, writes
// videos, their text sections and the notification fan-out inside one
// Repository transaction, and aggregates share/download/like event logs into
// a dashboard summary. Repository implementations (memory, Postgres) and
// gateways (memory, filesystem, S3) are provided under subpackages.
//
// Source of truth
//
// The database decides what a video is. Remote media that outlives its row
// (failed commit, failed cleanup) is an accepted, recoverable leak; a row that
// points at media which was never uploaded is not.
package simplemedia
