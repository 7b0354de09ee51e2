// Package artifact defines the canonical metadata of a published registry
// artifact and the conversion from raw registry records into it.
//
// Normalize is a total function: every field of Metadata has an explicit
// default, so a partial or malformed registry record always yields a fully
// populated value. Coordinates (group id, artifact id) double as the
// filesystem key for rendered output, see Coordinate.Dir.
package artifact
