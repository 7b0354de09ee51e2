// Package sync drives a single badge sync run.
//
// A run is one linear pass over the registry's recently published
// components, newest first:
//
//   - The watermark is read once from the checkpoint store.
//   - Pages are fetched in order. Each record is normalized and rendered
//     until a record at or below the watermark is met.
//   - The timestamp of the very first record seen becomes the new
//     watermark and is written once at the end, only if it moves forward.
//
// # Stop Reasons
//
// Every run ends with an explicit StopReason recorded on the Result:
//
//   - exhausted: the registry returned an empty page
//   - fetch-failed: a page could not be fetched or decoded
//   - watermark-reached: a record not newer than the watermark was met
//   - no-new-records: a page yielded nothing to render without reaching the watermark
//   - max-pages: the configured page cap was reached
//   - cancelled: the context was cancelled between pages
//   - render-failed: writing a badge or snapshot failed; the run returns an *Error
//
// Fetch failures end the run like an empty page. Only render failures are
// returned as errors, and they leave the checkpoint untouched.
package sync
