// Package storage holds document file content in an S3-compatible object
// store. Downloads are served through presigned URLs so file bytes never
// pass through the API process; the authorization decision happens before a
// URL is ever issued.
package storage
