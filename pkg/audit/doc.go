// Package audit records security-relevant events: document access
// decisions, trial grants, and grant changes. Writes happen off the request
// path; a failed audit write never fails the request it describes.
package audit
