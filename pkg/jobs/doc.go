// Package jobs schedules background maintenance: expiring stale trial rows
// and sweeping quiet rate limit windows.
package jobs
