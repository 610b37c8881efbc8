// Package async provides a safe wrapper for fire-and-forget goroutines.
package async
