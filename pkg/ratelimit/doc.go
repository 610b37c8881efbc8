// Package ratelimit provides per-identifier request limiting.
//
// Limiter is the in-process sliding-window limiter used on the public
// document path. DistributedLimiter is a Redis-backed variant for
// deployments running more than one instance; it trades the sliding window
// for a fixed counting window and fails open when Redis is unreachable.
package ratelimit
