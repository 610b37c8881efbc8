// Package api exposes the authorization engine over HTTP: document download
// decisions, trial management, and access resolution listings.
package api
