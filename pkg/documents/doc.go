// Package documents decides whether a document download is allowed and how:
// free (public, rate limited), paid (public with a verified checkout
// session), owner, or permission (capability plus entitlement plus resource
// access). Private documents are never purchasable; a payment proof on a
// private document is rejected before any identity check.
package documents
