// Package identity defines principals and the authentication surface used by
// the rest of the platform.
//
// A Principal is constructed once per request, either from a validated
// bearer token (TokenManager) or from the identity store, and is treated as
// immutable afterwards. Organization membership is a tagged reference
// (AOAO, PMCompany, or Contractor) so a principal can never ambiguously
// belong to two organization kinds at once.
package identity
