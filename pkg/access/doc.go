// Package access resolves which buildings and units a principal can reach.
//
// A principal's reachable set is the union of grants made directly to the
// user, grants made to the organization the user belongs to, and blanket
// access for contractor and admin roles. Unit access is additionally derived
// from building access: granting a building covers every unit in it,
// including units created after the grant, because the expansion happens at
// read time rather than being materialized into grant rows.
package access
