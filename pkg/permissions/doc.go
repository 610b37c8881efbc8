// Package permissions maps roles to capability sets.
//
// A capability is a "resource:action" string such as "documents:read".
// The role table is static configuration: it is built once (usually from
// DefaultRoleCapabilities) and handed to a Registry, which answers
// HasCapability checks with no side effects and no failure modes. Unknown
// roles resolve to the empty set and therefore fail closed.
package permissions
