package api

import (
	"net/http"
	"sort"

	"github.com/propdocs/propdocs/pkg/httputil"
	"github.com/propdocs/propdocs/pkg/identity"
)

type accessibleResourcesResponse struct {
	ResourceKind string   `json:"resource_kind"`
	IDs          []string `json:"ids"`
	Count        int      `json:"count"`
}

// listAccessibleBuildings returns every building the caller can reach.
//
// GET /api/v1/access/buildings
func (s *Server) listAccessibleBuildings(w http.ResponseWriter, r *http.Request) {
	principal := identity.FromContext(r.Context())

	ids, err := s.resolver.ResolveAccessibleBuildings(r.Context(), principal)
	if err != nil {
		s.logger.WithError(err).WithField("principal_id", principal.ID).Error("resolving buildings")
		httputil.WriteInternalError(w, err)
		return
	}
	writeResourceIDs(w, "building", ids.Slice())
}

// listAccessibleUnits returns every unit the caller can reach, including
// units derived from building-level grants.
//
// GET /api/v1/access/units
func (s *Server) listAccessibleUnits(w http.ResponseWriter, r *http.Request) {
	principal := identity.FromContext(r.Context())

	ids, err := s.resolver.ResolveAccessibleUnits(r.Context(), principal)
	if err != nil {
		s.logger.WithError(err).WithField("principal_id", principal.ID).Error("resolving units")
		httputil.WriteInternalError(w, err)
		return
	}
	writeResourceIDs(w, "unit", ids.Slice())
}

func writeResourceIDs(w http.ResponseWriter, kind string, ids []string) {
	// Set iteration order is random; stable output is friendlier to clients
	// and to tests.
	sort.Strings(ids)
	httputil.WriteSuccess(w, accessibleResourcesResponse{
		ResourceKind: kind,
		IDs:          ids,
		Count:        len(ids),
	})
}
