package core

import (
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"anypoint-export/internal/types"
)

// PlaneEndpoints holds the resolved endpoints of one regional control plane.
type PlaneEndpoints struct {
	Plane   types.ControlPlane
	AuthURL string
	BaseURL string
}

var controlPlaneDomains = map[types.ControlPlane]string{
	types.ControlPlaneUS:  "anypoint.mulesoft.com",
	types.ControlPlaneEU1: "eu1.anypoint.mulesoft.com",
	types.ControlPlaneGov: "gov.anypoint.mulesoft.com",
}

// ResolveControlPlane maps a control-plane identifier to its auth and API
// endpoints. Anything outside the fixed set is a configuration error.
func ResolveControlPlane(value string) (PlaneEndpoints, error) {
	plane := types.ControlPlane(strings.ToLower(strings.TrimSpace(value)))
	if plane == "" {
		plane = types.ControlPlaneUS
	}
	domain, ok := controlPlaneDomains[plane]
	if !ok {
		return PlaneEndpoints{}, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("control plane must be one of: us, eu1, gov")
	}
	return PlaneEndpoints{
		Plane:   plane,
		AuthURL: "https://" + domain + "/accounts/api/v2/oauth2/token",
		BaseURL: "https://" + domain + "/cloudhub/api",
	}, nil
}
