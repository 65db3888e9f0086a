package types

type ControlPlane string

const (
	ControlPlaneUS  ControlPlane = "us"
	ControlPlaneEU1 ControlPlane = "eu1"
	ControlPlaneGov ControlPlane = "gov"
)
