package metrics

// Metric attribute keys shared by every instrument.
const (
	AttrMethod   = "method"
	AttrPath     = "path"
	AttrStatus   = "status"
	AttrUpstream = "upstream"
	AttrOutcome  = "outcome"
	AttrArtifact = "artifact"
)
