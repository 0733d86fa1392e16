package gateway

import "github.com/trezcool/mtihani/core"

// AccessGate guards administrative paths with a static origin allow-list.
type AccessGate struct {
	trusted map[string]struct{}
	logger  core.Logger
}

func NewAccessGate(conf Config, logger core.Logger) *AccessGate {
	trusted := make(map[string]struct{}, len(conf.TrustedOrigins))
	for _, origin := range conf.TrustedOrigins {
		trusted[origin] = struct{}{}
	}
	return &AccessGate{trusted: trusted, logger: logger}
}

// AuthorizeAdmin allows only identities whose origin is on the allow-list.
// Independent of rate-limit and suspicion state.
func (g *AccessGate) AuthorizeAdmin(id ClientIdentity) Decision {
	if _, ok := g.trusted[id.Origin]; !ok {
		g.logger.Warn("unauthorized admin access attempt", map[string]interface{}{
			"origin": id.Origin, "subject": id.Subject,
		})
		return Deny(ReasonIPNotWhitelisted)
	}
	return Allow()
}
