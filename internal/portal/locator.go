package portal

import (
	"context"
	"net"

	"go.uber.org/zap"

	"iitb-internet/internal/model"
)

type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// Locator builds the portal page URLs.
type Locator struct {
	host     model.PortalHost
	resolver Resolver
	logger   *zap.Logger
}

func NewLocator(host model.PortalHost, resolver Resolver, logger *zap.Logger) *Locator {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &Locator{host: host, resolver: resolver, logger: logger.Named("locator")}
}

// EffectiveHost resolves the portal name. If that fails the fallback IP
// is used when configured, otherwise the name is kept and the fetch fails later.
func (l *Locator) EffectiveHost(ctx context.Context) string {
	name, port, err := net.SplitHostPort(l.host.Name)
	if err != nil {
		name, port = l.host.Name, ""
	}

	_, err = l.resolver.LookupHost(ctx, name)
	if err == nil {
		return l.host.Name
	}
	if l.host.FallbackIP == "" {
		l.logger.Warn("Portal host did not resolve", zap.String("host", name), zap.Error(err))
		return l.host.Name
	}
	l.logger.Warn("Portal host did not resolve, using fallback IP",
		zap.String("host", name), zap.String("fallback_ip", l.host.FallbackIP), zap.Error(err))

	if port != "" {
		return net.JoinHostPort(l.host.FallbackIP, port)
	}
	return l.host.FallbackIP
}

func (l *Locator) LoginURL(ctx context.Context) string {
	return "https://" + l.EffectiveHost(ctx) + "/index.php"
}

func (l *Locator) LogoutURL(ctx context.Context) string {
	return "https://" + l.EffectiveHost(ctx) + "/logout.php"
}
