package users

import (
	"strings"

	"github.com/goliatone/go-router"
)

// DefaultContextKey is the Locals key the token middleware stores claims
// under when the configuration does not set one.
const DefaultContextKey = "claims"

// DefaultAuthScheme is the credential scheme expected in the
// Authorization header.
const DefaultAuthScheme = "Bearer"

// TokenMiddleware validates the bearer credential if one is present and
// stores the claims for downstream handlers. It is deliberately lenient: a
// missing, malformed or expired token produces an anonymous caller and the
// request proceeds. The policy layer denies anything that needs
// authentication, which keeps the 401/403/404 ordering in one place.
func TokenMiddleware(validator TokenValidator, cfg Config, logger Logger) router.MiddlewareFunc {
	if logger == nil {
		logger = defLogger{}
	}

	contextKey := cfg.GetContextKey()
	if contextKey == "" {
		contextKey = DefaultContextKey
	}

	scheme := cfg.GetAuthScheme()
	if scheme == "" {
		scheme = DefaultAuthScheme
	}

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			raw := extractBearer(ctx, scheme)
			if raw == "" {
				return hf(ctx)
			}

			claims, err := validator.Validate(raw)
			if err != nil {
				logger.Debug("token rejected, proceeding anonymous: %v", err)
				return hf(ctx)
			}

			ctx.Locals(contextKey, claims)
			ctx.SetContext(WithClaimsContext(ctx.Context(), claims))

			return hf(ctx)
		}
	}
}

// extractBearer pulls the raw token out of the Authorization header.
func extractBearer(ctx router.Context, scheme string) string {
	header := ctx.GetString(router.HeaderAuthorization, "")
	if header == "" {
		return ""
	}

	prefix := scheme + " "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}

	return strings.TrimSpace(header[len(prefix):])
}
