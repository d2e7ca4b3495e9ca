package auth

import "strings"

// Admin bypass contract: presence of this header with this exact value grants
// admin rights with no further proof. The value match is case-sensitive.
// This is a known low-assurance escape hatch kept for compatibility with
// existing admin tooling; replacing it with token-based admin auth is a
// breaking change for those clients.
const (
	AdminHeader      = "X-Admin-Request"
	AdminHeaderValue = "true"
)

// DecisionKind classifies an access decision.
type DecisionKind int

const (
	// DecisionDenied rejects the request.
	DecisionDenied DecisionKind = iota
	// DecisionAdmin grants privileged access via the bypass header.
	DecisionAdmin
	// DecisionUser grants standard access backed by a verified token.
	DecisionUser
)

// DenyReason explains a denied decision.
type DenyReason int

const (
	// DenyNone is set on granted decisions.
	DenyNone DenyReason = iota
	// DenyNoCredentials means neither the admin header nor a bearer token was presented.
	DenyNoCredentials
	// DenyInvalidToken means a bearer token was presented but failed verification.
	DenyInvalidToken
)

// Decision is the outcome of the access gate for a single request.
type Decision struct {
	Kind     DecisionKind
	Identity *Identity // set only for DecisionUser
	Reason   DenyReason
}

// TokenVerifier verifies a raw bearer token and returns the identity it proves.
type TokenVerifier func(token string) (*Identity, error)

// Decide evaluates the access gate against raw request headers.
//
// The admin bypass header is checked first and short-circuits token handling
// entirely. Otherwise a Bearer authorization header is required; a missing or
// malformed header denies with DenyNoCredentials, a failed verification with
// DenyInvalidToken. The function is pure apart from the verifier call so it
// can be exercised without a live request object.
func Decide(header func(key string) string, verify TokenVerifier) Decision {
	if IsAdminRequest(header) {
		return Decision{Kind: DecisionAdmin}
	}

	token, ok := bearerToken(header("Authorization"))
	if !ok {
		return Decision{Kind: DecisionDenied, Reason: DenyNoCredentials}
	}

	identity, err := verify(token)
	if err != nil {
		return Decision{Kind: DecisionDenied, Reason: DenyInvalidToken}
	}

	return Decision{Kind: DecisionUser, Identity: identity}
}

// IsAdminRequest reports whether the admin bypass header carries the exact
// sentinel value. This is the whole of the admin-route check: routes guarded
// by it never fall back to token validation.
func IsAdminRequest(header func(key string) string) bool {
	return header(AdminHeader) == AdminHeaderValue
}

func bearerToken(authorization string) (string, bool) {
	if !strings.HasPrefix(strings.ToLower(authorization), "bearer ") {
		return "", false
	}

	token := strings.TrimSpace(authorization[len("Bearer "):])
	if token == "" {
		return "", false
	}

	return token, true
}
