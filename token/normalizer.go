package token

// Canonical claim names. Downstream authorization depends on exactly this
// vocabulary; every legacy naming scheme is rewritten to it on decode.
const (
	ClaimSubject = "sub"
	ClaimName    = "name"
	ClaimEmail   = "email"
	ClaimRole    = "role"
	ClaimTokenID = "jti"
)

// claimAliases maps each canonical name to the legacy identifiers that may
// carry the same concept, in lookup priority order. The WS-* URIs come
// from tokens minted by earlier identity stacks; the short forms are the
// abbreviations those stacks serialize into JWTs.
var claimAliases = map[string][]string{
	ClaimSubject: {
		"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/nameidentifier",
		"nameid",
	},
	ClaimName: {
		"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/name",
		"unique_name",
	},
	ClaimEmail: {
		"http://schemas.xmlsoap.org/ws/2005/05/identity/claims/emailaddress",
		"emailaddress",
	},
	ClaimRole: {
		"http://schemas.microsoft.com/ws/2008/06/identity/claims/role",
	},
}

// NormalizeClaims rewrites provider-specific claim identifiers into the
// canonical vocabulary. It returns a new map and leaves the input intact:
// for each concept the canonical entry wins when present, otherwise the
// highest-priority known alias is promoted; all aliases are dropped from
// the result. Running it on an already-canonical map is a no-op. Concepts
// absent under every alias stay absent; nothing is invented.
func NormalizeClaims(raw map[string]interface{}) map[string]interface{} {
	aliasKeys := make(map[string]struct{})
	for _, aliases := range claimAliases {
		for _, a := range aliases {
			aliasKeys[a] = struct{}{}
		}
	}

	out := make(map[string]interface{}, len(raw))
	for key, value := range raw {
		if _, isAlias := aliasKeys[key]; isAlias {
			continue
		}
		out[key] = value
	}

	for canonical, aliases := range claimAliases {
		if _, exists := out[canonical]; exists {
			continue
		}
		for _, alias := range aliases {
			if value, exists := raw[alias]; exists {
				out[canonical] = value
				break
			}
		}
	}

	return out
}
