package llm

import "strings"

const (
	ProviderGroq   = "groq"
	ProviderGemini = "gemini"
)

var placeholderKeys = map[string]struct{}{
	"your_gemini_api_key_here": {},
	"your_groq_api_key_here":   {},
	"changeme":                 {},
}

// Availability records, once at startup, whether a live provider may be
// called. It is a value type and never changes after construction.
type Availability struct {
	provider string
	ok       bool
	reason   string
}

// CheckCredential validates the shape of key for provider. It never
// contacts the provider.
func CheckCredential(provider, key string) Availability {
	provider = strings.ToLower(strings.TrimSpace(provider))
	key = strings.TrimSpace(key)
	switch {
	case key == "":
		return Availability{provider: provider, reason: "no api key configured"}
	case isPlaceholder(key):
		return Availability{provider: provider, reason: "api key is a placeholder"}
	case provider == ProviderGroq && !strings.HasPrefix(key, "gsk_"):
		return Availability{provider: provider, reason: "groq api key must start with gsk_"}
	case provider != ProviderGroq && provider != ProviderGemini:
		return Availability{provider: provider, reason: "unknown provider " + provider}
	}
	return Availability{provider: provider, ok: true}
}

// Unavailable is the zero-provider state used when nothing is configured.
func Unavailable(reason string) Availability {
	return Availability{reason: reason}
}

func (a Availability) Configured() bool { return a.ok }
func (a Availability) Provider() string { return a.provider }

// Reason explains why the provider is unavailable. Empty when configured.
func (a Availability) Reason() string { return a.reason }

func isPlaceholder(key string) bool {
	_, ok := placeholderKeys[strings.ToLower(key)]
	return ok
}
