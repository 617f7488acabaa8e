package domain

import "fmt"

// Provider identifies an external OAuth identity provider.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderGithub Provider = "github"
)

// ParseProvider validates a provider name from the wire.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderGoogle:
		return ProviderGoogle, nil
	case ProviderGithub:
		return ProviderGithub, nil
	}
	return "", fmt.Errorf("unknown oauth provider %q", s)
}

func (p Provider) String() string {
	return string(p)
}
