// Package auth resolves the Authorization header for outgoing requests.
package auth

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/netvista-io/netsync/pkg/netsync"
)

// CredentialProvider produces the Authorization header value for a request.
type CredentialProvider interface {
	AuthorizationHeader(ctx context.Context) (string, error)
}

// bearerProvider wraps a token provider into a Bearer header.
type bearerProvider struct {
	tokens netsync.TokenProvider
}

// AuthorizationHeader implements CredentialProvider.
func (p *bearerProvider) AuthorizationHeader(ctx context.Context) (string, error) {
	token, err := p.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("getting token: %w", err)
	}

	return "Bearer " + token, nil
}

// basicProvider serves a fixed basic-auth header.
type basicProvider struct {
	header string
}

// AuthorizationHeader implements CredentialProvider.
func (p *basicProvider) AuthorizationHeader(ctx context.Context) (string, error) {
	return p.header, nil
}

// fallbackProvider tries providers in order until one succeeds.
type fallbackProvider struct {
	providers []CredentialProvider
}

// AuthorizationHeader implements CredentialProvider.
func (p *fallbackProvider) AuthorizationHeader(ctx context.Context) (string, error) {
	var lastErr error

	for _, provider := range p.providers {
		header, err := provider.AuthorizationHeader(ctx)
		if err == nil && header != "" {
			return header, nil
		}

		if err != nil {
			lastErr = err
		}
	}

	if lastErr != nil {
		return "", lastErr
	}

	return "", netsync.ErrCredentialsNeeded
}

// NewBearerProvider creates a provider serving Bearer tokens.
func NewBearerProvider(tokens netsync.TokenProvider) CredentialProvider {
	return &bearerProvider{tokens: tokens}
}

// NewBasicProvider creates a provider serving a fixed basic-auth header.
func NewBasicProvider(user, pass string) CredentialProvider {
	creds := base64.StdEncoding.EncodeToString([]byte(user + ":" + pass))

	return &basicProvider{header: "Basic " + creds}
}

// NewChainProvider builds the credential chain from config: bearer tokens
// when a provider is configured, basic auth as the fallback. Exactly one
// Authorization header value is ever produced.
func NewChainProvider(tokens netsync.TokenProvider, user, pass string) (CredentialProvider, error) {
	providers := make([]CredentialProvider, 0, 2)

	if tokens != nil {
		providers = append(providers, NewBearerProvider(tokens))
	}

	if user != "" {
		providers = append(providers, NewBasicProvider(user, pass))
	}

	if len(providers) == 0 {
		return nil, netsync.ErrCredentialsNeeded
	}

	if len(providers) == 1 {
		return providers[0], nil
	}

	return &fallbackProvider{providers: providers}, nil
}
