// Package githubclient builds an authenticated GitHub API client from either
// a static token or GitHub App installation credentials.
package githubclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/google/go-github/v68/github"
	"golang.org/x/oauth2"
)

// Options selects how the client authenticates. App credentials take
// precedence over Token when AppID is set.
type Options struct {
	Token          string
	AppID          int64
	InstallationID int64
	PrivateKeyPath string
	// APIURL is a GitHub Enterprise API root. Empty means api.github.com.
	APIURL string
}

// Client bundles the API client with a token source for git pushes.
type Client struct {
	*github.Client
	token func(ctx context.Context) (string, error)
}

// Token returns a token suitable for HTTPS git authentication.
func (c *Client) Token(ctx context.Context) (string, error) {
	return c.token(ctx)
}

// New creates an authenticated client.
func New(ctx context.Context, opts Options) (*Client, error) {
	var (
		httpClient *http.Client
		token      func(context.Context) (string, error)
	)

	switch {
	case opts.AppID != 0:
		itr, err := ghinstallation.NewKeyFromFile(http.DefaultTransport, opts.AppID, opts.InstallationID, opts.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("creating installation transport: %w", err)
		}
		if opts.APIURL != "" {
			itr.BaseURL = strings.TrimSuffix(opts.APIURL, "/")
		}
		httpClient = &http.Client{Transport: itr}
		token = itr.Token
	case opts.Token != "":
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token})
		httpClient = oauth2.NewClient(ctx, ts)
		token = func(context.Context) (string, error) { return opts.Token, nil }
	default:
		return nil, errors.New("no GitHub credentials configured")
	}

	client := github.NewClient(httpClient)
	if opts.APIURL != "" {
		var err error
		client, err = client.WithEnterpriseURLs(opts.APIURL, opts.APIURL)
		if err != nil {
			return nil, fmt.Errorf("configuring enterprise URL %s: %w", opts.APIURL, err)
		}
	}

	return &Client{Client: client, token: token}, nil
}
