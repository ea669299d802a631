// Package platformapi discovers the latest Quarkus platform release from the
// code.quarkus.io platforms API.
package platformapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/chainguard-dev/clog"

	"github.com/nathantilsley/platform-sync/internal/sync/domain"
)

// DefaultURL is the public platforms endpoint.
const DefaultURL = "https://code.quarkus.io/api/platforms"

const source = "platforms response"

type platformsResponse struct {
	Platforms []platform `json:"platforms"`
}

type platform struct {
	Streams []stream `json:"streams"`
}

type stream struct {
	Releases []release `json:"releases"`
}

type release struct {
	QuarkusCoreVersion string `json:"quarkusCoreVersion"`
}

// Adapter implements ports.ReleasePort over HTTP.
type Adapter struct {
	client *http.Client
	url    string
}

// New creates a new platforms API adapter. A nil client uses
// http.DefaultClient; an empty url uses DefaultURL.
func New(client *http.Client, url string) *Adapter {
	if client == nil {
		client = http.DefaultClient
	}
	if url == "" {
		url = DefaultURL
	}
	return &Adapter{client: client, url: url}
}

// LatestVersion returns the core version of the first release of the first
// stream of the first platform.
func (a *Adapter) LatestVersion(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("creating platforms request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting platforms: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			clog.FromContext(ctx).Warn("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		//nolint:errcheck // Best effort read for the error message only
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("unexpected status from %s: %d: %s", a.url, resp.StatusCode, body)
	}

	var data platformsResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decoding platforms response: %w", err)
	}

	version, err := data.latestCoreVersion()
	if err != nil {
		return "", err
	}
	clog.FromContext(ctx).Debug("Fetched latest platform", "url", a.url, "version", version)
	return version, nil
}

func (r platformsResponse) latestCoreVersion() (string, error) {
	if len(r.Platforms) == 0 {
		return "", domain.NewUnexpectedShapeError(source, "platforms[0]")
	}
	streams := r.Platforms[0].Streams
	if len(streams) == 0 {
		return "", domain.NewUnexpectedShapeError(source, "platforms[0].streams[0]")
	}
	releases := streams[0].Releases
	if len(releases) == 0 {
		return "", domain.NewUnexpectedShapeError(source, "platforms[0].streams[0].releases[0]")
	}
	if releases[0].QuarkusCoreVersion == "" {
		return "", domain.NewUnexpectedShapeError(source, "platforms[0].streams[0].releases[0].quarkusCoreVersion")
	}
	return releases[0].QuarkusCoreVersion, nil
}
