// Package pomxml reads and writes Maven build descriptors on disk.
package pomxml

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/html/charset"

	"github.com/nathantilsley/platform-sync/internal/sync/domain"
)

type project struct {
	XMLName    xml.Name   `xml:"project"`
	Properties properties `xml:"properties"`
}

type properties struct {
	Entries []property `xml:",any"`
}

type property struct {
	XMLName xml.Name
	Value   string `xml:",chardata"`
}

// Adapter implements ports.DescriptorPort for pom.xml files under a
// repository root.
type Adapter struct {
	root     string
	property string
}

// New creates a new descriptor adapter. Relative paths are resolved against
// root; property is the Maven property holding the pinned version.
func New(root, property string) *Adapter {
	if property == "" {
		property = domain.DefaultProperty
	}
	return &Adapter{root: root, property: property}
}

// ReadVersion parses the descriptor at path and returns its pinned version.
func (a *Adapter) ReadVersion(ctx context.Context, path string) (string, error) {
	content, err := a.Load(ctx, path)
	if err != nil {
		return "", err
	}
	return PinnedVersion(content, a.property, path)
}

// PinnedVersion extracts the trimmed text of project/properties/<property>.
// Descriptors declaring a non-UTF-8 encoding are transcoded first.
func PinnedVersion(content []byte, property, path string) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(content))
	dec.CharsetReader = charset.NewReaderLabel

	var pom project
	if err := dec.Decode(&pom); err != nil {
		return "", fmt.Errorf("parsing %s: %w", path, err)
	}

	for _, p := range pom.Properties.Entries {
		if p.XMLName.Local != property {
			continue
		}
		if v := strings.TrimSpace(p.Value); v != "" {
			return v, nil
		}
		break
	}
	return "", domain.NewUnexpectedShapeError(path, "project.properties."+property)
}

// Load returns the raw content of the descriptor at path.
func (a *Adapter) Load(_ context.Context, path string) ([]byte, error) {
	//nolint:gosec // G304: Descriptor paths come from trusted configuration
	content, err := os.ReadFile(a.resolve(path))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return content, nil
}

// Save replaces the descriptor at path with content, keeping its file mode.
func (a *Adapter) Save(_ context.Context, path string, content []byte) error {
	target := a.resolve(path)
	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.WriteFile(target, content, info.Mode().Perm()); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func (a *Adapter) resolve(path string) string {
	if filepath.IsAbs(path) || a.root == "" {
		return path
	}
	return filepath.Join(a.root, path)
}
