package pomxml

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nathantilsley/platform-sync/internal/sync/domain"
)

const pom = `<?xml version="1.0" encoding="UTF-8"?>
<project xmlns="http://maven.apache.org/POM/4.0.0"
         xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">
  <modelVersion>4.0.0</modelVersion>
  <groupId>function</groupId>
  <artifactId>function</artifactId>
  <properties>
    <compiler-plugin.version>3.11.0</compiler-plugin.version>
    <quarkus.platform.version> 3.14.0 </quarkus.platform.version>
  </properties>
</project>
`

func writeFile(t *testing.T, dir, name, content string, mode os.FileMode) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), mode))
}

func TestAdapter_ReadVersion(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "http/pom.xml", pom, 0o644)

	got, err := New(dir, "").ReadVersion(context.Background(), "http/pom.xml")
	require.NoError(t, err)
	require.Equal(t, "3.14.0", got)
}

func TestPinnedVersion_DeclaredEncoding(t *testing.T) {
	// "Société" in ISO-8859-1.
	content := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?>\n" +
		"<project><name>Soci\xe9t\xe9</name><properties>" +
		"<quarkus.platform.version>3.14.0</quarkus.platform.version>" +
		"</properties></project>\n")

	got, err := PinnedVersion(content, domain.DefaultProperty, "pom.xml")
	require.NoError(t, err)
	require.Equal(t, "3.14.0", got)

	updated, err := domain.RewritePinnedVersion(content, domain.DefaultProperty, "3.15.1")
	require.NoError(t, err)
	require.Contains(t, string(updated), "Soci\xe9t\xe9")

	got, err = PinnedVersion(updated, domain.DefaultProperty, "pom.xml")
	require.NoError(t, err)
	require.Equal(t, "3.15.1", got)
}

func TestPinnedVersion_Errors(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantShape bool
	}{
		{
			name:    "malformed XML",
			content: "<project><properties>",
		},
		{
			name:    "not a project",
			content: "<settings/>",
		},
		{
			name:      "missing property",
			content:   "<project><properties><other>1</other></properties></project>",
			wantShape: true,
		},
		{
			name:      "missing properties block",
			content:   "<project><groupId>x</groupId></project>",
			wantShape: true,
		},
		{
			name:      "empty property",
			content:   "<project><properties><quarkus.platform.version/></properties></project>",
			wantShape: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := PinnedVersion([]byte(tt.content), domain.DefaultProperty, "pom.xml")
			require.Error(t, err)
			require.Equal(t, tt.wantShape, domain.IsUnexpectedShape(err), "error: %v", err)
		})
	}
}

func TestAdapter_LoadSave(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pom.xml", pom, 0o600)
	a := New(dir, domain.DefaultProperty)
	ctx := context.Background()

	content, err := a.Load(ctx, "pom.xml")
	require.NoError(t, err)
	require.Equal(t, pom, string(content))

	updated, err := domain.RewritePinnedVersion(content, domain.DefaultProperty, "3.15.1")
	require.NoError(t, err)
	require.NoError(t, a.Save(ctx, "pom.xml", updated))

	got, err := a.ReadVersion(ctx, "pom.xml")
	require.NoError(t, err)
	require.Equal(t, "3.15.1", got)

	info, err := os.Stat(filepath.Join(dir, "pom.xml"))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestAdapter_MissingFile(t *testing.T) {
	a := New(t.TempDir(), "")
	ctx := context.Background()

	_, err := a.ReadVersion(ctx, "absent/pom.xml")
	require.ErrorIs(t, err, os.ErrNotExist)

	err = a.Save(ctx, "absent/pom.xml", []byte("x"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
