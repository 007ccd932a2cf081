package fetcher

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestZIP(t *testing.T, files map[string]string) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "test.zip")
	f, err := os.Create(zipPath)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	w := zip.NewWriter(f)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return zipPath
}

func TestExtractZIP_MultiFile(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"bounds.shp": "shape data",
		"bounds.dbf": "attribute data",
		"bounds.prj": "projection",
	})

	destDir := t.TempDir()
	extracted, err := ExtractZIP(zipPath, destDir)
	require.NoError(t, err)
	assert.Len(t, extracted, 3)

	data, err := os.ReadFile(filepath.Join(destDir, "bounds.shp"))
	require.NoError(t, err)
	assert.Equal(t, "shape data", string(data))
}

func TestExtractZIP_NestedDirs(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"data/inner/file.csv": "a,b",
	})

	destDir := t.TempDir()
	extracted, err := ExtractZIP(zipPath, destDir)
	require.NoError(t, err)
	require.Len(t, extracted, 1)
	assert.FileExists(t, filepath.Join(destDir, "data", "inner", "file.csv"))
}

func TestExtractZIP_RejectsZipSlip(t *testing.T) {
	zipPath := createTestZIP(t, map[string]string{
		"../escape.txt": "nope",
	})

	_, err := ExtractZIP(zipPath, t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zip slip")
}

func TestFindByExt(t *testing.T) {
	paths := []string{"/tmp/x/a.dbf", "/tmp/x/a.SHP", "/tmp/x/a.prj"}

	p, err := FindByExt(paths, ".shp")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/x/a.SHP", p)

	_, err = FindByExt(paths, ".csv")
	require.Error(t, err)
}

func TestFindByPrefix(t *testing.T) {
	paths := []string{
		"/tmp/wb/Metadata_Country_API_SP.POP.TOTL.csv",
		"/tmp/wb/API_SP.POP.TOTL_DS2_en_csv_v2.csv",
	}

	p, err := FindByPrefix(paths, "API_")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/wb/API_SP.POP.TOTL_DS2_en_csv_v2.csv", p)

	_, err = FindByPrefix(paths, "missing_")
	require.Error(t, err)
}
