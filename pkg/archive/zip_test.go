package archive

import (
	"bytes"
	"errors"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtnitsch/bac-archiver/models"
)

func buildZip(t *testing.T, files map[string]string, dirs ...string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, d := range dirs {
		_, err := w.Create(d)
		require.NoError(t, err)
	}
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestUnpack(t *testing.T) {
	data := buildZip(t, map[string]string{
		"E_c_istorie_2025/E_c_istorie_2025_var_model_LRO.pdf": "%PDF-var",
		"E_c_istorie_2025/E_c_istorie_2025_bar_model_LRO.PDF": "%PDF-bar",
		"E_c_istorie_2025/readme.txt":                         "ignore me",
		"E_c_istorie_2025/empty.pdf":                          "",
	}, "E_c_istorie_2025/")

	entries, skipped, err := Unpack(data, []string{".pdf"})
	require.NoError(t, err)
	assert.Empty(t, skipped)

	require.Len(t, entries, 2)
	assert.Equal(t, "E_c_istorie_2025/E_c_istorie_2025_bar_model_LRO.PDF", entries[0].Name)
	assert.Equal(t, "%PDF-bar", string(entries[0].Data))
	assert.Equal(t, "E_c_istorie_2025/E_c_istorie_2025_var_model_LRO.pdf", entries[1].Name)
	assert.Equal(t, "%PDF-var", string(entries[1].Data))
}

func TestUnpack_Empty(t *testing.T) {
	entries, _, err := Unpack(buildZip(t, nil), []string{".pdf"})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUnpack_NotAZip(t *testing.T) {
	_, _, err := Unpack([]byte("<html>404</html>"), []string{".pdf"})
	assert.Error(t, err)
}

// storedZipWithDamage writes names in order without compression and flips
// one byte of damaged's payload so its checksum no longer matches.
func storedZipWithDamage(t *testing.T, names []string, damaged string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		fw, err := w.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
		require.NoError(t, err)
		_, err = fw.Write([]byte("%PDF-payload-" + name))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	data := buf.Bytes()
	payload := []byte("%PDF-payload-" + damaged)
	i := bytes.Index(data, payload)
	require.GreaterOrEqual(t, i, 0)
	data[i+len(payload)-1] ^= 0xff
	return data
}

func TestUnpack_DamagedEntryIsSkipped(t *testing.T) {
	data := storedZipWithDamage(t, []string{"a_good.pdf", "b_bad.pdf", "c_good.pdf"}, "b_bad.pdf")

	entries, skipped, err := Unpack(data, []string{".pdf"})
	require.NoError(t, err)

	require.Len(t, entries, 2)
	assert.Equal(t, "a_good.pdf", entries[0].Name)
	assert.Equal(t, "%PDF-payload-a_good.pdf", string(entries[0].Data))
	assert.Equal(t, "c_good.pdf", entries[1].Name)

	require.Len(t, skipped, 1)
	assert.Equal(t, "b_bad.pdf", skipped[0].Entry)
	assert.True(t, errors.Is(skipped[0], zip.ErrChecksum))
	assert.Equal(t, models.ErrorTypeUnpack, models.ErrorType(skipped[0]))
}
