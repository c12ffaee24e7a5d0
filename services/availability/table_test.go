package availability

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Bizimana-jeanluc/moviesBox/models"
)

func TestDefaultsHaveStreamAndDownloadReferences(t *testing.T) {
	for _, provider := range []string{"tmdb", "omdb"} {
		table, err := New(Defaults(provider))
		require.NoError(t, err, provider)
		require.NotZero(t, table.Len(), provider)

		for _, id := range table.IDs() {
			d, ok := table.Lookup(id)
			require.True(t, ok, "%s/%s", provider, id)
			assert.Equal(t, id, d.ID)
			assert.NotEmpty(t, d.StreamURL, "%s/%s stream", provider, id)
			assert.NotEmpty(t, d.DownloadURL, "%s/%s download", provider, id)
		}
	}
}

func TestLookupAbsent(t *testing.T) {
	table, err := New(Defaults("tmdb"))
	require.NoError(t, err)

	_, ok := table.Lookup("does-not-exist")
	assert.False(t, ok)
	_, ok = table.Lookup("tt0109830") // omdb id in a tmdb table
	assert.False(t, ok)

	var nilTable *Table
	_, ok = nilTable.Lookup("299534")
	assert.False(t, ok)
	assert.Zero(t, nilTable.Len())
}

func TestLookupSlug(t *testing.T) {
	table, err := New(Defaults("tmdb"))
	require.NoError(t, err)

	d, ok := table.LookupSlug("venom")
	require.True(t, ok)
	assert.Equal(t, "335983", d.ID)
	assert.Equal(t, "1h 52m", d.Duration)

	_, ok = table.LookupSlug("nope")
	assert.False(t, ok)
}

func TestNewRejectsBadEntries(t *testing.T) {
	_, err := New([]models.AvailabilityDescriptor{{ID: " "}})
	assert.Error(t, err)

	_, err = New([]models.AvailabilityDescriptor{{ID: "1"}, {ID: "1"}})
	assert.Error(t, err)
}

func TestDefaultsReturnsCopy(t *testing.T) {
	first := Defaults("omdb")
	first[0].Title = "mutated"
	assert.Equal(t, "Forrest Gump", Defaults("omdb")[0].Title)
	assert.Empty(t, Defaults("unknown"))
}

func TestLoadFromFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	raw := `[{"id":"42","title":"Answer","slug":"answer","streamUrl":"/api/stream/answer","downloadUrl":"/api/download/answer","quality":"720p"}]`
	require.NoError(t, afero.WriteFile(fsys, "/etc/table.json", []byte(raw), 0o644))

	table, err := Load(fsys, "/etc/table.json")
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())

	d, ok := table.Lookup("42")
	require.True(t, ok)
	assert.Equal(t, "720p", d.Quality)

	_, err = Load(fsys, "/etc/missing.json")
	assert.Error(t, err)

	require.NoError(t, afero.WriteFile(fsys, "/etc/bad.json", []byte("{"), 0o644))
	_, err = Load(fsys, "/etc/bad.json")
	assert.Error(t, err)
}

func TestLoadRejectsEntriesWithoutReferences(t *testing.T) {
	fsys := afero.NewMemMapFs()
	for name, raw := range map[string]string{
		"no-stream.json":   `[{"id":"42","title":"Answer","downloadUrl":"/download/42"}]`,
		"no-download.json": `[{"id":"42","title":"Answer","streamUrl":"/api/stream/answer"}]`,
		"blank.json":       `[{"id":"42","title":"Answer","streamUrl":" ","downloadUrl":"/download/42"}]`,
	} {
		require.NoError(t, afero.WriteFile(fsys, "/etc/"+name, []byte(raw), 0o644))
		_, err := Load(fsys, "/etc/"+name)
		assert.ErrorContains(t, err, "missing stream or download reference", name)
	}
}
