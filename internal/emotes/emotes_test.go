package emotes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bttvFixture = `{"emotes": [{"code": "mericCat"}, {"code": "POGGIES"}]}`

const ffzFixture = `{"sets": {"318206": {"emoticons": [{"name": "HYPERS"}, {"name": "FeelsBadMan"}]}}}`

func TestFileProvider(t *testing.T) {
	dir := t.TempDir()
	bttvPath := filepath.Join(dir, "bttv.json")
	ffzPath := filepath.Join(dir, "ffz.json")
	require.NoError(t, os.WriteFile(bttvPath, []byte(bttvFixture), 0o644))
	require.NoError(t, os.WriteFile(ffzPath, []byte(ffzFixture), 0o644))

	p := &FileProvider{BTTVPath: bttvPath, FFZPath: ffzPath}
	got, err := p.Emotes(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"mericCat", "POGGIES", "HYPERS", "FeelsBadMan"}, got)
}

func TestFileProviderMissingFile(t *testing.T) {
	p := &FileProvider{BTTVPath: "no-such.json", FFZPath: "no-such-either.json"}
	_, err := p.Emotes(context.Background())
	assert.Error(t, err)
}

func TestAPIProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bttv":
			_, _ = w.Write([]byte(bttvFixture))
		case "/ffz":
			_, _ = w.Write([]byte(ffzFixture))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	p := &APIProvider{BTTVURL: srv.URL + "/bttv", FFZURL: srv.URL + "/ffz"}
	got, err := p.Emotes(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"mericCat", "POGGIES", "HYPERS", "FeelsBadMan"}, got)
}

func TestAPIProviderBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer srv.Close()

	p := &APIProvider{BTTVURL: srv.URL, FFZURL: srv.URL}
	_, err := p.Emotes(context.Background())
	assert.Error(t, err)
}

func TestStatic(t *testing.T) {
	got, err := Static{"Kappa"}.Emotes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Kappa"}, got)
}
