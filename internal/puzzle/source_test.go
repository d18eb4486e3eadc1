package puzzle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleArchive = `{
  "status": "OK",
  "print_date": "2024-01-01",
  "categories": [
    {"title": "Choicest", "cards": [
      {"content": "BEST", "position": 12}, {"content": "CREAM", "position": 13},
      {"content": "PICK", "position": 14}, {"content": "TOP", "position": 15}]},
    {"title": "Shades of red", "cards": [
      {"content": "BRICK", "position": 0}, {"content": "CHERRY", "position": 1},
      {"content": "ROSE", "position": 2}, {"content": "RUBY", "position": 3}]},
    {"title": "A little bit of a beverage", "cards": [
      {"content": "DROP", "position": 5}, {"content": "SPLASH", "position": 4},
      {"content": "SPOT", "position": 6}, {"content": "SPRINKLE", "position": 7}]},
    {"title": "___ Bath", "cards": [
      {"content": "BIRD", "position": 8}, {"content": "BUBBLE", "position": 9},
      {"content": "MUD", "position": 10}, {"content": "SPONGE", "position": 11}]}
  ]
}`

func TestDecode(t *testing.T) {
	p, err := Decode([]byte(sampleArchive))
	require.NoError(t, err)

	groups := p.Groups()
	require.Len(t, groups, NumGroups)
	assert.Equal(t, "Choicest", groups[0].Label)
	assert.Equal(t, 3, groups[0].Level)
	assert.Equal(t, 0, groups[1].Level)
	assert.Equal(t, 1, groups[2].Level)
	assert.Equal(t, 2, groups[3].Level)
}

func TestDecode_Errors(t *testing.T) {
	_, err := Decode([]byte("{not json"))
	assert.Error(t, err)

	_, err = Decode([]byte(`{"categories": []}`))
	assert.True(t, errors.Is(err, ErrMalformedPuzzle))
}

func TestNumber(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"2023-06-12", 1},
		{"2023-06-13", 2},
		{"2024-06-12", 367},
	}

	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			got, err := Number(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := Number("yesterday")
	assert.Error(t, err)
}

func TestDates(t *testing.T) {
	dates, err := Dates("2024-02-27", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01"}, dates)

	dates, err = Dates("2024-03-01", "2024-02-27")
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestFileSource_Load(t *testing.T) {
	dir := t.TempDir()
	src := FileSource{Dir: dir}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024-01-01.json"), []byte(sampleArchive), 0644))

	p, err := src.Load(context.Background(), "2024-01-01")
	require.NoError(t, err)
	assert.True(t, p.Contains("SPONGE"))

	_, err = src.Load(context.Background(), "2024-01-02")
	assert.Error(t, err)
}

func TestHTTPSource_Load(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/2024-01-01.json") {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(sampleArchive))
	}))
	defer server.Close()

	src := &HTTPSource{URLTemplate: server.URL + "/v2/{date}.json", Client: server.Client()}

	p, err := src.Load(context.Background(), "2024-01-01")
	require.NoError(t, err)
	assert.True(t, p.Contains("BRICK"))

	_, err = src.Load(context.Background(), "2024-01-02")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestFetcher_Fetch(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if strings.Contains(r.URL.Path, "2024-01-03") {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(sampleArchive))
	}))
	defer server.Close()

	dir := t.TempDir()
	local := FileSource{Dir: filepath.Join(dir, "data")}
	require.NoError(t, os.MkdirAll(local.Dir, 0755))
	require.NoError(t, os.WriteFile(local.Path("2024-01-01"), []byte(sampleArchive), 0644))

	f := &Fetcher{
		Remote: &HTTPSource{URLTemplate: server.URL + "/{date}.json", Client: server.Client()},
		Local:  local,
		Logger: zerolog.Nop(),
	}

	sum, err := f.Fetch(context.Background(), "2024-01-01", "2024-01-03")
	require.NoError(t, err)
	assert.Equal(t, FetchSummary{Downloaded: 1, Skipped: 1, Failed: 1}, sum)
	assert.Equal(t, 2, requests)

	_, err = local.Load(context.Background(), "2024-01-02")
	assert.NoError(t, err)
}

func TestChainSource_Load(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024-01-01.json"), []byte(sampleArchive), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "2024-01-03.json"), []byte(`{"categories": []}`), 0644))

	var remoteCalls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		remoteCalls++
		if strings.HasSuffix(r.URL.Path, "/2024-01-02.json") {
			w.Write([]byte(sampleArchive))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	chain := ChainSource{
		FileSource{Dir: dir},
		&HTTPSource{URLTemplate: server.URL + "/{date}.json", Client: server.Client()},
	}

	t.Run("local hit", func(t *testing.T) {
		p, err := chain.Load(context.Background(), "2024-01-01")
		require.NoError(t, err)
		assert.True(t, p.Contains("RUBY"))
		assert.Equal(t, 0, remoteCalls)
	})

	t.Run("falls back to remote", func(t *testing.T) {
		p, err := chain.Load(context.Background(), "2024-01-02")
		require.NoError(t, err)
		assert.True(t, p.Contains("RUBY"))
		assert.Equal(t, 1, remoteCalls)
	})

	t.Run("malformed local stops", func(t *testing.T) {
		_, err := chain.Load(context.Background(), "2024-01-03")
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMalformedPuzzle))
		assert.Equal(t, 1, remoteCalls)
	})

	t.Run("all sources fail", func(t *testing.T) {
		_, err := chain.Load(context.Background(), "2024-01-04")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 404")
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("empty chain", func(t *testing.T) {
		_, err := ChainSource{}.Load(context.Background(), "2024-01-01")
		assert.Error(t, err)
	})
}
