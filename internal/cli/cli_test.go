package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thedittmer/briefly/internal/models"
	"github.com/thedittmer/briefly/internal/search"
)

// newBackend serves the Django login page (which sets the csrftoken cookie)
// and hands every other request to mux after checking the token.
func newBackend(t *testing.T, mux *http.ServeMux) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet && r.URL.Path == "/en/login/" {
			http.SetCookie(w, &http.Cookie{Name: "csrftoken", Value: "cli-token", Path: "/"})
			return
		}
		if r.Method != http.MethodGet && r.Header.Get("X-CSRFToken") != "cli-token" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func respond(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func articles(n int) []models.Article {
	out := make([]models.Article, n)
	for i := range out {
		out[i] = models.Article{
			Title:     fmt.Sprintf("Story %d", i+1),
			Publisher: "Wire",
			Date:      "Mon, 01 Jan 2024",
			Link:      fmt.Sprintf("https://news.example.com/%d", i+1),
		}
	}
	return out
}

// run executes the root command against srv with dataDir and input.
func run(t *testing.T, srv *httptest.Server, dataDir, input string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer

	cmd := NewRootCommand()
	cmd.SetArgs(append([]string{"--data-dir", dataDir, "--base-url", srv.URL, "--log-level", "debug"}, args...))
	cmd.SetIn(strings.NewReader(input))
	cmd.SetOut(&out)
	cmd.SetErr(&out)

	err := cmd.Execute()
	return out.String(), err
}

func TestSearchOncePrintsFirstPage(t *testing.T) {
	mux := http.NewServeMux()
	var got models.SearchQuery
	mux.HandleFunc("/en/search/results/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		respond(w, http.StatusOK, map[string]any{"articles": articles(7)})
	})
	srv := newBackend(t, mux)

	out, err := run(t, srv, t.TempDir(), "", "search", "--once", "--title", "AI", "--keywords", "chips")
	require.NoError(t, err)

	assert.Equal(t, models.SearchQuery{Title: "AI", Keywords: "chips"}, got)
	assert.Contains(t, out, "Story 1")
	assert.Contains(t, out, "Story 5")
	assert.NotContains(t, out, "Story 6")
	assert.Contains(t, out, search.SucceededMessage)
}

func TestSearchOnceReportsBackendFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/en/search/results/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("<h1>Server Error</h1>"))
	})
	srv := newBackend(t, mux)

	out, err := run(t, srv, t.TempDir(), "", "search", "--once", "--title", "x", "--keywords", "y")
	require.Error(t, err)
	assert.Contains(t, out, search.FailedMessage)
	assert.NotContains(t, out, search.SucceededMessage)
}

func TestSearchOnceShowsBackendErrorMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/en/search/results/", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusBadRequest, map[string]string{"error": "Keywords are required."})
	})
	srv := newBackend(t, mux)

	out, err := run(t, srv, t.TempDir(), "", "search", "--once")
	require.Error(t, err)
	assert.Contains(t, out, "Keywords are required.")
}

func TestSearchOnceExportsCSV(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/en/search/results/", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]any{"articles": articles(3)})
	})
	srv := newBackend(t, mux)

	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")
	_, err := run(t, srv, dir, "", "search", "--once", "--keywords", "k", "--export", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 4)
	assert.Equal(t, "title,link,date,publisher,image", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Story 1,https://news.example.com/1,"))
}

func TestSearchPagerNavigates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/en/search/results/", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]any{"articles": articles(7)})
	})
	srv := newBackend(t, mux)

	out, err := run(t, srv, t.TempDir(), "n\nn\np\nq\n", "search", "--keywords", "k")
	require.NoError(t, err)

	assert.Contains(t, out, "page 1/2 · 7 articles")
	assert.Contains(t, out, "page 2/2 · 7 articles")
	assert.Contains(t, out, "Story 7")
	assert.Equal(t, 2, strings.Count(out, "Story 6"), "next on the last page redraws it")
}

func TestSearchPagerPromptsForQueryAndStopsAtEOF(t *testing.T) {
	mux := http.NewServeMux()
	var got models.SearchQuery
	mux.HandleFunc("/en/search/results/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		respond(w, http.StatusOK, map[string]any{"articles": articles(2)})
	})
	srv := newBackend(t, mux)

	out, err := run(t, srv, t.TempDir(), "Markets\nrates, inflation\nbogus\n", "search")
	require.NoError(t, err)

	assert.Equal(t, models.SearchQuery{Title: "Markets", Keywords: "rates, inflation"}, got)
	assert.Contains(t, out, "Story 2")
	assert.Contains(t, out, `Unknown command "bogus"`)
}

func TestSearchPagerExportWithoutResults(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/en/search/results/", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]any{})
	})
	srv := newBackend(t, mux)

	out, err := run(t, srv, t.TempDir(), "e\nq\n", "search", "--keywords", "k")
	require.NoError(t, err)
	assert.Contains(t, out, "No articles to show.")
	assert.Contains(t, out, "Nothing to export yet.")
}

func TestSearchPagerExportShowsBannerOnce(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/en/search/results/", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]any{"articles": articles(7)})
	})
	srv := newBackend(t, mux)
	dir := t.TempDir()

	out, err := run(t, srv, dir, "e\nq\n", "search", "--keywords", "k")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "Exported 7 articles"))

	files, err := filepath.Glob(filepath.Join(dir, "search_results", "search_results_*.csv"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestSearchExportWarnsOnEmptyResults(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/en/search/results/", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]any{"articles": []models.Article{}})
	})
	srv := newBackend(t, mux)
	dir := t.TempDir()
	path := filepath.Join(dir, "out.csv")

	out, err := run(t, srv, dir, "", "search", "--once", "--keywords", "k", "--export", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to export yet.")
	assert.NoFileExists(t, path)
}

func TestSearchExportAfterPromptedQuery(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/en/search/results/", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]any{"articles": articles(2)})
	})
	srv := newBackend(t, mux)
	dir := t.TempDir()
	path := filepath.Join(dir, "prompted.csv")

	out, err := run(t, srv, dir, "Markets\nrates\nq\n", "search", "--export", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 2 articles to "+path)
	assert.FileExists(t, path)
}

func TestSearchPagerUppercaseKeys(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/en/search/results/", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]any{"articles": articles(7)})
	})
	srv := newBackend(t, mux)
	dir := t.TempDir()
	config := "keyboard:\n  next_page: N\n  quit: Q\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(config), 0644))

	out, err := run(t, srv, dir, "N\nQ\n", "search", "--keywords", "k")
	require.NoError(t, err)
	assert.Contains(t, out, "page 2/2 · 7 articles")
	assert.NotContains(t, out, "Unknown command")
}

func TestLoginPersistsSessionAndLogoutClearsIt(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/en/login/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["password"] != "secret" {
			respond(w, http.StatusOK, models.LoginResult{Error: "Invalid credentials."})
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "sessionid", Value: "s1", Path: "/"})
		respond(w, http.StatusOK, models.LoginResult{Success: true, RedirectURL: "/en/dashboard/"})
	})
	var sawSession bool
	mux.HandleFunc("/en/settings/modify/account/", func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("sessionid"); err == nil && ck.Value == "s1" {
			sawSession = true
		}
		respond(w, http.StatusOK, models.StatusMessage{Message: "Saved."})
	})
	var endedSession string
	mux.HandleFunc("/en/logout/", func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("sessionid"); err == nil {
			endedSession = ck.Value
		}
		http.Redirect(w, r, "/en/login/", http.StatusFound)
	})
	srv := newBackend(t, mux)
	dir := t.TempDir()

	out, err := run(t, srv, dir, "", "login", "--email", "a@b.c", "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, out, "Invalid credentials.")

	out, err = run(t, srv, dir, "a@b.c\nsecret\n", "login")
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as a@b.c")
	assert.FileExists(t, filepath.Join(dir, "session.json"))

	out, err = run(t, srv, dir, "", "account", "update", "--full-name", "Ada")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved.")
	assert.True(t, sawSession, "saved session cookie is sent by later commands")

	_, err = run(t, srv, dir, "", "logout")
	require.NoError(t, err)
	assert.Equal(t, "s1", endedSession, "logout ends the server-side session")
	assert.NoFileExists(t, filepath.Join(dir, "session.json"))
}

func TestLogoutClearsSessionWhenServerFails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/en/logout/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := newBackend(t, mux)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "session.json"), []byte(`{"cookies":[]}`), 0600))

	out, err := run(t, srv, dir, "", "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Could not end the server session")
	assert.NoFileExists(t, filepath.Join(dir, "session.json"))
}

func TestAccountUpdateSendsOnlyGivenFlags(t *testing.T) {
	mux := http.NewServeMux()
	var got map[string]any
	mux.HandleFunc("/en/settings/modify/account/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		respond(w, http.StatusOK, models.StatusMessage{})
	})
	srv := newBackend(t, mux)
	dir := t.TempDir()

	_, err := run(t, srv, dir, "", "account", "update", "--position", "CEO", "--company-brief", "")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"position": "CEO", "companyBrief": ""}, got)

	got = nil
	_, err = run(t, srv, dir, "", "account", "update")
	assert.Error(t, err)
	assert.Nil(t, got, "nothing is sent without flags")
}

func TestForbiddenSuggestsLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/delete-user/7/", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusForbidden, map[string]string{"error": "Permission denied."})
	})
	srv := newBackend(t, mux)

	out, err := run(t, srv, t.TempDir(), "", "users", "delete", "7")
	require.Error(t, err)
	assert.Contains(t, out, "Permission denied.")
	assert.Contains(t, out, "briefly login")
}

func TestItemsCreate(t *testing.T) {
	mux := http.NewServeMux()
	var got models.Item
	mux.HandleFunc("/create-item/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		got.ID = "42"
		respond(w, http.StatusOK, got)
	})
	srv := newBackend(t, mux)

	out, err := run(t, srv, t.TempDir(), "", "items", "create", "--name", "Laptop", "--serial-number", "SN1", "--price", "999.5")
	require.NoError(t, err)
	assert.Equal(t, "Laptop", got.Name)
	assert.Equal(t, "SN1", got.SerialNumber)
	assert.Equal(t, 999.5, got.Price)
	assert.Contains(t, out, "id 42")
}

func TestCSVExportWritesFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/en/custom-admin/export/csv/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte("id,email\n1,a@b.c\n"))
	})
	srv := newBackend(t, mux)

	dir := t.TempDir()
	path := filepath.Join(dir, "users.csv")
	_, err := run(t, srv, dir, "", "csv", "export", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "id,email\n1,a@b.c\n", string(data))
	assert.NoFileExists(t, path+".part")
}

func TestCSVImportUploadsFile(t *testing.T) {
	mux := http.NewServeMux()
	var name, content string
	mux.HandleFunc("/upload/csv/", func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("csv_file")
		require.NoError(t, err)
		defer f.Close()
		var buf bytes.Buffer
		buf.ReadFrom(f)
		name, content = hdr.Filename, buf.String()
		respond(w, http.StatusOK, models.StatusMessage{Message: "Imported 1 row."})
	})
	srv := newBackend(t, mux)

	dir := t.TempDir()
	path := filepath.Join(dir, "items.csv")
	require.NoError(t, os.WriteFile(path, []byte("name\nLaptop\n"), 0644))

	out, err := run(t, srv, dir, "", "csv", "import", path)
	require.NoError(t, err)
	assert.Equal(t, "items.csv", name)
	assert.Equal(t, "name\nLaptop\n", content)
	assert.Contains(t, out, "Imported 1 row.")
}

func TestOnboardWalksStepsAndSubmits(t *testing.T) {
	mux := http.NewServeMux()
	var got map[string]string
	mux.HandleFunc("/en/account/new/user/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		respond(w, http.StatusOK, models.StatusMessage{Message: "ok"})
	})
	srv := newBackend(t, mux)

	input := strings.Join([]string{
		"Ada", "CTO", "n", // step 1
		"Acme", "Robotics", "p", // step 2, back
		"", "", "n", // step 1 again, keep values
		"", "", "n", // step 2
		"We build robots", "s", // step 3
	}, "\n") + "\n"

	out, err := run(t, srv, t.TempDir(), input, "onboard")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"full_name":     "Ada",
		"position":      "CTO",
		"company":       "Acme",
		"industry":      "Robotics",
		"company_brief": "We build robots",
	}, got)
	assert.Contains(t, out, "Step 3 of 3")
	assert.Contains(t, out, "Welcome to Briefly!")
}

func TestOnboardShowsRejection(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/en/account/new/user/", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, models.StatusMessage{Error: "Company is required."})
	})
	srv := newBackend(t, mux)

	input := "a\nb\nn\nc\nd\nn\ne\ns\n"
	out, err := run(t, srv, t.TempDir(), input, "onboard")
	require.Error(t, err)
	assert.Contains(t, out, "Company is required.")
}

func TestConfigInitAndShow(t *testing.T) {
	srv := newBackend(t, http.NewServeMux())
	dir := t.TempDir()

	_, err := run(t, srv, dir, "", "config", "init")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "config.yaml"))

	_, err = run(t, srv, dir, "", "config", "init")
	assert.Error(t, err, "existing file is not overwritten without --force")

	out, err := run(t, srv, dir, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, srv.URL+"/en")
	assert.Contains(t, out, "page size")
}
