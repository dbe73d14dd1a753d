package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tender-scout/config"
)

const loginPage = `<html><body>
<form action="/dologin" method="post">
	<input type="hidden" name="csrf_token" value="tok-123">
	<input type="text" name="username">
	<input type="password" name="password">
	<input type="submit" name="submit" value="Anmelden">
</form>
</body></html>`

func loginTestSession(t *testing.T, rootURL string) *genericSession {
	t.Helper()
	fetcher := NewFetcher(config.CrawlConfig{UserAgent: "test-agent"})
	return &genericSession{
		client: fetcher.NewSession(),
		cfg: config.PortalConfig{
			Name:     "Testportal",
			URL:      rootURL,
			Username: "crawler@example.test",
			Password: "geheim",
		},
		logger: zap.NewNop().Sugar(),
		now:    time.Now,
	}
}

func TestTryLogin_SubmitsFormWithHiddenFields(t *testing.T) {
	t.Parallel()

	var gotForm map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, loginPage)
	})
	mux.HandleFunc("/dologin", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"csrf_token": r.PostFormValue("csrf_token"),
			"username":   r.PostFormValue("username"),
			"password":   r.PostFormValue("password"),
		}
		fmt.Fprint(w, `<html><body>Willkommen zurück! <a href="/logout">Abmelden</a></body></html>`)
	})
	mux.HandleFunc("/", http.NotFound)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	s := loginTestSession(t, ts.URL)

	require.NoError(t, s.tryLogin(context.Background()))
	require.Equal(t, "tok-123", gotForm["csrf_token"])
	require.Equal(t, "crawler@example.test", gotForm["username"])
	require.Equal(t, "geheim", gotForm["password"])
}

func TestTryLogin_ConfiguredButtonValueIsSubmitted(t *testing.T) {
	t.Parallel()

	// The submit control is a button element, which formValues ignores; the
	// configured selector has to carry its name/value pair into the POST.
	page := `<html><body>
<form action="/dologin" method="post">
	<input type="text" name="username">
	<input type="password" name="password">
	<button type="submit" name="op" value="Einloggen">Einloggen</button>
</form>
</body></html>`

	var gotOp string
	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	})
	mux.HandleFunc("/dologin", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotOp = r.PostFormValue("op")
		fmt.Fprint(w, `<html><body><a href="/logout">Abmelden</a></body></html>`)
	})
	mux.HandleFunc("/", http.NotFound)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	s := loginTestSession(t, ts.URL)
	s.cfg.Selectors.LoginButton = `button[type="submit"]`

	require.NoError(t, s.tryLogin(context.Background()))
	require.Equal(t, "Einloggen", gotOp)
}

func TestTryLogin_NoSuccessKeywordIsAuthError(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, loginPage)
	})
	mux.HandleFunc("/dologin", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>Benutzername oder Passwort falsch</body></html>`)
	})
	mux.HandleFunc("/", http.NotFound)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	s := loginTestSession(t, ts.URL)

	err := s.tryLogin(context.Background())
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestTryLogin_NoFormAnywhereIsAuthError(t *testing.T) {
	t.Parallel()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>Nur öffentliche Inhalte</body></html>`)
	}))
	defer ts.Close()

	s := loginTestSession(t, ts.URL)

	err := s.tryLogin(context.Background())
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	require.Contains(t, err.Error(), "no login form found")
}

func TestTryLogin_SecondPathWhenFirstMissing(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/anmelden", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, loginPage)
	})
	mux.HandleFunc("/dologin", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><a href="/logout">Logout</a></body></html>`)
	})
	mux.HandleFunc("/", http.NotFound)
	ts := httptest.NewServer(mux)
	defer ts.Close()

	s := loginTestSession(t, ts.URL)

	require.NoError(t, s.tryLogin(context.Background()))
}
