package portal

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"tender-scout/internal/lexicon"
)

// loginPaths are the guessed locations of a login form, tried in order.
var loginPaths = []string{
	"/login",
	"/anmelden",
	"/signin",
	"/auth",
	"/user/login",
	"/Account/Login",
}

// usernameSelectors locate the username input, highest confidence first.
var usernameSelectors = []string{
	`input[name="username"]`,
	`input[name="email"]`,
	`input[name="user"]`,
	`input[name="login"]`,
	`input[name="Email"]`,
	`input[name="Username"]`,
	`input[id="username"]`,
	`input[id="email"]`,
	`input[id="user"]`,
	`input[type="email"]`,
	`input[type="text"]`,
}

var passwordSelectors = []string{
	`input[type="password"]`,
	`input[name="password"]`,
	`input[name="Password"]`,
	`input[id="password"]`,
}

// loginSuccessKeywords confirm a logged-in page.
var loginSuccessKeywords = []string{
	"logout", "abmelden", "willkommen", "dashboard", "mein konto",
}

// tryLogin walks the login-path guesses, fills the first recognizable form
// and submits it. An unconfirmed login returns an AuthError but the session
// stays usable.
func (s *genericSession) tryLogin(ctx context.Context) error {
	root := strings.TrimRight(s.cfg.URL, "/")

	for _, path := range loginPaths {
		loginURL := root + path

		doc, err := s.client.Document(ctx, loginURL)
		if err != nil {
			continue
		}

		form, userField, passField := s.findLoginForm(doc)
		if form == nil {
			continue
		}

		values := formValues(form)
		values.Set(userField, s.cfg.Username)
		values.Set(passField, s.cfg.Password)
		s.addLoginButton(form, values)

		action := loginURL
		if raw, ok := form.Attr("action"); ok && strings.TrimSpace(raw) != "" {
			action = ResolveLink(s.cfg.URL, raw)
		}

		result, err := s.client.SubmitForm(ctx, action, values)
		if err != nil {
			continue
		}

		if lexicon.ContainsAny(result.Text(), loginSuccessKeywords) {
			s.logger.Infow("portal_login_confirmed", "portal", s.cfg.Name, "url", loginURL)
			return nil
		}
		return &AuthError{Portal: s.cfg.Name, Reason: "no success keyword after submit"}
	}

	return &AuthError{Portal: s.cfg.Name, Reason: "no login form found"}
}

// findLoginForm returns the first form holding a password field, together
// with the input names for username and password. Selector overrides from the
// portal config take precedence over the heuristics.
func (s *genericSession) findLoginForm(doc *goquery.Document) (form *goquery.Selection, userField, passField string) {
	doc.Find("form").EachWithBreak(func(_ int, f *goquery.Selection) bool {
		pass := firstInputName(f, s.cfg.Selectors.Password, passwordSelectors)
		if pass == "" {
			return true
		}
		user := firstInputName(f, s.cfg.Selectors.Username, usernameSelectors)
		if user == "" {
			return true
		}
		form, userField, passField = f, user, pass
		return false
	})
	return form, userField, passField
}

func firstInputName(form *goquery.Selection, override string, selectors []string) string {
	if strings.TrimSpace(override) != "" {
		selectors = []string{override}
	}
	for _, sel := range selectors {
		input := form.Find(sel).First()
		if input.Length() == 0 {
			continue
		}
		if name, ok := input.Attr("name"); ok && name != "" {
			return name
		}
	}
	return ""
}

// addLoginButton adds the name/value pair of the configured submit button to
// the submission. Some portals dispatch on it server-side, and formValues only
// picks up input elements, so a named button element would otherwise be lost.
func (s *genericSession) addLoginButton(form *goquery.Selection, values url.Values) {
	sel := strings.TrimSpace(s.cfg.Selectors.LoginButton)
	if sel == "" {
		return
	}
	btn := form.Find(sel).First()
	if btn.Length() == 0 {
		return
	}
	if name, ok := btn.Attr("name"); ok && name != "" {
		values.Set(name, btn.AttrOr("value", ""))
	}
}

// formValues seeds the submission with every named input already carrying a
// value (hidden fields, CSRF tokens, submit buttons).
func formValues(form *goquery.Selection) url.Values {
	values := url.Values{}
	form.Find("input").Each(func(_ int, input *goquery.Selection) {
		name, ok := input.Attr("name")
		if !ok || name == "" {
			return
		}
		if v, ok := input.Attr("value"); ok {
			values.Set(name, v)
		}
	})
	return values
}
