package location

import "net/url"

const tokenParam = "token"

// GetToken reads the bearer credential from the fragment's "token" parameter.
// A missing, empty, or unparseable value reports false.
func GetToken(p Provider) (string, bool) {
	params, err := url.ParseQuery(p.Fragment())
	if err != nil {
		return "", false
	}
	token := params.Get(tokenParam)
	if token == "" {
		return "", false
	}
	return token, true
}

// RedirectTarget is the path plus query the auth server should send the
// caller back to.
func RedirectTarget(p Provider) string {
	if q := p.RawQuery(); q != "" {
		return p.Path() + "?" + q
	}
	return p.Path()
}
