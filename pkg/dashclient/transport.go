package dashclient

import "net/http"

// bearerTransport injects the stored access token into every outgoing
// request. It does nothing else: no retries, no refresh exchange, no error
// translation.
type bearerTransport struct {
	store Store
	next  http.RoundTripper
}

func newBearerTransport(store Store, next http.RoundTripper) *bearerTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &bearerTransport{store: store, next: next}
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	session, err := t.store.Load()
	if err == nil && session.AccessToken != "" {
		clone := req.Clone(req.Context())
		clone.Header.Set("Authorization", "Bearer "+session.AccessToken)
		return t.next.RoundTrip(clone)
	}
	return t.next.RoundTrip(req)
}
