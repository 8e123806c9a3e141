package portal

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"iitb-internet/internal/model"
)

type fakeResolver struct {
	err     error
	lookups []string
}

func (r *fakeResolver) LookupHost(_ context.Context, host string) ([]string, error) {
	r.lookups = append(r.lookups, host)
	if r.err != nil {
		return nil, r.err
	}
	return []string{"10.0.0.1"}, nil
}

func TestLocatorURLs(t *testing.T) {
	r := &fakeResolver{}
	l := NewLocator(model.PortalHost{Name: "internet.iitb.ac.in"}, r, zap.NewNop())
	ctx := context.Background()

	assert.Equal(t, "https://internet.iitb.ac.in/index.php", l.LoginURL(ctx))
	assert.Equal(t, "https://internet.iitb.ac.in/logout.php", l.LogoutURL(ctx))
	assert.Equal(t, []string{"internet.iitb.ac.in", "internet.iitb.ac.in"}, r.lookups)
}

func TestLocatorFallback(t *testing.T) {
	ctx := context.Background()
	r := &fakeResolver{err: errors.New("no such host")}

	l := NewLocator(model.PortalHost{Name: "internet.iitb.ac.in", FallbackIP: "10.201.250.201"}, r, zap.NewNop())
	assert.Equal(t, "https://10.201.250.201/index.php", l.LoginURL(ctx))

	l = NewLocator(model.PortalHost{Name: "internet.iitb.ac.in"}, r, zap.NewNop())
	assert.Equal(t, "https://internet.iitb.ac.in/logout.php", l.LogoutURL(ctx))

	l = NewLocator(model.PortalHost{Name: "portal.test:8443", FallbackIP: "10.0.0.9"}, r, zap.NewNop())
	assert.Equal(t, "10.0.0.9:8443", l.EffectiveHost(ctx))
	assert.Equal(t, "portal.test", r.lookups[len(r.lookups)-1])
}

func TestIsAuthenticatedPage(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://host/logout.php", true},
		{"https://internet.iitb.ac.in/logout.php", true},
		{"https://host/index.php", false},
		{"https://host/logout.php?x=1", false},
		{"https://host/logout.php/", false},
		{"https://host/", false},
		{"logout.php", true},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsAuthenticatedPage(tt.url), tt.url)
	}
}

func newTestClient(srv *httptest.Server) *Client {
	c := NewClient(0, zap.NewNop())
	c.Client = srv.Client()
	return c
}

func TestFetchFollowsRedirect(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/index.php":
			http.Redirect(w, r, "/logout.php", http.StatusFound)
		case "/logout.php":
			fmt.Fprint(w, "<html>logout</html>")
		}
	}))
	defer srv.Close()

	res, err := newTestClient(srv).Fetch(context.Background(), srv.URL+"/index.php", nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, srv.URL+"/logout.php", res.FinalURL)
	assert.True(t, IsAuthenticatedPage(res.FinalURL))

	text, err := res.Text()
	require.NoError(t, err)
	assert.Equal(t, "<html>logout</html>", text)
}

func TestFetchPostsForm(t *testing.T) {
	var got url.Values
	var method, contentType string
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		contentType = r.Header.Get("Content-Type")
		if err := r.ParseForm(); err == nil {
			got = r.PostForm
		}
	}))
	defer srv.Close()

	form := url.Values{"uname": {"bob"}, "passwd": {"p&ss word"}}
	_, err := newTestClient(srv).Fetch(context.Background(), srv.URL+"/index.php", form)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "application/x-www-form-urlencoded", contentType)
	assert.Equal(t, form, got)
}

func TestFetchNon200(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv).Fetch(context.Background(), srv.URL+"/index.php", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrConnection))
	assert.Contains(t, err.Error(), "503")
}

func TestFetchConnectionFailure(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	c := newTestClient(srv)
	addr := srv.URL
	srv.Close()

	_, err := c.Fetch(context.Background(), addr+"/index.php", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrConnection))
}

func TestFetchPacing(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	c := NewClient(50*time.Millisecond, zap.NewNop())
	c.Client = srv.Client()

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := c.Fetch(context.Background(), srv.URL, nil)
		require.NoError(t, err)
	}
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}

func TestResultTextMalformed(t *testing.T) {
	res := &Result{StatusCode: 200, FinalURL: "https://host/logout.php", Body: []byte{0xff, 0xfe, 'a'}}
	_, err := res.Text()
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrMalformedData))
	assert.True(t, strings.Contains(err.Error(), "logout.php"))
}
