package browser

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

const loginPage = `<html><body>
<form action="/login/index.php" method="post" id="login">
  <input type="hidden" name="logintoken" value="tok123">
  <input type="text" name="username" id="username" value="">
  <input type="password" name="password" id="password" value="">
  <input type="checkbox" name="rememberusername" value="1">
  <button type="submit" id="loginbtn">Log in</button>
</form>
</body></html>`

func newTestServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/login/index.php", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			fmt.Fprint(w, loginPage)
			return
		}
		require.NoError(t, r.ParseForm())
		if r.PostForm.Get("logintoken") != "tok123" ||
			r.PostForm.Get("username") != "student" ||
			r.PostForm.Get("password") != "hunter2" ||
			r.PostForm.Has("rememberusername") {
			http.Redirect(w, r, "/login/index.php", http.StatusSeeOther)
			return
		}
		http.SetCookie(w, &http.Cookie{Name: "MoodleSession", Value: "abc", Path: "/"})
		http.Redirect(w, r, "/my/", http.StatusSeeOther)
	})
	mux.HandleFunc("/my/", func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("MoodleSession"); err != nil || c.Value != "abc" {
			http.Redirect(w, r, "/login/index.php", http.StatusSeeOther)
			return
		}
		fmt.Fprint(w, `<html><body><a class="profile" href="/user/profile.php">me</a><ul><li>a</li><li>b</li></ul></body></html>`)
	})
	mux.HandleFunc("/user/profile.php", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><h1>Profile</h1></body></html>`)
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestPage(t *testing.T) *HTTPPage {
	page, err := NewHTTPPage(Options{
		Timeout:      2 * time.Second,
		PollInterval: 10 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { page.Close() })
	return page
}

func TestLoginFormSubmission(t *testing.T) {
	srv := newTestServer(t)
	page := newTestPage(t)
	ctx := context.Background()

	require.NoError(t, page.Navigate(ctx, srv.URL+"/login/index.php"))
	require.NoError(t, page.Type(ctx, "#username", "student"))
	require.NoError(t, page.Type(ctx, "#password", "hunter2"))
	require.NoError(t, page.Click(ctx, "#loginbtn"))
	require.Equal(t, srv.URL+"/my/", page.CurrentURL())

	require.NoError(t, page.Click(ctx, "a.profile"))
	require.Equal(t, srv.URL+"/user/profile.php", page.CurrentURL())
}

func TestLoginFormRejected(t *testing.T) {
	srv := newTestServer(t)
	page := newTestPage(t)
	ctx := context.Background()

	require.NoError(t, page.Navigate(ctx, srv.URL+"/login/index.php"))
	require.NoError(t, page.Type(ctx, "#username", "student"))
	require.NoError(t, page.Type(ctx, "#password", "wrong"))
	require.NoError(t, page.Click(ctx, "#loginbtn"))
	require.Equal(t, srv.URL+"/login/index.php", page.CurrentURL())
}

func TestEvaluate(t *testing.T) {
	srv := newTestServer(t)
	page := newTestPage(t)
	ctx := context.Background()

	require.NoError(t, page.Navigate(ctx, srv.URL+"/login/index.php"))
	require.NoError(t, page.Type(ctx, "#username", "student"))
	require.NoError(t, page.Type(ctx, "#password", "hunter2"))
	require.NoError(t, page.Click(ctx, "#loginbtn"))

	var items []string
	err := page.Evaluate(ctx, "ul li", func(sel *goquery.Selection) error {
		sel.Each(func(_ int, li *goquery.Selection) {
			items = append(items, li.Text())
		})
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, items)

	err = page.Evaluate(ctx, "table.generaltable", func(*goquery.Selection) error { return nil })
	require.ErrorIs(t, err, ErrElementNotFound)
}

func TestWaitForElementReloads(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) < 3 {
			fmt.Fprint(w, `<html><body>loading</body></html>`)
			return
		}
		fmt.Fprint(w, `<html><body><table class="generaltable"></table></body></html>`)
	}))
	t.Cleanup(srv.Close)

	page := newTestPage(t)
	ctx := context.Background()
	require.NoError(t, page.Navigate(ctx, srv.URL))
	require.NoError(t, page.WaitForElement(ctx, ".generaltable", time.Second))
	require.GreaterOrEqual(t, hits.Load(), int32(3))
}

func TestWaitForElementTimesOut(t *testing.T) {
	srv := newTestServer(t)
	page := newTestPage(t)
	ctx := context.Background()

	require.NoError(t, page.Navigate(ctx, srv.URL+"/user/profile.php"))
	err := page.WaitForElement(ctx, ".generaltable", 50*time.Millisecond)

	var timeout *TimeoutError
	require.True(t, errors.As(err, &timeout))
	require.Equal(t, ".generaltable", timeout.Selector)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNavigateErrorStatus(t *testing.T) {
	srv := newTestServer(t)
	page := newTestPage(t)

	err := page.Navigate(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "404"))
}

func TestClosedPage(t *testing.T) {
	srv := newTestServer(t)
	page := newTestPage(t)
	ctx := context.Background()

	require.NoError(t, page.Navigate(ctx, srv.URL+"/login/index.php"))
	require.NoError(t, page.Close())
	require.NoError(t, page.Close())

	require.ErrorIs(t, page.Navigate(ctx, srv.URL), ErrClosed)
	require.ErrorIs(t, page.Click(ctx, "#loginbtn"), ErrClosed)
}

func TestRelativeNavigationNeedsPage(t *testing.T) {
	page := newTestPage(t)
	require.Error(t, page.Navigate(context.Background(), "/login/index.php"))
	require.ErrorIs(t, page.WaitForElement(context.Background(), "body", time.Millisecond), ErrNoDocument)
}
