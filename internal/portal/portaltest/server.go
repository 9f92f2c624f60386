// Package portaltest serves a small moodle lookalike for tests.
package portaltest

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

const sessionCookie = "MoodleSession"

type Assignment struct {
	ID   string
	Name string
	// Rows are the <td> texts of the status table, one per row.
	Rows []string
}

type Course struct {
	ID          string
	Name        string
	Assignments []Assignment
}

type Fixture struct {
	Username string
	Password string
	Courses  []Course
}

type Server struct {
	*httptest.Server
	fixture Fixture

	mu   sync.Mutex
	hits map[string]int
}

func NewServer(t testing.TB, fixture Fixture) *Server {
	s := &Server{fixture: fixture, hits: map[string]int{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/login/index.php", s.login)
	mux.HandleFunc("/my/", s.authed(s.dashboard))
	mux.HandleFunc("/user/profile.php", s.authed(s.profile))
	mux.HandleFunc("/course/view.php", s.authed(s.course))
	mux.HandleFunc("/mod/assign/view.php", s.authed(s.assignment))

	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

// Hits reports how many times a path with the given id query was served.
func (s *Server) Hits(path, id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path+"?id="+id]
}

func (s *Server) record(r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hits[r.URL.Path+"?id="+r.URL.Query().Get("id")]++
}

func (s *Server) authed(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(sessionCookie)
		if err != nil || c.Value != "session-"+s.fixture.Username {
			http.Redirect(w, r, "/login/index.php", http.StatusSeeOther)
			return
		}
		s.record(r)
		next(w, r)
	}
}

func page(body string) string {
	return "<!DOCTYPE html><html><head><script>var M = {};</script></head><body>" + body + "</body></html>"
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		fmt.Fprint(w, page(`
<form action="/login/index.php" method="post" id="login">
  <input type="hidden" name="logintoken" value="token-1">
  <input type="text" name="username" id="username" value="">
  <input type="password" name="password" id="password" value="">
  <button type="submit" class="btn btn-primary" id="loginbtn">Log in</button>
</form>`))
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if r.PostForm.Get("logintoken") != "token-1" ||
		r.PostForm.Get("username") != s.fixture.Username ||
		r.PostForm.Get("password") != s.fixture.Password {
		http.Redirect(w, r, "/login/index.php", http.StatusSeeOther)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "session-" + s.fixture.Username, Path: "/"})
	http.Redirect(w, r, "/my/", http.StatusSeeOther)
}

func footer() string {
	return `<div id="page-footer"><div><div class="logininfo">You are logged in as <a href="/user/profile.php?id=7">Student</a></div></div></div>`
}

func (s *Server) dashboard(w http.ResponseWriter, r *http.Request) {
	fmt.Fprint(w, page(`<div id="region-main">Dashboard</div>`+footer()))
}

func (s *Server) profile(w http.ResponseWriter, r *http.Request) {
	var items strings.Builder
	for _, c := range s.fixture.Courses {
		fmt.Fprintf(&items, `<li><a href="/user/view.php?id=7&amp;course=%s">%s</a></li>`, c.ID, html.EscapeString(c.Name))
	}
	fmt.Fprint(w, page(fmt.Sprintf(`
<div id="region-main"><div><div><div>
  <section><h3>User details</h3></section>
  <section><h3>Privacy</h3></section>
  <section><ul><li><dl><dt>Course profiles</dt><dd><ul>%s</ul></dd></dl></li></ul></section>
</div></div></div></div>`, items.String())+footer()))
}

func (s *Server) findCourse(id string) (Course, bool) {
	for _, c := range s.fixture.Courses {
		if c.ID == id {
			return c, true
		}
	}
	return Course{}, false
}

func (s *Server) course(w http.ResponseWriter, r *http.Request) {
	c, ok := s.findCourse(r.URL.Query().Get("id"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	var items strings.Builder
	for _, a := range c.Assignments {
		fmt.Fprintf(&items, `
<li class="activity assign modtype_assign" id="module-%s"><div class="activityinstance">
  <a href="/mod/assign/view.php?id=%s"><span class="instancename">%s<span class="accesshide "> Assignment</span></span></a>
</div></li>`, a.ID, a.ID, html.EscapeString(a.Name))
	}
	fmt.Fprint(w, page(fmt.Sprintf(`<h1>%s</h1><ul class="section">
<li class="activity forum modtype_forum"><a href="/mod/forum/view.php?id=1"><span class="instancename">Announcements<span class="accesshide "> Forum</span></span></a></li>
%s</ul>`, html.EscapeString(c.Name), items.String())+footer()))
}

func (s *Server) assignment(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	for _, c := range s.fixture.Courses {
		for _, a := range c.Assignments {
			if a.ID != id {
				continue
			}
			var rows strings.Builder
			for i, cell := range a.Rows {
				fmt.Fprintf(&rows, `<tr><th class="cell c0">Row %d</th><td class="cell c1 lastcol">%s</td></tr>`, i, html.EscapeString(cell))
			}
			fmt.Fprint(w, page(fmt.Sprintf(`<h2>%s</h2><div class="submissionstatustable"><table class="generaltable"><tbody>%s</tbody></table></div>`,
				html.EscapeString(a.Name), rows.String())+footer()))
			return
		}
	}
	http.NotFound(w, r)
}
