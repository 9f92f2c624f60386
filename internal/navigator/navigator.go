// Package navigator walks a moodle session from login to the assignment views.
package navigator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/igloo-cli/igloo/internal/assignment"
	"github.com/igloo-cli/igloo/internal/browser"
	"github.com/igloo-cli/igloo/internal/portal"
	"github.com/igloo-cli/igloo/internal/prompt"
	"github.com/igloo-cli/igloo/internal/store"
)

const (
	usernamePrompt = "Enter your Moodle username or email"
	passwordPrompt = "Enter your Moodle password"
	modulePrompt   = "Choose a module"
	viewPrompt     = "Choose a view"

	menuBack = "Back"
	menuExit = "Exit"
)

// Renderer is what the session shows the user.
type Renderer interface {
	Banner()
	LoginFailed(attempt, max int)
	LoggedIn(username string)
	Progress(done, total int, name string)
	View(v assignment.View, records []assignment.Assignment, summary assignment.Summary)
	Goodbye()
}

type Options struct {
	Portal portal.Portal
	// Attempts bounds how many logins are tried before giving up.
	Attempts int
	// Timeout bounds every wait for an element to render.
	Timeout time.Duration
	// CacheModules keeps a module's fetched records for the rest of the
	// session so going Back and choosing it again skips the fetch.
	CacheModules bool
	// Credentials, when complete, are used for the first login attempt
	// instead of prompting.
	Credentials store.Credentials
	// OnLogin runs after a successful login, e.g. to remember credentials.
	OnLogin func(store.Credentials) error
	Logger  *slog.Logger
}

type Navigator struct {
	page   browser.Page
	prompt prompt.Prompter
	out    Renderer
	portal portal.Portal
	opts   Options
	log    *slog.Logger

	state      State
	profileURL string
	cache      map[string][]assignment.Assignment
	closeOnce  sync.Once
	closeErr   error
}

func New(page browser.Page, prompter prompt.Prompter, renderer Renderer, opts Options) *Navigator {
	if opts.Attempts < 1 {
		opts.Attempts = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Navigator{
		page:   page,
		prompt: prompter,
		out:    renderer,
		portal: opts.Portal,
		opts:   opts,
		log:    logger,
		state:  LoggedOut,
		cache:  map[string][]assignment.Assignment{},
	}
}

func (n *Navigator) State() State {
	return n.state
}

func (n *Navigator) enter(s State) {
	n.log.Debug("entering step", "step", s.String(), "url", n.page.CurrentURL())
	n.state = s
}

// Run drives the interactive session until the user exits. The page is
// closed on return. Backing out of a prompt counts as exiting.
func (n *Navigator) Run(ctx context.Context) error {
	defer n.Close()

	n.out.Banner()
	err := n.run(ctx)
	if errors.Is(err, prompt.ErrCancelled) {
		err = nil
	}
	if err == nil {
		n.enter(Exited)
		n.out.Goodbye()
	}
	return err
}

func (n *Navigator) run(ctx context.Context) error {
	if err := n.Login(ctx); err != nil {
		return err
	}
	for {
		module, err := n.SelectModule(ctx)
		if err != nil {
			return err
		}
		records, err := n.load(ctx, module)
		if err != nil {
			return err
		}
		next, err := n.SelectView(ctx, records)
		if err != nil {
			return err
		}
		if next == Exited {
			return nil
		}
	}
}

// Close releases the page. Only the first call reaches it.
func (n *Navigator) Close() error {
	n.closeOnce.Do(func() {
		n.closeErr = n.page.Close()
	})
	return n.closeErr
}

func (n *Navigator) stepError(selector string, err error) error {
	return &StepError{
		Step:     n.state,
		URL:      n.page.CurrentURL(),
		Selector: selector,
		Err:      err,
	}
}

func (n *Navigator) credentials(ctx context.Context, attempt int) (store.Credentials, error) {
	preset := n.opts.Credentials
	if attempt == 1 && preset.Username != "" && preset.Password != "" {
		return preset, nil
	}

	username, err := n.prompt.Text(ctx, usernamePrompt)
	if err != nil {
		return store.Credentials{}, err
	}
	password, err := n.prompt.Secret(ctx, passwordPrompt)
	if err != nil {
		return store.Credentials{}, err
	}
	return store.Credentials{Username: username, Password: password}, nil
}

// Login submits credentials until the portal lets the session past the
// login page, at most Attempts times.
func (n *Navigator) Login(ctx context.Context) error {
	n.enter(LoggingIn)
	sel := n.portal.Selectors
	loginURL := n.portal.LoginURL()

	for attempt := 1; attempt <= n.opts.Attempts; attempt++ {
		creds, err := n.credentials(ctx, attempt)
		if err != nil {
			return err
		}

		if err := n.page.Navigate(ctx, loginURL); err != nil {
			return n.stepError("", err)
		}
		if err := n.page.WaitForElement(ctx, sel.Username, n.opts.Timeout); err != nil {
			return n.stepError(sel.Username, err)
		}
		if err := n.page.Type(ctx, sel.Username, creds.Username); err != nil {
			return n.stepError(sel.Username, err)
		}
		if err := n.page.Type(ctx, sel.Password, creds.Password); err != nil {
			return n.stepError(sel.Password, err)
		}
		if err := n.page.Click(ctx, sel.LoginButton); err != nil {
			return n.stepError(sel.LoginButton, err)
		}

		if n.page.CurrentURL() != loginURL {
			n.out.LoggedIn(creds.Username)
			if n.opts.OnLogin != nil {
				if err := n.opts.OnLogin(creds); err != nil {
					n.log.Warn("post-login hook failed", "err", err)
				}
			}
			n.enter(ModuleSelection)
			return nil
		}

		n.log.Warn("login rejected", "attempt", attempt, "max", n.opts.Attempts)
		n.out.LoginFailed(attempt, n.opts.Attempts)
	}
	return &AuthError{Attempts: n.opts.Attempts}
}

// Modules lists the enrolled modules from the profile page.
func (n *Navigator) Modules(ctx context.Context) ([]portal.Module, error) {
	n.enter(ModuleSelection)
	sel := n.portal.Selectors

	if n.profileURL == "" {
		if err := n.page.WaitForElement(ctx, sel.ProfileLink, n.opts.Timeout); err != nil {
			return nil, n.stepError(sel.ProfileLink, err)
		}
		profile, err := n.portal.ProfileURL(ctx, n.page)
		if err != nil {
			return nil, n.stepError(sel.ProfileLink, err)
		}
		n.profileURL = profile
	}

	if err := n.page.Navigate(ctx, n.profileURL); err != nil {
		return nil, n.stepError("", err)
	}
	if err := n.page.WaitForElement(ctx, sel.ModuleList, n.opts.Timeout); err != nil {
		return nil, n.stepError(sel.ModuleList, err)
	}
	modules, err := n.portal.Modules(ctx, n.page)
	if err != nil {
		return nil, n.stepError(sel.ModuleList, err)
	}
	if len(modules) == 0 {
		return nil, n.stepError(sel.ModuleList, ErrNoModules)
	}
	return modules, nil
}

// SelectModule asks which enrolled module to look at.
func (n *Navigator) SelectModule(ctx context.Context) (portal.Module, error) {
	modules, err := n.Modules(ctx)
	if err != nil {
		return portal.Module{}, err
	}

	names := make([]string, len(modules))
	for i, m := range modules {
		names[i] = m.Name
	}
	choice, err := n.prompt.Choice(ctx, modulePrompt, names)
	if err != nil {
		return portal.Module{}, err
	}
	for _, m := range modules {
		if m.Name == choice {
			n.log.Debug("module chosen", "module", m.Name, "url", m.URL)
			return m, nil
		}
	}
	return portal.Module{}, fmt.Errorf("%w %q", ErrNoModuleMatch, choice)
}

func (n *Navigator) load(ctx context.Context, module portal.Module) ([]assignment.Assignment, error) {
	key, _ := portal.CourseID(module.URL)
	if n.opts.CacheModules {
		if records, ok := n.cache[key]; ok {
			n.log.Debug("using cached module", "module", module.Name, "records", len(records))
			return records, nil
		}
	}

	records, err := n.Discover(ctx, module)
	if err != nil {
		return nil, err
	}
	if err := n.FetchDetails(ctx, records); err != nil {
		return nil, err
	}

	if n.opts.CacheModules {
		n.cache[key] = records
	}
	return records, nil
}

// Discover opens the module's course page and reads its assignments. A
// course that never renders one yields an empty list.
func (n *Navigator) Discover(ctx context.Context, module portal.Module) ([]assignment.Assignment, error) {
	n.enter(AssignmentDiscovery)
	sel := n.portal.Selectors

	courseURL, err := n.portal.CourseURL(module.URL)
	if err != nil {
		return nil, n.stepError("", err)
	}
	if err := n.page.Navigate(ctx, courseURL); err != nil {
		return nil, n.stepError("", err)
	}
	if err := n.page.WaitForElement(ctx, sel.Assignment, n.opts.Timeout); err != nil {
		var timeout *browser.TimeoutError
		if errors.As(err, &timeout) && ctx.Err() == nil {
			// The course page loaded but lists no assignments.
			n.log.Info("module has no assignments", "module", module.Name, "url", n.page.CurrentURL())
			return []assignment.Assignment{}, nil
		}
		return nil, n.stepError(sel.Assignment, err)
	}
	records, err := n.portal.Assignments(ctx, n.page)
	if err != nil {
		return nil, n.stepError(sel.Assignment, err)
	}
	n.log.Debug("discovered assignments", "module", module.Name, "count", len(records))
	return records, nil
}

// FetchDetails visits every record's page in order and fills in its status.
// Records whose table has no usable deadline row are left unclassified.
func (n *Navigator) FetchDetails(ctx context.Context, records []assignment.Assignment) error {
	n.enter(DetailFetch)
	sel := n.portal.Selectors

	for i := range records {
		r := &records[i]
		if err := n.page.Navigate(ctx, r.Link); err != nil {
			return n.stepError("", err)
		}
		if err := n.page.WaitForElement(ctx, sel.StatusTable, n.opts.Timeout); err != nil {
			return n.stepError(sel.StatusTable, err)
		}
		grid, err := n.portal.StatusGrid(ctx, n.page)
		if err != nil {
			return n.stepError(sel.StatusTable, err)
		}
		if !r.Enrich(grid) {
			n.log.Debug("no deadline row", "assignment", r.ID, "url", r.Link)
		}
		n.out.Progress(i+1, len(records), r.Name)
	}
	return nil
}

func viewMenu() []string {
	menu := make([]string, 0, len(assignment.Views)+2)
	for _, v := range assignment.Views {
		menu = append(menu, v.String())
	}
	return append(menu, menuBack, menuExit)
}

// SelectView shows views of records until the user picks Back or Exit,
// and reports which state the session moves to.
func (n *Navigator) SelectView(ctx context.Context, records []assignment.Assignment) (State, error) {
	n.enter(ViewSelection)
	summary := assignment.Summarize(records)
	menu := viewMenu()

	for {
		choice, err := n.prompt.Choice(ctx, viewPrompt, menu)
		if err != nil {
			return n.state, err
		}
		switch choice {
		case menuBack:
			return ModuleSelection, nil
		case menuExit:
			return Exited, nil
		}

		v, ok := assignment.ParseView(choice)
		if !ok {
			n.log.Warn("unknown view choice", "choice", choice)
			continue
		}
		n.out.View(v, assignment.Classify(v, records), summary)
	}
}

// Export logs in, fetches the module best matching query and returns every
// view of it without prompting for anything but missing credentials.
func (n *Navigator) Export(ctx context.Context, query string) (portal.Module, map[assignment.View][]assignment.Assignment, error) {
	defer n.Close()

	if err := n.Login(ctx); err != nil {
		return portal.Module{}, nil, err
	}
	modules, err := n.Modules(ctx)
	if err != nil {
		return portal.Module{}, nil, err
	}
	module, err := MatchModule(modules, query)
	if err != nil {
		return portal.Module{}, nil, err
	}
	n.log.Info("exporting module", "module", module.Name)

	records, err := n.load(ctx, module)
	if err != nil {
		return module, nil, err
	}

	views := make(map[assignment.View][]assignment.Assignment, len(assignment.Views))
	for _, v := range assignment.Views {
		views[v] = assignment.Classify(v, records)
	}
	n.enter(Exited)
	return module, views, nil
}
