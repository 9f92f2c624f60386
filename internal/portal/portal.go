// Package portal knows where things live on moodle pages.
package portal

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/igloo-cli/igloo/internal/assignment"
	"github.com/igloo-cli/igloo/internal/browser"
)

const courseMarker = "course="

type Selectors struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	LoginButton    string `json:"login_button"`
	ProfileLink    string `json:"profile_link"`
	ModuleList     string `json:"module_list"`
	Assignment     string `json:"assignment"`
	AssignmentName string `json:"assignment_name"`
	StatusTable    string `json:"status_table"`
}

func DefaultSelectors() Selectors {
	return Selectors{
		Username:       "#username",
		Password:       "#password",
		LoginButton:    "#loginbtn",
		ProfileLink:    "#page-footer > div > div.logininfo > a",
		ModuleList:     "#region-main > div > div > div > section:nth-child(3) > ul > li > dl > dd > ul",
		Assignment:     ".modtype_assign",
		AssignmentName: ".instancename",
		StatusTable:    ".generaltable",
	}
}

type Portal struct {
	BaseURL    *url.URL
	LoginPath  string
	CoursePath string
	Selectors  Selectors
}

// Module is an enrolled course as listed on the profile page.
type Module struct {
	Name string
	URL  string
}

func New(baseURL, loginPath, coursePath string, selectors Selectors) (Portal, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return Portal{}, fmt.Errorf("invalid portal url %q: %w", baseURL, err)
	}
	if !u.IsAbs() {
		return Portal{}, fmt.Errorf("portal url %q must be absolute", baseURL)
	}
	return Portal{
		BaseURL:    u,
		LoginPath:  loginPath,
		CoursePath: coursePath,
		Selectors:  selectors,
	}, nil
}

func (p Portal) join(path string) string {
	ref, err := url.Parse(path)
	if err != nil {
		return strings.TrimRight(p.BaseURL.String(), "/") + path
	}
	return p.BaseURL.ResolveReference(ref).String()
}

func (p Portal) LoginURL() string {
	return p.join(p.LoginPath)
}

// CourseID is whatever follows "course=" in a profile-page module link.
func CourseID(moduleLink string) (string, bool) {
	idx := strings.Index(moduleLink, courseMarker)
	if idx == -1 {
		return "", false
	}
	id := moduleLink[idx+len(courseMarker):]
	if amp := strings.IndexByte(id, '&'); amp != -1 {
		id = id[:amp]
	}
	return id, id != ""
}

// CourseURL turns a profile-page module link into the course page url.
func (p Portal) CourseURL(moduleLink string) (string, error) {
	id, ok := CourseID(moduleLink)
	if !ok {
		return "", fmt.Errorf("module link %q has no course id", moduleLink)
	}
	return p.join(p.CoursePath + id), nil
}

func (p Portal) ProfileURL(ctx context.Context, page browser.Page) (string, error) {
	var href string
	err := page.Evaluate(ctx, p.Selectors.ProfileLink, func(sel *goquery.Selection) error {
		h, ok := sel.First().Attr("href")
		if !ok || h == "" {
			return fmt.Errorf("profile link has no href")
		}
		href = h
		return nil
	})
	return href, err
}

func (p Portal) Modules(ctx context.Context, page browser.Page) ([]Module, error) {
	modules := []Module{}
	err := page.Evaluate(ctx, p.Selectors.ModuleList, func(sel *goquery.Selection) error {
		sel.First().Children().Each(func(_ int, item *goquery.Selection) {
			href, ok := item.Find("a").First().Attr("href")
			if !ok {
				return
			}
			modules = append(modules, Module{
				Name: InnerText(item),
				URL:  resolve(page.CurrentURL(), href),
			})
		})
		return nil
	})
	return modules, err
}

// Assignments reads the skeleton records from a rendered course page.
func (p Portal) Assignments(ctx context.Context, page browser.Page) ([]assignment.Assignment, error) {
	records := []assignment.Assignment{}
	err := page.Evaluate(ctx, p.Selectors.Assignment, func(sel *goquery.Selection) error {
		sel.Each(func(_ int, activity *goquery.Selection) {
			href, ok := activity.Find("a").First().Attr("href")
			if !ok {
				return
			}
			name := InnerText(activity.Find(p.Selectors.AssignmentName).First())
			records = append(records, assignment.NewFromAnchor(name, resolve(page.CurrentURL(), href)))
		})
		return nil
	})
	return records, err
}

// StatusGrid flattens the first status table into rows of cell text.
// Header cells are skipped, only <td> cells are read.
func (p Portal) StatusGrid(ctx context.Context, page browser.Page) ([][]string, error) {
	grid := [][]string{}
	err := page.Evaluate(ctx, p.Selectors.StatusTable, func(sel *goquery.Selection) error {
		sel.First().Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := []string{}
			row.Find("td").Each(func(_ int, cell *goquery.Selection) {
				cells = append(cells, InnerText(cell))
			})
			grid = append(grid, cells)
		})
		return nil
	})
	return grid, err
}

func resolve(base, href string) string {
	b, err := url.Parse(base)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return b.ResolveReference(ref).String()
}
