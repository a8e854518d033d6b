// Package site renders the pages of the box-office site as templ components:
// the shared chrome (navigation bar, footer, hero) and the Home, Team, About,
// Explore and Predict pages.
package site

import (
	"context"
	"io"
	"strconv"
	"time"

	"github.com/a-h/templ"
)

// Brand is shown in the navigation bar.
const Brand = "🎥 Lights, Camera, Data!"

// Page is one entry in the navigation bar.
type Page struct {
	Path  string
	Label string
	Title string // document title
}

// Pages lists the site's routes in navigation order.
var Pages = []Page{
	{Path: "/", Label: "Home", Title: "Home | Lights, Camera, Data!"},
	{Path: "/team", Label: "Team", Title: "Meet the Team"},
	{Path: "/about", Label: "About", Title: "About Us"},
	{Path: "/explore", Label: "Explore", Title: "Explore Data Insights"},
	{Path: "/predict", Label: "Predict", Title: "Predict Movie Success"},
}

// PageFor returns the navigation entry for path.
func PageFor(path string) (Page, bool) {
	for _, p := range Pages {
		if p.Path == path {
			return p, true
		}
	}
	return Page{}, false
}

// Options carries the site-wide settings every page needs.
type Options struct {
	Tagline       string // footer tagline
	RepositoryURL string
	Year          int // copyright year; zero means the current year
	StaticPrefix  string
}

func (o Options) year() int {
	if o.Year == 0 {
		return time.Now().Year()
	}
	return o.Year
}

func (o Options) static(path string) string {
	prefix := o.StaticPrefix
	if prefix == "" {
		prefix = "/static"
	}
	return prefix + "/" + path
}

// ════════════════════════════════════════════════════════════════════
// Chrome
// ════════════════════════════════════════════════════════════════════

// Document wraps body in the page chrome: head, navigation bar and footer.
func Document(opts Options, page Page, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := newPrinter(w)
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw(`<title>`, esc(page.Title), `</title>`)
		p.raw(`<link rel="stylesheet" href="`, esc(opts.static("css/site.css")), `">`)
		p.raw(`</head><body><div class="page">`)
		if p.err != nil {
			return p.err
		}
		if err := NavBar(page.Path).Render(ctx, w); err != nil {
			return err
		}
		p.raw(`<main class="content">`)
		if p.err != nil {
			return p.err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		p.raw(`</main>`)
		if p.err != nil {
			return p.err
		}
		if err := Footer(opts).Render(ctx, w); err != nil {
			return err
		}
		p.raw(`</div><script src="`, esc(opts.static("js/chart.js")), `" defer></script></body></html>`)
		return p.err
	})
}

// NavBar renders the navigation bar with the entry for active marked.
func NavBar(active string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := newPrinter(w)
		p.raw(`<nav class="navbar"><a class="brand" href="/" aria-label="Homepage">`, esc(Brand), `</a><ul class="nav">`)
		for _, pg := range Pages {
			class := "nav-link"
			current := ""
			if pg.Path == active {
				class += " active"
				current = ` aria-current="page"`
			}
			p.raw(`<li><a class="`, class, `" href="`, esc(pg.Path), `"`, current, ` aria-label="`, esc(pg.Label), `">`, esc(pg.Label), `</a></li>`)
		}
		p.raw(`</ul></nav>`)
		return p.err
	})
}

// Footer renders the tagline, repository link and copyright line.
func Footer(opts Options) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := newPrinter(w)
		p.raw(`<footer class="footer"><p class="tagline">`, esc(opts.Tagline), `</p>`)
		if opts.RepositoryURL != "" {
			p.raw(`<a class="repo" href="`, esc(string(templ.URL(opts.RepositoryURL))), `" target="_blank" rel="noopener noreferrer" aria-label="GitHub Repository">GitHub</a>`)
		}
		p.raw(`<p class="copyright">© `, strconv.Itoa(opts.year()), ` `, esc(opts.Tagline), `. All Rights Reserved.</p>`)
		p.raw(`<p class="credits">Built with ❤️ by the Team</p>`)
		p.raw(`<a class="to-top" href="#">Back to Top</a></footer>`)
		return p.err
	})
}

// Hero renders the landing banner.
func Hero() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := newPrinter(w)
		p.raw(`<section class="hero"><h1>Lights, Camera, <span class="accent">Data!</span></h1>`)
		p.raw(`<p>Discover the secrets behind box office success and predict the future of cinema through advanced data analysis.</p>`)
		p.raw(`<a class="hero-cta" href="#introduction">Start the Journey</a></section>`)
		return p.err
	})
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

// printer writes strings until the first error.
type printer struct {
	w   io.Writer
	err error
}

func newPrinter(w io.Writer) *printer { return &printer{w: w} }

func (p *printer) raw(parts ...string) {
	for _, s := range parts {
		if p.err != nil {
			return
		}
		_, p.err = io.WriteString(p.w, s)
	}
}

func esc(s string) string { return templ.EscapeString(s) }
