package site

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// ChartEmbed is a server-rendered chart placed on a page. SVG is empty when
// the data could not be loaded; the container is then left blank.
type ChartEmbed struct {
	Name   string // chart slug
	Title  string
	SVG    string // trusted markup produced by the chart package
	Socket string // websocket path for the interaction session
}

// Member is one card on the Team page.
type Member struct {
	Name     string
	Role     string
	Citation string
	LinkedIn string
	GitHub   string
}

// Team lists the project members.
var Team = []Member{
	{Name: "Alice", Role: "Data Analyst", Citation: "“Numbers tell a story; I make them sing.”",
		LinkedIn: "https://linkedin.com/in/alice", GitHub: "https://github.com/alice"},
	{Name: "Bob", Role: "ML Engineer", Citation: "“Turning data into decisions with AI.”",
		LinkedIn: "https://linkedin.com/in/bob", GitHub: "https://github.com/bob"},
	{Name: "Charlie", Role: "Frontend Developer", Citation: "“Designing experiences, one pixel at a time.”"},
	{Name: "Diana", Role: "Designer", Citation: "“Creativity meets functionality in my designs.”"},
	{Name: "Eve", Role: "Project Manager", Citation: "“Bringing order to chaos and success to vision.”",
		LinkedIn: "https://linkedin.com/in/eve"},
}

// Home is the landing page: hero, project introduction and the charts.
func Home(opts Options, charts []ChartEmbed) templ.Component {
	page, _ := PageFor("/")
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := Hero().Render(ctx, w); err != nil {
			return err
		}
		p := newPrinter(w)
		p.raw(`<section id="introduction" class="intro"><h2>Welcome to Our Box Office Analysis Journey</h2>`)
		p.raw(`<p>The movie industry is a realm of creativity, innovation, and intense competition. `,
			`Our project explores what makes a movie a financial success. Is it the genre, `,
			`the star-studded cast, or perhaps the runtime? Dive into our data-driven journey `,
			`and uncover the story behind the silver screen.</p>`)
		for _, c := range charts {
			if p.err != nil {
				return p.err
			}
			if err := Chart(c).Render(ctx, w); err != nil {
				return err
			}
		}
		p.raw(`</section>`)
		return p.err
	})
	return Document(opts, page, body)
}

// Chart renders a chart container with its tooltip element. The inline SVG is
// the static chart; the client script upgrades it to the interactive one.
func Chart(c ChartEmbed) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := newPrinter(w)
		p.raw(`<figure class="chart" data-chart="`, esc(c.Name), `" data-socket="`, esc(c.Socket), `">`)
		if c.Title != "" {
			p.raw(`<figcaption>`, esc(c.Title), `</figcaption>`)
		}
		p.raw(c.SVG)
		p.raw(`<div class="tooltip" role="tooltip" style="visibility: hidden"></div>`)
		p.raw(`<p class="chart-links"><a href="/charts/`, esc(c.Name), `.html">Interactive</a> · `,
			`<a href="/charts/`, esc(c.Name), `.png">PNG</a> · `,
			`<a href="/charts/`, esc(c.Name), `.svg">SVG</a></p>`)
		p.raw(`</figure>`)
		return p.err
	})
}

// initial returns the first character of name, or "?" when it is empty.
func initial(name string) string {
	r := []rune(strings.TrimSpace(name))
	if len(r) == 0 {
		return "?"
	}
	return string(r[:1])
}

// TeamPage renders the member cards.
func TeamPage(opts Options) templ.Component {
	page, _ := PageFor("/team")
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := newPrinter(w)
		p.raw(`<section id="team" class="team"><h2>Meet Our Team</h2><div class="team-grid">`)
		for _, m := range Team {
			p.raw(`<article class="member"><div class="avatar" aria-hidden="true">`, esc(initial(m.Name)), `</div>`)
			p.raw(`<h3>`, esc(m.Name), `</h3><p class="role">`, esc(m.Role), `</p>`)
			p.raw(`<blockquote>`, esc(m.Citation), `</blockquote>`)
			if m.LinkedIn != "" || m.GitHub != "" {
				p.raw(`<p class="social">`)
				if m.LinkedIn != "" {
					p.raw(`<a href="`, esc(string(templ.URL(m.LinkedIn))), `" target="_blank" rel="noopener noreferrer" aria-label="`, esc(m.Name), `'s LinkedIn">LinkedIn</a>`)
				}
				if m.GitHub != "" {
					p.raw(`<a href="`, esc(string(templ.URL(m.GitHub))), `" target="_blank" rel="noopener noreferrer" aria-label="`, esc(m.Name), `'s GitHub">GitHub</a>`)
				}
				p.raw(`</p>`)
			}
			p.raw(`</article>`)
		}
		p.raw(`</div></section>`)
		return p.err
	})
	return Document(opts, page, body)
}

// AboutPage, ExplorePage and PredictPage are not built yet and say so.
func AboutPage(opts Options) templ.Component   { return placeholder(opts, "/about", "ℹ️") }
func ExplorePage(opts Options) templ.Component { return placeholder(opts, "/explore", "🌍") }
func PredictPage(opts Options) templ.Component { return placeholder(opts, "/predict", "🔮") }

func placeholder(opts Options, path, icon string) templ.Component {
	page, _ := PageFor(path)
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := newPrinter(w)
		p.raw(`<section class="placeholder"><h1>Incoming... <span>`, icon, `</span></h1></section>`)
		return p.err
	})
	return Document(opts, page, body)
}
