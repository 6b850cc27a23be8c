// Package views provides the default templates of a spacetraveling site.
// They are plain templ components, so a site can replace any of them
// through spacetraveling.ViewFuncs.
package views

import (
	"context"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling"
)

// Views renders the default pages for one site.
type Views struct {
	cfg  spacetraveling.SiteConfig
	lang string
}

// New returns the default ViewFuncs for cfg. cfg should already carry its
// defaults, e.g. App.Config.
func New(cfg spacetraveling.SiteConfig) spacetraveling.ViewFuncs {
	v := &Views{cfg: cfg, lang: cfg.DateLocale}
	if v.lang == "" {
		v.lang = spacetraveling.DefaultDateLocale
	}
	return spacetraveling.ViewFuncs{
		Home:        v.Home,
		MorePosts:   v.MorePosts,
		Post:        v.Post,
		NotFound:    v.NotFound,
		ServerError: v.ServerError,
	}
}

// Home renders the post list. The load-more control appears only while
// state has a next page.
func (v *Views) Home(state spacetraveling.PaginationState, pages int, meta spacetraveling.PageMeta) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		v.layout(w, meta, WebsiteJsonLD(v.cfg), func() {
			w.raw(`<main class="container"><div class="posts">`)
			postCards(w, state, pages)
			w.raw(`</div>`)
			if meta.Preview {
				previewExit(w)
			}
			w.raw(`</main>`)
		})
	})
}

// MorePosts renders the cards of one fetched page followed by the next
// load-more control, for insertion into an existing list.
func (v *Views) MorePosts(state spacetraveling.PaginationState, pages int) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		postCards(w, state, pages)
	})
}

func postCards(w *writer, state spacetraveling.PaginationState, pages int) {
	for _, p := range state.Posts {
		w.raw(`<a class="post-card" href="`)
		w.url(p.Link)
		w.raw(`"><h2>`)
		w.text(p.Title)
		w.raw(`</h2>`)
		if p.Subtitle != "" {
			w.raw(`<p>`)
			w.text(p.Subtitle)
			w.raw(`</p>`)
		}
		w.raw(`<div class="info">`)
		dateTag(w, p.PublishedAt, p.Date)
		w.raw(`<span class="author">`)
		w.text(p.Author)
		w.raw(`</span></div></a>`)
	}
	if state.HasMore() {
		next := pages + 1
		w.raw(`<a class="load-more" href="`)
		w.url(spacetraveling.LoadMorePath(next))
		w.raw(`" data-more="`)
		w.url(spacetraveling.MorePostsPath(state.NextPage, next))
		w.raw(`">Carregar mais posts</a>`)
	}
}

func dateTag(w *writer, t time.Time, display string) {
	w.raw(`<time datetime="`)
	w.text(t.UTC().Format(time.RFC3339))
	w.raw(`">`)
	w.text(display)
	w.raw(`</time>`)
}

// Post renders a single post with its neighbours and, when a comments
// repository is configured, the utterances widget.
func (v *Views) Post(post spacetraveling.PostView, meta spacetraveling.PageMeta) templ.Component {
	return component(func(ctx context.Context, w *writer) {
		v.layout(w, meta, BlogPostingJsonLD(v.cfg, post), func() {
			if post.BannerURL != "" {
				w.raw(`<img class="banner" src="`)
				w.url(post.BannerURL)
				w.raw(`" alt="`)
				w.text(post.BannerAlt)
				w.raw(`">`)
			}
			w.raw(`<main class="container"><article class="post"><h1>`)
			w.text(post.Title)
			w.raw(`</h1><div class="info">`)
			dateTag(w, post.PublishedAt, post.Date)
			w.raw(`<span class="author">`)
			w.text(post.Author)
			w.raw(`</span><span class="read-time">`)
			w.text(strconv.Itoa(post.ReadMinutes) + " min")
			w.raw(`</span></div>`)

			for _, s := range post.Sections {
				w.raw(`<section><h2>`)
				w.text(s.Heading)
				w.raw(`</h2><div class="post-body">`)
				// Section HTML is produced by richtext.AsHTML, which escapes text
				// and drops unsafe links.
				w.raw(s.HTML)
				w.raw(`</div></section>`)
			}
			w.raw(`</article>`)

			postNav(w, post.Navigation)
			if v.cfg.CommentsRepo != "" && !meta.Preview {
				w.raw(`<script src="https://utteranc.es/client.js" repo="`)
				w.text(v.cfg.CommentsRepo)
				w.raw(`" issue-term="pathname" theme="github-dark" crossorigin="anonymous" async></script>`)
			}
			if meta.Preview {
				previewExit(w)
			}
			w.raw(`</main>`)
		})
	})
}

func postNav(w *writer, nav spacetraveling.Navigation) {
	if nav.Previous == nil && nav.Next == nil {
		return
	}
	w.raw(`<nav class="post-nav">`)
	if p := nav.Previous; p != nil {
		w.raw(`<a class="prev" rel="prev" href="`)
		w.url(p.Link)
		w.raw(`"><h3>`)
		w.text(p.Title)
		w.raw(`</h3><span>Post anterior</span></a>`)
	}
	if n := nav.Next; n != nil {
		w.raw(`<a class="next" rel="next" href="`)
		w.url(n.Link)
		w.raw(`"><h3>`)
		w.text(n.Title)
		w.raw(`</h3><span>Próximo post</span></a>`)
	}
	w.raw(`</nav>`)
}

// NotFound renders the 404 page.
func (v *Views) NotFound() templ.Component {
	return v.errorPage("Página não encontrada", "O post que você procura não existe ou foi removido.")
}

// ServerError renders the 500 page.
func (v *Views) ServerError() templ.Component {
	return v.errorPage("Algo deu errado", "Não foi possível carregar esta página. Tente novamente em instantes.")
}

func (v *Views) errorPage(title, message string) templ.Component {
	meta := spacetraveling.PageMeta{Title: title + " | " + v.cfg.Name, OGType: "website", NoIndex: true}
	return component(func(ctx context.Context, w *writer) {
		v.layout(w, meta, "", func() {
			w.raw(`<main class="container"><h1>`)
			w.text(title)
			w.raw(`</h1><p>`)
			w.text(message)
			w.raw(`</p><p><a class="load-more" href="/">Voltar para o início</a></p></main>`)
		})
	})
}
