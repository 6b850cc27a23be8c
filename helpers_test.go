package spacetraveling

import "testing"

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Como utilizar Hooks":  "como-utilizar-hooks",
		"  Hello,   World!  ":  "hello-world",
		"criando-um-app":       "criando-um-app",
		"---":                  "",
		"Go 1.24 release notes": "go-1-24-release-notes",
	}
	for in, want := range tests {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"https://blog.example.com", nil, "https://blog.example.com"},
		{"https://blog.example.com", []string{"post", "hooks"}, "https://blog.example.com/post/hooks/"},
		{"https://example.com/blog", []string{"post", "a b"}, "https://example.com/blog/post/a%20b/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"", ""},
		{"/public/uploads/a.jpg", "https://blog.example.com/public/uploads/a.jpg"},
		{"https://images.prismic.io/a.png", "https://images.prismic.io/a.png"},
	}
	for _, tt := range tests {
		if got := absoluteURL("https://blog.example.com", tt.ref); got != tt.want {
			t.Errorf("absoluteURL(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestLoadMorePaths(t *testing.T) {
	if got := LoadMorePath(1); got != "/" {
		t.Errorf("LoadMorePath(1) = %q", got)
	}
	if got := LoadMorePath(3); got != "/?pages=3" {
		t.Errorf("LoadMorePath(3) = %q", got)
	}
	if got := LoadMorePath(500); got != "/?pages=20" {
		t.Errorf("LoadMorePath(500) = %q, want clamped", got)
	}
	if got, want := MorePostsPath("https://x.test/s?ref=a&page=2", 2), "/posts/more/?cursor=https%3A%2F%2Fx.test%2Fs%3Fref%3Da%26page%3D2&pages=2"; got != want {
		t.Errorf("MorePostsPath = %q, want %q", got, want)
	}
}
