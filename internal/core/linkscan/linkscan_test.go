package linkscan

import (
	"reflect"
	"testing"
)

func TestFindURLs(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single link",
			text: "check https://youtu.be/abc123 out",
			want: []string{"https://youtu.be/abc123"},
		},
		{
			name: "multiple links in order",
			text: "https://x.com/a/status/1 and http://vimeo.com/2",
			want: []string{"https://x.com/a/status/1", "http://vimeo.com/2"},
		},
		{
			name: "no links",
			text: "hello there",
			want: nil,
		},
		{
			name: "empty text",
			text: "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindURLs(tt.text); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FindURLs(%q) = %v; want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestSupported(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.youtube.com/watch?v=abc", true},
		{"https://m.youtube.com/watch?v=abc", true},
		{"https://youtu.be/abc", true},
		{"https://vm.tiktok.com/ZM123/", true},
		{"https://fb.watch/xyz/", true},
		{"https://x.com/user/status/1", true},
		{"https://www.instagram.com/reel/abc/", true},
		{"https://vimeo.com/12345", true},
		{"https://example.com/video.mp4", false},
		{"https://notyoutube.com/watch", false},
		{"not a url", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := Supported(tt.url); got != tt.want {
				t.Errorf("Supported(%q) = %v; want %v", tt.url, got, tt.want)
			}
		})
	}
}

func TestIsInstagram(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.instagram.com/p/abc/", true},
		{"https://instagr.am/p/abc/", true},
		{"https://youtube.com/watch?v=instagram.com", false},
		{"https://myinstagram.community/p/1", false},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := IsInstagram(tt.url); got != tt.want {
				t.Errorf("IsInstagram(%q) = %v; want %v", tt.url, got, tt.want)
			}
		})
	}
}
