package fetch

import "testing"

func TestParseRepository(t *testing.T) {
	tests := []struct {
		name    string
		ref     string
		want    Repository
		wantErr bool
	}{
		{
			name: "owner/repo",
			ref:  "acme/templates",
			want: Repository{BaseURL: "https://github.com", Owner: "acme", Name: "templates"},
		},
		{
			name: "github.com prefix",
			ref:  "github.com/acme/templates",
			want: Repository{BaseURL: "https://github.com", Owner: "acme", Name: "templates"},
		},
		{
			name: "https with .git",
			ref:  "https://github.com/acme/templates.git",
			want: Repository{BaseURL: "https://github.com", Owner: "acme", Name: "templates"},
		},
		{
			name: "enterprise host",
			ref:  "https://git.example.com/acme/templates/",
			want: Repository{BaseURL: "https://git.example.com", Owner: "acme", Name: "templates"},
		},
		{
			name: "ssh",
			ref:  "git@github.com:acme/templates.git",
			want: Repository{BaseURL: "https://github.com", Owner: "acme", Name: "templates"},
		},
		{name: "empty", ref: "  ", wantErr: true},
		{name: "owner only", ref: "acme", wantErr: true},
		{name: "too many segments", ref: "acme/templates/extra", wantErr: true},
		{name: "ssh without colon", ref: "git@github.com/acme/templates", wantErr: true},
		{name: "url without path", ref: "https://github.com", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRepository(tt.ref, "https://github.com")
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRepository(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseRepository(%q) = %+v, want %+v", tt.ref, got, tt.want)
			}
		})
	}
}

func TestRepository_CloneURL(t *testing.T) {
	r := Repository{BaseURL: "https://github.com/", Owner: "acme", Name: "templates"}
	if got, want := r.CloneURL(), "https://github.com/acme/templates.git"; got != want {
		t.Errorf("CloneURL() = %q, want %q", got, want)
	}
	if got, want := r.String(), "acme/templates"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestCleanSubdir(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: "/"},
		{in: "scaffolds/a/template", want: "scaffolds/a/template"},
		{in: "/scaffolds/a/", want: "scaffolds/a"},
		{in: "../../etc", want: "etc"},
	}
	for _, tt := range tests {
		if got := cleanSubdir(tt.in); got != tt.want {
			t.Errorf("cleanSubdir(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
