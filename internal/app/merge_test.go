package app

import (
	"reflect"
	"testing"

	"github.com/tacogips/mkapp/internal/scaffold"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name   string
		layers []scaffold.Data
		want   scaffold.Data
	}{
		{
			name:   "later wins",
			layers: []scaffold.Data{{"a": 1}, {"a": 2}},
			want:   scaffold.Data{"a": 2},
		},
		{
			name:   "nil never overwrites",
			layers: []scaffold.Data{{"a": 1}, {"a": nil}},
			want:   scaffold.Data{"a": 1},
		},
		{
			name:   "nil alone is absent",
			layers: []scaffold.Data{{"a": nil}},
			want:   scaffold.Data{},
		},
		{
			name:   "nil layers skipped",
			layers: []scaffold.Data{nil, {"a": 1}, nil},
			want:   scaffold.Data{"a": 1},
		},
		{
			name:   "disjoint keys union",
			layers: []scaffold.Data{{"a": 1}, {"b": "x"}},
			want:   scaffold.Data{"a": 1, "b": "x"},
		},
		{
			name:   "falsy values are concrete",
			layers: []scaffold.Data{{"a": true, "b": "x"}, {"a": false, "b": ""}},
			want:   scaffold.Data{"a": false, "b": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.layers...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Merge() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMerge_DoesNotMutateLayers(t *testing.T) {
	base := scaffold.Data{"a": 1}
	_ = Merge(base, scaffold.Data{"a": 2, "b": 3})
	if !reflect.DeepEqual(base, scaffold.Data{"a": 1}) {
		t.Errorf("base layer mutated: %v", base)
	}
}

func TestBuildMergedData_Branch(t *testing.T) {
	tests := []struct {
		name string
		cfg  CreateAppConfig
		want string
	}{
		{name: "explicit branch", cfg: CreateAppConfig{Branch: "main"}, want: "main"},
		{name: "absent branch defaults to master", cfg: CreateAppConfig{}, want: "master"},
		{name: "payload branch beats default", cfg: CreateAppConfig{Data: scaffold.Data{"branch": "dev"}}, want: "dev"},
		{name: "explicit beats payload", cfg: CreateAppConfig{Branch: "main", Data: scaffold.Data{"branch": "dev"}}, want: "main"},
		{name: "null payload branch is absent", cfg: CreateAppConfig{Data: scaffold.Data{"branch": nil}}, want: "master"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildMergedData(Layers{
				Payload: tt.cfg.Data,
				Config:  explicitFields(tt.cfg, false),
			})
			if got["branch"] != tt.want {
				t.Errorf("branch = %v, want %q", got["branch"], tt.want)
			}
		})
	}
}

func TestBuildMergedData_Precedence(t *testing.T) {
	got := BuildMergedData(Layers{
		FlagDefaults: scaffold.Data{"npmClient": "npm", "port": 3000, "key": "default"},
		Payload:      scaffold.Data{"npmClient": "yarn", "key": "payload", "projectName": "from-payload"},
		Core:         scaffold.Data{"projectName": "demo", "template": "hello-world-react"},
		Config:       scaffold.Data{"projectName": "explicit"},
		Answers:      scaffold.Data{"key": "answer"},
	})

	want := scaffold.Data{
		"branch":      "master",
		"npmClient":   "yarn",
		"port":        3000,
		"key":         "answer",
		"projectName": "explicit",
		"template":    "hello-world-react",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildMergedData() = %v, want %v", got, want)
	}
}

func TestExplicitFields(t *testing.T) {
	cfg := CreateAppConfig{Branch: "", ProjectName: "demo", Template: "does-not-exist"}

	got := explicitFields(cfg, false)
	if _, ok := got["branch"]; ok {
		t.Error("empty branch must be absent")
	}
	if _, ok := got["template"]; ok {
		t.Error("invalid template must be absent")
	}
	if got["projectName"] != "demo" {
		t.Errorf("projectName = %v, want demo", got["projectName"])
	}

	if got := explicitFields(CreateAppConfig{Template: "x"}, true); got["template"] != "x" {
		t.Errorf("valid template = %v, want x", got["template"])
	}
}
