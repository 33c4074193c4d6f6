package languages

import (
	"reflect"
	"testing"
)

func TestNewTarget(t *testing.T) {
	target := NewTarget("vi")

	if target.MeaningColumn != "vi_meaning" {
		t.Errorf("MeaningColumn = %q, want vi_meaning", target.MeaningColumn)
	}
	if target.ExampleColumn != "vi_example" {
		t.Errorf("ExampleColumn = %q, want vi_example", target.ExampleColumn)
	}
	if !reflect.DeepEqual(target.Columns(), []string{"vi_meaning", "vi_example"}) {
		t.Errorf("Columns() = %v", target.Columns())
	}
}

func TestParseTargets(t *testing.T) {
	tests := []struct {
		name    string
		codes   []string
		source  string
		want    []string
		wantErr bool
	}{
		{
			name:   "defaults",
			codes:  DefaultTargets,
			source: "en",
			want:   []string{"vi", "th", "id"},
		},
		{
			name:   "comma separated and duplicates",
			codes:  []string{"vi,th", "VI", " id "},
			source: "en",
			want:   []string{"vi", "th", "id"},
		},
		{
			name:   "region subtag kept",
			codes:  []string{"zh_TW"},
			source: "en",
			want:   []string{"zh-tw"},
		},
		{
			name:    "source as target",
			codes:   []string{"en"},
			source:  "en",
			wantErr: true,
		},
		{
			name:    "invalid code",
			codes:   []string{"not a language"},
			source:  "en",
			wantErr: true,
		},
		{
			name:    "empty",
			codes:   []string{" , "},
			source:  "en",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			targets, err := ParseTargets(tt.codes, tt.source)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTargets() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			var got []string
			for _, target := range targets {
				got = append(got, target.Code)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseTargets() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"vi": "Vietnamese",
		"th": "Thai",
		"id": "Indonesian",
	}

	for code, want := range tests {
		if got := DisplayName(code); got != want {
			t.Errorf("DisplayName(%q) = %q, want %q", code, got, want)
		}
	}

	if got := DisplayName("!!"); got != "!!" {
		t.Errorf("DisplayName of invalid code = %q, want the code back", got)
	}
}
