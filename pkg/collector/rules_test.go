package collector

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelect(t *testing.T) {
	names := []string{"pkg.x", "pkg.y", "pkg.y.raw", "other.a"}

	tests := []struct {
		name  string
		rules []Rule
		want  []string
	}{
		{
			name:  "no rules selects nothing",
			rules: nil,
			want:  nil,
		},
		{
			name:  "prefix adds subtree",
			rules: []Rule{{Name: "pkg.", Enabled: true}},
			want:  []string{"pkg.x", "pkg.y", "pkg.y.raw"},
		},
		{
			name: "disabled rule removes previous selection",
			rules: []Rule{
				{Name: "pkg.", Enabled: true},
				{Name: "pkg.y", Enabled: false},
			},
			// "pkg.y" is an exact match, so the removal stops there and
			// "pkg.y.raw" stays selected.
			want: []string{"pkg.x", "pkg.y.raw"},
		},
		{
			name: "later rules win",
			rules: []Rule{
				{Name: "pkg.y", Enabled: false},
				{Name: "pkg.y", Enabled: true},
			},
			want: []string{"pkg.y"},
		},
		{
			name:  "exact match terminates sweep",
			rules: []Rule{{Name: "pkg.y", Enabled: true}},
			want:  []string{"pkg.y"},
		},
		{
			name:  "unmatched prefix selects nothing",
			rules: []Rule{{Name: "absent.", Enabled: true}},
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(tt.rules, names)
			assert.Len(t, got, len(tt.want))
			for _, name := range tt.want {
				assert.True(t, got[name], "expected %s selected", name)
			}
		})
	}
}
