package matches

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// element parses a single matches-style element for classification.
func element(t *testing.T, src string) *yaml.Node {
	t.Helper()
	var root yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &root))
	require.NotEmpty(t, root.Content)
	return root.Content[0]
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		benign []string
		want   Kind
	}{
		{
			name: "bare trigger and replace",
			src:  "trigger: ':hi'\nreplace: hello\n",
			want: Simple,
		},
		{
			name: "missing replace",
			src:  "trigger: ':hi'\n",
			want: Complex,
		},
		{
			name: "missing trigger",
			src:  "replace: hello\n",
			want: Complex,
		},
		{
			name: "vars forces complex",
			src:  "trigger: ':date'\nreplace: '{{d}}'\nvars:\n  - name: d\n    type: date\n",
			want: Complex,
		},
		{
			name:   "empty vars still complex even when allow-listed",
			src:    "trigger: ':d'\nreplace: x\nvars: []\n",
			benign: []string{"vars"},
			want:   Complex,
		},
		{
			name: "unrecognized field",
			src:  "trigger: ':w'\nreplace: x\nword: true\n",
			want: Complex,
		},
		{
			name:   "allow-listed scalar field",
			src:    "trigger: ':w'\nreplace: x\nword: true\n",
			benign: []string{"word"},
			want:   Simple,
		},
		{
			name:   "allow-listed field with nested value",
			src:    "trigger: ':w'\nreplace: x\nlabel:\n  nested: true\n",
			benign: []string{"label"},
			want:   Complex,
		},
		{
			name: "nested replace",
			src:  "trigger: ':f'\nreplace:\n  form: 'Hi [[name]]'\n",
			want: Complex,
		},
		{
			name: "trigger list",
			src:  "trigger:\n  - ':a'\n  - ':b'\nreplace: x\n",
			want: Complex,
		},
		{
			name: "multiline replace is still simple",
			src:  "trigger: ':sig'\nreplace: |\n  two\n  lines\n",
			want: Simple,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(tt.benign)
			assert.Equal(t, tt.want, c.Classify(element(t, tt.src)))
		})
	}
}

func TestClassifyFailSafe(t *testing.T) {
	c := NewClassifier(nil)

	// nil node
	assert.Equal(t, Complex, c.Classify(nil))

	// non-mapping element
	assert.Equal(t, Complex, c.Classify(element(t, "- just a list\n")))
	assert.Equal(t, Complex, c.Classify(element(t, "plain scalar\n")))
}
