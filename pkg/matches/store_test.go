package matches

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezmatch/ezmatch/pkg/yamldoc"
)

const storeDoc = `matches:
  - trigger: ":hi"
    replace: "hello"
  - trigger: ":date"
    replace: "{{d}}"
    vars:
      - name: d
        type: date
  - trigger: ":sig"
    replace: |
      Best,
      Jane
`

func buildTestStore(t *testing.T, src string) *Store {
	t.Helper()
	doc, err := yamldoc.Load([]byte(src))
	require.NoError(t, err)
	store, err := BuildStore(doc, NewClassifier(nil))
	require.NoError(t, err)
	return store
}

func TestBuildStore(t *testing.T) {
	store := buildTestStore(t, storeDoc)
	require.Equal(t, 3, store.Len())

	entries := store.List()
	assert.Equal(t, ":hi", entries[0].Trigger)
	assert.Equal(t, "hello", entries[0].Replace)
	assert.Equal(t, Simple, entries[0].Kind)

	assert.Equal(t, ":date", entries[1].Trigger)
	assert.True(t, entries[1].IsComplex())

	assert.Equal(t, Simple, entries[2].Kind)
	assert.Equal(t, "Best,\nJane\n", entries[2].Replace)
}

func TestBuildStoreAssignsUniqueIDs(t *testing.T) {
	store := buildTestStore(t, storeDoc)

	seen := make(map[string]bool)
	for _, e := range store.List() {
		assert.NotEmpty(t, e.ID)
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true

		got, ok := store.Get(e.ID)
		require.True(t, ok)
		assert.Same(t, e, got)
	}
}

func TestBuildStoreEmptyAndAbsent(t *testing.T) {
	for _, src := range []string{"matches: []\n", "", "backend: Auto\n"} {
		store := buildTestStore(t, src)
		assert.Equal(t, 0, store.Len(), "source %q", src)
	}
}

func TestBuildStoreDoesNotMutateDocument(t *testing.T) {
	doc, err := yamldoc.Load([]byte("backend: Auto\n"))
	require.NoError(t, err)

	_, err = BuildStore(doc, NewClassifier(nil))
	require.NoError(t, err)
	assert.False(t, doc.Mutated())

	out, err := doc.Serialize()
	require.NoError(t, err)
	assert.Equal(t, "backend: Auto\n", string(out))
}

func TestFindTrigger(t *testing.T) {
	store := buildTestStore(t, storeDoc)

	hit := store.FindTrigger(":hi", "")
	require.NotNil(t, hit)
	assert.Equal(t, ":hi", hit.Trigger)

	// excluding the entry itself finds nothing
	assert.Nil(t, store.FindTrigger(":hi", hit.ID))

	// complex entries never participate
	assert.Nil(t, store.FindTrigger(":date", ""))

	assert.Nil(t, store.FindTrigger(":nope", ""))
}

func TestInsertAndRemove(t *testing.T) {
	store := buildTestStore(t, storeDoc)

	extra := &Entry{ID: "fixed-id", Trigger: ":new", Replace: "n", Kind: Simple}
	store.Insert(extra, 1)
	require.Equal(t, 4, store.Len())
	assert.Equal(t, ":new", store.List()[1].Trigger)
	assert.Equal(t, 1, store.IndexOf("fixed-id"))

	// out-of-range positions append
	tail := &Entry{ID: "tail-id", Trigger: ":tail", Kind: Simple}
	store.Insert(tail, 99)
	assert.Equal(t, ":tail", store.List()[store.Len()-1].Trigger)

	assert.True(t, store.Remove("fixed-id"))
	assert.Equal(t, 4, store.Len())
	assert.False(t, store.Remove("fixed-id"))
	_, ok := store.Get("fixed-id")
	assert.False(t, ok)
}

func TestEntryPreview(t *testing.T) {
	assert.Equal(t, "one line", (&Entry{Replace: "one line"}).Preview())
	assert.Equal(t, "first...", (&Entry{Replace: "first\nsecond"}).Preview())
	assert.Equal(t, "", (&Entry{}).Preview())
}

func TestBuildStoreBenignFieldsCaptured(t *testing.T) {
	doc, err := yamldoc.Load([]byte("matches:\n  - trigger: ':w'\n    replace: x\n    word: true\n"))
	require.NoError(t, err)

	store, err := BuildStore(doc, NewClassifier([]string{"word"}))
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	e := store.List()[0]
	assert.Equal(t, Simple, e.Kind)
	require.Len(t, e.Fields, 1)
	assert.Equal(t, Field{Name: "word", Value: "true"}, e.Fields[0])
}
