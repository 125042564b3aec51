package editor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezmatch/ezmatch/pkg/errors"
	"github.com/ezmatch/ezmatch/pkg/matches"
	"github.com/ezmatch/ezmatch/pkg/yamldoc"
)

const editorDoc = `# base matches for work
matches:
  # greeting
  - trigger: ":hi"
    replace: "hello"
  - trigger: ":date"
    replace: "{{d}}"
    vars:
      - name: d
        type: date
  - trigger: ":brb"
    replace: be right back
`

func setup(t *testing.T, src string) (*yamldoc.Document, *Editor) {
	t.Helper()
	doc, err := yamldoc.Load([]byte(src))
	require.NoError(t, err)
	store, err := matches.BuildStore(doc, matches.NewClassifier(nil))
	require.NoError(t, err)
	return doc, New(doc, store)
}

func findByTrigger(t *testing.T, ed *Editor, trigger string) *matches.Entry {
	t.Helper()
	for _, e := range ed.List() {
		if e.Trigger == trigger {
			return e
		}
	}
	t.Fatalf("no entry with trigger %q", trigger)
	return nil
}

func TestAddAppends(t *testing.T) {
	doc, ed := setup(t, editorDoc)

	entry, err := ed.Add(":ty", "thank you", Append)
	require.NoError(t, err)
	assert.Equal(t, ":ty", entry.Trigger)
	assert.Equal(t, matches.Simple, entry.Kind)
	assert.NotEmpty(t, entry.ID)

	list := ed.List()
	require.Len(t, list, 4)
	assert.Equal(t, ":ty", list[3].Trigger)

	out, err := doc.Serialize()
	require.NoError(t, err)
	assert.Contains(t, string(out), ":ty")
	assert.Contains(t, string(out), "# greeting")
}

func TestAddAtPosition(t *testing.T) {
	_, ed := setup(t, editorDoc)

	_, err := ed.Add(":first", "f", 0)
	require.NoError(t, err)
	assert.Equal(t, ":first", ed.List()[0].Trigger)
	assert.Equal(t, ":hi", ed.List()[1].Trigger)
}

func TestAddDuplicateTrigger(t *testing.T) {
	doc, ed := setup(t, editorDoc)

	_, err := ed.Add(":hi", "again", Append)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDuplicateTrigger))

	// no partial mutation
	assert.Len(t, ed.List(), 3)
	assert.False(t, doc.Mutated())
}

func TestAddEmptyTrigger(t *testing.T) {
	_, ed := setup(t, editorDoc)

	_, err := ed.Add("", "x", Append)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.Len(t, ed.List(), 3)
}

func TestAddMatchingComplexTriggerAllowed(t *testing.T) {
	// uniqueness is enforced among simple entries only
	_, ed := setup(t, editorDoc)

	_, err := ed.Add(":date", "static date", Append)
	require.NoError(t, err)
	assert.Len(t, ed.List(), 4)
}

func TestAddToEmptyMatchesFile(t *testing.T) {
	doc, ed := setup(t, "matches: []\n")
	require.Len(t, ed.List(), 0)

	_, err := ed.Add("hi", "there", Append)
	require.NoError(t, err)

	out, err := doc.Serialize()
	require.NoError(t, err)

	reloaded, err := yamldoc.Load(out)
	require.NoError(t, err)
	store, err := matches.BuildStore(reloaded, matches.NewClassifier(nil))
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())
	assert.Equal(t, "hi", store.List()[0].Trigger)
	assert.Equal(t, "there", store.List()[0].Replace)
}

func TestAddCreatesMatchesKeyLazily(t *testing.T) {
	doc, ed := setup(t, "")

	_, err := ed.Add(":a", "b", Append)
	require.NoError(t, err)

	out, err := doc.Serialize()
	require.NoError(t, err)
	assert.Contains(t, string(out), "matches")
	assert.Contains(t, string(out), ":a")
}

func TestUpdateReplaceInPlace(t *testing.T) {
	doc, ed := setup(t, editorDoc)
	target := findByTrigger(t, ed, ":hi")

	updated, err := ed.Update(target.ID, matches.ReplaceField, "howdy")
	require.NoError(t, err)
	assert.Equal(t, "howdy", updated.Replace)

	out, err := doc.Serialize()
	require.NoError(t, err)
	text := string(out)

	// the edit landed
	assert.Contains(t, text, "howdy")
	assert.NotContains(t, text, "hello")

	// every comment and every sibling survived
	assert.Contains(t, text, "# base matches for work")
	assert.Contains(t, text, "# greeting")
	assert.Contains(t, text, ":date")
	assert.Contains(t, text, "type: date")
	assert.Contains(t, text, "be right back")
}

func TestUpdateTrigger(t *testing.T) {
	_, ed := setup(t, editorDoc)
	target := findByTrigger(t, ed, ":brb")

	updated, err := ed.Update(target.ID, matches.TriggerField, ":back")
	require.NoError(t, err)
	assert.Equal(t, ":back", updated.Trigger)
	assert.Nil(t, nilIfNotFound(ed, ":brb"))
}

func nilIfNotFound(ed *Editor, trigger string) *matches.Entry {
	for _, e := range ed.List() {
		if e.Trigger == trigger {
			return e
		}
	}
	return nil
}

func TestUpdateTriggerDuplicate(t *testing.T) {
	doc, ed := setup(t, editorDoc)
	target := findByTrigger(t, ed, ":brb")

	_, err := ed.Update(target.ID, matches.TriggerField, ":hi")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDuplicateTrigger))
	assert.False(t, doc.Mutated())
	assert.Equal(t, ":brb", findByTrigger(t, ed, ":brb").Trigger)
}

func TestUpdateTriggerToItself(t *testing.T) {
	// renaming an entry to its own trigger is not a collision
	_, ed := setup(t, editorDoc)
	target := findByTrigger(t, ed, ":hi")

	_, err := ed.Update(target.ID, matches.TriggerField, ":hi")
	require.NoError(t, err)
}

func TestUpdateComplexEntryRejected(t *testing.T) {
	doc, ed := setup(t, editorDoc)
	target := findByTrigger(t, ed, ":date")
	require.True(t, target.IsComplex())

	_, err := ed.Update(target.ID, matches.ReplaceField, "nope")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrComplexEntry))
	assert.False(t, doc.Mutated())
}

func TestUpdateUnknownID(t *testing.T) {
	doc, ed := setup(t, editorDoc)

	_, err := ed.Update("no-such-id", matches.ReplaceField, "x")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrEntryNotFound))
	assert.False(t, doc.Mutated())
}

func TestUpdateUnknownField(t *testing.T) {
	doc, ed := setup(t, editorDoc)
	target := findByTrigger(t, ed, ":hi")

	_, err := ed.Update(target.ID, "word", "true")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	assert.False(t, doc.Mutated())
}

func TestUpdateBenignField(t *testing.T) {
	src := "matches:\n  - trigger: ':w'\n    replace: x\n    word: 'true'\n"
	doc, err := yamldoc.Load([]byte(src))
	require.NoError(t, err)
	store, err := matches.BuildStore(doc, matches.NewClassifier([]string{"word"}))
	require.NoError(t, err)
	ed := New(doc, store)

	target := ed.List()[0]
	require.Equal(t, matches.Simple, target.Kind)

	updated, err := ed.Update(target.ID, "word", "false")
	require.NoError(t, err)
	assert.Equal(t, "false", updated.Fields[0].Value)

	out, err := doc.Serialize()
	require.NoError(t, err)
	assert.Contains(t, string(out), "word: 'false'")
}

func TestUpdateMultilineReplaceUsesBlockStyle(t *testing.T) {
	doc, ed := setup(t, editorDoc)
	target := findByTrigger(t, ed, ":hi")

	_, err := ed.Update(target.ID, matches.ReplaceField, "line one\nline two")
	require.NoError(t, err)

	out, err := doc.Serialize()
	require.NoError(t, err)
	assert.Contains(t, string(out), "|")
	assert.Contains(t, string(out), "line one")

	reloaded, err := yamldoc.Load(out)
	require.NoError(t, err)
	store, err := matches.BuildStore(reloaded, matches.NewClassifier(nil))
	require.NoError(t, err)
	found := false
	for _, e := range store.List() {
		if e.Trigger == ":hi" {
			found = true
			assert.True(t, strings.HasPrefix(e.Replace, "line one\nline two"))
		}
	}
	assert.True(t, found)
}

func TestDelete(t *testing.T) {
	doc, ed := setup(t, editorDoc)
	target := findByTrigger(t, ed, ":hi")

	require.NoError(t, ed.Delete(target.ID))
	assert.Len(t, ed.List(), 2)

	out, err := doc.Serialize()
	require.NoError(t, err)
	text := string(out)
	assert.NotContains(t, text, ":hi")
	// siblings and the document header survive; the comment attached to
	// the deleted node goes with it
	assert.Contains(t, text, "# base matches for work")
	assert.Contains(t, text, ":date")
	assert.Contains(t, text, ":brb")
}

func TestDeleteComplexRejected(t *testing.T) {
	doc, ed := setup(t, editorDoc)
	target := findByTrigger(t, ed, ":date")

	err := ed.Delete(target.ID)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrComplexEntry))
	assert.Len(t, ed.List(), 3)
	assert.False(t, doc.Mutated())
}

func TestDeleteUnknownID(t *testing.T) {
	_, ed := setup(t, editorDoc)

	err := ed.Delete("gone")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrEntryNotFound))
	assert.Len(t, ed.List(), 3)
}

func TestDeleteThenAddSameTrigger(t *testing.T) {
	_, ed := setup(t, editorDoc)
	target := findByTrigger(t, ed, ":hi")

	require.NoError(t, ed.Delete(target.ID))
	_, err := ed.Add(":hi", "hello again", Append)
	require.NoError(t, err)
	assert.Equal(t, "hello again", findByTrigger(t, ed, ":hi").Replace)
}

func TestEditIsolation(t *testing.T) {
	// after updating one entry, every other node in the tree is untouched
	doc, ed := setup(t, editorDoc)

	before := map[string]string{}
	for _, e := range ed.List() {
		if e.ID != findByTrigger(t, ed, ":brb").ID {
			before[e.Trigger] = e.Replace
		}
	}

	_, err := ed.Update(findByTrigger(t, ed, ":brb").ID, matches.ReplaceField, "changed")
	require.NoError(t, err)

	out, err := doc.Serialize()
	require.NoError(t, err)
	reloaded, err := yamldoc.Load(out)
	require.NoError(t, err)
	store, err := matches.BuildStore(reloaded, matches.NewClassifier(nil))
	require.NoError(t, err)

	for _, e := range store.List() {
		if want, ok := before[e.Trigger]; ok {
			assert.Equal(t, want, e.Replace, "sibling %s changed", e.Trigger)
		}
	}
}
