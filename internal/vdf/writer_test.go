package vdf

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestMarshalCanonicalLayout(t *testing.T) {
	doc := NewNode(Pair("AppState", NewNode(
		Pair("appid", NewLeaf("440")),
		Pair("UserConfig", NewNode(Pair("language", NewLeaf("english")))),
	)))

	data, err := Marshal(doc)
	require.NoError(t, err)

	want := "\"AppState\"\n" +
		"{\n" +
		"\t\"appid\"\t\t\"440\"\n" +
		"\t\"UserConfig\"\n" +
		"\t{\n" +
		"\t\t\"language\"\t\t\"english\"\n" +
		"\t}\n" +
		"}\n"
	assert.Equal(t, want, string(data))
}

func TestMarshalRoundTrip(t *testing.T) {
	src := `"InstallConfigStore"
{
	"Software" { "Valve" { "Steam" {
		"CompatToolMapping"
		{
			"0" { "name" "proton_experimental" "priority" "75" }
			"440" { "name" "" }
		}
		"quote"  "say \"hi\"\tand\\leave"
		"dup" "1"
		"dup" "2"
	} } }
	"empty" { }
}`
	first, err := ParseString(src)
	require.NoError(t, err)

	data, err := Marshal(first)
	require.NoError(t, err)

	second, err := Parse(data)
	require.NoError(t, err)
	if diff := cmp.Diff(first, second, valueOpts); diff != "" {
		t.Fatalf("round trip changed the tree (-first +second):\n%s", diff)
	}

	again, err := Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(again), "canonical output is stable")
}

func TestWriteRejectsLeaf(t *testing.T) {
	var buf bytes.Buffer
	assert.Error(t, Write(&buf, NewLeaf("x")))
}

func TestMarshalJSONKeepsOrderAndDuplicates(t *testing.T) {
	root, err := ParseString(`"b" "1" "a" { "x" "y" } "b" "2"`)
	require.NoError(t, err)

	data, err := json.Marshal(root)
	require.NoError(t, err)
	assert.Equal(t, `{"b":"1","a":{"x":"y"},"b":"2"}`, string(data))
}

func TestYAMLNodeKeepsOrder(t *testing.T) {
	root, err := ParseString(`"z" "1" "a" { "k" "true" }`)
	require.NoError(t, err)

	data, err := yaml.Marshal(root)
	require.NoError(t, err)
	assert.Equal(t, "z: \"1\"\na:\n    k: \"true\"\n", string(data))
}
