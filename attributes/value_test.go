package attributes_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-account-api/attributes"
	"github.com/stretchr/testify/require"
)

func TestValue_RoundTripPreservesDocument(t *testing.T) {
	docs := []string{
		`null`,
		`true`,
		`42`,
		`1.50`,
		`1e400`,
		`"text with \"quotes\""`,
		`[1,2,3,4,5]`,
		`[]`,
		`{}`,
		`{"some":"complex","value":42}`,
		`{"z":1,"a":[{"b":null,"a":false}]}`,
	}
	for _, doc := range docs {
		t.Run(doc, func(t *testing.T) {
			v, err := attributes.ParseValue([]byte(doc))
			require.NoError(t, err)

			encoded, err := json.Marshal(v)
			require.NoError(t, err)
			require.Equal(t, doc, string(encoded))
		})
	}
}

func TestValue_Kinds(t *testing.T) {
	v := attributes.MustParseValue(`{"some":"complex","value":42,"list":[true,null]}`)
	require.Equal(t, attributes.KindMap, v.Kind())
	require.Len(t, v.Members(), 3)
	require.Equal(t, "some", v.Members()[0].Key)

	some, ok := v.Get("some")
	require.True(t, ok)
	require.Equal(t, attributes.KindString, some.Kind())
	require.Equal(t, "complex", some.AsString())

	num, _ := v.Get("value")
	require.Equal(t, json.Number("42"), num.AsNumber())

	list, _ := v.Get("list")
	require.Equal(t, attributes.KindList, list.Kind())
	require.True(t, list.Items()[0].AsBool())
	require.Equal(t, attributes.KindNull, list.Items()[1].Kind())

	_, ok = v.Get("missing")
	require.False(t, ok)
}

func TestValue_Constructors(t *testing.T) {
	v := attributes.Map(
		attributes.Member{Key: "b", Value: attributes.List(attributes.Number("1"), attributes.String("x"))},
		attributes.Member{Key: "a", Value: attributes.Bool(false)},
		attributes.Member{Key: "n", Value: attributes.Null()},
	)
	encoded, err := json.Marshal(v)
	require.NoError(t, err)
	require.Equal(t, `{"b":[1,"x"],"a":false,"n":null}`, string(encoded))
}

func TestValue_NumberText(t *testing.T) {
	for _, n := range []string{"0", "-1", "1.50", "2e10"} {
		encoded, err := json.Marshal(attributes.Number(json.Number(n)))
		require.NoError(t, err, n)
		require.Equal(t, n, string(encoded))
	}
	for _, n := range []string{"", "abc", `"1"`, "true", "1 2", "-", "01x"} {
		_, err := json.Marshal(attributes.List(attributes.Number(json.Number(n))))
		require.Error(t, err, n)
	}
}

func TestValue_EmbeddedInStructs(t *testing.T) {
	var body struct {
		Attributes map[string]attributes.Value `json:"attributes"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"attributes":{"a":{"x":[1]},"b":"s"}}`), &body))
	require.Equal(t, attributes.KindMap, body.Attributes["a"].Kind())
	require.Equal(t, "s", body.Attributes["b"].AsString())
}

func TestValue_Invalid(t *testing.T) {
	for _, doc := range []string{``, `{`, `[1,]`, `{"a":1} {}`, `nope`} {
		_, err := attributes.ParseValue([]byte(doc))
		require.Error(t, err, doc)
	}
	require.Panics(t, func() { attributes.MustParseValue(`{`) })
}
