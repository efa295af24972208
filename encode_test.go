package cfgedit

import (
	"math"
	"strings"
	"testing"
)

func TestEncodeJSONLayout(t *testing.T) {
	v := mustParseJSON(t, `{"b":{"x":[]},"a":[1,{"k":"v"}],"e":{},"s":"q\"\\\n\t\u0001<>"}`)
	got := EncodeJSON(v)
	want := `{
  "b": {
    "x": []
  },
  "a": [
    1,
    {
      "k": "v"
    }
  ],
  "e": {},
  "s": "q\"\\\n\t\u0001<>"
}
`
	if got != want {
		t.Fatalf("unexpected JSON:\n%s\ndiff:\n%s", got, unifiedDiff(want, got))
	}
}

func TestEncodeJSONRoundTripsKinds(t *testing.T) {
	in := `{"i":3,"f":3.0,"g":0.5,"tiny":1e-7,"big":1e+21,"n":null,"t":true}`
	v := mustParseJSON(t, in)
	again := mustParseJSON(t, EncodeJSON(v))
	if !v.Equal(again) {
		t.Fatalf("round trip changed value:\n%s\n%s", v, again)
	}
	if !strings.Contains(EncodeJSON(v), `"f": 3.0`) {
		t.Fatalf("integral float lost its decimal point: %s", EncodeJSON(v))
	}
	if !strings.Contains(EncodeJSON(v), `"tiny": 1e-7`) {
		t.Fatalf("small float not in exponent form: %s", EncodeJSON(v))
	}
}

func TestEncodeJSONNonFinite(t *testing.T) {
	if got := NewFloat(math.Inf(1)).String(); got != "null" {
		t.Fatalf("Inf rendered as %s", got)
	}
}

func TestEncodeTOMLSections(t *testing.T) {
	tbl := TableFrom(
		Entry{Key: "model", Value: NewString("gpt")},
		Entry{Key: "model_providers", Value: TableOf(TableFrom(
			Entry{Key: "88code", Value: TableOf(TableFrom(
				Entry{Key: "name", Value: NewString("88code")},
				Entry{Key: "requires_openai_auth", Value: NewBool(true)},
			))},
			Entry{Key: "other.one", Value: TableOf(TableFrom(
				Entry{Key: "ratio", Value: NewFloat(2)},
			))},
		))},
		Entry{Key: "profiles", Value: NewArray(
			TableOf(TableFrom(Entry{Key: "name", Value: NewString("a")})),
			TableOf(TableFrom(Entry{Key: "name", Value: NewString("b")})),
		)},
		Entry{Key: "tags", Value: NewArray(NewString("x"), NewInt(2))},
		Entry{Key: "inline", Value: TableOf(TableFrom(Entry{Key: "k", Value: NewString("v")}))},
	)
	got, err := EncodeTOML(tbl)
	if err != nil {
		t.Fatalf("EncodeTOML: %v", err)
	}
	want := `model = "gpt"
tags = ["x", 2]

[model_providers.88code]
name = "88code"
requires_openai_auth = true

[model_providers."other.one"]
ratio = 2.0

[[profiles]]
name = "a"

[[profiles]]
name = "b"

[inline]
k = "v"
`
	if got != want {
		t.Fatalf("unexpected TOML:\n%s\ndiff:\n%s", got, unifiedDiff(want, got))
	}

	back, err := ParseTOML([]byte(got))
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	again, _ := EncodeTOML(back.tbl)
	if again != got {
		t.Fatalf("TOML not stable across a round trip:\n%s", unifiedDiff(got, again))
	}
}

func TestEncodeTOMLEmptyTableGetsHeader(t *testing.T) {
	got, err := EncodeTOML(TableFrom(Entry{Key: "empty", Value: TableOf(nil)}))
	if err != nil {
		t.Fatal(err)
	}
	if got != "[empty]\n" {
		t.Fatalf("got %q", got)
	}
}

func TestEncodeTOMLRejectsNull(t *testing.T) {
	_, err := EncodeTOML(TableFrom(Entry{Key: "x", Value: Null()}))
	if err == nil || !strings.Contains(err.Error(), "null") {
		t.Fatalf("expected null error, got %v", err)
	}
}

func TestTOMLQuoting(t *testing.T) {
	if got := tomlKey("ok_key-1"); got != "ok_key-1" {
		t.Fatalf("bare key quoted: %s", got)
	}
	if got := tomlKey("has space"); got != `"has space"` {
		t.Fatalf("key not quoted: %s", got)
	}
	if got := tomlQuote("a\"b\\c\n\x01"); got != `"a\"b\\c\n\u0001"` {
		t.Fatalf("quote = %s", got)
	}
}

func TestEncodeYAMLKeepsOrder(t *testing.T) {
	v := mustParseJSON(t, `{"zeta":1,"alpha":{"y":[true,"s"],"b":null}}`)
	out, err := EncodeYAML(v)
	if err != nil {
		t.Fatalf("EncodeYAML: %v", err)
	}
	s := string(out)
	if strings.Index(s, "zeta") > strings.Index(s, "alpha") || strings.Index(s, "y:") > strings.Index(s, "b:") {
		t.Fatalf("YAML lost key order:\n%s", s)
	}
}
