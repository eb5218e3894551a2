package ai

import (
	"testing"
)

func TestUnmarshalFlexible(t *testing.T) {
	type lookupArgs struct {
		Query string `json:"query"`
		K     int    `json:"k,omitempty"`
	}

	tests := []struct {
		name  string
		input string
		want  lookupArgs
	}{
		{
			name:  "valid json object",
			input: `{"query":"medical supplies","k":3}`,
			want:  lookupArgs{Query: "medical supplies", K: 3},
		},
		{
			name:  "unquoted key and single quotes",
			input: `{query: 'medical supplies'}`,
			want:  lookupArgs{Query: "medical supplies"},
		},
		{
			name:  "trailing comma",
			input: `{"query":"medical supplies",}`,
			want:  lookupArgs{Query: "medical supplies"},
		},
		{
			name:  "missing end bracket",
			input: `{"query":"medical supplies"`,
			want:  lookupArgs{Query: "medical supplies"},
		},
		{
			name:  "stringified object",
			input: `"{query: 'medical supplies'}"`,
			want:  lookupArgs{Query: "medical supplies"},
		},
		{
			name:  "duplicate leading brace",
			input: "{\n{\n  \"query\": \"medical supplies\"\n}\n",
			want:  lookupArgs{Query: "medical supplies"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var got lookupArgs
			if err := UnmarshalFlexible(tc.input, &got); err != nil {
				t.Fatalf("UnmarshalFlexible() error = %v", err)
			}
			if got != tc.want {
				t.Errorf("UnmarshalFlexible() = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestUnmarshalFlexibleUnrecoverable(t *testing.T) {
	var out map[string]any
	if err := UnmarshalFlexible("", &out); err == nil {
		t.Fatal("expected error for empty input")
	}
}

func TestSchemaMap(t *testing.T) {
	type args struct {
		Name string `json:"name" jsonschema:"description=Entity display name"`
		K    int    `json:"k,omitempty"`
	}

	schema := SchemaMap(args{})

	if schema["type"] != "object" {
		t.Errorf("schema type = %v, want object", schema["type"])
	}
	props, ok := schema["properties"].(map[string]any)
	if !ok {
		t.Fatalf("schema has no properties map: %v", schema)
	}
	if _, ok := props["name"]; !ok {
		t.Error("schema missing property 'name'")
	}
	if _, ok := props["k"]; !ok {
		t.Error("schema missing property 'k'")
	}
}
