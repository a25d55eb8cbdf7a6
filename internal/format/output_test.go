package format

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

type sample struct {
	TrackNumber int             `json:"trackNumber"`
	TrackID     string          `json:"trackId"`
	Times       []int           `json:"times"`
	Value       json.RawMessage `json:"value"`
	Deleted     bool            `json:"isDeleted"`
	Parent      *int            `json:"parent"`
}

func sampleValue() map[string]any {
	return map[string]any{"data": sample{
		TrackNumber: 3,
		TrackID:     "hips.position",
		Times:       []int{0, 12},
		Value:       json.RawMessage(`0.5`),
	}}
}

func TestWrite_Formats(t *testing.T) {
	cases := []struct {
		format string
		want   []string
	}{
		{"json", []string{`"trackNumber":3`, `"times":[0,12]`}},
		{"", []string{`"trackId":"hips.position"`}},
		{"edn", []string{`:track-number 3`, `:track-id "hips.position"`, `:times [0 12]`, `:value 0.5`, `:is-deleted false`, `:parent nil`}},
		{"yaml", []string{"trackNumber: 3", "trackId: hips.position", "- 12", "value: 0.5", "parent: null"}},
	}
	for _, tc := range cases {
		t.Run(tc.format, func(t *testing.T) {
			var buf bytes.Buffer
			if err := Write(&buf, sampleValue(), tc.format, false); err != nil {
				t.Fatalf("Write: %v", err)
			}
			for _, w := range tc.want {
				if !strings.Contains(buf.String(), w) {
					t.Fatalf("expected %q in output:\n%s", w, buf.String())
				}
			}
		})
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	if err := Write(&bytes.Buffer{}, 1, "xml", false); err == nil {
		t.Fatalf("expected error")
	}
}

func TestWriteEDN_PrettyAndEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteEDN(&buf, map[string]any{"a": []int{}, "b": map[string]any{}, "c": 1.0}, true); err != nil {
		t.Fatalf("WriteEDN: %v", err)
	}
	want := "{\n  :a []\n  :b {}\n  :c 1\n}\n"
	if buf.String() != want {
		t.Fatalf("got %q want %q", buf.String(), want)
	}
}

func TestEDNKeyword(t *testing.T) {
	for in, want := range map[string]string{
		"trackNumber":  "track-number",
		"data":         "data",
		"selected_ids": "selected-ids",
		" spaced key ": "spaced-key",
	} {
		if got := ednKeyword(in); got != want {
			t.Fatalf("ednKeyword(%q) = %q, want %q", in, got, want)
		}
	}
}
