package handler

import (
	"encoding/json"
	"testing"
)

func TestNumericText_Unmarshal(t *testing.T) {
	tests := []struct {
		in      string
		wantSet bool
		want    string
	}{
		{`{"v":12}`, true, "12"},
		{`{"v":12.50}`, true, "12.50"},
		{`{"v":" 7 "}`, true, "7"},
		{`{"v":"-1"}`, true, "-1"},
		{`{"v":false}`, true, "false"},
		{`{"v":null}`, false, ""},
		{`{}`, false, ""},
	}
	for _, tc := range tests {
		var dst struct {
			V numericText `json:"v"`
		}
		if err := json.Unmarshal([]byte(tc.in), &dst); err != nil {
			t.Fatalf("%s: %v", tc.in, err)
		}
		if dst.V.set != tc.wantSet || dst.V.text != tc.want {
			t.Errorf("%s: got set=%v text=%q", tc.in, dst.V.set, dst.V.text)
		}
		if (dst.V.ptr() != nil) != tc.wantSet {
			t.Errorf("%s: ptr presence mismatch", tc.in)
		}
	}
}
