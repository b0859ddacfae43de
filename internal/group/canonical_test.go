package group

import "testing"

// TestCanonicalJSON_MatchesEditorEncoding는 테스트 코드 동작을 검증하거나 보조합니다.
func TestCanonicalJSON_MatchesEditorEncoding(t *testing.T) {
	// 지도 편집기가 기록한 id와 같아지도록 키 정렬, 구분자, 숫자, 문자열 표기가 일치해야 한다.
	tests := []struct {
		in   string
		want string
	}{
		{
			`{"type":"Feature","properties":{"radius":5000},"geometry":{"type":"Point","coordinates":[2.35,48.0]}}`,
			`{"geometry": {"coordinates": [2.35, 48.0], "type": "Point"}, "properties": {"radius": 5000}, "type": "Feature"}`,
		},
		{
			`{"label":"Créteil 📷","tab":"a\tb","q":"\"<&>\""}`,
			`{"label": "Cr\u00e9teil \ud83d\udcf7", "q": "\"<&>\"", "tab": "a\tb"}`,
		},
		{
			`{"n":[1e-05,1e16,0.0001,-0,1E3,123456789012345678],"e":{},"l":[],"z":null,"b":true}`,
			`{"b": true, "e": {}, "l": [], "n": [1e-05, 1e+16, 0.0001, 0, 1000.0, 123456789012345678], "z": null}`,
		},
	}

	for _, tt := range tests {
		got, err := canonicalJSON([]byte(tt.in))
		if err != nil {
			t.Fatalf("canonicalJSON(%s) failed: %v", tt.in, err)
		}
		if string(got) != tt.want {
			t.Errorf("canonicalJSON(%s)\n got %s\nwant %s", tt.in, got, tt.want)
		}
	}
}

// TestContentID_RawFeature는 테스트 코드 동작을 검증하거나 보조합니다.
func TestContentID_RawFeature(t *testing.T) {
	raw := []byte(`{"type":"Feature","properties":{"radius":5000},"geometry":{"type":"Point","coordinates":[2.35,48.0]}}`)
	if got := ContentID(raw); got != "d377c229580f60984dfc19d3d86e7ba7" {
		t.Fatalf("unexpected id %s", got)
	}
}
