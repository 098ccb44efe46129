package validation

import "testing"

func TestValidateURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://www.youtube.com/watch?v=QC8iQqtG0hg", false},
		{"http://youtu.be/QC8iQqtG0hg", false},
		{"https://example.com/video", false},
		{"", true},
		{"   ", true},
		{"ftp://example.com/file", true},
		{"not a url", true},
		{"https://", true},
	}

	for _, test := range tests {
		err := ValidateURL(test.url)
		if test.wantErr && err == nil {
			t.Errorf("expected error for %q", test.url)
		}
		if !test.wantErr && err != nil {
			t.Errorf("unexpected error for %q: %v", test.url, err)
		}
	}
}
