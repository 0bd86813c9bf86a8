package pagination

import (
	"errors"
	"net/url"
	"testing"
)

func TestParse_Defaults(t *testing.T) {
	params, err := Parse(url.Values{}, Options{})
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if params.PageSize != DefaultPageSize {
		t.Fatalf("PageSize = %d, want %d", params.PageSize, DefaultPageSize)
	}
	if params.PageToken != "" || params.Cursor.Offset != 0 {
		t.Fatalf("expected empty cursor, got %+v", params)
	}
}

func TestParse_PageSizeValidation(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		want    int
		wantErr bool
	}{
		{name: "explicit", raw: "10", want: 10},
		{name: "capped", raw: "500", want: DefaultMaxPageSize},
		{name: "zero", raw: "0", wantErr: true},
		{name: "negative", raw: "-3", wantErr: true},
		{name: "not a number", raw: "ten", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			values := url.Values{"pageSize": []string{tc.raw}}
			params, err := Parse(values, Options{})
			if tc.wantErr {
				if !errors.Is(err, ErrInvalidPageSize) {
					t.Fatalf("expected ErrInvalidPageSize, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse returned error: %v", err)
			}
			if params.PageSize != tc.want {
				t.Fatalf("PageSize = %d, want %d", params.PageSize, tc.want)
			}
		})
	}
}

func TestTokenRoundTrip(t *testing.T) {
	token, err := EncodeToken(Cursor{Offset: 40})
	if err != nil {
		t.Fatalf("EncodeToken returned error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected non-empty token for offset 40")
	}

	cursor, err := DecodeToken(token)
	if err != nil {
		t.Fatalf("DecodeToken returned error: %v", err)
	}
	if cursor.Offset != 40 {
		t.Fatalf("Offset = %d, want 40", cursor.Offset)
	}
}

func TestEncodeToken_EmptyForZeroOffset(t *testing.T) {
	token, err := EncodeToken(Cursor{})
	if err != nil {
		t.Fatalf("EncodeToken returned error: %v", err)
	}
	if token != "" {
		t.Fatalf("expected empty token, got %q", token)
	}
}

func TestDecodeToken_RejectsGarbage(t *testing.T) {
	if _, err := DecodeToken("!!not-base64!!"); !errors.Is(err, ErrInvalidPageToken) {
		t.Fatalf("expected ErrInvalidPageToken, got %v", err)
	}
}

func TestNextToken(t *testing.T) {
	token, err := NextToken(20, 45)
	if err != nil {
		t.Fatalf("NextToken returned error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected a token when more results remain")
	}

	token, err = NextToken(45, 45)
	if err != nil {
		t.Fatalf("NextToken returned error: %v", err)
	}
	if token != "" {
		t.Fatalf("expected empty token at the end of the listing, got %q", token)
	}
}
