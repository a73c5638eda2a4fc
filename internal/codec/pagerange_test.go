package codec_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Bluenz7/pdfredactor/internal/codec"
)

func TestParsePageRange(t *testing.T) {
	tests := []struct {
		name      string
		expr      string
		pageCount int
		want      []int
		wantErr   error
	}{
		{"single page", "1", 10, []int{0}, nil},
		{"last page", "10", 10, []int{9}, nil},
		{"simple range", "2-4", 10, []int{1, 2, 3}, nil},
		{"list", "1,3,5", 10, []int{0, 2, 4}, nil},
		{"mixed", "1,3-5,8", 10, []int{0, 2, 3, 4, 7}, nil},
		{"open start", "-3", 10, []int{0, 1, 2}, nil},
		{"open end", "8-", 10, []int{7, 8, 9}, nil},
		{"duplicates and order", "5,1-2,2,1", 10, []int{0, 1, 4}, nil},
		{"whitespace", " 1 , 2 - 3 ", 10, []int{0, 1, 2}, nil},
		{"empty", "", 10, nil, codec.ErrInvalidPageRange},
		{"only commas", ",,", 10, nil, codec.ErrInvalidPageRange},
		{"zero", "0", 10, nil, codec.ErrInvalidPageRange},
		{"not a number", "abc", 10, nil, codec.ErrInvalidPageRange},
		{"descending", "5-2", 10, nil, codec.ErrInvalidPageRange},
		{"page past end", "11", 10, nil, codec.ErrIndexOutOfRange},
		{"range past end", "8-12", 10, nil, codec.ErrIndexOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := codec.ParsePageRange(tt.expr, tt.pageCount)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParsePageRange(%q) error = %v, want %v", tt.expr, err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParsePageRange(%q) unexpected error: %v", tt.expr, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParsePageRange(%q) = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}
