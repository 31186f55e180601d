package mutation

import (
	"context"
	"fmt"
	"net/http"
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ErrorNone},
		{"unauthorized", statusErr{http.StatusUnauthorized}, ErrorAuth},
		{"forbidden", statusErr{http.StatusForbidden}, ErrorAuth},
		{"conflict", statusErr{http.StatusConflict}, ErrorConflict},
		{"server error", statusErr{http.StatusInternalServerError}, ErrorOther},
		{"wrapped status", fmt.Errorf("like: %w", statusErr{http.StatusConflict}), ErrorConflict},
		{"unreachable", netErr{}, ErrorNetwork},
		{"wrapped unreachable", fmt.Errorf("save: %w", netErr{}), ErrorNetwork},
		{"cancelled", context.Canceled, ErrorNetwork},
		{"plain", errBoom, ErrorOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
