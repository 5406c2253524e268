// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestUserErrorError(t *testing.T) {
	tests := []struct {
		name string
		err  *UserError
		want string
	}{
		{
			name: "with underlying error",
			err:  &UserError{Message: "Cannot read file", Err: fmt.Errorf("permission denied")},
			want: "Cannot read file: permission denied",
		},
		{
			name: "without underlying error",
			err:  &UserError{Message: "Missing argument"},
			want: "Missing argument",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUserErrorUnwrap(t *testing.T) {
	inner := fmt.Errorf("boom")
	ue := &UserError{Message: "wrapped", Err: inner}
	if !errors.Is(ue, inner) {
		t.Errorf("Unwrap() did not expose the inner error")
	}
}

func TestConstructorsSetExitCodes(t *testing.T) {
	tests := []struct {
		name string
		err  *UserError
		code int
	}{
		{"input", NewInputError("m", "c", "f"), ExitInput},
		{"not found", NewNotFoundError("m", "c", "f"), ExitNotFound},
		{"parse", NewParseError("m", "c", "f", nil), ExitParse},
		{"protocol", NewProtocolError("m", "c", nil), ExitProtocol},
		{"internal", NewInternalError("m", "c", "f", nil), ExitInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.ExitCode != tt.code {
				t.Errorf("ExitCode = %d, want %d", tt.err.ExitCode, tt.code)
			}
		})
	}
}

func TestFormatIncludesCauseAndFix(t *testing.T) {
	ue := NewInputError("Missing --yes", "confirmation required", "pass --yes to confirm")
	out := ue.Format(true)

	for _, want := range []string{"Missing --yes", "confirmation required", "pass --yes to confirm"} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() output missing %q: %s", want, out)
		}
	}
}

func TestToJSON(t *testing.T) {
	ue := NewNotFoundError("file not found", "no such path", "check the path")
	j := ue.ToJSON()
	if j.Error != "file not found" || j.Cause != "no such path" || j.Fix != "check the path" || j.ExitCode != ExitNotFound {
		t.Errorf("ToJSON() = %+v, unexpected", j)
	}
}
