package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_MessageAndUnwrap(t *testing.T) {
	base := errors.New("login failed for user 'sa'")
	err := NewDataAccess("open connection", base)
	if got, want := err.Error(), "DataAccessError: open connection: login failed for user 'sa'"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if !errors.Is(err, base) {
		t.Error("expected underlying error to be reachable")
	}
}

func TestError_IsSentinel(t *testing.T) {
	err := fmt.Errorf("run: %w", NewExport("write workbook", errors.New("disk full")))
	if !errors.Is(err, Export) {
		t.Error("expected errors.Is to match Export sentinel")
	}
	if errors.Is(err, DataAccess) {
		t.Error("did not expect DataAccess to match")
	}
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		kind Kind
		code int
	}{
		{NewArgument("parse args", nil), KindArgument, 2},
		{NewConfiguration("load", nil), KindConfiguration, 3},
		{NewDataAccess("query", nil), KindDataAccess, 4},
		{NewExport("save", nil), KindExport, 5},
		{NewDispatch("send", nil), KindDispatch, 6},
		{errors.New("plain"), KindUnknown, 1},
	}
	for _, c := range cases {
		k := KindOf(c.err)
		if k != c.kind {
			t.Errorf("KindOf(%v) = %v, want %v", c.err, k, c.kind)
		}
		if k.ExitCode() != c.code {
			t.Errorf("%v.ExitCode() = %d, want %d", k, k.ExitCode(), c.code)
		}
	}
}

func TestError_NoCause(t *testing.T) {
	err := NewArgument("expected 2 arguments", nil)
	if got := err.Error(); got != "ArgumentError: expected 2 arguments" {
		t.Errorf("unexpected message: %q", got)
	}
}
