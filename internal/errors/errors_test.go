package errors

import (
	stderrors "errors"
	"io/fs"
	"testing"
)

func TestNewInvalidArgument(t *testing.T) {
	err := NewInvalidArgument("window_size", 0, "must be positive")

	if !Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
	if !IsInvalidArgument(err) {
		t.Error("IsInvalidArgument should be true")
	}
	if IsIOFailure(err) {
		t.Error("IsIOFailure should be false")
	}

	expected := "window_size=0: must be positive: invalid argument"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestNewIOFailure(t *testing.T) {
	if NewIOFailure("open", "x.csv", nil) != nil {
		t.Error("nil cause should produce nil error")
	}

	err := NewIOFailure("open", "x.csv", fs.ErrNotExist)

	if !Is(err, ErrIOFailure) {
		t.Error("expected ErrIOFailure")
	}
	if !Is(err, fs.ErrNotExist) {
		t.Error("expected underlying fs.ErrNotExist to be preserved")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil", nil, ExitOK},
		{"invalid argument", NewInvalidArgument("duration", -1, "must be positive"), ExitInvalidArgument},
		{"validation", NewValidation("identity", "empty"), ExitInvalidArgument},
		{"missing", NewMissingField("output_dir"), ExitInvalidArgument},
		{"io", NewIOFailure("write", "a.json", fs.ErrPermission), ExitIOFailure},
		{"malformed", NewMalformedRecord("a.csv", 3, "bad int"), ExitIOFailure},
		{"other", ErrInternal, ExitFailure},
	}

	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.expected {
			t.Errorf("%s: expected %d, got %d", tt.name, tt.expected, got)
		}
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "ctx") != nil {
		t.Error("Wrap(nil) should be nil")
	}

	err := Wrapf(ErrInvalidArgument, "segment %d", 3)
	if !Is(err, ErrInvalidArgument) {
		t.Error("wrapped error should match sentinel")
	}
	if err.Error() != "segment 3: invalid argument" {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	v := NewValidationErrors()
	if v.HasErrors() || v.Err() != nil {
		t.Fatal("new collector should be empty")
	}

	v.Add(nil)
	v.AddField("window_size", "must be positive")
	v.AddMissing("identity")

	if !v.HasErrors() {
		t.Fatal("expected errors")
	}

	err := v.Err()
	if !Is(err, ErrInvalidConfig) {
		t.Error("expected ErrInvalidConfig via Unwrap")
	}
	if !Is(err, ErrMissingField) {
		t.Error("expected ErrMissingField via Unwrap")
	}
	if ExitCode(err) != ExitInvalidArgument {
		t.Errorf("expected exit code %d, got %d", ExitInvalidArgument, ExitCode(err))
	}
}

func TestIOErrorMessage(t *testing.T) {
	err := NewIOFailure("create", "/out/a.csv", fs.ErrPermission)

	expected := "create /out/a.csv: permission denied"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}

	var ioErr *IOError
	if !As(err, &ioErr) {
		t.Fatal("expected *IOError")
	}
	if ioErr.Path != "/out/a.csv" {
		t.Errorf("expected path /out/a.csv, got %s", ioErr.Path)
	}
}

func TestNewDatabase(t *testing.T) {
	if NewDatabase("query", nil) != nil {
		t.Error("expected nil for nil cause")
	}

	cause := stderrors.New("table not found")
	err := NewDatabase("query", cause)

	if !Is(err, ErrDatabase) || !Is(err, cause) {
		t.Errorf("expected both ErrDatabase and cause, got %v", err)
	}
	if err.Error() != "query: database error: table not found" {
		t.Errorf("unexpected message %q", err.Error())
	}
	if ExitCode(err) != ExitFailure {
		t.Errorf("expected exit code %d, got %d", ExitFailure, ExitCode(err))
	}
}
