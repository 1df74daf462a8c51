package catalog

import (
	"testing"

	"github.com/quillboard/admission/internal/engine"
)

func TestBuiltin(t *testing.T) {
	standard, err := Builtin(ForumTypeStandard)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if errValidate := standard.Validate(); errValidate != nil {
		t.Fatalf("expected the standard catalog to validate, got %v", errValidate)
	}

	strict, err := Builtin(ForumTypeStrict)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if errValidate := strict.Validate(); errValidate != nil {
		t.Fatalf("expected the strict catalog to validate, got %v", errValidate)
	}
	if len(strict.Rules()) <= len(standard.Rules()) {
		t.Fatalf("expected the strict catalog to extend the standard one, got %d vs %d",
			len(strict.Rules()), len(standard.Rules()))
	}
	if len(strict.ForAction(engine.ActionPost)) != len(standard.ForAction(engine.ActionPost)) {
		t.Fatal("expected the strict additions to be comment rules only")
	}

	if _, errUnknown := Builtin("academic"); errUnknown == nil {
		t.Fatal("expected an error for an unknown forum type")
	}
}
