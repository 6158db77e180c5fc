package curated

import (
	"testing"
)

const testPattern = "test fault: %d"

func Test_Is(t *testing.T) {
	err := Errorf(testPattern, 42)

	if err.Error() != "test fault: 42" {
		t.Errorf("message = %q", err.Error())
	}
	if !Is(err, testPattern) {
		t.Errorf("Is() does not match the originating pattern")
	}
	if Is(err, "some other pattern") {
		t.Errorf("Is() matches a foreign pattern")
	}
	if Is(nil, testPattern) {
		t.Errorf("Is(nil) matched")
	}
}

func Test_Has(t *testing.T) {
	inner := Errorf(testPattern, 1)
	outer := Errorf("outer context: %v", inner)

	if Is(outer, testPattern) {
		t.Errorf("Is() matched through a chain")
	}
	if !Has(outer, testPattern) {
		t.Errorf("Has() does not find the inner pattern")
	}
	if !Has(outer, "outer context: %v") {
		t.Errorf("Has() does not match the outermost pattern")
	}
}

func Test_Deduplication(t *testing.T) {
	inner := Errorf("fault: %v", "boom")
	outer := Errorf("fault: %v", inner)

	if outer.Error() != "fault: boom" {
		t.Errorf("message = %q, duplicate parts not collapsed", outer.Error())
	}
}
