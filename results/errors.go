package results

import "fmt"

// MissingCategoryError reports a mandatory category absent from the
// results document.
type MissingCategoryError struct {
	Category string
}

func (e *MissingCategoryError) Error() string {
	return fmt.Sprintf("results: missing mandatory category %q", e.Category)
}

// EmptyRunSetError reports a variant whose run set holds no runs, so
// best-run selection has no candidates.
type EmptyRunSetError struct {
	Category string
	Label    string
}

func (e *EmptyRunSetError) Error() string {
	if e.Label == "" {
		return "results: empty run set"
	}

	return fmt.Sprintf(
		"results: empty run set for variant %q in category %q",
		e.Label, e.Category,
	)
}

// MalformedResultError reports a run record missing one of the four
// required numeric fields, or carrying a non-numeric value in one.
type MalformedResultError struct {
	Path   string // category/label/level of the offending run
	Field  string // missing field, when that is the failure
	Reason string // decoder detail for type mismatches
}

func (e *MalformedResultError) Error() string {
	switch {
	case e.Field != "":
		return fmt.Sprintf(
			"results: run %s: missing required field %q", e.Path, e.Field,
		)
	case e.Reason != "":
		return fmt.Sprintf("results: run %s: %s", e.Path, e.Reason)
	}

	return fmt.Sprintf("results: run %s: malformed record", e.Path)
}
