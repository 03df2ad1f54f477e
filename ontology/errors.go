package ontology

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for name resolution and loading.
var (
	// ErrNotFound is returned when no entity matches a name.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguous is returned when a name folds onto several distinct entities
	// and none of them matches the requested casing exactly.
	ErrAmbiguous = errors.New("ambiguous name")

	// ErrModuleMissing is returned when a module file or glob does not exist.
	ErrModuleMissing = errors.New("ontology module missing")

	// ErrUnknownModuleSet is returned when a module set name is not configured.
	ErrUnknownModuleSet = errors.New("unknown module set")
)

// AmbiguousError lists the candidates that matched an ambiguous name.
type AmbiguousError struct {
	Name       string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%s: %q matches %s", ErrAmbiguous, e.Name, strings.Join(e.Candidates, ", "))
}

// Is lets errors.Is match ErrAmbiguous.
func (e *AmbiguousError) Is(target error) bool {
	return target == ErrAmbiguous
}
