package enricher

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/gnames/gn"
	"github.com/gnames/gntaxon/pkg/errcode"
)

// ServiceError reports a failure to reach or understand a lookup source.
func ServiceError(source, name string, err error) error {
	msg := "Lookup of <em>%s</em> failed at <em>%s</em>"
	vars := []any{name, source}
	pc, _, _, _ := runtime.Caller(1)
	fn := runtime.FuncForPC(pc)
	return &gn.Error{
		Code: errcode.EnrichmentServiceError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("from %s: %s service error for %q: %w",
			fn.Name(), source, name, err),
	}
}

// AllEnrichersFailedError is returned by a chain when every member
// failed with a service error.
func AllEnrichersFailedError(name string, errs []error) error {
	msg := "All lookup sources failed for <em>%s</em>"
	vars := []any{name}
	return &gn.Error{
		Code: errcode.AllEnrichersFailedError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf("all %d enrichers failed for %q: %w",
			len(errs), name, errors.Join(errs...)),
	}
}

// IsServiceError is true for errors of a single lookup source and for
// the chain failure that wraps them.
func IsServiceError(err error) bool {
	var gnErr *gn.Error
	if !errors.As(err, &gnErr) {
		return false
	}
	return gnErr.Code == errcode.EnrichmentServiceError ||
		gnErr.Code == errcode.AllEnrichersFailedError
}
