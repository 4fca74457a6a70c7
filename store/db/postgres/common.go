package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"github.com/hrygo/folio/store"
)

const uniqueViolation = "23505"

// placeholder returns a positional placeholder for PostgreSQL ($1, $2, ...)
func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

// placeholders returns n positional placeholders for PostgreSQL
func placeholders(n int) string {
	list := []string{}
	for i := 0; i < n; i++ {
		list = append(list, placeholder(i+1))
	}
	return strings.Join(list, ", ")
}

// int64Array binds ids as a single INTEGER[] parameter.
func int64Array(ids []int32) pq.Int64Array {
	list := make(pq.Int64Array, 0, len(ids))
	for _, id := range ids {
		list = append(list, int64(id))
	}
	return list
}

// convertError maps unique constraint violations to store.ErrDuplicate.
func convertError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return store.ErrDuplicate
	}
	return err
}
