package repository

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// The ANN index is built over (embedding::halfvec(3072)), so retrieval
// must use the identical cast in the distance expression or Postgres
// falls back to a sequential scan.
func TestSimilaritySearchQueryMatchesIndexExpression(t *testing.T) {
	const indexExpr = "embedding::halfvec(3072) <=> $1::halfvec(3072)"

	assert.Equal(t, 3, strings.Count(similaritySearchQuery, indexExpr),
		"select, filter and order by must all use the indexed cast")
	assert.NotContains(t, strings.ReplaceAll(similaritySearchQuery, indexExpr, ""), "<=>",
		"no uncast distance operator may remain")
}
