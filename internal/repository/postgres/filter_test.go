package postgres

import (
	"testing"

	"github.com/risick/microcredito-api/internal/domain/borrower"
	"github.com/risick/microcredito-api/internal/query"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileFilterEmptyMatchesAll(t *testing.T) {
	sql, args, err := compileFilter(query.And{}, borrowerColumns)
	require.NoError(t, err)
	assert.Equal(t, "TRUE", sql)
	assert.Empty(t, args)

	sql, _, err = compileFilter(nil, borrowerColumns)
	require.NoError(t, err)
	assert.Equal(t, "TRUE", sql)
}

func TestCompileFilterSearchAndBounds(t *testing.T) {
	minIncome := decimal.NewFromInt(2000)
	active := true
	node := borrower.BuildFilter(borrower.Query{
		Search:    "maputo",
		State:     "SP",
		MinIncome: &minIncome,
		IsActive:  &active,
	})

	sql, args, err := compileFilter(node, borrowerColumns)
	require.NoError(t, err)
	assert.Equal(t,
		"((b.national_id ILIKE '%' || $1::text || '%' OR u.name ILIKE '%' || $2::text || '%' OR "+
			"u.email ILIKE '%' || $3::text || '%' OR b.city ILIKE '%' || $4::text || '%') AND "+
			"b.state = $5 AND b.income >= $6 AND b.is_active = $7)",
		sql,
	)
	require.Len(t, args, 7)
	assert.Equal(t, "maputo", args[0])
	assert.Equal(t, "SP", args[4])
	assert.Equal(t, minIncome, args[5])
	assert.Equal(t, true, args[6])
}

func TestCompileFilterEscapesLikeWildcards(t *testing.T) {
	_, args, err := compileFilter(query.IContains(borrower.FieldCity, "50%_off"), borrowerColumns)
	require.NoError(t, err)
	assert.Equal(t, `50\%\_off`, args[0])

	_, args, err = compileFilter(query.Eq(borrower.FieldState, "S_"), borrowerColumns)
	require.NoError(t, err)
	assert.Equal(t, "S_", args[0])
}

func TestCompileFilterEmptyOrMatchesNothing(t *testing.T) {
	sql, _, err := compileFilter(query.Or{}, borrowerColumns)
	require.NoError(t, err)
	assert.Equal(t, "FALSE", sql)
}

func TestCompileFilterRejectsUnknownField(t *testing.T) {
	_, _, err := compileFilter(query.Eq("password_hash", "x"), borrowerColumns)
	assert.Error(t, err)
}
