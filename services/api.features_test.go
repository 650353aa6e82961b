package services

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestFilterExactMatch(t *testing.T) {
	params := url.Values{}
	params.Set("difficulty", "easy")
	params.Set("duration", "5")

	f := NewAPIFeatures(params)

	assert.Equal(t, "easy", f.Filter["difficulty"])
	assert.Equal(t, 5.0, f.Filter["duration"], "numeric-looking values compare numerically")
}

func TestFilterComparisonOperators(t *testing.T) {
	params := url.Values{}
	params.Set("price[gte]", "500")
	params.Set("price[lt]", "2000")
	params.Set("ratingsAverage[gt]", "4.5")

	f := NewAPIFeatures(params)

	require.IsType(t, bson.M{}, f.Filter["price"])
	price := f.Filter["price"].(bson.M)
	assert.Equal(t, 500.0, price["$gte"])
	assert.Equal(t, 2000.0, price["$lt"])

	rating := f.Filter["ratingsAverage"].(bson.M)
	assert.Equal(t, 4.5, rating["$gt"])
}

func TestFilterIgnoresReservedParams(t *testing.T) {
	params := url.Values{}
	params.Set("page", "2")
	params.Set("sort", "price")
	params.Set("limit", "10")
	params.Set("fields", "name")
	params.Set("duration", "5")

	f := NewAPIFeatures(params)

	assert.Len(t, f.Filter, 1)
	assert.Contains(t, f.Filter, "duration")
}

func TestFilterUnknownFieldPassesThrough(t *testing.T) {
	params := url.Values{}
	params.Set("notAField", "whatever")

	f := NewAPIFeatures(params)

	assert.Equal(t, "whatever", f.Filter["notAField"])
}

func TestFilterUnknownOperatorSuffixIsExactMatch(t *testing.T) {
	params := url.Values{}
	params.Set("price[like]", "10")

	f := NewAPIFeatures(params)

	assert.Equal(t, 10.0, f.Filter["price[like]"])
}

func TestSortMultipleKeysKeepOrder(t *testing.T) {
	params := url.Values{}
	params.Set("sort", "-price,ratingsAverage")

	f := NewAPIFeatures(params)

	require.Len(t, f.Sort, 2)
	assert.Equal(t, "price", f.Sort[0].Key)
	assert.Equal(t, -1, f.Sort[0].Value)
	assert.Equal(t, "ratingsAverage", f.Sort[1].Key)
	assert.Equal(t, 1, f.Sort[1].Value)
}

func TestSortDefaultsToNewestFirst(t *testing.T) {
	f := NewAPIFeatures(url.Values{})

	require.Len(t, f.Sort, 1)
	assert.Equal(t, "createdAt", f.Sort[0].Key)
	assert.Equal(t, -1, f.Sort[0].Value)
}

func TestProjectionAllowList(t *testing.T) {
	params := url.Values{}
	params.Set("fields", "name,price, duration")

	f := NewAPIFeatures(params)

	assert.Equal(t, bson.M{"name": 1, "price": 1, "duration": 1}, f.Projection)
}

func TestProjectionAbsentMeansAllFields(t *testing.T) {
	f := NewAPIFeatures(url.Values{})
	assert.Nil(t, f.Projection)
}

func TestPaginationDefaults(t *testing.T) {
	f := NewAPIFeatures(url.Values{})

	assert.Equal(t, int64(0), f.Skip)
	assert.Equal(t, int64(100), f.Limit)
}

func TestPaginationSkipTake(t *testing.T) {
	params := url.Values{}
	params.Set("page", "3")
	params.Set("limit", "20")

	f := NewAPIFeatures(params)

	assert.Equal(t, int64(40), f.Skip)
	assert.Equal(t, int64(20), f.Limit)
}

func TestPaginationInvalidValuesFallBackToDefaults(t *testing.T) {
	params := url.Values{}
	params.Set("page", "zero")
	params.Set("limit", "-5")

	f := NewAPIFeatures(params)

	assert.Equal(t, int64(0), f.Skip)
	assert.Equal(t, int64(100), f.Limit)
}

func TestSameParamsYieldEquivalentQueries(t *testing.T) {
	params := url.Values{}
	params.Set("sort", "-price")
	params.Set("limit", "2")
	params.Set("page", "1")
	params.Set("price[gte]", "10")

	first := NewAPIFeatures(params)
	second := NewAPIFeatures(params)

	assert.Equal(t, first.Filter, second.Filter)
	assert.Equal(t, first.Sort, second.Sort)
	assert.Equal(t, first.Skip, second.Skip)
	assert.Equal(t, first.Limit, second.Limit)
}

func TestFindOptionsCarryAllPieces(t *testing.T) {
	params := url.Values{}
	params.Set("sort", "-price")
	params.Set("fields", "name")
	params.Set("page", "2")
	params.Set("limit", "5")

	opts := NewAPIFeatures(params).FindOptions()

	require.NotNil(t, opts.Skip)
	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(5), *opts.Skip)
	assert.Equal(t, int64(5), *opts.Limit)
	assert.NotNil(t, opts.Sort)
	assert.NotNil(t, opts.Projection)
}
