package services

import (
	"net/url"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	defaultPage  = 1
	defaultLimit = 100
)

// comparison suffixes accepted inside a query key, e.g. price[gte]=500.
var comparisonOps = map[string]string{
	"gte": "$gte",
	"gt":  "$gt",
	"lte": "$lte",
	"lt":  "$lt",
}

var reservedParams = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

// APIFeatures translates request query parameters into a Mongo filter and
// find options. It does no I/O and no schema validation; unknown fields pass
// through as opaque constraints and fail or match at query time.
type APIFeatures struct {
	Filter     bson.M
	Sort       bson.D
	Projection bson.M
	Skip       int64
	Limit      int64
}

func NewAPIFeatures(params url.Values) *APIFeatures {
	f := &APIFeatures{Filter: bson.M{}}
	f.filter(params)
	f.sort(params.Get("sort"))
	f.limitFields(params.Get("fields"))
	f.paginate(params.Get("page"), params.Get("limit"))
	return f
}

func (f *APIFeatures) filter(params url.Values) {
	for key, values := range params {
		if reservedParams[key] || len(values) == 0 {
			continue
		}
		field, op := splitComparison(key)
		value := coerceValue(values[0])
		if op == "" {
			f.Filter[field] = value
			continue
		}
		// several operators may constrain the same field, e.g.
		// price[gte]=500&price[lt]=2000
		rangeFilter, ok := f.Filter[field].(bson.M)
		if !ok {
			rangeFilter = bson.M{}
			f.Filter[field] = rangeFilter
		}
		rangeFilter[op] = value
	}
}

func (f *APIFeatures) sort(sortParam string) {
	if sortParam == "" {
		f.Sort = bson.D{{Key: "createdAt", Value: -1}}
		return
	}
	for _, key := range strings.Split(sortParam, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		order := 1
		if strings.HasPrefix(key, "-") {
			order = -1
			key = key[1:]
		}
		f.Sort = append(f.Sort, bson.E{Key: key, Value: order})
	}
}

func (f *APIFeatures) limitFields(fieldsParam string) {
	if fieldsParam == "" {
		return
	}
	projection := bson.M{}
	for _, field := range strings.Split(fieldsParam, ",") {
		field = strings.TrimSpace(field)
		if field != "" {
			projection[field] = 1
		}
	}
	if len(projection) > 0 {
		f.Projection = projection
	}
}

func (f *APIFeatures) paginate(pageParam, limitParam string) {
	page, err := strconv.ParseInt(pageParam, 10, 64)
	if err != nil || page < 1 {
		page = defaultPage
	}
	limit, err := strconv.ParseInt(limitParam, 10, 64)
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	f.Skip = (page - 1) * limit
	f.Limit = limit
}

func (f *APIFeatures) FindOptions() *options.FindOptions {
	opts := options.Find().
		SetSort(f.Sort).
		SetSkip(f.Skip).
		SetLimit(f.Limit)
	if f.Projection != nil {
		opts.SetProjection(f.Projection)
	}
	return opts
}

// splitComparison splits "price[gte]" into ("price", "$gte"). A key without
// a recognized operator suffix is an exact match.
func splitComparison(key string) (field string, op string) {
	open := strings.IndexByte(key, '[')
	if open <= 0 || !strings.HasSuffix(key, "]") {
		return key, ""
	}
	mongoOp, ok := comparisonOps[key[open+1:len(key)-1]]
	if !ok {
		return key, ""
	}
	return key[:open], mongoOp
}

// coerceValue maps numeric-looking and boolean-looking strings to their
// typed form so range operators compare numerically.
func coerceValue(raw string) interface{} {
	if n, err := strconv.ParseFloat(raw, 64); err == nil {
		return n
	}
	if b, err := strconv.ParseBool(raw); err == nil {
		return b
	}
	return raw
}
