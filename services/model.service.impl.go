package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/thisIsAskari/natours/domain"
)

// ModelConfig describes one resource to the generic Mongo service: its
// visibility guards, partial-update rules, protected fields and lifecycle
// callbacks. Everything cross-cutting is visible here, at the construction
// site, instead of hiding inside schema hooks.
type ModelConfig[T any] struct {
	Resource     string
	ConflictName string
	Guards       []QueryGuard
	PatchRules   map[string]string
	Protected    []string
	Prepare      func(*T)
	ValidateDoc  func(*T, domain.Validator) error
}

type MongoModelServiceImpl[T any] struct {
	collection *mongo.Collection
	cfg        ModelConfig[T]
	fields     map[string]reflect.Type
	validate   *validator.Validate
	Tracer     trace.Tracer
}

func NewMongoModelServiceImpl[T any](collection *mongo.Collection, cfg ModelConfig[T], validate *validator.Validate, tr trace.Tracer) *MongoModelServiceImpl[T] {
	return &MongoModelServiceImpl[T]{collection, cfg, structFieldTypes[T](), validate, tr}
}

func (s *MongoModelServiceImpl[T]) FindAll(ctx context.Context, features *APIFeatures, scope bson.M) ([]T, error) {
	ctx, span := s.Tracer.Start(ctx, s.cfg.Resource+"Service.FindAll")
	defer span.End()

	filter := applyGuards(scopedFilter(features, scope), s.cfg.Guards)

	cursor, err := s.collection.Find(ctx, filter, features.FindOptions())
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("finding %s: %w", s.cfg.Resource, err)
	}
	defer cursor.Close(ctx)

	docs := []T{}
	if err := cursor.All(ctx, &docs); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("decoding %s: %w", s.cfg.Resource, err)
	}
	return docs, nil
}

func (s *MongoModelServiceImpl[T]) FindByID(ctx context.Context, id string) (*T, error) {
	ctx, span := s.Tracer.Start(ctx, s.cfg.Resource+"Service.FindByID")
	defer span.End()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrMalformedID()
	}

	filter := applyGuards(bson.M{"_id": oid}, s.cfg.Guards)

	var doc T
	if err := s.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound()
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("finding %s %s: %w", s.cfg.Resource, id, err)
	}
	return &doc, nil
}

func (s *MongoModelServiceImpl[T]) Create(ctx context.Context, doc *T) (*T, error) {
	ctx, span := s.Tracer.Start(ctx, s.cfg.Resource+"Service.Create")
	defer span.End()

	if s.cfg.Prepare != nil {
		s.cfg.Prepare(doc)
	}
	if s.cfg.ValidateDoc != nil {
		if err := s.cfg.ValidateDoc(doc, s.validate); err != nil {
			return nil, toValidationError(err)
		}
	}

	result, err := s.collection.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, &domain.ConflictError{Relationship: s.cfg.ConflictName}
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("inserting %s: %w", s.cfg.Resource, err)
	}

	// Re-read by _id without guards so the caller gets the stored document
	// with server-assigned fields, even when guards would hide it.
	var created T
	if err := s.collection.FindOne(ctx, bson.M{"_id": result.InsertedID}).Decode(&created); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("reading back created %s: %w", s.cfg.Resource, err)
	}
	return &created, nil
}

func (s *MongoModelServiceImpl[T]) UpdateByID(ctx context.Context, id string, patch bson.M) (*T, error) {
	ctx, span := s.Tracer.Start(ctx, s.cfg.Resource+"Service.UpdateByID")
	defer span.End()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrMalformedID()
	}

	for _, field := range s.cfg.Protected {
		delete(patch, field)
	}
	if err := normalizePatch(patch, s.fields, s.cfg.PatchRules, s.validate); err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		return s.FindByID(ctx, id)
	}

	filter := applyGuards(bson.M{"_id": oid}, s.cfg.Guards)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updated T
	err = s.collection.FindOneAndUpdate(ctx, filter, bson.M{"$set": patch}, opts).Decode(&updated)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNotFound()
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, &domain.ConflictError{Relationship: s.cfg.ConflictName}
		}
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("updating %s %s: %w", s.cfg.Resource, id, err)
	}
	return &updated, nil
}

func (s *MongoModelServiceImpl[T]) DeleteByID(ctx context.Context, id string) error {
	ctx, span := s.Tracer.Start(ctx, s.cfg.Resource+"Service.DeleteByID")
	defer span.End()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrMalformedID()
	}

	filter := applyGuards(bson.M{"_id": oid}, s.cfg.Guards)
	result, err := s.collection.DeleteOne(ctx, filter)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("deleting %s %s: %w", s.cfg.Resource, id, err)
	}
	if result.DeletedCount == 0 {
		return domain.ErrNotFound()
	}
	return nil
}

func (s *MongoModelServiceImpl[T]) Aggregate(ctx context.Context, pipeline mongo.Pipeline, results interface{}) error {
	ctx, span := s.Tracer.Start(ctx, s.cfg.Resource+"Service.Aggregate")
	defer span.End()

	cursor, err := s.collection.Aggregate(ctx, guardPipeline(pipeline, s.cfg.Guards))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("aggregating %s: %w", s.cfg.Resource, err)
	}
	defer cursor.Close(ctx)

	if err := cursor.All(ctx, results); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("decoding %s aggregation: %w", s.cfg.Resource, err)
	}
	return nil
}

// scopedFilter merges the feature-built filter under the route scope. On a
// key collision the scope wins, so a query parameter can never widen a
// nested route's listing.
func scopedFilter(features *APIFeatures, scope bson.M) bson.M {
	filter := bson.M{}
	for k, v := range features.Filter {
		filter[k] = v
	}
	for k, v := range scope {
		filter[k] = v
	}
	return filter
}

// structFieldTypes maps the model's bson field names to their Go types.
// The _id field is excluded; it is never a patch target.
func structFieldTypes[T any]() map[string]reflect.Type {
	var doc T
	t := reflect.TypeOf(doc)
	fields := make(map[string]reflect.Type, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := strings.Split(field.Tag.Get("bson"), ",")[0]
		if name == "" || name == "-" || name == "_id" {
			continue
		}
		fields[name] = field.Type
	}
	return fields
}

// normalizePatch makes a client patch safe to $set: fields the model does
// not declare are dropped, every remaining value is converted to the
// model's field type, and the per-field rules run on the converted value.
// A value that cannot represent the field's type is rejected rather than
// stored, so a partial update can never corrupt a document.
func normalizePatch(patch bson.M, fields map[string]reflect.Type, rules map[string]string, validate *validator.Validate) error {
	for field, value := range patch {
		fieldType, ok := fields[field]
		if !ok {
			delete(patch, field)
			continue
		}
		converted, err := convertToFieldType(fieldType, value)
		if err != nil {
			return &domain.ValidationError{Field: field, Message: fmt.Sprintf("invalid value for %s", field)}
		}
		patch[field] = converted
		if rule, ok := rules[field]; ok {
			if err := validate.Var(converted, rule); err != nil {
				return &domain.ValidationError{Field: field, Message: fmt.Sprintf("invalid value for %s", field)}
			}
		}
	}
	return nil
}

var (
	objectIDType = reflect.TypeOf(primitive.ObjectID{})
	dateTimeType = reflect.TypeOf(primitive.DateTime(0))
)

// convertToFieldType coerces a decoded JSON value to the model field's Go
// type. Hex strings become ObjectIDs and RFC 3339 strings become DateTimes;
// everything else round-trips through the bson codec, which refuses lossy
// or cross-kind conversions like a string into a float64.
func convertToFieldType(t reflect.Type, value interface{}) (interface{}, error) {
	if value != nil && reflect.TypeOf(value) == t {
		return value, nil
	}

	switch t {
	case objectIDType:
		if s, ok := value.(string); ok {
			return primitive.ObjectIDFromHex(s)
		}
	case dateTimeType:
		if s, ok := value.(string); ok {
			parsed, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return nil, err
			}
			return primitive.NewDateTimeFromTime(parsed), nil
		}
	}

	if t.Kind() == reflect.Slice {
		items, ok := value.([]interface{})
		if !ok {
			return nil, fmt.Errorf("expected an array for %s", t)
		}
		out := reflect.MakeSlice(t, 0, len(items))
		for _, item := range items {
			converted, err := convertToFieldType(t.Elem(), item)
			if err != nil {
				return nil, err
			}
			out = reflect.Append(out, reflect.ValueOf(converted))
		}
		return out.Interface(), nil
	}

	bsonType, data, err := bson.MarshalValue(value)
	if err != nil {
		return nil, err
	}
	target := reflect.New(t)
	if err := bson.UnmarshalValue(bsonType, data, target.Interface()); err != nil {
		return nil, err
	}
	return target.Elem().Interface(), nil
}

// toValidationError flattens a go-playground validation result into the
// domain taxonomy, keeping the first violated constraint's message.
func toValidationError(err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return err
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		return &domain.ValidationError{
			Field:   first.Field(),
			Message: fmt.Sprintf("field %s failed on the %s constraint", first.Field(), first.Tag()),
		}
	}
	return &domain.ValidationError{Message: err.Error()}
}
