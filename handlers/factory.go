package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.opentelemetry.io/otel/trace"

	"github.com/thisIsAskari/natours/services"
)

// ScopeFunc narrows a list query from route context, e.g. reviews nested
// under one tour. Returning an error aborts with that error's status.
type ScopeFunc func(c *gin.Context) (bson.M, error)

// PrepareFunc fills server-side fields of a new document from request
// context (path params, authenticated user) before validation runs.
type PrepareFunc[T any] func(c *gin.Context, doc *T) error

// Factory produces the five standard handlers for one resource. Everything
// resource-specific comes in through the config: the service, the response
// key and the optional scope/prepare hooks, so the cross-cutting behavior is
// visible where the factory is instantiated.
type Factory[T any] struct {
	service  services.ModelService[T]
	resource string
	logger   *logrus.Logger
	Tracer   trace.Tracer
	scope    ScopeFunc
	prepare  PrepareFunc[T]
}

func NewFactory[T any](service services.ModelService[T], resource string, logger *logrus.Logger, tr trace.Tracer) *Factory[T] {
	return &Factory[T]{service: service, resource: resource, logger: logger, Tracer: tr}
}

func (f *Factory[T]) WithScope(scope ScopeFunc) *Factory[T] {
	f.scope = scope
	return f
}

func (f *Factory[T]) WithPrepare(prepare PrepareFunc[T]) *Factory[T] {
	f.prepare = prepare
	return f
}

func (f *Factory[T]) GetAll(c *gin.Context) {
	ctx, span := f.Tracer.Start(c.Request.Context(), f.resource+"Handler.GetAll")
	defer span.End()

	scope := bson.M{}
	if f.scope != nil {
		var err error
		scope, err = f.scope(c)
		if err != nil {
			respondError(c, f.logger, err)
			return
		}
	}

	features := services.NewAPIFeatures(c.Request.URL.Query())
	docs, err := f.service.FindAll(ctx, features, scope)
	if err != nil {
		respondError(c, f.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"results": len(docs),
		"data":    gin.H{f.resource: docs},
	})
}

func (f *Factory[T]) GetOne(c *gin.Context) {
	ctx, span := f.Tracer.Start(c.Request.Context(), f.resource+"Handler.GetOne")
	defer span.End()

	doc, err := f.service.FindByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, f.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{f.resource: doc}})
}

func (f *Factory[T]) CreateOne(c *gin.Context) {
	ctx, span := f.Tracer.Start(c.Request.Context(), f.resource+"Handler.CreateOne")
	defer span.End()

	var doc T
	if err := c.ShouldBindJSON(&doc); err != nil {
		badRequest(c, "invalid JSON request")
		return
	}
	if f.prepare != nil {
		if err := f.prepare(c, &doc); err != nil {
			respondError(c, f.logger, err)
			return
		}
	}

	created, err := f.service.Create(ctx, &doc)
	if err != nil {
		respondError(c, f.logger, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"status": "success", "data": gin.H{f.resource: created}})
}

func (f *Factory[T]) UpdateOne(c *gin.Context) {
	ctx, span := f.Tracer.Start(c.Request.Context(), f.resource+"Handler.UpdateOne")
	defer span.End()

	patch := bson.M{}
	if err := c.ShouldBindJSON(&patch); err != nil {
		badRequest(c, "invalid JSON request")
		return
	}

	updated, err := f.service.UpdateByID(ctx, c.Param("id"), patch)
	if err != nil {
		respondError(c, f.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "data": gin.H{f.resource: updated}})
}

func (f *Factory[T]) DeleteOne(c *gin.Context) {
	ctx, span := f.Tracer.Start(c.Request.Context(), f.resource+"Handler.DeleteOne")
	defer span.End()

	if err := f.service.DeleteByID(ctx, c.Param("id")); err != nil {
		respondError(c, f.logger, err)
		return
	}

	c.Status(http.StatusNoContent)
}
