package echoapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

// crudService is implemented by the services of every entity.
type crudService[N, U, V any] interface {
	Create(ctx context.Context, data N) (V, error)
	Get(ctx context.Context, id string) (V, error)
	List(ctx context.Context) ([]V, error)
	Update(ctx context.Context, id string, data U) (V, error)
	Delete(ctx context.Context, id string) (V, error)
}

// registerCRUD registers the create, list, retrieve, update and destroy endpoints of svc on g.
// writeMw guard the endpoints modifying documents.
func registerCRUD[N, U, V any](g *echo.Group, svc crudService[N, U, V], writeMw ...echo.MiddlewareFunc) {
	g.POST("", createHandler(svc.Create), writeMw...)
	g.GET("", listHandler(svc.List))
	g.GET("/:id", idHandler(svc.Get))
	g.PUT("/:id", updateHandler(svc.Update), writeMw...)
	g.DELETE("/:id", idHandler(svc.Delete), writeMw...)
}

// createHandler binds the request body to N, lets prepare complete it, then creates the document.
func createHandler[N, V any](
	create func(context.Context, N) (V, error),
	prepare ...func(echo.Context, *N) error,
) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var data N
		if err := ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding request body")
		}
		for _, p := range prepare {
			if err := p(ctx, &data); err != nil {
				return err
			}
		}
		v, err := create(ctx.Request().Context(), data)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusCreated, v)
	}
}

func listHandler[V any](list func(context.Context) ([]V, error)) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		views, err := list(ctx.Request().Context())
		if err != nil {
			return err
		}
		if views == nil {
			views = []V{}
		}
		return ctx.JSON(http.StatusOK, views)
	}
}

// idHandler calls fn with the `id` path param: retrieve, destroy and filtered list endpoints.
func idHandler[V any](fn func(context.Context, string) (V, error)) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		v, err := fn(ctx.Request().Context(), ctx.Param("id"))
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, v)
	}
}

// updateHandler binds the request body to U and calls fn with the `id` path param.
// Also serves the endpoints adding and removing references.
func updateHandler[U, V any](fn func(context.Context, string, U) (V, error)) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		var data U
		if err := ctx.Bind(&data); err != nil {
			return errors.Wrap(err, "binding request body")
		}
		v, err := fn(ctx.Request().Context(), ctx.Param("id"), data)
		if err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, v)
	}
}

// registerRefs registers the endpoints adding documents to, and removing them from, a list of references.
func registerRefs[V any](
	g *echo.Group,
	path string,
	add, remove func(context.Context, string, core.IDList) (V, error),
	mw ...echo.MiddlewareFunc,
) {
	g.POST("/:id/"+path, updateHandler(add), mw...)
	g.DELETE("/:id/"+path, updateHandler(remove), mw...)
}

// formBlob returns the file uploaded as the `name` part of a multipart request, or nil.
// The caller must call the returned func once done with the blob.
func formBlob(ctx echo.Context, name string) (*core.Blob, func(), error) {
	fh, err := ctx.FormFile(name)
	if err != nil {
		if err == http.ErrMissingFile || err == http.ErrNotMultipart {
			return nil, func() {}, nil
		}
		return nil, nil, errors.Wrap(err, "reading uploaded file")
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, errors.Wrap(err, "opening uploaded file")
	}
	blob := &core.Blob{
		Name:        fh.Filename,
		ContentType: fh.Header.Get(echo.HeaderContentType),
		Size:        fh.Size,
		Content:     f,
	}
	return blob, func() { _ = f.Close() }, nil
}

// requiredBlob is formBlob for uploads the request cannot go without.
func requiredBlob(ctx echo.Context, name string) (core.Blob, func(), error) {
	blob, done, err := formBlob(ctx, name)
	if err != nil {
		return core.Blob{}, nil, err
	}
	if blob == nil {
		return core.Blob{}, nil, core.NewValidationError(nil, core.FieldError{Field: name, Error: "this field is required"})
	}
	return *blob, done, nil
}

// formValue returns the `name` form value when the request holds one.
func formValue(ctx echo.Context, name string) *string {
	params, err := ctx.FormParams()
	if err != nil {
		return nil
	}
	if vals, ok := params[name]; ok && len(vals) > 0 {
		return &vals[0]
	}
	return nil
}

func isMultipart(ctx echo.Context) bool {
	return strings.HasPrefix(ctx.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm)
}
