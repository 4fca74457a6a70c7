package v1

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/grpc-ecosystem/grpc-gateway/v2/runtime"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hrygo/folio/internal/profile"
	"github.com/hrygo/folio/server/internal/observability"
	"github.com/hrygo/folio/server/service/tagging"
	"github.com/hrygo/folio/store"
)

type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store
	Tagging *tagging.Service
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, taggingService *tagging.Service) *APIV1Service {
	return &APIV1Service{
		Profile: profile,
		Store:   store,
		Tagging: taggingService,
	}
}

// itemRoutes maps each item kind to its path segment.
var itemRoutes = []struct {
	kind    store.ItemKind
	segment string
}{
	{store.ItemKindPost, "post"},
	{store.ItemKindProject, "project"},
}

// RegisterRoutes registers the v1 JSON API with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	if echoServer.Validator == nil {
		echoServer.Validator = NewRequestValidator()
	}

	api := echoServer.Group("/api/v1", middleware.CORS())

	api.POST("/tags", s.CreateTag)
	api.GET("/tags", s.ListTags)
	api.GET("/tags/:id", s.GetTag)
	api.PATCH("/tags/:id", s.UpdateTag)
	api.DELETE("/tags/:id", s.DeleteTag)

	api.POST("/posts", s.CreatePost)
	api.POST("/projects", s.CreateProject)

	for _, route := range itemRoutes {
		h := &itemTagHandler{service: s, kind: route.kind}

		items := api.Group("/" + route.segment + "s")
		items.GET("/:id", h.GetItem)
		items.DELETE("/:id", h.DeleteItem)

		g := api.Group("/" + route.segment + "-tags")
		g.POST("", h.CreateAssociation)
		g.POST("/bulk", h.AddMultipleTags)
		g.GET("", h.ListAssociations)
		g.GET("/popular", h.FindPopularTags)
		g.GET("/:id", h.GetAssociation)
		g.DELETE("/:id", h.Remove)
		g.GET("/items/:itemId", h.FindByItem)
		g.GET("/items/:itemId/count", h.CountByItem)
		g.GET("/items/:itemId/similar", h.FindSimilarItems)
		g.DELETE("/items/:itemId/tags/:tagId", h.RemoveAssociation)
		g.GET("/tags/:tagId", h.FindByTag)
		g.GET("/tags/:tagId/count", h.CountByTag)
		g.GET("/tags/:tagId/rss", h.TagFeed)
	}
}

// RequestValidator adapts validator.Validate to echo.Validator.
type RequestValidator struct {
	validate *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	return &RequestValidator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *RequestValidator) Validate(i any) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// bindAndValidate decodes the request body into req and validates it.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.Validate(req)
}

// toHTTPError maps a status error returned by the service layer to an echo.HTTPError.
func toHTTPError(c echo.Context, err error) error {
	st, ok := status.FromError(err)
	if !ok || st.Code() == codes.Internal || st.Code() == codes.Unknown {
		observability.Logger(c.Request().Context()).Error("internal error", slog.String("error", err.Error()))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
	return echo.NewHTTPError(runtime.HTTPStatusFromCode(st.Code()), st.Message())
}

// pathID parses the positive int32 path parameter name.
func pathID(c echo.Context, name string) (int32, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return int32(id), nil
}

// queryInt parses the optional non-negative integer query parameter name.
func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return v, nil
}

func queryBool(c echo.Context, name string) (bool, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return v, nil
}
