package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rongwang/book-exchange-server/internal/apperror"
	"github.com/rongwang/book-exchange-server/internal/metrics"
	"github.com/rongwang/book-exchange-server/internal/models"
	"github.com/rongwang/book-exchange-server/internal/service"
	"github.com/rongwang/book-exchange-server/internal/utils"
	"github.com/rongwang/book-exchange-server/internal/validation"
)

// Handler translates HTTP requests into service calls
type Handler struct {
	svc    service.Service
	logger *utils.Logger
}

// NewHandler creates a new Handler
func NewHandler(svc service.Service, logger *utils.Logger) *Handler {
	if logger == nil {
		logger = utils.Discard()
	}
	return &Handler{svc: svc, logger: logger}
}

// SetupRoutes registers every endpoint on router
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	users := router.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.DELETE("", h.missingID("User not specified"))
		users.GET("/:id", h.GetUser)
		users.PATCH("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)

		users.GET("/:id/library", h.GetLibrary)
		users.POST("/:id/library", h.AddToLibrary)
		users.PATCH("/:id/library", h.ToggleLibraryVisibility)
		users.DELETE("/:id/library", h.missingID("Book not specified"))
		users.PATCH("/:id/library/:book_id", h.UpdateLibraryEntry)
		users.DELETE("/:id/library/:book_id", h.RemoveFromLibrary)

		users.GET("/:id/wishlist", h.GetWishlist)
		users.POST("/:id/wishlist", h.AddToWishlist)
		users.DELETE("/:id/wishlist", h.missingID("Book not specified"))
		users.DELETE("/:id/wishlist/:book_id", h.RemoveFromWishlist)
	}

	router.GET("/libraries/:id", h.GetLibraryByID)

	books := router.Group("/books")
	{
		books.GET("", h.ListBooks)
		books.POST("", h.CreateBook)
		books.GET("/:id", h.GetBook)
		books.PATCH("/:id", h.UpdateBook)
		books.DELETE("/:id", h.DeleteBook)
	}

	addr := router.Group("/addr")
	{
		addr.GET("", h.ListAddresses)
		addr.POST("", h.CreateAddress)
		addr.GET("/:id", h.GetAddress)
		addr.PATCH("/:id", h.UpdateAddress)
		addr.DELETE("/:id", h.DeleteAddress)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{ErrorMessage: "Not found"})
	})
}

func (h *Handler) Health(c *gin.Context) {
	resp := h.svc.Health(c.Request.Context())
	status := http.StatusOK
	if resp.Database != "ok" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// missingID answers routes that need an id the client left out
func (h *Handler) missingID(message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h.fail(c, apperror.New(apperror.MissingArgument, message))
	}
}

// statusFor maps an error kind to an HTTP status. Conflicts are reported as
// 403 unless the resource states otherwise.
func statusFor(kind apperror.Kind, conflictStatus int) int {
	switch kind {
	case apperror.NotFound:
		return http.StatusNotFound
	case apperror.Conflict:
		return conflictStatus
	case apperror.MissingArgument, apperror.ExcessArgument, apperror.InvalidArgument:
		return http.StatusBadRequest
	case apperror.ForbiddenMutation:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(c *gin.Context, err error) {
	h.failWithConflict(c, err, http.StatusForbidden)
}

func (h *Handler) failWithConflict(c *gin.Context, err error, conflictStatus int) {
	kind := apperror.KindOf(err)
	metrics.DomainErrors.WithLabelValues(string(kind)).Inc()

	if kind == apperror.Internal {
		h.logger.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"request_id", c.GetString(requestIDKey),
			"error", err,
		)
	}

	c.JSON(statusFor(kind, conflictStatus), models.ErrorResponse{
		ErrorMessage: apperror.Message(err),
	})
}

// pathID parses a positive integer path parameter
func pathID(c *gin.Context, name, label string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperror.Newf(apperror.InvalidArgument, "Invalid %s id", label)
	}
	return id, nil
}

// bindBody validates the request body and decodes it into dst
func bindBody(c *gin.Context, dst interface{}, opts ...validation.Option) error {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return apperror.New(apperror.InvalidArgument, "Unreadable request body")
	}
	return validation.Decode(body, dst, opts...)
}
