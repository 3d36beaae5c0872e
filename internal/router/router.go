package router

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"finjar/internal/auth"
	"finjar/internal/config"
	apperrors "finjar/internal/errors"
	"finjar/internal/handler"
	"finjar/internal/repository"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	userRepo repository.UserRepository,
	tokenStore auth.TokenStoreInterface,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	jarHandler *handler.JarHandler,
	depositHandler *handler.DepositHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Every error leaves through the same envelope; nothing internal leaks.
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		if he, ok := err.(*echo.HTTPError); ok {
			_ = c.JSON(he.Code, apperrors.Response{
				Success: false,
				Message: fmt.Sprintf("%v", he.Message),
			})
			return
		}
		mapped := apperrors.MapErrorToHTTP(err)
		_ = c.JSON(mapped.StatusCode, mapped.ToResponse())
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)

	// Secured routes: echo-jwt checks the signature and expiry, RequireUser
	// re-resolves the subject against the user store and rejects revoked
	// tokens.
	secured := api.Group("",
		echojwt.WithConfig(echojwt.Config{
			SigningKey:  []byte(cfg.JWTSecret),
			TokenLookup: "header:" + echo.HeaderAuthorization,
			NewClaimsFunc: func(c echo.Context) jwt.Claims {
				return new(auth.Claims)
			},
			ErrorHandler: func(c echo.Context, err error) error {
				he := apperrors.MapErrorToHTTP(apperrors.ErrInvalidToken)
				return c.JSON(he.StatusCode, he.ToResponse())
			},
		}),
		auth.RequireUser(userRepo, tokenStore),
	)

	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/me", userHandler.Me)
	secured.PUT("/me", userHandler.UpdateMe)

	secured.GET("/jars", jarHandler.List)
	secured.POST("/jars", jarHandler.Create)
	secured.GET("/jars/:id", jarHandler.Get)
	secured.PUT("/jars/:id", jarHandler.Update)
	secured.DELETE("/jars/:id", jarHandler.Delete)
	secured.POST("/jars/:id/recalc", jarHandler.Recalculate)
	secured.GET("/jars/:id/activity", jarHandler.Activity)

	secured.GET("/deposits", depositHandler.List)
	secured.POST("/deposits", depositHandler.Create)
	secured.PUT("/deposits/:id", depositHandler.Update)
	secured.DELETE("/deposits/:id", depositHandler.Delete)
}

// CustomValidator adapts go-playground/validator to echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates a bound request struct.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
