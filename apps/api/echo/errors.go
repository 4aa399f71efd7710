package echoapi

import (
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = core.NewValidationError(errors.New("invalid credentials"))
	errAccountDeactivated   = echo.NewHTTPError(http.StatusForbidden, "account deactivated")
	errRefreshExpired       = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

// errorResponse is the body of every error response.
type errorResponse struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
// Domain errors are all reported as 400 Bad Request, their kind in the `code` field.
// signalShutdown is called in order to gracefully shutdown the Server whenever a core.shutdown error is caught.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator, signalShutdown func()) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var resp errorResponse

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				resp = httpErrorResponse(code, origErr.Message)
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			resp = httpErrorResponse(code, origErr.Message)
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			resp = errorResponse{Code: string(core.KindValidation), Message: "invalid data", Fields: fldErrs}
		case *core.ValidationError:
			code = http.StatusBadRequest
			resp = errorResponse{Code: string(core.KindValidation), Message: origErr.Error()}
			if origErr.Fields != nil {
				resp.Fields = make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					resp.Fields[fErr.Field] = fErr.Error
				}
			}
		case *core.Error:
			code = http.StatusBadRequest
			resp = errorResponse{Code: string(origErr.Kind), Message: origErr.Message}
			if origErr.Kind == core.KindStoreFailure {
				logger.Error(origErr.Message, err, ctx.Request(), contextActor(ctx))
			}
		default: // any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			resp = httpErrorResponse(code, msg)
			logger.Error(msg, errors.Wrap(err, msg), ctx.Request(), contextActor(ctx))

			// shutting down...
			if core.IsShutdown(err) {
				signalShutdown()
			}
		}

		if ctx.Echo().Debug {
			resp.Message = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, resp)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func httpErrorResponse(code int, message interface{}) errorResponse {
	resp := errorResponse{Code: strings.ReplaceAll(strings.ToLower(http.StatusText(code)), " ", "_")}
	if msg, ok := message.(string); ok {
		resp.Message = msg
	} else {
		resp.Message = http.StatusText(code)
	}
	return resp
}

// contextActor describes the authenticated user for the logs, from the request's JWT claims.
// It is zero on public routes and when the token was rejected.
func contextActor(ctx echo.Context) core.Actor {
	token, ok := ctx.Get(contextTokenKey).(*jwt.Token)
	if !ok || !token.Valid {
		return core.Actor{}
	}
	claims, ok := token.Claims.(*Claims)
	if !ok {
		return core.Actor{}
	}
	return core.Actor{ID: claims.Subject, Username: claims.Username, Email: claims.Email, Role: claims.Role}
}
