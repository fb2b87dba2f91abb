package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// DataResponse writes data as a bare JSON body with the given status.
func DataResponse(c echo.Context, statusCode int, data interface{}) error {
	return c.JSON(statusCode, data)
}

// SuccessResponse writes a 200 response.
func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

// DetailErrorResponse writes {"detail": detail} with the given status.
func DetailErrorResponse(c echo.Context, statusCode int, detail interface{}) error {
	return DataResponse(c, statusCode, DetailResponse{Detail: detail})
}

// ValidationErrorResponse writes a 422 with the list of validation failures.
func ValidationErrorResponse(c echo.Context, errs []ValidationError) error {
	return DetailErrorResponse(c, http.StatusUnprocessableEntity, errs)
}

// TooManyRequestsResponse writes a 429.
func TooManyRequestsResponse(c echo.Context) error {
	return DetailErrorResponse(c, http.StatusTooManyRequests, "rate limited")
}

// InternalServerErrorResponse writes internal server error.
func InternalServerErrorResponse(c echo.Context) error {
	return DetailErrorResponse(c, http.StatusInternalServerError, "Internal Server Error")
}

// AppErrorResponse writes application error response. Non-AppErrors become a 500
// carrying their message.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return DetailErrorResponse(c, appErr.Status, appErr.Error())
	}
	if err != nil {
		return DetailErrorResponse(c, http.StatusInternalServerError, err.Error())
	}
	return InternalServerErrorResponse(c)
}
