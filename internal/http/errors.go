package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/strixlab/patrol/internal/errors"
)

// statusForCode maps application error codes to HTTP statuses. Queue state
// rejections are client errors: the caller asked for something the queue
// cannot do right now.
func statusForCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeQueueEmpty,
		apperrors.ErrCodeQueueFull,
		apperrors.ErrCodeNotAllowed,
		apperrors.ErrCodeValidation:
		return http.StatusBadRequest
	case apperrors.ErrCodeNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError renders a service-layer error as the JSON error
// envelope. Unclassified errors become an opaque 500; the cause is logged,
// not leaked.
func writeServiceError(w http.ResponseWriter, logger *slog.Logger, err error) {
	code := apperrors.GetCode(err)
	status := statusForCode(code)

	if status == http.StatusInternalServerError {
		if logger != nil {
			logger.Error("request failed", "error", err)
		}
		WriteError(w, ErrorParams{
			Code:    status,
			ErrCode: string(apperrors.ErrCodeInternal),
			Err:     errors.New("internal server error"),
		})
		return
	}

	WriteError(w, ErrorParams{Code: status, ErrCode: string(code), Err: err})
}
