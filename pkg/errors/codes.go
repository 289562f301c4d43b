package errors

// Error codes attached to AppError.Code
const (
	CodeMissingField       = "MISSING_FIELD"
	CodeInvalidFormat      = "INVALID_FORMAT"
	CodeInvalidDocument    = "INVALID_DOCUMENT"
	CodeInvalidPagination  = "INVALID_PAGINATION"
	CodeInvalidImageParams = "INVALID_IMAGE_PARAMS"
	CodeUploadTooLarge     = "UPLOAD_TOO_LARGE"
	CodeImageTooLarge      = "IMAGE_TOO_LARGE"
	CodeDocumentTooLarge   = "DOCUMENT_TOO_LARGE"
	CodeBreakerOpen        = "BREAKER_OPEN"
)
