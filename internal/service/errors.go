package service

import "errors"

// Ошибки уровня сервисов. Обработчики переводят их в HTTP-статусы.
var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrFeedbackNotFound  = errors.New("feedback not found")
	ErrDuplicateFeedback = errors.New("feedback already exists for this order and user")
	ErrInvalidStatus     = errors.New("invalid feedback status")

	ErrNothingToProcess   = errors.New("nothing to process")
	ErrAttachmentRequired = errors.New("attachment file is required")
	ErrInvalidJSONBody    = errors.New("invalid json in request body")
	ErrInvalidProjectData = errors.New("invalid json in projectData")
	ErrProjectDataType    = errors.New("projectData must be object/array or json string")

	ErrFeedUnavailable = errors.New("failed to fetch rss feed")
	ErrFeedInvalid     = errors.New("failed to parse rss feed")

	ErrUnsupportedFormat = errors.New("unsupported export format")
)
