package reviews

import "errors"

var (
	ErrReviewExists     = errors.New("you have already reviewed this title")
	ErrReviewNotFound   = errors.New("review not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrTitleNotFound    = errors.New("title not found")
	ErrInvalidScore     = errors.New("score must be between 1 and 10")
	ErrPermissionDenied = errors.New("you do not have permission to perform this action")
)
