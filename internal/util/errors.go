package util

import "errors"

var (
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailRegistered       = errors.New("email already registered")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrPermissionDenied      = errors.New("permission denied")
	ErrChallengeNotFound     = errors.New("challenge not found")
	ErrChallengeInactive     = errors.New("challenge not currently available")
	ErrChallengeLocked       = errors.New("weekly free challenge limit reached")
	ErrSubmissionNotFound    = errors.New("submission not found")
	ErrSubmissionNotOwned    = errors.New("submission belongs to another user")
	ErrSubmissionEvaluated   = errors.New("submission already evaluated")
	ErrMalformedModelReply   = errors.New("ai grader returned a malformed reply")
	ErrTranslationProvider   = errors.New("translation provider error")
	ErrUnknownEmailTemplate  = errors.New("unknown email template type")
	ErrSubscriptionNotFound  = errors.New("no subscription on record")
	ErrAssessmentNoQuestions = errors.New("assessment question bank is empty")
)
