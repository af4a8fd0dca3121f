package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrUserBlocked        ErrCode = "USER_BLOCKED"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrAdminAccessOnly ErrCode = "ADMIN_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Test sessions ─────────────────────────────────────────────────
	ErrSessionConflict       ErrCode = "SESSION_CONFLICT"
	ErrAttemptsExhausted     ErrCode = "ATTEMPTS_EXHAUSTED"
	ErrWindowClosed          ErrCode = "WINDOW_CLOSED"
	ErrSessionNotActive      ErrCode = "SESSION_NOT_ACTIVE"
	ErrUnknownQuestion       ErrCode = "UNKNOWN_QUESTION"
	ErrTimeExpired           ErrCode = "TIME_EXPIRED"
	ErrInsufficientQuestions ErrCode = "INSUFFICIENT_QUESTIONS"
	ErrDirectionInactive     ErrCode = "DIRECTION_INACTIVE"
	ErrPaymentRequired       ErrCode = "PAYMENT_REQUIRED"
	ErrResultNotReady        ErrCode = "RESULT_NOT_READY"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrUserBlocked:
		return "This account is blocked."
	case ErrEmailTaken:
		return "A user with this email already exists."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrAdminAccessOnly:
		return "This resource is restricted to administrators."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."

	// ─── Test sessions ─────────────────────────────────────────────────
	case ErrSessionConflict:
		return "An active test session already exists for this direction."
	case ErrAttemptsExhausted:
		return "You have no test attempts left."
	case ErrWindowClosed:
		return "The test window for this direction is currently closed."
	case ErrSessionNotActive:
		return "This test session is already finished."
	case ErrUnknownQuestion:
		return "The question does not belong to this test session."
	case ErrTimeExpired:
		return "Time is up. The session has been completed with your recorded answers."
	case ErrInsufficientQuestions:
		return "Not enough questions are available to start a test for this direction."
	case ErrDirectionInactive:
		return "This direction is not available."
	case ErrPaymentRequired:
		return "Access to this direction requires a confirmed payment."
	case ErrResultNotReady:
		return "No result exists for this session."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
