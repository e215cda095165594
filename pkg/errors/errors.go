package errors

// Definition carries a stable business error code plus the user-facing
// message for it. Technical detail never travels in Message, it is logged.
type Definition struct {
	Code    string
	Message string
}

func (d Definition) Error() string {
	return d.Message
}

// Session errors.
var (
	AuthenticationRequired = Definition{Code: "AUTHENTICATION_REQUIRED", Message: "Sign in to continue"}
	Unauthorized           = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	InvalidUserID          = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID format"}
	TooManyRequests        = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests, slow down"}
)

// Log store errors.
var (
	UpstreamUnavailable = Definition{Code: "UPSTREAM_UNAVAILABLE", Message: "The log store is temporarily unavailable, try again shortly"}
	ValidationFailure   = Definition{Code: "VALIDATION_FAILURE", Message: "The submitted record was rejected"}
)

// Query errors.
var (
	InvalidDate        = Definition{Code: "INVALID_DATE", Message: "Unrecognized date"}
	UnknownHabit       = Definition{Code: "UNKNOWN_HABIT", Message: "Unknown habit key"}
	HabitNotChartable  = Definition{Code: "HABIT_NOT_CHARTABLE", Message: "This habit has no chartable values"}
	InvalidGranularity = Definition{Code: "INVALID_GRANULARITY", Message: "Granularity must be month or week"}
)

// Token errors.
var (
	TokenGeneratorNotInitialized = Definition{Code: "TOKEN_GENERATOR_NOT_INITIALIZED", Message: "Token generator not initialized"}
	UnexpectedSigningMethod      = Definition{Code: "UNEXPECTED_SIGNING_METHOD", Message: "Unexpected token signing method"}
	InvalidToken                 = Definition{Code: "INVALID_TOKEN", Message: "Invalid token"}
	InvalidTokenType             = Definition{Code: "INVALID_TOKEN_TYPE", Message: "Invalid token type"}
)

// Lookup maps codes back to their definitions.
var Lookup = map[string]Definition{
	AuthenticationRequired.Code: AuthenticationRequired,
	Unauthorized.Code:           Unauthorized,
	InvalidUserID.Code:          InvalidUserID,
	TooManyRequests.Code:        TooManyRequests,
	UpstreamUnavailable.Code:    UpstreamUnavailable,
	ValidationFailure.Code:      ValidationFailure,
	InvalidDate.Code:            InvalidDate,
	UnknownHabit.Code:           UnknownHabit,
	HabitNotChartable.Code:      HabitNotChartable,
	InvalidGranularity.Code:     InvalidGranularity,
	InvalidToken.Code:           InvalidToken,
	InvalidTokenType.Code:       InvalidTokenType,
}

// Get returns the Definition for a code, or a generic one when unknown.
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}
