package identity

import (
	"strings"

	"github.com/dmitrijs2005/agenda/internal/common"
)

// Provider error codes, as returned by Identity Toolkit compatible services.
const (
	CodeEmailExists             = "EMAIL_EXISTS"
	CodeInvalidEmail            = "INVALID_EMAIL"
	CodeWeakPassword            = "WEAK_PASSWORD"
	CodeEmailNotFound           = "EMAIL_NOT_FOUND"
	CodeUserNotFound            = "USER_NOT_FOUND"
	CodeInvalidPassword         = "INVALID_PASSWORD"
	CodeInvalidLoginCredentials = "INVALID_LOGIN_CREDENTIALS"
	CodeUserDisabled            = "USER_DISABLED"
	CodeOperationNotAllowed     = "OPERATION_NOT_ALLOWED"
	CodeInternalError           = "INTERNAL_ERROR"
	CodeNetworkError            = "NETWORK_ERROR"
	CodeInvalidIDToken          = "INVALID_ID_TOKEN"
	CodeInvalidOobCode          = "INVALID_OOB_CODE"
)

type translation struct {
	reason  string
	message string
}

var translations = map[string]translation{
	CodeEmailExists:             {common.ReasonEmailInUse, "This email is already in use"},
	CodeInvalidEmail:            {common.ReasonInvalidEmail, "Invalid email address"},
	CodeWeakPassword:            {common.ReasonWeakPassword, "Password is too weak (minimum 6 characters)"},
	CodeEmailNotFound:           {common.ReasonUserNotFound, "No account found with this email"},
	CodeUserNotFound:            {common.ReasonUserNotFound, "No account found with this email"},
	CodeInvalidPassword:         {common.ReasonWrongPassword, "Incorrect password"},
	CodeInvalidLoginCredentials: {common.ReasonWrongPassword, "Incorrect password"},
	CodeNetworkError:            {common.ReasonNetworkError, "Network error, check your connection"},
	CodeUserDisabled:            {common.ReasonUserDisabled, "This account has been disabled"},
	CodeOperationNotAllowed:     {common.ReasonOperationNotAllowed, "Email and password sign-in is not enabled"},
	CodeInternalError:           {common.ReasonInternalError, "Internal error, please try again"},
}

// Translate maps a provider code to a ProviderError. The REST API may append
// a description ("WEAK_PASSWORD : Password should be ..."); only the code
// part is matched. Unknown codes yield a generic authentication error that
// carries the code.
func Translate(code string) *common.ProviderError {
	code, _, _ = strings.Cut(code, " : ")
	code = strings.TrimSpace(code)

	if t, ok := translations[code]; ok {
		return &common.ProviderError{Reason: t.reason, Code: code, Message: t.message}
	}
	return &common.ProviderError{Reason: common.ReasonUnknown, Code: code}
}
