package identity

import (
	"testing"

	"github.com/dmitrijs2005/agenda/internal/common"
	"github.com/stretchr/testify/assert"
)

func TestTranslate_KnownCodes(t *testing.T) {
	cases := map[string]string{
		CodeEmailExists:             common.ReasonEmailInUse,
		CodeInvalidEmail:            common.ReasonInvalidEmail,
		CodeWeakPassword:            common.ReasonWeakPassword,
		CodeEmailNotFound:           common.ReasonUserNotFound,
		CodeInvalidPassword:         common.ReasonWrongPassword,
		CodeInvalidLoginCredentials: common.ReasonWrongPassword,
		CodeNetworkError:            common.ReasonNetworkError,
		CodeUserDisabled:            common.ReasonUserDisabled,
		CodeOperationNotAllowed:     common.ReasonOperationNotAllowed,
		CodeInternalError:           common.ReasonInternalError,
	}
	for code, reason := range cases {
		got := Translate(code)
		assert.Equal(t, reason, got.Reason, code)
		assert.Equal(t, code, got.Code)
		assert.NotEmpty(t, got.Error())
	}
}

func TestTranslate_StripsDescription(t *testing.T) {
	got := Translate("WEAK_PASSWORD : Password should be at least 6 characters")
	assert.Equal(t, common.ReasonWeakPassword, got.Reason)
	assert.Equal(t, CodeWeakPassword, got.Code)
}

func TestTranslate_UnknownCode(t *testing.T) {
	got := Translate("TOO_MANY_ATTEMPTS_TRY_LATER")
	assert.Equal(t, common.ReasonUnknown, got.Reason)
	assert.Equal(t, "authentication error: TOO_MANY_ATTEMPTS_TRY_LATER", got.Error())
	assert.True(t, common.IsProviderReason(got, common.ReasonUnknown))
}
