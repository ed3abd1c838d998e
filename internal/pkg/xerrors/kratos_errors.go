// File: internal/pkg/xerrors/kratos_errors.go
package xerrors

import "log/slog"

// KratosID Kratos UI 消息 ID
type KratosID int

// 注册流程相关的 Kratos 错误 ID（其余 ID 走通用映射）
const (
	ErrorValidationGeneric                        KratosID = 4000001
	ErrorValidationRequired                       KratosID = 4000002
	ErrorValidationInvalidFormat                  KratosID = 4000004
	ErrorValidationPasswordPolicyViolationGeneric KratosID = 4000005
	ErrorValidationDuplicateCredentials           KratosID = 4000007
	ErrorValidationDuplicateCredentialsWithHints  KratosID = 4000028
	ErrorValidationPasswordIdentifierTooSimilar   KratosID = 4000031
	ErrorValidationPasswordMinLength              KratosID = 4000032
	ErrorValidationPasswordMaxLength              KratosID = 4000033
	ErrorValidationPasswordTooManyBreaches        KratosID = 4000034
	ErrorValidationRegistrationFlowExpired        KratosID = 4040001
	ErrorValidationVerificationFlowExpired        KratosID = 4070001
)

// kratosErrMapping Kratos 错误 ID -> 业务错误码与文案
var kratosErrMapping = map[KratosID]struct {
	Code    ErrorCode
	Message string
}{
	ErrorValidationGeneric:                        {CodeInvalidParams, "the submitted details are invalid"},
	ErrorValidationRequired:                       {CodeInvalidParams, "a required field is missing"},
	ErrorValidationInvalidFormat:                  {CodeInvalidParams, "the submitted details have an invalid format"},
	ErrorValidationPasswordPolicyViolationGeneric: {CodePasswordPolicy, "password does not meet the security policy"},
	ErrorValidationDuplicateCredentials:           {CodeEmailExists, "an account with this email already exists"},
	ErrorValidationDuplicateCredentialsWithHints:  {CodeEmailExists, "an account with this email already exists"},
	ErrorValidationPasswordIdentifierTooSimilar:   {CodePasswordPolicy, "password is too similar to the email address"},
	ErrorValidationPasswordMinLength:              {CodePasswordPolicy, "Password must be at least 8 characters"},
	ErrorValidationPasswordMaxLength:              {CodePasswordPolicy, "password is too long"},
	ErrorValidationPasswordTooManyBreaches:        {CodePasswordPolicy, "password has appeared in a data breach, choose another"},
	ErrorValidationRegistrationFlowExpired:        {CodeKratosError, "registration flow expired, please try again"},
	ErrorValidationVerificationFlowExpired:        {CodeKratosError, "verification flow expired, please try again"},
}

// TranslateKratosError 根据 Kratos 的 UI message ID 返回业务错误码和消息
func TranslateKratosError(kratosID int) (ErrorCode, string) {
	if info, ok := kratosErrMapping[KratosID(kratosID)]; ok {
		return info.Code, info.Message
	}

	// 找不到映射时记录日志，便于后续补充
	slog.Warn("unmapped kratos message id", "kratos_id", kratosID)
	return CodeAccountCreationFailed, CodeAccountCreationFailed.Message()
}

// IsRetryableKratosError 过期类错误可以重建 flow 再试
func IsRetryableKratosError(kratosID int) bool {
	switch KratosID(kratosID) {
	case ErrorValidationRegistrationFlowExpired, ErrorValidationVerificationFlowExpired:
		return true
	}
	return false
}
