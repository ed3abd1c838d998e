package xerrors

import "strings"

// TranslateKratosErrorText 根据 Kratos 返回的消息文本兜底翻译（ID 不可用或未映射时）
func TranslateKratosErrorText(text string) (ErrorCode, string) {
	lower := strings.ToLower(text)

	switch {
	case containsAny(lower, "exists already", "already exists", "already taken", "identifier exists", "account exists"):
		return CodeEmailExists, CodeEmailExists.Message()
	case containsAny(lower, "too short", "at least 8", "minimum length", "not long enough"):
		return CodePasswordPolicy, "Password must be at least 8 characters"
	case containsAny(lower, "data breach", "breaches", "too similar"):
		return CodePasswordPolicy, CodePasswordPolicy.Message()
	case strings.Contains(lower, "email") && containsAny(lower, "invalid", "not valid", "does not match pattern"):
		return CodeInvalidParams, "Invalid email address"
	}

	return CodeAccountCreationFailed, CodeAccountCreationFailed.Message()
}

func containsAny(haystack string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
