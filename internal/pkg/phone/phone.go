// Package phone 手机号规范化与校验
//
// 所有表单入口共用同一套策略：先清洗成 +<国家码><号码> 形式，再用按策略生成的
// 正则校验。国内号码分支与国际号码分支使用同一组位数上下限。
package phone

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"onboard-pay/internal/pkg/xerrors"
)

// Field 校验失败时错误挂载的字段名
const Field = "phone"

var (
	ErrEmpty          = errors.New("Phone number is required")
	ErrContainsLetter = errors.New("Phone number must not contain letters")
	ErrTooShort       = errors.New("Phone number is too short")
	ErrInvalidFormat  = errors.New("Please enter a valid phone number with country code")
)

// Policy 规范化策略
type Policy struct {
	// DefaultCountryCode 无 + 前缀时补齐的国家码（不带 +）
	DefaultCountryCode string
	// SubscriberLength 默认国家的用户号码位数，国内分支取末尾这么多位
	SubscriberLength int
	// MinTotalDigits/MaxTotalDigits 国家码 + 号码的总位数范围
	MinTotalDigits int
	MaxTotalDigits int
}

// DefaultPolicy 北美号码：+1 加 10 位，总位数 11~15
var DefaultPolicy = Policy{
	DefaultCountryCode: "1",
	SubscriberLength:   10,
	MinTotalDigits:     11,
	MaxTotalDigits:     15,
}

var countryCodePattern = regexp.MustCompile(`^[1-9][0-9]{0,2}$`)

// Validate 检查策略自身是否自洽
func (p Policy) Validate() error {
	if !countryCodePattern.MatchString(p.DefaultCountryCode) {
		return fmt.Errorf("phone: invalid default country code %q", p.DefaultCountryCode)
	}
	if p.SubscriberLength <= 0 {
		return fmt.Errorf("phone: subscriber length must be positive")
	}
	if p.MinTotalDigits < 2 || p.MaxTotalDigits > 15 || p.MinTotalDigits > p.MaxTotalDigits {
		return fmt.Errorf("phone: digit bounds [%d,%d] out of range", p.MinTotalDigits, p.MaxTotalDigits)
	}
	domestic := len(p.DefaultCountryCode) + p.SubscriberLength
	if domestic < p.MinTotalDigits || domestic > p.MaxTotalDigits {
		return fmt.Errorf("phone: domestic numbers have %d digits, outside [%d,%d]",
			domestic, p.MinTotalDigits, p.MaxTotalDigits)
	}
	return nil
}

// Normalizer 按策略规范化并校验手机号，可并发使用
type Normalizer struct {
	policy  Policy
	pattern *regexp.Regexp
}

// Result 一次校验的结果
type Result struct {
	Input     string
	Canonical string
	Valid     bool
	Message   string
}

// New 创建 Normalizer
func New(p Policy) (*Normalizer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	// + 后首位为 1-9 的国家码，其余位数由策略决定
	pattern := regexp.MustCompile(fmt.Sprintf(`^\+[1-9][0-9]{%d,%d}$`, p.MinTotalDigits-1, p.MaxTotalDigits-1))
	return &Normalizer{policy: p, pattern: pattern}, nil
}

// MustNew 同 New，策略非法时 panic
func MustNew(p Policy) *Normalizer {
	n, err := New(p)
	if err != nil {
		panic(err)
	}
	return n
}

var defaultNormalizer = MustNew(DefaultPolicy)

// Default 使用 DefaultPolicy 的 Normalizer
func Default() *Normalizer {
	return defaultNormalizer
}

// Policy 返回当前策略
func (n *Normalizer) Policy() Policy {
	return n.policy
}

// Normalize 将任意输入清洗为候选规范号码
//
// 失败时仍返回尽力清洗后的字符串，供调用方记录或交给 Validate 拒绝。
func (n *Normalizer) Normalize(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrEmpty
	}

	var b strings.Builder
	b.Grow(len(raw))
	leadingPlus := false
	hasLetter := false

	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+':
			// 只有出现在任何数字之前的 + 保留，多个前导 + 合并为一个
			if b.Len() == 0 {
				leadingPlus = true
			}
		case unicode.IsLetter(r):
			hasLetter = true
		}
	}

	digits := b.String()
	if hasLetter {
		return cleaned(leadingPlus, digits), ErrContainsLetter
	}

	if leadingPlus {
		if digits == "" {
			return "+", ErrTooShort
		}
		return "+" + digits, nil
	}

	if len(digits) < n.policy.SubscriberLength {
		return digits, ErrTooShort
	}
	subscriber := digits[len(digits)-n.policy.SubscriberLength:]
	return "+" + n.policy.DefaultCountryCode + subscriber, nil
}

func cleaned(leadingPlus bool, digits string) string {
	if leadingPlus {
		return "+" + digits
	}
	return digits
}

// Validate 校验规范号码是否符合 E.164 形式及位数范围
func (n *Normalizer) Validate(canonical string) error {
	if !n.pattern.MatchString(canonical) {
		return ErrInvalidFormat
	}
	return nil
}

// Check 规范化并校验，从不 panic
func (n *Normalizer) Check(raw string) Result {
	res := Result{Input: raw}

	canonical, err := n.Normalize(raw)
	res.Canonical = canonical
	if err == nil {
		err = n.Validate(canonical)
	}
	if err != nil {
		res.Message = err.Error()
		return res
	}

	res.Valid = true
	return res
}

// Parse 规范化并校验，失败时返回挂在 phone 字段上的输入校验错误
func (n *Normalizer) Parse(raw string) (string, *xerrors.AppError) {
	res := n.Check(raw)
	if !res.Valid {
		return "", xerrors.NewValidationError(Field, res.Message)
	}
	return res.Canonical, nil
}

// Normalize 使用默认策略规范化
func Normalize(raw string) (string, error) {
	return defaultNormalizer.Normalize(raw)
}

// Validate 使用默认策略校验
func Validate(canonical string) error {
	return defaultNormalizer.Validate(canonical)
}
