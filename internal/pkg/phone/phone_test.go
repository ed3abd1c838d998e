package phone

import (
	"strings"
	"testing"

	"onboard-pay/internal/pkg/xerrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"ten digits domestic", "5551234567", "+15551234567", nil},
		{"formatted domestic", "(555) 123-4567", "+15551234567", nil},
		{"dotted domestic", "555.123.4567", "+15551234567", nil},
		{"domestic with trunk digit", "1 555 123 4567", "+15551234567", nil},
		{"domestic keeps last ten digits", "0015551234567", "+15551234567", nil},
		{"long domestic truncated to last ten", "12345678901234567890", "+11234567890", nil},
		{"already canonical", "+15551234567", "+15551234567", nil},
		{"international with spaces", "+44 20 7946 0958", "+442079460958", nil},
		{"stray plus mid string", "1+5551234567", "+15551234567", nil},
		{"multiple leading plus", "++44 20 7946 0958", "+442079460958", nil},
		{"plus after space", " +44 20 7946 0958", "+442079460958", nil},
		{"plus inside international", "+44+20+7946+0958", "+442079460958", nil},
		{"nine digits", "555123456", "555123456", ErrTooShort},
		{"empty", "   ", "", ErrEmpty},
		{"only plus", "+", "+", ErrTooShort},
		{"letters", "555-CALL-NOW", "555", ErrContainsLetter},
		{"letters with plus", "+1 555 abc 4567", "+15554567", ErrContainsLetter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.input)
			assert.Equal(t, tt.want, got)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNormalize_TenDigitsGetDefaultCountryCode(t *testing.T) {
	for _, digits := range []string{"2125550000", "9999999999", "0000000000", "4155552671"} {
		got, err := Normalize(digits)
		require.NoError(t, err)
		assert.Equal(t, "+1"+digits, got)
	}
}

func TestNormalize_CanonicalIsIdempotent(t *testing.T) {
	for total := 11; total <= 15; total++ {
		canonical := "+4" + strings.Repeat("2", total-1)
		got, err := Normalize(canonical)
		require.NoError(t, err)
		assert.Equal(t, canonical, got)
		assert.NoError(t, Validate(got))

		again, err := Normalize(got)
		require.NoError(t, err)
		assert.Equal(t, got, again)
	}
}

func TestNormalize_NoStrayPlus(t *testing.T) {
	inputs := []string{"+++1555+123+4567", "1+2+3+4+5+6+7+8+9+0", "+ + 44 20 7946 0958", "555+1234567+"}
	for _, in := range inputs {
		got, _ := Normalize(in)
		assert.NotContains(t, got[1:], "+", "input %q", in)
		assert.LessOrEqual(t, strings.Count(got, "+"), 1)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"+15551234567", true},
		{"+442079460958", true},
		{"+123456789012345", true},
		{"+1234567890123456", false},
		{"+1234567890", false},
		{"+05551234567", false},
		{"15551234567", false},
		{"+1555123456a", false},
		{"", false},
	}

	for _, tt := range tests {
		err := Validate(tt.input)
		if tt.valid {
			assert.NoError(t, err, tt.input)
		} else {
			assert.ErrorIs(t, err, ErrInvalidFormat, tt.input)
		}
	}
}

func TestCheck(t *testing.T) {
	n := Default()

	res := n.Check("(555) 123-4567")
	assert.True(t, res.Valid)
	assert.Equal(t, "+15551234567", res.Canonical)
	assert.Empty(t, res.Message)

	res = n.Check("+44 20 7946 0958")
	assert.True(t, res.Valid)
	assert.Equal(t, "+442079460958", res.Canonical)

	res = n.Check("12345678901234567890")
	assert.True(t, res.Valid)
	assert.Equal(t, "+11234567890", res.Canonical)

	for _, short := range []string{"123", "555123456", "12-34-56-78"} {
		res = n.Check(short)
		assert.False(t, res.Valid, short)
		assert.NotEmpty(t, res.Message)
	}

	res = n.Check("+0 20 7946 0958")
	assert.False(t, res.Valid)
	assert.Equal(t, ErrInvalidFormat.Error(), res.Message)
}

func TestParse_FieldError(t *testing.T) {
	_, appErr := Default().Parse("call me")
	require.NotNil(t, appErr)
	assert.Equal(t, xerrors.CodeInvalidParams, appErr.Code)
	field, ok := appErr.Metadata("field")
	assert.True(t, ok)
	assert.Equal(t, Field, field)

	canonical, appErr := Default().Parse("555 123 4567")
	assert.Nil(t, appErr)
	assert.Equal(t, "+15551234567", canonical)
}

func TestPolicy(t *testing.T) {
	uk, err := New(Policy{DefaultCountryCode: "44", SubscriberLength: 10, MinTotalDigits: 11, MaxTotalDigits: 15})
	require.NoError(t, err)

	got, err := uk.Normalize("020 7946 0958")
	require.NoError(t, err)
	assert.Equal(t, "+442079460958", got)
	assert.NoError(t, uk.Validate(got))

	invalid := []Policy{
		{DefaultCountryCode: "0", SubscriberLength: 10, MinTotalDigits: 11, MaxTotalDigits: 15},
		{DefaultCountryCode: "1", SubscriberLength: 0, MinTotalDigits: 11, MaxTotalDigits: 15},
		{DefaultCountryCode: "1", SubscriberLength: 10, MinTotalDigits: 12, MaxTotalDigits: 15},
		{DefaultCountryCode: "1", SubscriberLength: 10, MinTotalDigits: 11, MaxTotalDigits: 16},
	}
	for _, p := range invalid {
		_, err := New(p)
		assert.Error(t, err, "%+v", p)
	}
}
