package labelref

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Canonical(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantFile  string
		wantLabel string
	}{
		{"simple", "@AccountsPayable:VendorInvoice", "AccountsPayable", "VendorInvoice"},
		{"digits and underscores", "@SYS_1:Label_42", "SYS_1", "Label_42"},
		{"single characters", "@A:B", "A", "B"},
		{"numeric label id", "@SYS:13342", "SYS", "13342"},
		{"lowercase file id", "@sys:label1", "sys", "label1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFile, ref.FileID)
			assert.Equal(t, tt.wantLabel, ref.LabelID)
		})
	}
}

func TestParse_Legacy(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantFile  string
		wantLabel string
	}{
		{"classic sys label", "@SYS13342", "SYS", "SYS13342"},
		{"short prefix", "@A1", "A", "A1"},
		{"long prefix", "@GLS60000", "GLS", "GLS60000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFile, ref.FileID)
			assert.Equal(t, tt.wantLabel, ref.LabelID)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"missing at sign", "SYS:Label1"},
		{"bare token lowercase", "@sys13342"},
		{"bare token no digits", "@SYS"},
		{"bare token mixed case", "@Sys13342"},
		{"double colon", "@SYS:Label:1"},
		{"illegal characters", "@SYS:Label-1"},
		{"space in label", "@SYS:Label 1"},
		{"trailing colon", "@SYS:"},
		{"leading colon", "@:Label1"},
		{"embedded newline", "@SYS:Label1\n"},
		{"just at sign", "@"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidReference)
		})
	}
}

func TestParse_CanonicalTakesPrecedence(t *testing.T) {
	// A string that satisfies both grammars must resolve canonically.
	ref, err := Parse("@SYS:13342")
	require.NoError(t, err)
	assert.Equal(t, "SYS", ref.FileID)
	assert.Equal(t, "13342", ref.LabelID)
}

func TestReference_String(t *testing.T) {
	assert.Equal(t, "@SYS:Label1", Reference{FileID: "SYS", LabelID: "Label1"}.String())
}
