package participant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInfo() Info {
	return Info{SubjectID: "s01", Age: "27", Gender: Female, Variant: VariantShort}
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, validInfo().Validate())
}

func TestValidate_SubjectID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"simple", "s01", false},
		{"with dash and dot", "pilot-2.b", false},
		{"underscore", "lab_7", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"path separator", "a/b", true},
		{"parent dir", "..", true},
		{"embedded parent", "a..b", true},
		{"leading dot", ".hidden", true},
		{"space", "s 01", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := validInfo()
			info.SubjectID = tt.id
			err := info.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateGender(t *testing.T) {
	for _, g := range Genders {
		assert.NoError(t, ValidateGender(g), g)
	}
	err := ValidateGender("unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "male, female, other")
}

func TestValidateVariant(t *testing.T) {
	assert.NoError(t, ValidateVariant(VariantLong))
	assert.NoError(t, ValidateVariant(VariantShort))

	err := ValidateVariant("medium")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"medium"`)
}

func TestValidate_ReportsVariantLast(t *testing.T) {
	info := validInfo()
	info.Gender = "x"
	info.Variant = "y"

	err := info.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gender")
}
