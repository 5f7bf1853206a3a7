package naming

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Page 1", "page1"},
		{"page", "page"},
		{"My Button", "myButton"},
		{"  spaced   out  ", "spacedOut"},
		{"Café déjà vu", "cafeDejaVu"},
		{"URL loader", "urlLoader"},
		{"2nd step", "_2ndStep"},
		{"snake_case_name", "snake_case_name"},
		{"$price", "$price"},
		{"--", ""},
		{"", ""},
		{"日本", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}

func TestSlugifyTruncates(t *testing.T) {
	got := Slugify(strings.Repeat("a", MaxLength+10))
	assert.Len(t, got, MaxLength)
	assert.Nil(t, Validate(got))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		code string
	}{
		{"", ErrNameEmpty},
		{"1abc", ErrNameInvalid},
		{"has space", ErrNameInvalid},
		{"class", ErrNameReserved},
		{strings.Repeat("x", MaxLength+1), ErrNameTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := Validate(tt.name)
			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, "name", err.Field)
			assert.NotEmpty(t, err.Message)
		})
	}

	assert.Nil(t, Validate("page1"))
	assert.Nil(t, Validate("_private$"))
}

func TestPropose(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		taken     []string
		want      string
	}{
		{"free", "button", nil, "button"},
		{"first suffix", "button", []string{"button"}, "button1"},
		{"skips used", "button", []string{"button", "button1"}, "button2"},
		{"replaces trailing digits", "page1", []string{"page1"}, "page2"},
		{"fills gap", "page3", []string{"page1", "page3"}, "page2"},
		{"reserved", "class", nil, "class1"},
		{"underscore digits", "_2", []string{"_2"}, "_21"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			taken := make(map[string]bool)
			for _, n := range tt.taken {
				taken[n] = true
			}
			assert.Equal(t, tt.want, Propose(tt.candidate, taken))
		})
	}
}

func TestProposeStaysWithinMaxLength(t *testing.T) {
	long := strings.Repeat("b", MaxLength)

	got := Propose(long, map[string]bool{long: true})
	assert.Equal(t, strings.Repeat("b", MaxLength-1)+"1", got)
	assert.Nil(t, Validate(got))

	taken := map[string]bool{long: true}
	for i := 1; i <= 9; i++ {
		taken[strings.Repeat("b", MaxLength-1)+strconv.Itoa(i)] = true
	}
	got = Propose(long, taken)
	assert.Equal(t, strings.Repeat("b", MaxLength-2)+"10", got)
	assert.Len(t, got, MaxLength)
}

func TestValidationErrorMessage(t *testing.T) {
	err := Taken("page1")
	assert.Equal(t, ErrNameTaken, err.Code)
	assert.Contains(t, err.Error(), "E205")
	assert.Contains(t, err.Error(), "page1")
}
