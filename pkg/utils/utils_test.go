package utils

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"(11) 98765-4321", "11987654321"},
		{"+55 11 98765 4321", "5511987654321"},
		{"11987654321", "11987654321"},
		{"abc", ""},
		{"", ""},
		{"٣٤ 12", "12"},
	}
	for _, tt := range tests {
		got := NormalizePhone(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, got, NormalizePhone(got), "normalizing twice must be stable")
	}
}

func TestContainsFold(t *testing.T) {
	assert.True(t, ContainsFold("Maria Silva", "SILVA"))
	assert.True(t, ContainsFold("João", "joão"))
	assert.True(t, ContainsFold("anything", ""))
	assert.False(t, ContainsFold("Ana", "Maria"))
}

func TestNewNullString(t *testing.T) {
	assert.Nil(t, NewNullString("   "))
	require.NotNil(t, NewNullString("x"))
	assert.Equal(t, "x", *NewNullString("x"))
}

func TestPagination(t *testing.T) {
	page, size := NormalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, DefaultPageSize, size)

	_, size = NormalizePage(2, MaxPageSize+1)
	assert.Equal(t, MaxPageSize, size)

	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))

	tests := []struct {
		total, page, size int
		start, end        int
	}{
		{7, 1, 3, 0, 3},
		{7, 3, 3, 6, 7},
		{7, 4, 3, 7, 7},
		{0, 1, 3, 0, 0},
		{7, 0, 3, 7, 7},
		{5, 6148914691236517207, 3, 5, 5},
		{5, math.MaxInt, 1, 5, 5},
	}
	for _, tt := range tests {
		start, end := PageBounds(tt.total, tt.page, tt.size)
		assert.Equal(t, tt.start, start)
		assert.Equal(t, tt.end, end)
	}
}

func TestOffsetDoesNotWrap(t *testing.T) {
	assert.Equal(t, 0, Offset(1, 10))
	assert.Equal(t, 20, Offset(3, 10))
	assert.Equal(t, math.MaxInt, Offset(6148914691236517207, 3))
	assert.Equal(t, math.MaxInt, Offset(math.MaxInt, MaxPageSize))

	assert.Equal(t, 1, ClampPage(5, 0, 3))
	assert.Equal(t, 2, ClampPage(5, 2, 3))
	assert.Equal(t, 3, ClampPage(5, 6148914691236517207, 3))
	assert.Equal(t, 1, ClampPage(0, 9, 3))
	assert.Equal(t, 6, Offset(ClampPage(5, 6148914691236517207, 3), 3))
}

func TestGetenvHelpers(t *testing.T) {
	t.Setenv("SALON_TEST_STR", "value")
	t.Setenv("SALON_TEST_INT", "42")
	t.Setenv("SALON_TEST_BAD_INT", "forty")
	t.Setenv("SALON_TEST_BOOL", "true")
	t.Setenv("SALON_TEST_DURATION", "15s")
	t.Setenv("SALON_TEST_LIST", " a, ,b ")

	assert.Equal(t, "value", Getenv("SALON_TEST_STR", "x"))
	assert.Equal(t, "x", Getenv("SALON_TEST_MISSING", "x"))
	assert.Equal(t, 42, GetenvInt("SALON_TEST_INT", 1))
	assert.Equal(t, 1, GetenvInt("SALON_TEST_BAD_INT", 1))
	assert.True(t, GetenvBool("SALON_TEST_BOOL", false))
	assert.Equal(t, 15*time.Second, GetenvDuration("SALON_TEST_DURATION", time.Second))
	assert.Equal(t, []string{"a", "b"}, GetenvList("SALON_TEST_LIST", nil))
	assert.Equal(t, []string{"d"}, GetenvList("SALON_TEST_MISSING", []string{"d"}))
}

func TestConversions(t *testing.T) {
	id, err := StrToPositiveInt64("12")
	require.NoError(t, err)
	assert.Equal(t, int64(12), id)

	for _, bad := range []string{"0", "-3", "abc", ""} {
		_, err := StrToPositiveInt64(bad)
		assert.Error(t, err, bad)
	}

	assert.Equal(t, 5, AtoiDefault("", 5))
	assert.Equal(t, 5, AtoiDefault("x", 5))
	assert.Equal(t, 7, AtoiDefault("7", 5))

	assert.Equal(t, "42", Int64ToStr(42))
	assert.Equal(t, "-1", Int64ToStr(-1))
	back, err := StrToPositiveInt64(Int64ToStr(math.MaxInt64))
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), back)
}

func TestBindErrorFields(t *testing.T) {
	type form struct {
		Phone string `json:"phone" validate:"required"`
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string { return fld.Tag.Get("json") })
	err := v.Struct(form{})
	require.Error(t, err)
	assert.Equal(t, []FieldError{{Loc: []string{"body", "phone"}, Msg: "field required"}}, BindErrorFields(err))

	var target struct {
		Date string `json:"date"`
	}
	err = json.Unmarshal([]byte(`{"date":5}`), &target)
	require.Error(t, err)
	assert.Equal(t, []string{"body", "date"}, BindErrorFields(err)[0].Loc)

	fields := BindErrorFields(errors.New("unexpected EOF"))
	assert.Equal(t, []string{"body"}, fields[0].Loc)
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("maria@example.com"))
	assert.True(t, IsValidEmail(" maria@salon.com.br "))
	assert.False(t, IsValidEmail("maria@"))
	assert.False(t, IsValidEmail("not-an-email"))
}
