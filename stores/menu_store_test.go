package stores

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"azzipizza/models"
)

func TestValidateCreateMenu(t *testing.T) {
	base := CreateMenuInput{
		Name:        "  Margherita ",
		Description: "pomodoro, mozzarella, basilico",
		Price:       7.5,
		Category:    "pizze rosse",
	}

	tests := []struct {
		name    string
		mutate  func(*CreateMenuInput)
		wantErr string
	}{
		{name: "valid", mutate: func(i *CreateMenuInput) {}},
		{name: "missing name", mutate: func(i *CreateMenuInput) { i.Name = "" }, wantErr: "name is required"},
		{name: "missing description", mutate: func(i *CreateMenuInput) { i.Description = "" }, wantErr: "description is required"},
		{name: "zero price", mutate: func(i *CreateMenuInput) { i.Price = 0 }, wantErr: "greater than 0"},
		{name: "negative price", mutate: func(i *CreateMenuInput) { i.Price = -3 }, wantErr: "greater than 0"},
		{name: "negative discount", mutate: func(i *CreateMenuInput) { i.Discount = -5 }, wantErr: "between 0 and 100"},
		{name: "discount above 100", mutate: func(i *CreateMenuInput) { i.Discount = 120 }, wantErr: "between 0 and 100"},
		{name: "unknown category", mutate: func(i *CreateMenuInput) { i.Category = "sushi" }, wantErr: "unknown category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := base
			tt.mutate(&input)
			err := validateCreateMenu(&input)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateCreateMenuDefaultsCategory(t *testing.T) {
	input := CreateMenuInput{
		Name:        "tiramisu",
		Description: "homemade",
		Price:       5,
	}
	require.NoError(t, validateCreateMenu(&input))
	assert.Equal(t, models.DefaultCategory, input.Category)
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "margherita", models.NormalizeName("  Margherita "))
	assert.Equal(t, "pizza 4 formaggi", models.NormalizeName("Pizza 4 Formaggi"))
}
