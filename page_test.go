package pricewatch_test

import (
	"testing"

	"pricewatch"

	"github.com/stretchr/testify/assert"
)

func TestFetchable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		link string
		want bool
	}{
		{"https link", "https://www.amazon.example/dp/B00TEST", true},
		{"http link", "http://snapdeal.example/product/1", true},
		{"surrounding whitespace", "  https://meesho.example/p/2  ", true},
		{"uppercase scheme", "HTTPS://flipkart.example/item", true},
		{"empty cell", "", false},
		{"whitespace only", "   ", false},
		{"placeholder text", "coming soon", false},
		{"schemeless URL", "www.amazon.example/dp/B00TEST", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, pricewatch.Fetchable(tt.link))
		})
	}
}

func TestPage_Validate(t *testing.T) {
	t.Parallel()

	t.Run("page with URL passes", func(t *testing.T) {
		t.Parallel()

		p := &pricewatch.Page{URL: "https://amazon.example/dp/B00TEST"}

		assert.NoError(t, p.Validate())
	})

	t.Run("rejects missing URL", func(t *testing.T) {
		t.Parallel()

		p := &pricewatch.Page{HTML: "<html></html>"}

		err := p.Validate()

		assert.Equal(t, pricewatch.EINVALID, pricewatch.ErrorCode(err))
	})
}
