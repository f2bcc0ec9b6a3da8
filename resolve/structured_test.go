package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricewatch/resolve"
)

// Ensure the strategies implement resolve.Strategy at compile time.
var (
	_ resolve.Strategy = (*resolve.StructuredData)(nil)
	_ resolve.Strategy = (*resolve.SiteRules)(nil)
	_ resolve.Strategy = (*resolve.Pattern)(nil)
)

func TestStructuredData_Extract(t *testing.T) {
	t.Parallel()

	s := resolve.NewStructuredData()

	t.Run("reads offers price from a product block", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, "https://shop.example/p/1", `<html><head>
<script type="application/ld+json">
{"@type": "Product", "name": "Gold Oil", "offers": {"@type": "Offer", "price": "499.00", "priceCurrency": "INR"}}
</script>
</head><body></body></html>`)

		candidate := s.Extract(doc)

		require.NotNil(t, candidate)
		assert.Equal(t, "499.00", candidate.Value)
		assert.Equal(t, "structured", candidate.Source)
	})

	t.Run("accepts numeric price values", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, "https://shop.example/p/1", `<html><head>
<script type="application/ld+json">
{"@type": "Product", "offers": {"price": 1299.5}}
</script>
</head><body></body></html>`)

		candidate := s.Extract(doc)

		require.NotNil(t, candidate)
		assert.Equal(t, "1299.5", candidate.Value)
	})

	t.Run("unwraps a top-level sequence", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, "https://shop.example/p/1", `<html><head>
<script type="application/ld+json">
[{"@type": "Product", "offers": {"price": "750"}}]
</script>
</head><body></body></html>`)

		candidate := s.Extract(doc)

		require.NotNil(t, candidate)
		assert.Equal(t, "750", candidate.Value)
	})

	t.Run("takes the first offer of an offers sequence", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, "https://shop.example/p/1", `<html><head>
<script type="application/ld+json">
{"@type": "Product", "offers": [{"price": "450"}, {"price": "999"}]}
</script>
</head><body></body></html>`)

		candidate := s.Extract(doc)

		require.NotNil(t, candidate)
		assert.Equal(t, "450", candidate.Value)
	})

	t.Run("falls back to lowPrice on aggregate offers", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, "https://shop.example/p/1", `<html><head>
<script type="application/ld+json">
{"@type": "Product", "offers": {"@type": "AggregateOffer", "lowPrice": "425", "highPrice": "600"}}
</script>
</head><body></body></html>`)

		candidate := s.Extract(doc)

		require.NotNil(t, candidate)
		assert.Equal(t, "425", candidate.Value)
	})

	t.Run("reads a top-level price field", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, "https://shop.example/p/1", `<html><head>
<script type="application/ld+json">
{"@type": "Offer", "price": "325.00"}
</script>
</head><body></body></html>`)

		candidate := s.Extract(doc)

		require.NotNil(t, candidate)
		assert.Equal(t, "325.00", candidate.Value)
	})

	t.Run("skips malformed blocks and keeps scanning", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, "https://shop.example/p/1", `<html><head>
<script type="application/ld+json">
{not valid json at all
</script>
<script type="application/ld+json">
{"@type": "Product", "offers": {"price": "875"}}
</script>
</head><body></body></html>`)

		candidate := s.Extract(doc)

		require.NotNil(t, candidate)
		assert.Equal(t, "875", candidate.Value)
	})

	t.Run("falls back to product price meta tag", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, "https://shop.example/p/1", `<html><head>
<meta property="product:price:amount" content="649.00">
</head><body></body></html>`)

		candidate := s.Extract(doc)

		require.NotNil(t, candidate)
		assert.Equal(t, "649.00", candidate.Value)
		assert.Equal(t, "structured", candidate.Source)
	})

	t.Run("checks og price meta tag as well", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, "https://shop.example/p/1", `<html><head>
<meta property="og:price:amount" content="1150">
</head><body></body></html>`)

		candidate := s.Extract(doc)

		require.NotNil(t, candidate)
		assert.Equal(t, "1150", candidate.Value)
	})

	t.Run("block price wins over meta tags", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, "https://shop.example/p/1", `<html><head>
<script type="application/ld+json">{"offers": {"price": "500"}}</script>
<meta property="og:price:amount" content="600">
</head><body></body></html>`)

		candidate := s.Extract(doc)

		require.NotNil(t, candidate)
		assert.Equal(t, "500", candidate.Value)
	})

	t.Run("returns nil when nothing is structured", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, "https://shop.example/p/1", `<html><body><p>₹499</p></body></html>`)

		assert.Nil(t, s.Extract(doc))
	})

	t.Run("ignores offers without any price field", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, "https://shop.example/p/1", `<html><head>
<script type="application/ld+json">
{"@type": "Product", "offers": {"availability": "InStock"}}
</script>
</head><body></body></html>`)

		assert.Nil(t, s.Extract(doc))
	})
}
