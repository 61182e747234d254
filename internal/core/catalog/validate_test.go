package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/urbanatelier/catalog/internal/core/listing"
	"github.com/urbanatelier/catalog/internal/core/tag"
	"github.com/urbanatelier/catalog/internal/platform/apperr"
)

/*
TestValidateProduct covers the write-path rules for products and their
nested variations.
*/
func TestValidateProduct(t *testing.T) {
	valid := listing.Product{
		ID:   "UA8971",
		Name: "Loft Light",
		Variations: []listing.Variation{
			{Extension: "PB", Subname: "Polished Brass", Price: 1250, Display: true},
		},
	}
	assert.NoError(t, validateProduct(valid))

	tests := []struct {
		name   string
		mutate func(*listing.Product)
		field  string
	}{
		{"bad_id", func(p *listing.Product) { p.ID = "ua-1" }, "id"},
		{"missing_name", func(p *listing.Product) { p.Name = "" }, "name"},
		{"negative_price", func(p *listing.Product) { p.Variations[0].Price = -1 }, "variations[0].price"},
		{"missing_extension", func(p *listing.Product) { p.Variations[0].Extension = "" }, "variations[0].extension"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			p.Variations = []listing.Variation{valid.Variations[0]}
			tt.mutate(&p)

			err := validateProduct(p)
			require.Error(t, err)
			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, apperr.CodeValidation, ae.Code)
			assert.Equal(t, tt.field, ae.Details[0].Field)
		})
	}
}

/*
TestValidateStock requires a well-formed product reference and non-negative
numbers.
*/
func TestValidateStock(t *testing.T) {
	valid := listing.StockListing{
		ProductID: "UA01",
		Price:     900,
		Items:     []listing.StockItem{{Serial: 1, Display: true}},
	}
	assert.NoError(t, validateStock(valid))

	invalid := valid
	invalid.ProductID = "bad id"
	assert.Error(t, validateStock(invalid))

	invalid = valid
	invalid.Price = -10
	assert.Error(t, validateStock(invalid))
}

/*
TestValidateCustom allows the product link to be absent but not malformed.
*/
func TestValidateCustom(t *testing.T) {
	valid := listing.CustomItem{Name: "Custom Sconce", Customer: "Atelier"}
	assert.NoError(t, validateCustom(valid))

	linked := valid
	linked.ProductID = "UA01"
	assert.NoError(t, validateCustom(linked))

	invalid := valid
	invalid.ProductID = "ua 1"
	assert.Error(t, validateCustom(invalid))

	invalid = valid
	invalid.Name = ""
	assert.Error(t, validateCustom(invalid))
}

/*
TestValidateTag requires a name and a plausible category reference.
*/
func TestValidateTag(t *testing.T) {
	assert.NoError(t, validateTag(tag.Tag{Name: "Brass", CategoryID: 6}))
	assert.Error(t, validateTag(tag.Tag{Name: "", CategoryID: 6}))
	assert.Error(t, validateTag(tag.Tag{Name: "Brass", CategoryID: 0}))
}
