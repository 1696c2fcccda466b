package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customerService "warranty_shop/internal/domain/customer/service"
)

func samplePurchase(items int) customerService.Purchase {
	p := customerService.Purchase{
		CartID:       "cart-1",
		DiscountCode: "SAVE-ABC123",
		Customer: customerService.PurchaseCustomer{
			Title:        "Mr",
			FirstName:    "Alan",
			LastName:     "Turing",
			Email:        "alan@example.com",
			Phone:        "07000000000",
			AddressLine1: "1 Bletchley Park",
			City:         "Milton Keynes",
			Postcode:     "MK3 6EB",
		},
	}
	for i := 0; i < items; i++ {
		p.Items = append(p.Items, customerService.PurchaseItem{
			Registration:     fmt.Sprintf("AB%02dCDE", i),
			Make:             "FORD",
			Plan:             "gold",
			Cadence:          "monthly",
			DurationMonths:   12,
			PricePence:       29900,
			MaxClaimPence:    300000,
			WarrantyTypeCode: "G12",
		})
	}
	return p
}

func TestPurchaseMetadataRoundTrip(t *testing.T) {
	t.Run("Single item", func(t *testing.T) {
		original := samplePurchase(1)

		meta, err := encodePurchase(original)
		require.NoError(t, err)

		decoded, err := decodePurchase(meta)
		require.NoError(t, err)
		assert.Equal(t, original, decoded)
	})

	t.Run("Large purchase splits across chunks under the value cap", func(t *testing.T) {
		original := samplePurchase(10)

		meta, err := encodePurchase(original)
		require.NoError(t, err)

		assert.Greater(t, len(meta), 4, "expected multiple chunk keys")
		for k, v := range meta {
			assert.LessOrEqual(t, len(v), 500, "metadata value %s exceeds the provider cap", k)
		}

		decoded, err := decodePurchase(meta)
		require.NoError(t, err)
		assert.Equal(t, original, decoded)
	})
}

func TestDecodePurchaseErrors(t *testing.T) {
	t.Run("Missing parts count", func(t *testing.T) {
		_, err := decodePurchase(map[string]string{"purchase_0": "{}"})
		assert.Error(t, err)
	})

	t.Run("Missing chunk", func(t *testing.T) {
		original := samplePurchase(10)
		meta, err := encodePurchase(original)
		require.NoError(t, err)

		delete(meta, "purchase_1")
		_, err = decodePurchase(meta)
		assert.Error(t, err)
	})
}
