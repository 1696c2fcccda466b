package service

import (
	"encoding/json"
	"fmt"
	"strconv"

	customerService "warranty_shop/internal/domain/customer/service"
)

// Stripe caps metadata values at 500 characters. A multi-vehicle
// purchase serializes well past that, so the payload is chunked across
// numbered keys and reassembled in the webhook.
const (
	metadataChunkSize = 450
	metadataPartsKey  = "purchase_parts"
	metadataChunkKey  = "purchase_%d"
	metadataCartKey   = "cart_id"
	metadataCodeKey   = "discount_code"
)

// encodePurchase serializes a purchase into Stripe-safe metadata.
func encodePurchase(purchase customerService.Purchase) (map[string]string, error) {
	body, err := json.Marshal(purchase)
	if err != nil {
		return nil, fmt.Errorf("encode purchase: %w", err)
	}

	meta := map[string]string{
		metadataCartKey: purchase.CartID,
		metadataCodeKey: purchase.DiscountCode,
	}

	parts := 0
	for start := 0; start < len(body); start += metadataChunkSize {
		end := start + metadataChunkSize
		if end > len(body) {
			end = len(body)
		}
		meta[fmt.Sprintf(metadataChunkKey, parts)] = string(body[start:end])
		parts++
	}
	meta[metadataPartsKey] = strconv.Itoa(parts)

	return meta, nil
}

// decodePurchase reassembles the chunked payload from session metadata.
func decodePurchase(meta map[string]string) (customerService.Purchase, error) {
	var purchase customerService.Purchase

	parts, err := strconv.Atoi(meta[metadataPartsKey])
	if err != nil || parts <= 0 {
		return purchase, fmt.Errorf("metadata missing %s", metadataPartsKey)
	}

	var body []byte
	for i := 0; i < parts; i++ {
		chunk, ok := meta[fmt.Sprintf(metadataChunkKey, i)]
		if !ok {
			return purchase, fmt.Errorf("metadata missing chunk %d of %d", i, parts)
		}
		body = append(body, chunk...)
	}

	if err := json.Unmarshal(body, &purchase); err != nil {
		return purchase, fmt.Errorf("decode purchase: %w", err)
	}
	return purchase, nil
}
