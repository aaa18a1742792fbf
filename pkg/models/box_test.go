package models

import (
	"encoding/json"
	"testing"
)

func TestAssetDecode_FractionalAmountCountsAsZero(t *testing.T) {
	raw := `{
		"boxId": "b1",
		"address": "addrA",
		"value": 1000000,
		"assets": [
			{"tokenId": "tok1", "amount": 12.75, "decimals": 0},
			{"tokenId": "tok2", "amount": 5, "decimals": 0}
		]
	}`

	var box Box
	if err := json.Unmarshal([]byte(raw), &box); err != nil {
		t.Fatalf("Expected the box to decode despite the fractional amount. Got: %v", err)
	}

	if got := box.AssetAmount("tok1"); got != 0 {
		t.Errorf("Expected the fractional position to count as zero. Got: %d", got)
	}
	if got := box.AssetAmount("tok2"); got != 5 {
		t.Errorf("Expected the well-formed position preserved. Got: %d", got)
	}
	if box.Assets[0].TokenID != "tok1" {
		t.Errorf("Expected the token id kept on the zeroed position. Got: %q", box.Assets[0].TokenID)
	}
}

func TestAssetDecode_MissingAmountDefaultsToZero(t *testing.T) {
	var a Asset
	if err := json.Unmarshal([]byte(`{"tokenId":"tok1","decimals":2,"name":"T"}`), &a); err != nil {
		t.Fatalf("Expected the asset to decode. Got: %v", err)
	}
	if a.Amount != 0 {
		t.Errorf("Expected amount 0. Got: %d", a.Amount)
	}
	if a.Name != "T" || a.Decimals != 2 {
		t.Errorf("Expected the remaining fields preserved. Got: %+v", a)
	}
}
