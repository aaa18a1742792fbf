package models

import "testing"

func TestTransactionFee(t *testing.T) {
	tx := Transaction{
		Inputs:  []TxInput{{Value: 1001000000}},
		Outputs: []TxOutput{{Value: 900000000}, {Value: 100000000}},
	}
	if got := tx.Fee(); got != 1000000 {
		t.Errorf("Expected fee 1000000. Got: %d", got)
	}
}

func TestTransactionFee_ClampedAtZero(t *testing.T) {
	// Mempool entries without resolved input values look like negative fees.
	tx := Transaction{
		Inputs:  []TxInput{{Value: 0}},
		Outputs: []TxOutput{{Value: 500}},
	}
	if got := tx.Fee(); got != 0 {
		t.Errorf("Expected unresolvable fee clamped to 0. Got: %d", got)
	}
}

func TestCounterpartyAddresses(t *testing.T) {
	tx := Transaction{
		Inputs: []TxInput{
			{Address: "self"},
			{Address: "other1"},
			{Address: ""},
		},
		Outputs: []TxOutput{
			{Address: "other2"},
			{Address: "other1"}, // duplicate
			{Address: "self"},
		},
	}

	got := tx.CounterpartyAddresses("self")

	want := []string{"other1", "other2"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v. Got: %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %s at position %d. Got: %s", want[i], i, got[i])
		}
	}
}

func TestInputAndOutputAddresses(t *testing.T) {
	tx := Transaction{
		Inputs: []TxInput{
			{Address: "sender1"},
			{Address: "sender2"},
			{Address: "sender1"}, // duplicate
			{Address: ""},
		},
		Outputs: []TxOutput{
			{Address: "recipient1"},
			{Address: "sender1"},
			{Address: ""},
		},
	}

	ins := tx.InputAddresses()
	wantIns := []string{"sender1", "sender2"}
	if len(ins) != len(wantIns) {
		t.Fatalf("Expected %v. Got: %v", wantIns, ins)
	}
	for i := range wantIns {
		if ins[i] != wantIns[i] {
			t.Errorf("Expected %s at position %d. Got: %s", wantIns[i], i, ins[i])
		}
	}

	outs := tx.OutputAddresses()
	wantOuts := []string{"recipient1", "sender1"}
	if len(outs) != len(wantOuts) {
		t.Fatalf("Expected %v. Got: %v", wantOuts, outs)
	}
	for i := range wantOuts {
		if outs[i] != wantOuts[i] {
			t.Errorf("Expected %s at position %d. Got: %s", wantOuts[i], i, outs[i])
		}
	}
}

func TestAssetFormatted(t *testing.T) {
	a := Asset{Amount: 123456, Decimals: 2}
	if got := a.Formatted(); got != 1234.56 {
		t.Errorf("Expected 1234.56. Got: %f", got)
	}

	noDecimals := Asset{Amount: 42}
	if got := noDecimals.Formatted(); got != 42.0 {
		t.Errorf("Expected 42. Got: %f", got)
	}
}

func TestBoxAssetAmount(t *testing.T) {
	box := Box{Assets: []Asset{
		{TokenID: "tok1", Amount: 100},
		{TokenID: "tok2", Amount: 7},
	}}

	if got := box.AssetAmount("tok2"); got != 7 {
		t.Errorf("Expected 7. Got: %d", got)
	}
	if got := box.AssetAmount("missing"); got != 0 {
		t.Errorf("Expected 0 for an absent token. Got: %d", got)
	}
}
