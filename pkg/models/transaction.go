package models

// TxInput is a spent box as it appears on a transaction's input side.
type TxInput struct {
	BoxID   string  `json:"boxId"`
	Address string  `json:"address"`
	Value   int64   `json:"value"` // in nanoErgs
	Assets  []Asset `json:"assets,omitempty"`
}

// TxOutput is a box created by a transaction.
type TxOutput struct {
	BoxID   string  `json:"boxId"`
	Address string  `json:"address"`
	Value   int64   `json:"value"` // in nanoErgs
	Assets  []Asset `json:"assets,omitempty"`
}

// Transaction is a parsed Ergo transaction with resolved input values.
type Transaction struct {
	ID              string     `json:"id"`
	BlockID         string     `json:"blockId,omitempty"`
	InclusionHeight int        `json:"inclusionHeight,omitempty"` // 0 for mempool
	Timestamp       int64      `json:"timestamp,omitempty"`       // unix milliseconds
	Size            int        `json:"size"`
	Confirmations   int        `json:"numConfirmations,omitempty"`
	Inputs          []TxInput  `json:"inputs"`
	Outputs         []TxOutput `json:"outputs"`
}

// Fee is Sum(inputs) - Sum(outputs) in nanoErgs, clamped at zero when
// input values could not be resolved.
func (t Transaction) Fee() int64 {
	var in, out int64
	for _, i := range t.Inputs {
		in += i.Value
	}
	for _, o := range t.Outputs {
		out += o.Value
	}
	if fee := in - out; fee > 0 {
		return fee
	}
	return 0
}

// InputAddresses returns the distinct input addresses in first-seen order.
func (t Transaction) InputAddresses() []string {
	return distinctAddresses(t.Inputs, nil)
}

// OutputAddresses returns the distinct output addresses in first-seen order.
func (t Transaction) OutputAddresses() []string {
	return distinctAddresses(nil, t.Outputs)
}

// CounterpartyAddresses returns every distinct address on either side of the
// transaction except the one given.
func (t Transaction) CounterpartyAddresses(self string) []string {
	seen := map[string]bool{self: true, "": true}
	var result []string
	for _, in := range t.Inputs {
		if !seen[in.Address] {
			seen[in.Address] = true
			result = append(result, in.Address)
		}
	}
	for _, out := range t.Outputs {
		if !seen[out.Address] {
			seen[out.Address] = true
			result = append(result, out.Address)
		}
	}
	return result
}

func distinctAddresses(ins []TxInput, outs []TxOutput) []string {
	seen := map[string]bool{"": true}
	var result []string
	for _, in := range ins {
		if !seen[in.Address] {
			seen[in.Address] = true
			result = append(result, in.Address)
		}
	}
	for _, out := range outs {
		if !seen[out.Address] {
			seen[out.Address] = true
			result = append(result, out.Address)
		}
	}
	return result
}
