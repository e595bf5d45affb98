package wallet

import "github.com/Klingon-tech/zecsend/pkg/tx"

// Balance splits the UTXOs of an address into spendable and reserved value.
type Balance struct {
	Spendable uint64
	Reserved  uint64
	UTXOs     int
}

// Total returns Spendable + Reserved.
func (b Balance) Total() uint64 {
	return b.Spendable + b.Reserved
}

// ComputeBalance sums utxos, counting those reserved in ledger separately.
func ComputeBalance(utxos []tx.UTXO, ledger *Ledger) (Balance, error) {
	var b Balance
	for _, u := range utxos {
		reserved, err := ledger.IsReserved(u.Outpoint())
		if err != nil {
			return Balance{}, err
		}
		if reserved {
			b.Reserved += u.Value
		} else {
			b.Spendable += u.Value
		}
		b.UTXOs++
	}
	return b, nil
}
