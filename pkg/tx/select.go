package tx

// selectionOutputs is the output shape priced during selection: change and
// payment. Memo slots are added on top.
const selectionOutputs = 2

// SelectUTXOs walks utxos in the given order and returns the shortest prefix
// whose value covers amount plus the fee for that many inputs.
//
// The fee is re-priced after each input and only the increase is added to
// the remaining need. Selection never fails: if the candidates run out the
// whole list is returned and Build reports the shortfall.
func SelectUTXOs(utxos []UTXO, amount uint64, memoLen int) []UTXO {
	var (
		selected   []UTXO
		currentFee uint64
		remaining  = amount
	)
	for _, u := range utxos {
		if remaining == 0 {
			break
		}
		if u.Value == 0 {
			continue
		}
		selected = append(selected, u)

		fee := FeeWithMemo(len(selected), selectionOutputs, memoLen)
		remaining += fee - currentFee
		currentFee = fee

		remaining -= min(u.Value, remaining)
	}
	return selected
}
